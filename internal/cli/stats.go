package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizzy/internal/app"
)

// NewStatsCmd prints the stats of the configured profile.
func NewStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cumulative quiz stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := contextOf(cmd)
			service, cleanup, err := buildService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			p := cfg.Storage.Profile
			stats := service.Stats(ctx, p)
			printSummary(cmd.OutOrStdout(), app.Summarize(stats, service.Categories(ctx, p)))
			return nil
		},
	}
}

func printSummary(out io.Writer, s app.Summary) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %d   %s %d   %s %s   %s %d%%   %s %d\n",
		bold("quizzes"), s.TotalQuizzes,
		bold("correct"), s.TotalCorrect,
		bold("time"), s.TotalTime,
		bold("accuracy"), s.Accuracy,
		bold("streak"), s.Streak,
	)

	fmt.Fprintln(out, color.CyanString("\nby category"))
	for _, c := range s.Categories {
		if c.Attempted == 0 {
			continue
		}
		fmt.Fprintf(out, "  %-28s %3d quizzes  %5.1f avg score  %s avg time\n",
			c.Label, c.Attempted, c.AvgScore, c.AvgTimeLabel)
	}

	fmt.Fprintln(out, color.CyanString("\nby difficulty"))
	for _, d := range s.Difficulties {
		fmt.Fprintf(out, "  %-8s %4d/%-4d %s\n", d.Difficulty, d.Correct, d.Attempted, accuracyColor(d.Accuracy))
	}
}

func accuracyColor(pct int) string {
	label := fmt.Sprintf("%d%%", pct)
	switch {
	case pct >= 80:
		return color.GreenString(label)
	case pct >= 50:
		return color.YellowString(label)
	default:
		return color.RedString(label)
	}
}
