package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizzy/internal/app"
	"quizzy/internal/infra/file"
	"quizzy/internal/questions"
)

// NewQuestionsCmd groups question bank maintenance.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Maintain the question bank",
	}
	cmd.AddCommand(newGenerateCmd(configPath), newRefreshCmd(configPath))
	return cmd
}

func newGenerateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [dir]",
		Short: "Merge category files into all.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			dir := cfg.Questions.Path
			if len(args) == 1 {
				dir = args[0]
			}
			return generateAll(contextOf(cmd), cmd.OutOrStdout(), dir)
		},
	}
}

func newRefreshCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Drop cached questions and reload them for the profile",
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
			return refreshBank(ctx, cmd.OutOrStdout(), service, cfg.Storage.Profile)
		},
	}
}

func generateAll(ctx context.Context, out io.Writer, dir string) error {
	bank, err := file.GenerateAll(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s wrote %s: %d questions across %d categories\n",
		color.GreenString("✓"), file.AllQuestionsFile, len(bank), len(questions.Categories(bank)))
	return nil
}

func refreshBank(ctx context.Context, out io.Writer, service *app.QuizService, profile string) error {
	bank, err := service.RefreshBank(ctx, profile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s reloaded %d questions\n", color.GreenString("✓"), len(bank))
	return nil
}
