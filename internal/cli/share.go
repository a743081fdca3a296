package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizzy/internal/questions"
)

// NewShareCmd groups share-link tooling.
func NewShareCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Work with signed score links",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify <url>",
		Short: "Check whether a share link is trusted",
		Args:  cobra.ExactArgs(1),
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

			out := cmd.OutOrStdout()
			claim, err := service.OpenShareLink(ctx, cfg.Storage.Profile, args[0])
			if err != nil {
				fmt.Fprintf(out, "%s %v\n", color.RedString("✗"), err)
				return err
			}
			fmt.Fprintf(out, "%s %s scored %s in %s on %s\n",
				color.GreenString("✓"), claim.UserID, claim.Score, questions.Label(claim.Category), claim.Date)
			return nil
		},
	})
	return cmd
}
