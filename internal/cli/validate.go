package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizzy/internal/domain"
	"quizzy/internal/infra/file"
	"quizzy/internal/questions"
)

// NewValidateCmd checks a question bank on disk.
func NewValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a question bank file or directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			path := cfg.Questions.Path
			if len(args) == 1 {
				path = args[0]
			}
			bank, err := file.NewQuestionLoader(path).LoadBank(contextOf(cmd))
			if err != nil {
				return err
			}
			return reportProblems(cmd.OutOrStdout(), bank, questions.Validate(bank, questions.Categories(nil)))
		},
	}
}

func reportProblems(out io.Writer, bank []domain.Question, problems []questions.Problem) error {
	if len(problems) == 0 {
		fmt.Fprintf(out, "%s %d questions valid across %d categories\n",
			color.GreenString("✓"), len(bank), len(questions.Categories(bank)))
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(out, "%s %s\n", color.RedString("✗"), p)
	}
	return fmt.Errorf("%d problems found", len(problems))
}
