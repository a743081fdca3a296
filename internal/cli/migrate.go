package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"quizzy/internal/config"
	"quizzy/internal/infra/file"
	"quizzy/internal/infra/postgres"
	pgmigrations "quizzy/internal/infra/postgres/migrations"
	"quizzy/internal/questions"
)

// NewMigrateCmd applies database migrations and optionally seeds the question bank.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runMigrationsWithConfig(contextOf(cmd), cfg, log, seed)
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "question bank file or directory to load into postgres")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log zerolog.Logger, seed string) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("group", group.String()).Msg("migrations applied")

	if seed == "" {
		return nil
	}
	return seedQuestions(ctx, cfg, log, seed)
}

func seedQuestions(ctx context.Context, cfg config.Config, log zerolog.Logger, path string) error {
	bank, err := file.NewQuestionLoader(path).LoadBank(ctx)
	if err != nil {
		return err
	}
	if problems := questions.Validate(bank, questions.Categories(nil)); len(problems) > 0 {
		return fmt.Errorf("refusing to seed: %d problems, run validate for details", len(problems))
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.NewQuestionLoader(pool).SaveBank(ctx, bank); err != nil {
		return err
	}
	log.Info().Int("questions", len(bank)).Msg("question bank seeded")
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
