package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizzy/internal/app"
	"quizzy/internal/config"
	"quizzy/internal/infra/file"
	"quizzy/internal/infra/memory"
	"quizzy/internal/infra/postgres"
	infraredis "quizzy/internal/infra/redis"
	"quizzy/internal/infra/sqlite"
	"quizzy/internal/share"
)

// buildService wires the quiz service from cfg. The returned cleanup closes
// every connection that was opened.
func buildService(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*app.QuizService, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var loader memory.QuestionLoader = file.NewQuestionLoader(cfg.Questions.Path)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		loader = postgres.NewQuestionLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var bank app.QuestionRepository
	if redisClient != nil {
		bank = infraredis.NewQuestionRepository(redisClient, loader, bankTTL)
	} else {
		bank = memory.NewQuestionRepository(loader, bankTTL)
	}

	var store app.Store
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store = memory.NewStore()
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = s.Close() })
		store = s
	case config.DriverRedis:
		if redisClient == nil {
			return fail(fmt.Errorf("redis storage selected but redis.addr is empty"))
		}
		store = infraredis.NewStore(redisClient)
	case config.DriverPostgres:
		if cfg.Postgres.URL == "" {
			return fail(fmt.Errorf("postgres storage selected but postgres.url is empty"))
		}
		db := openBun(cfg.Postgres.URL)
		closers = append(closers, func() { _ = db.Close() })
		store = postgres.NewStore(db)
	default:
		return fail(fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver))
	}

	perQuiz := cfg.Questions.PerQuiz
	newState := func() *app.QuizState { return app.NewQuizState(perQuiz) }
	var attempts app.AttemptRepository
	if redisClient != nil {
		attempts = infraredis.NewAttemptStore(redisClient, redisTTL, newState)
	} else {
		attempts = memory.NewAttemptStore(newState)
	}

	signer := share.NewSigner(cfg.Share.Secret, config.TTLDuration(cfg.Share.MaxAge, share.DefaultMaxAge))
	service := app.NewQuizService(attempts, bank, store, signer, app.Options{
		QuestionsPerQuiz:       perQuiz,
		ComprehensiveQuestions: cfg.Questions.Comprehensive,
		ShareBaseURL:           cfg.Share.BaseURL,
		Logger:                 log,
	})

	log.Info().
		Str("storage", cfg.Storage.Driver).
		Bool("redis", redisClient != nil).
		Bool("postgres", cfg.Postgres.URL != "").
		Msg("quiz service wired")
	return service, cleanup, nil
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
