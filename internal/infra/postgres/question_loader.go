package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizzy/internal/domain"
)

// QuestionLoader loads question JSONB rows from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var bank []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		bank = append(bank, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(bank) == 0 {
		return nil, domain.ErrBankUnavailable
	}
	return bank, nil
}

// SaveBank upserts every question in one batch.
func (l *QuestionLoader) SaveBank(ctx context.Context, bank []domain.Question) error {
	batch := &pgx.Batch{}
	for _, q := range bank {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		batch.Queue(
			`INSERT INTO questions (id, category, difficulty, data) VALUES ($1, $2, $3, $4::jsonb)
			 ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, difficulty = EXCLUDED.difficulty, data = EXCLUDED.data`,
			q.ID, q.Category, string(q.Difficulty), string(raw),
		)
	}

	results := l.pool.SendBatch(ctx, batch)
	defer results.Close()
	for _, q := range bank {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save question %s: %w", q.ID, err)
		}
	}
	return nil
}
