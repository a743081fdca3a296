package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"quizzy/internal/domain"
)

// AllQuestionsFile is the merged bank inside a questions directory.
const AllQuestionsFile = "all.json"

// QuestionLoader reads the question bank from JSON on disk. Path may be a
// single file holding an array of questions, or a directory: its all.json is
// used when present, otherwise every *.json file is merged and sorted with
// SortBank.
type QuestionLoader struct {
	path string
}

func NewQuestionLoader(path string) *QuestionLoader {
	return &QuestionLoader{path: path}
}

func (l *QuestionLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}
	if !info.IsDir() {
		return readFile(l.path)
	}

	all := filepath.Join(l.path, AllQuestionsFile)
	if _, err := os.Stat(all); err == nil {
		return readFile(all)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	bank, err := mergeCategoryFiles(ctx, l.path)
	if err != nil {
		return nil, err
	}
	if len(bank) == 0 {
		return nil, fmt.Errorf("%w: no questions under %s", domain.ErrBankUnavailable, l.path)
	}
	return bank, nil
}

// GenerateAll merges every category file in dir into dir/all.json, ordered
// by category and then creation time. An existing all.json is replaced.
func GenerateAll(ctx context.Context, dir string) ([]domain.Question, error) {
	bank, err := mergeCategoryFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(bank) == 0 {
		return nil, fmt.Errorf("%w: no category files under %s", domain.ErrBankUnavailable, dir)
	}
	if err := WriteBank(filepath.Join(dir, AllQuestionsFile), bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// SortBank orders bank by category, then by creation time. Ties keep their
// input order.
func SortBank(bank []domain.Question) {
	sort.SliceStable(bank, func(i, j int) bool {
		if bank[i].Category != bank[j].Category {
			return bank[i].Category < bank[j].Category
		}
		return bank[i].CreatedAt < bank[j].CreatedAt
	})
}

func mergeCategoryFiles(ctx context.Context, dir string) ([]domain.Question, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var bank []domain.Question
	for _, f := range files {
		if filepath.Base(f) == AllQuestionsFile {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := readFile(f)
		if err != nil {
			return nil, err
		}
		bank = append(bank, part...)
	}
	SortBank(bank)
	return bank, nil
}

// WriteBank writes bank as an indented all.json style file.
func WriteBank(path string, bank []domain.Question) error {
	raw, err := json.MarshalIndent(bank, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

func readFile(path string) ([]domain.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var bank []domain.Question
	if err := json.Unmarshal(raw, &bank); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return bank, nil
}
