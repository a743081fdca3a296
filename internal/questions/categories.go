package questions

import (
	"sort"
	"strings"

	"quizzy/internal/domain"
)

// DefaultCategories is used when the bank is empty or cannot be read.
var DefaultCategories = []string{
	"event-loop",
	"closures",
	"async",
	"this",
	"coercion",
	"prototypes",
	"hoisting",
	"scope",
	"destructuring",
	"arrays",
	"objects",
}

var labels = map[string]string{
	"event-loop":    "Event Loop",
	"closures":      "Closures",
	"async":         "Async/Await",
	"this":          "This Binding",
	"coercion":      "Type Coercion",
	"prototypes":    "Prototypes",
	"hoisting":      "Hoisting",
	"scope":         "Scope",
	"destructuring": "Destructuring",
	"arrays":        "Arrays",
	"objects":       "Objects",
}

// Categories returns the sorted unique categories found in bank, or the
// defaults when bank is empty.
func Categories(bank []domain.Question) []string {
	if len(bank) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, q := range bank {
		if q.Category == "" {
			continue
		}
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}
	sort.Strings(out)
	return out
}

// Label returns the display name of a category, e.g. "event-loop" -> "Event Loop".
func Label(category string) string {
	if l, ok := labels[category]; ok {
		return l
	}
	words := strings.Split(category, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ByCategory filters bank, keeping order.
func ByCategory(bank []domain.Question, category string) []domain.Question {
	out := make([]domain.Question, 0)
	for _, q := range bank {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// ByDifficulty filters bank, keeping order.
func ByDifficulty(bank []domain.Question, difficulty domain.Difficulty) []domain.Question {
	out := make([]domain.Question, 0)
	for _, q := range bank {
		if q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out
}

// Index maps question ids to questions.
func Index(bank []domain.Question) map[string]domain.Question {
	idx := make(map[string]domain.Question, len(bank))
	for _, q := range bank {
		idx[q.ID] = q
	}
	return idx
}
