package questions

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"quizzy/internal/domain"
)

var validate = newValidator()

func newValidator() *govalidator.Validate {
	v := govalidator.New()
	// Report json field names so messages match the question files.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Problem describes one validation failure of a question bank.
type Problem struct {
	Index      int    `json:"index"`
	QuestionID string `json:"questionId,omitempty"`
	Message    string `json:"message"`
}

func (p Problem) String() string {
	if p.Index < 0 {
		return p.Message
	}
	return fmt.Sprintf("[%d] %s", p.Index, p.Message)
}

// Validate checks every question in bank and returns all problems found.
// knownCategories may be nil, in which case category membership is not checked.
func Validate(bank []domain.Question, knownCategories []string) []Problem {
	var problems []Problem
	if len(bank) == 0 {
		return []Problem{{Index: -1, Message: "question bank is empty"}}
	}

	known := make(map[string]struct{}, len(knownCategories))
	for _, c := range knownCategories {
		known[c] = struct{}{}
	}

	for i, q := range bank {
		add := func(format string, args ...any) {
			problems = append(problems, Problem{Index: i, QuestionID: q.ID, Message: fmt.Sprintf(format, args...)})
		}

		if err := validate.Struct(q); err != nil {
			var ve govalidator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					add("field '%s' failed '%s' (%s)", fe.Field(), fe.Tag(), fe.Param())
				}
			} else {
				add("%v", err)
			}
		}

		if len(known) > 0 && q.Category != "" {
			if _, ok := known[q.Category]; !ok {
				add("invalid category '%s'", q.Category)
			}
		}
		if q.Type == domain.TypeCodeOutput && q.Code == "" {
			add("'code-output' type requires 'code' field")
		}
	}

	counts := make(map[string]int)
	for _, q := range bank {
		if q.ID != "" {
			counts[q.ID]++
		}
	}
	var dups []string
	for id, n := range counts {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		problems = append(problems, Problem{Index: -1, Message: "duplicate question ids: " + strings.Join(dups, ", ")})
	}
	return problems
}
