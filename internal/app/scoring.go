package app

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"quizzy/internal/domain"
	"quizzy/internal/questions"
)

// MissingQuestionsError lists answers whose question is absent from the bank.
type MissingQuestionsError struct {
	IDs []string
}

func (e *MissingQuestionsError) Error() string {
	return "questions missing from bank: " + strings.Join(e.IDs, ", ")
}

func (e *MissingQuestionsError) Unwrap() error {
	return domain.ErrQuestionNotFound
}

// ResolveCorrectness marks every answer of a finalized session against bank
// and recounts the score. It never mutates its input. Answers referring to a
// question missing from bank stay incorrect and are reported through a
// *MissingQuestionsError; the returned session is usable either way.
func ResolveCorrectness(session domain.Session, bank []domain.Question) (domain.Session, error) {
	out := session.Clone()
	index := questions.Index(bank)

	var missing []string
	score := 0
	for i, answer := range out.Answers {
		question, ok := index[answer.QuestionID]
		if !ok {
			out.Answers[i].Correct = false
			missing = append(missing, answer.QuestionID)
			continue
		}
		correct := answer.Answered() && answer.UserAnswer == question.CorrectAnswer
		out.Answers[i].Correct = correct
		if correct {
			score++
		}
	}
	out.Score = score

	if len(missing) > 0 {
		return out, &MissingQuestionsError{IDs: missing}
	}
	return out, nil
}

// NewStats returns an empty aggregate with a zero bucket for each category and
// every difficulty.
func NewStats(categories []string) domain.UserStats {
	stats := domain.UserStats{
		ByCategory:   make(map[string]domain.CategoryStats, len(categories)),
		Difficulties: make(map[domain.Difficulty]domain.DifficultyStats, len(domain.Difficulties)),
	}
	for _, c := range categories {
		stats.ByCategory[c] = domain.CategoryStats{}
	}
	for _, d := range domain.Difficulties {
		stats.Difficulties[d] = domain.DifficultyStats{}
	}
	return stats
}

// FoldIntoStats returns stats with exactly one more resolved session applied.
// Category buckets count quizzes and keep a running average time rounded to
// whole seconds on every fold. Difficulty buckets count questions. The
// function performs no deduplication: folding the same session twice counts
// it twice.
func FoldIntoStats(stats domain.UserStats, session domain.Session, bank []domain.Question, now time.Time) domain.UserStats {
	out := stats.Clone()

	out.TotalQuizzes++
	out.TotalCorrect += session.Score
	out.TotalTime += session.TotalTime

	category := out.ByCategory[session.Category]
	previous := category.Attempted
	category.Attempted++
	category.Correct += session.Score
	category.AvgTime = math.Round((category.AvgTime*float64(previous) + float64(session.TotalTime)) / float64(category.Attempted))
	out.ByCategory[session.Category] = category

	index := questions.Index(bank)
	for _, answer := range session.Answers {
		question, ok := index[answer.QuestionID]
		if !ok || !question.Difficulty.Valid() {
			continue
		}
		bucket := out.Difficulties[question.Difficulty]
		bucket.Attempted++
		if answer.Correct {
			bucket.Correct++
		}
		out.Difficulties[question.Difficulty] = bucket
	}

	out.Streak = nextStreak(stats.Streak, stats.LastQuizDate, now)
	out.LastQuizDate = now
	return out
}

func nextStreak(streak int, last, now time.Time) int {
	if last.IsZero() {
		return 1
	}
	switch calendarDaysBetween(last.In(now.Location()), now) {
	case 0:
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

// calendarDaysBetween counts midnight boundaries from a to b using the civil
// dates in their own locations, so DST shifts never produce fractional days.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Accuracy is the rounded percentage of correct answers in session.
func Accuracy(session domain.Session) int {
	correct := 0
	for _, a := range session.Answers {
		if a.Correct {
			correct++
		}
	}
	return Percent(correct, len(session.Answers))
}

// Percent rounds part/total to a whole percentage; zero total yields 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// CategorySummary is a display row for one category bucket.
type CategorySummary struct {
	Category     string  `json:"category"`
	Label        string  `json:"label"`
	Attempted    int     `json:"attempted"`
	Correct      int     `json:"correct"`
	AvgTime      float64 `json:"avgTime"`
	AvgScore     float64 `json:"avgScore"`
	AvgTimeLabel string  `json:"avgTimeLabel"`
}

// DifficultySummary is a display row for one difficulty bucket.
type DifficultySummary struct {
	Difficulty domain.Difficulty `json:"difficulty"`
	Attempted  int               `json:"attempted"`
	Correct    int               `json:"correct"`
	Accuracy   int               `json:"accuracy"`
}

// Summary is the read model behind the stats views.
type Summary struct {
	TotalQuizzes int                 `json:"totalQuizzes"`
	TotalCorrect int                 `json:"totalCorrect"`
	TotalTime    string              `json:"totalTime"`
	Accuracy     int                 `json:"accuracy"`
	Streak       int                 `json:"streak"`
	Categories   []CategorySummary   `json:"categories"`
	Difficulties []DifficultySummary `json:"difficulties"`
}

// Summarize derives display figures from stats. Overall accuracy is computed
// from the difficulty buckets because those count questions; category
// buckets count quizzes and only yield an average score per quiz.
func Summarize(stats domain.UserStats, categories []string) Summary {
	summary := Summary{
		TotalQuizzes: stats.TotalQuizzes,
		TotalCorrect: stats.TotalCorrect,
		TotalTime:    FormatTime(stats.TotalTime),
		Streak:       stats.Streak,
	}

	seen := make(map[string]struct{}, len(categories))
	order := make([]string, 0, len(stats.ByCategory))
	for _, c := range categories {
		if _, ok := stats.ByCategory[c]; ok {
			order = append(order, c)
			seen[c] = struct{}{}
		}
	}
	extra := make([]string, 0)
	for c := range stats.ByCategory {
		if _, ok := seen[c]; !ok {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	for _, c := range order {
		bucket := stats.ByCategory[c]
		row := CategorySummary{
			Category:     c,
			Label:        questions.Label(c),
			Attempted:    bucket.Attempted,
			Correct:      bucket.Correct,
			AvgTime:      bucket.AvgTime,
			AvgTimeLabel: FormatTime(int(math.Round(bucket.AvgTime))),
		}
		if bucket.Attempted > 0 {
			row.AvgScore = float64(bucket.Correct) / float64(bucket.Attempted)
		}
		summary.Categories = append(summary.Categories, row)
	}

	var attempted, correct int
	for _, d := range domain.Difficulties {
		bucket := stats.Difficulties[d]
		attempted += bucket.Attempted
		correct += bucket.Correct
		summary.Difficulties = append(summary.Difficulties, DifficultySummary{
			Difficulty: d,
			Attempted:  bucket.Attempted,
			Correct:    bucket.Correct,
			Accuracy:   Percent(bucket.Correct, bucket.Attempted),
		})
	}
	summary.Accuracy = Percent(correct, attempted)
	return summary
}
