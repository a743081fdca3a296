package domain

import "time"

// Difficulty grades a question. The set is closed.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType describes how a question is presented.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeCodeOutput     QuestionType = "code-output"
	TypeFillGap        QuestionType = "fill-gap"
)

// ComprehensiveCategory is the pseudo-category used for mixed quizzes across categories.
const ComprehensiveCategory = "comprehensive"

// UnansweredOption marks a question the user never answered.
const UnansweredOption = -1

// Question is an immutable content unit owned by the question supply.
type Question struct {
	ID            string       `json:"id" validate:"required"`
	Category      string       `json:"category" validate:"required"`
	Difficulty    Difficulty   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Type          QuestionType `json:"type" validate:"required,oneof=multiple-choice code-output fill-gap"`
	Title         string       `json:"title" validate:"required"`
	Prompt        string       `json:"question" validate:"required"`
	Code          string       `json:"code,omitempty"`
	Options       []string     `json:"options" validate:"len=4"`
	CorrectAnswer int          `json:"correctAnswer" validate:"min=0,max=3"`
	Explanation   string       `json:"explanation" validate:"required"`
	Tags          []string     `json:"tags" validate:"required"`
	CreatedAt     int64        `json:"created_at" validate:"required"`
	Author        string       `json:"author,omitempty"`
}

// Answer is the finalized record for one question of a session.
type Answer struct {
	QuestionID string `json:"questionId"`
	UserAnswer int    `json:"userAnswer"`
	Correct    bool   `json:"correct"`
	TimeSpent  int    `json:"timeSpent"` // seconds
}

// Answered reports whether the user picked an option for the question.
func (a Answer) Answered() bool {
	return a.UserAnswer != UnansweredOption
}

// Session is one quiz attempt. QuestionIDs never change after creation; Answers
// holds one entry per question id, in the same order, once the session is finalized.
type Session struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"date"`
	Category    string    `json:"category"`
	QuestionIDs []string  `json:"questions"`
	Answers     []Answer  `json:"answers"`
	Score       int       `json:"score"`
	TotalTime   int       `json:"totalTime"` // seconds
}

// Clone returns a deep copy so callers can never mutate shared slices.
func (s Session) Clone() Session {
	out := s
	out.QuestionIDs = append([]string(nil), s.QuestionIDs...)
	if s.Answers != nil {
		out.Answers = append([]Answer(nil), s.Answers...)
	}
	return out
}

// CategoryStats accumulates per-category results. Attempted counts quizzes.
type CategoryStats struct {
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	AvgTime   float64 `json:"avgTime"`
}

// DifficultyStats accumulates per-difficulty results. Attempted counts questions.
type DifficultyStats struct {
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
}

// UserStats is the cumulative aggregate for one profile.
type UserStats struct {
	TotalQuizzes int                            `json:"totalQuizzes"`
	TotalCorrect int                            `json:"totalCorrect"`
	TotalTime    int                            `json:"totalTime"`
	ByCategory   map[string]CategoryStats       `json:"byCategory"`
	Difficulties map[Difficulty]DifficultyStats `json:"difficulties"`
	Streak       int                            `json:"streak"`
	LastQuizDate time.Time                      `json:"lastQuizDate"`
}

// Clone deep-copies the bucket maps.
func (s UserStats) Clone() UserStats {
	out := s
	out.ByCategory = make(map[string]CategoryStats, len(s.ByCategory))
	for k, v := range s.ByCategory {
		out.ByCategory[k] = v
	}
	out.Difficulties = make(map[Difficulty]DifficultyStats, len(Difficulties))
	for _, d := range Difficulties {
		out.Difficulties[d] = s.Difficulties[d]
	}
	return out
}

// User identifies the local profile owner on share links.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
