package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"quizzy/internal/domain"
)

// Status is the lifecycle state of a QuizState.
type Status int

const (
	StatusUninitialized Status = iota
	StatusActive
	StatusFinalized
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFinalized:
		return "finalized"
	default:
		return "uninitialized"
	}
}

// DefaultQuestionsPerQuiz bounds a normal category quiz.
const DefaultQuestionsPerQuiz = 10

// QuizState tracks one quiz attempt: question order, cursor, selected answers
// and elapsed time. A finalized session is never reopened; Start always builds
// a fresh one.
type QuizState struct {
	now     func() time.Time
	perQuiz int

	mu        sync.RWMutex
	status    Status
	session   *domain.Session
	cursor    int
	selected  map[string]int
	startedAt time.Time
	elapsed   int

	// dwell accumulates time spent on each question while the cursor rests on it.
	dwell       map[string]time.Duration
	cursorSince time.Time
}

// NewQuizState returns an uninitialized state machine that limits category
// quizzes to perQuiz questions.
func NewQuizState(perQuiz int) *QuizState {
	return NewQuizStateWithClock(perQuiz, time.Now)
}

// NewQuizStateWithClock allows deterministic timing in tests.
func NewQuizStateWithClock(perQuiz int, now func() time.Time) *QuizState {
	if perQuiz <= 0 {
		perQuiz = DefaultQuestionsPerQuiz
	}
	return &QuizState{
		now:      now,
		perQuiz:  perQuiz,
		selected: make(map[string]int),
		dwell:    make(map[string]time.Duration),
	}
}

// Start begins a new attempt over questions. Any existing session is reset
// first. The comprehensive category keeps every supplied question; other
// categories keep at most perQuiz, in the order supplied.
func (q *QuizState) Start(questions []domain.Question, category string) (domain.Session, error) {
	if len(questions) == 0 {
		return domain.Session{}, domain.ErrNoQuestions
	}

	limit := len(questions)
	if category != domain.ComprehensiveCategory && limit > q.perQuiz {
		limit = q.perQuiz
	}
	ids := make([]string, 0, limit)
	for _, question := range questions[:limit] {
		ids = append(ids, question.ID)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.resetLocked()
	now := q.now()
	q.session = &domain.Session{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		Category:    category,
		QuestionIDs: ids,
		Answers:     []domain.Answer{},
	}
	q.status = StatusActive
	q.startedAt = now
	q.cursorSince = now
	return q.session.Clone(), nil
}

// SelectAnswer records the option chosen for questionID. Later selections for
// the same question overwrite earlier ones.
func (q *QuizState) SelectAnswer(questionID string, option int) error {
	if option < 0 {
		return domain.ErrInvalidOption
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.status != StatusActive {
		return domain.ErrSessionNotActive
	}
	if !q.containsLocked(questionID) {
		return domain.ErrQuestionNotInSession
	}
	q.selected[questionID] = option
	return nil
}

// NextQuestion moves the cursor forward, stopping at the last question.
func (q *QuizState) NextQuestion() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session != nil && q.cursor < len(q.session.QuestionIDs)-1 {
		q.moveLocked(q.cursor + 1)
	}
	return q.cursor
}

// PreviousQuestion moves the cursor back, stopping at the first question.
func (q *QuizState) PreviousQuestion() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session != nil && q.cursor > 0 {
		q.moveLocked(q.cursor - 1)
	}
	return q.cursor
}

// GoToQuestion jumps to index and reports whether it was in range.
func (q *QuizState) GoToQuestion(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session == nil || index < 0 || index > len(q.session.QuestionIDs)-1 {
		return false
	}
	q.moveLocked(index)
	return true
}

// Tick samples the clock and updates the elapsed seconds. Ticks outside the
// active state are ignored.
func (q *QuizState) Tick() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tickLocked()
	return q.elapsed
}

// Finish finalizes the active session. Each question gets exactly one answer
// in question order; unanswered questions carry domain.UnansweredOption.
// Correctness and score are left for ResolveCorrectness. A second call
// returns the already finalized session with domain.ErrSessionNotActive.
func (q *QuizState) Finish() (domain.Session, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.status {
	case StatusFinalized:
		return q.session.Clone(), domain.ErrSessionNotActive
	case StatusUninitialized:
		return domain.Session{}, domain.ErrSessionNotActive
	}

	q.tickLocked()
	q.accrueDwellLocked()

	answers := make([]domain.Answer, 0, len(q.session.QuestionIDs))
	for _, id := range q.session.QuestionIDs {
		option, ok := q.selected[id]
		if !ok {
			option = domain.UnansweredOption
		}
		answers = append(answers, domain.Answer{
			QuestionID: id,
			UserAnswer: option,
			TimeSpent:  int(q.dwell[id] / time.Second),
		})
	}
	q.session.Answers = answers
	q.session.Score = 0
	q.session.TotalTime = q.elapsed
	q.status = StatusFinalized
	return q.session.Clone(), nil
}

// Reset discards the session and all in-progress state.
func (q *QuizState) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetLocked()
}

// Snapshot is a read-only view of the state machine.
type Snapshot struct {
	Status   Status
	Session  *domain.Session
	Cursor   int
	Selected map[string]int
	Elapsed  int
}

// CurrentQuestionID returns the id under the cursor, or "" without a session.
func (s Snapshot) CurrentQuestionID() string {
	if s.Session == nil || s.Cursor >= len(s.Session.QuestionIDs) {
		return ""
	}
	return s.Session.QuestionIDs[s.Cursor]
}

// Snapshot copies the current state.
func (q *QuizState) Snapshot() Snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()

	snap := Snapshot{
		Status:   q.status,
		Cursor:   q.cursor,
		Elapsed:  q.elapsed,
		Selected: make(map[string]int, len(q.selected)),
	}
	for k, v := range q.selected {
		snap.Selected[k] = v
	}
	if q.session != nil {
		s := q.session.Clone()
		snap.Session = &s
	}
	return snap
}

// Status reports the lifecycle state.
func (q *QuizState) Status() Status {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.status
}

func (q *QuizState) resetLocked() {
	q.status = StatusUninitialized
	q.session = nil
	q.cursor = 0
	q.selected = make(map[string]int)
	q.dwell = make(map[string]time.Duration)
	q.startedAt = time.Time{}
	q.cursorSince = time.Time{}
	q.elapsed = 0
}

func (q *QuizState) tickLocked() {
	if q.status != StatusActive {
		return
	}
	elapsed := int(q.now().Sub(q.startedAt) / time.Second)
	// A clock stepping backwards must not rewind the timer.
	if elapsed > q.elapsed {
		q.elapsed = elapsed
	}
}

func (q *QuizState) moveLocked(index int) {
	q.accrueDwellLocked()
	q.cursor = index
}

func (q *QuizState) accrueDwellLocked() {
	if q.status != StatusActive {
		return
	}
	now := q.now()
	if d := now.Sub(q.cursorSince); d > 0 {
		q.dwell[q.session.QuestionIDs[q.cursor]] += d
	}
	q.cursorSince = now
}

func (q *QuizState) containsLocked(questionID string) bool {
	for _, id := range q.session.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}
