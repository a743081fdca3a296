package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quizzy/internal/domain"
	"quizzy/internal/questions"
	"quizzy/internal/share"
)

// AttemptRepository keeps the in-progress state machine of each profile (in-memory, Redis, etc).
type AttemptRepository interface {
	GetOrCreate(profile string) *QuizState
	Get(profile string) (*QuizState, bool)
	Delete(profile string)
}

// QuestionRepository supplies the question bank (from cache/backing store).
type QuestionRepository interface {
	GetBank(ctx context.Context) ([]domain.Question, error)
}

// BankInvalidator is implemented by question repositories that cache the bank.
type BankInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Store is the key/value persistence capability. Load returns
// domain.ErrNotFound for absent keys.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// DefaultComprehensiveQuestions bounds a mixed quiz for one difficulty.
const DefaultComprehensiveQuestions = 20

// Options tunes a QuizService. Zero values take defaults.
type Options struct {
	QuestionsPerQuiz       int
	ComprehensiveQuestions int
	ShareBaseURL           string
	Now                    func() time.Time
	Rand                   *rand.Rand
	Logger                 zerolog.Logger
}

// QuizService contains the quiz use cases of a profile: starting attempts,
// live feedback, finalizing into history and stats, and share links.
type QuizService struct {
	attempts  AttemptRepository
	questions QuestionRepository
	store     Store
	signer    *share.Signer

	perQuiz       int
	comprehensive int
	shareBase     string
	now           func() time.Time
	log           zerolog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand

	// locks serializes finalize-and-persist per profile.
	locks sync.Map
}

func NewQuizService(attempts AttemptRepository, bank QuestionRepository, store Store, signer *share.Signer, opts Options) *QuizService {
	s := &QuizService{
		attempts:      attempts,
		questions:     bank,
		store:         store,
		signer:        signer,
		perQuiz:       opts.QuestionsPerQuiz,
		comprehensive: opts.ComprehensiveQuestions,
		shareBase:     opts.ShareBaseURL,
		now:           opts.Now,
		rnd:           opts.Rand,
		log:           opts.Logger.With().Str("component", "quiz_service").Logger(),
	}
	if s.perQuiz <= 0 {
		s.perQuiz = DefaultQuestionsPerQuiz
	}
	if s.comprehensive <= 0 {
		s.comprehensive = DefaultComprehensiveQuestions
	}
	if s.shareBase == "" {
		s.shareBase = "http://localhost:8080/share"
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Bank returns the question bank for profile. A cached copy tagged with the
// current data version is served first; otherwise the supply is asked and the
// result cached. When the supply fails, any cached copy is used instead.
func (s *QuizService) Bank(ctx context.Context, profile string) ([]domain.Question, error) {
	cached, cachedVersion := s.cachedBank(ctx, profile)
	if len(cached) > 0 && cachedVersion == domain.DataVersion {
		return cached, nil
	}

	bank, err := s.questions.GetBank(ctx)
	if err != nil {
		if len(cached) > 0 {
			s.log.Warn().Err(err).Str("profile", profile).Msg("using cached questions, supply unavailable")
			return cached, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}
	s.cacheBank(ctx, profile, bank)
	return bank, nil
}

// RefreshBank bypasses the cached copy and reloads the supply. Repositories
// that keep their own cache are invalidated first.
func (s *QuizService) RefreshBank(ctx context.Context, profile string) ([]domain.Question, error) {
	if inv, ok := s.questions.(BankInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			return nil, fmt.Errorf("invalidate question cache: %w", err)
		}
	}
	bank, err := s.questions.GetBank(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}
	s.cacheBank(ctx, profile, bank)
	return bank, nil
}

// Categories lists the categories found in the bank, or the defaults.
func (s *QuizService) Categories(ctx context.Context, profile string) []string {
	bank, err := s.Bank(ctx, profile)
	if err != nil {
		s.log.Warn().Err(err).Msg("falling back to default categories")
		return questions.Categories(nil)
	}
	return questions.Categories(bank)
}

// StartQuiz begins a category quiz of up to QuestionsPerQuiz random questions.
func (s *QuizService) StartQuiz(ctx context.Context, profile, category string) (domain.Session, error) {
	bank, err := s.Bank(ctx, profile)
	if err != nil {
		return domain.Session{}, err
	}
	pool := questions.ByCategory(bank, category)
	if len(pool) == 0 {
		return domain.Session{}, fmt.Errorf("%w: category %q", domain.ErrCategoryUnavailable, category)
	}
	return s.begin(profile, s.pick(pool, s.perQuiz), category)
}

// StartComprehensive begins a mixed quiz over every category for one difficulty.
func (s *QuizService) StartComprehensive(ctx context.Context, profile string, difficulty domain.Difficulty) (domain.Session, error) {
	if !difficulty.Valid() {
		return domain.Session{}, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}
	bank, err := s.Bank(ctx, profile)
	if err != nil {
		return domain.Session{}, err
	}
	pool := questions.ByDifficulty(bank, difficulty)
	if len(pool) == 0 {
		return domain.Session{}, fmt.Errorf("%w: difficulty %q", domain.ErrCategoryUnavailable, difficulty)
	}
	return s.begin(profile, s.pick(pool, s.comprehensive), domain.ComprehensiveCategory)
}

func (s *QuizService) begin(profile string, selected []domain.Question, category string) (domain.Session, error) {
	state := s.attempts.GetOrCreate(profile)
	state.Reset()
	session, err := state.Start(selected, category)
	if err != nil {
		return domain.Session{}, err
	}
	s.log.Info().Str("profile", profile).Str("category", category).Int("questions", len(session.QuestionIDs)).Msg("quiz started")
	return session, nil
}

// pick shuffles a copy of pool and keeps at most n questions.
func (s *QuizService) pick(pool []domain.Question, n int) []domain.Question {
	shuffled := append([]domain.Question(nil), pool...)
	s.rndMu.Lock()
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.rndMu.Unlock()
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// Attempt returns the state machine of profile.
func (s *QuizService) Attempt(profile string) (*QuizState, error) {
	state, ok := s.attempts.Get(profile)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state, nil
}

// Feedback is shown right after an answer is selected.
type Feedback struct {
	QuestionID    string `json:"questionId"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// SelectAnswer records a choice and returns live feedback for it.
func (s *QuizService) SelectAnswer(ctx context.Context, profile, questionID string, option int) (Feedback, error) {
	state, err := s.Attempt(profile)
	if err != nil {
		return Feedback{}, err
	}
	bank, err := s.Bank(ctx, profile)
	if err != nil {
		return Feedback{}, err
	}
	question, ok := questions.Index(bank)[questionID]
	if !ok {
		return Feedback{}, domain.ErrQuestionNotFound
	}
	if option >= len(question.Options) {
		return Feedback{}, domain.ErrInvalidOption
	}
	if err := state.SelectAnswer(questionID, option); err != nil {
		return Feedback{}, err
	}
	return Feedback{
		QuestionID:    questionID,
		Selected:      option,
		Correct:       option == question.CorrectAnswer,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}, nil
}

// PublicQuestion is a question without its answer.
type PublicQuestion struct {
	ID         string              `json:"id"`
	Category   string              `json:"category"`
	Difficulty domain.Difficulty   `json:"difficulty"`
	Type       domain.QuestionType `json:"type"`
	Title      string              `json:"title"`
	Prompt     string              `json:"question"`
	Code       string              `json:"code,omitempty"`
	Options    []string            `json:"options"`
	Tags       []string            `json:"tags"`
}

func publicQuestion(q domain.Question) *PublicQuestion {
	return &PublicQuestion{
		ID:         q.ID,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Type:       q.Type,
		Title:      q.Title,
		Prompt:     q.Prompt,
		Code:       q.Code,
		Options:    append([]string(nil), q.Options...),
		Tags:       append([]string(nil), q.Tags...),
	}
}

// View is what a client renders for the current attempt.
type View struct {
	Status    string          `json:"status"`
	SessionID string          `json:"sessionId,omitempty"`
	Category  string          `json:"category,omitempty"`
	Cursor    int             `json:"cursor"`
	Total     int             `json:"total"`
	Question  *PublicQuestion `json:"question,omitempty"`
	Selected  map[string]int  `json:"selected"`
	Elapsed   int             `json:"elapsed"`
}

// View renders the attempt of profile.
func (s *QuizService) View(ctx context.Context, profile string) (View, error) {
	state, err := s.Attempt(profile)
	if err != nil {
		return View{}, err
	}
	snap := state.Snapshot()
	view := View{
		Status:   snap.Status.String(),
		Cursor:   snap.Cursor,
		Selected: snap.Selected,
		Elapsed:  snap.Elapsed,
	}
	if snap.Session == nil {
		return view, nil
	}
	view.SessionID = snap.Session.ID
	view.Category = snap.Session.Category
	view.Total = len(snap.Session.QuestionIDs)

	bank, err := s.Bank(ctx, profile)
	if err != nil {
		return view, err
	}
	if q, ok := questions.Index(bank)[snap.CurrentQuestionID()]; ok {
		view.Question = publicQuestion(q)
	}
	return view, nil
}

// FinishResult is the outcome of finalizing an attempt.
type FinishResult struct {
	Session   domain.Session   `json:"session"`
	Accuracy  int              `json:"accuracy"`
	Stats     domain.UserStats `json:"stats"`
	ShareURL  string           `json:"shareUrl,omitempty"`
	Persisted bool             `json:"persisted"`
}

// Finish finalizes the attempt of profile, resolves its score, appends it to
// the history and folds it into the stats. The stats read-modify-write runs
// under a per-profile lock. Storage failures are logged and reported through
// Persisted; they never fail the call.
func (s *QuizService) Finish(ctx context.Context, profile string) (FinishResult, error) {
	state, err := s.Attempt(profile)
	if err != nil {
		return FinishResult{}, err
	}
	// Load the bank before finalizing so a missing bank leaves the attempt active.
	bank, err := s.Bank(ctx, profile)
	if err != nil {
		return FinishResult{}, err
	}

	lock := s.profileLock(profile)
	lock.Lock()
	defer lock.Unlock()

	finished, err := state.Finish()
	if err != nil {
		return FinishResult{}, err
	}

	resolved, err := ResolveCorrectness(finished, bank)
	if err != nil {
		s.log.Warn().Err(err).Str("session", resolved.ID).Msg("scored with missing questions")
	}

	result := FinishResult{Session: resolved, Accuracy: Accuracy(resolved), Persisted: true}
	if err := s.appendHistory(ctx, profile, resolved); err != nil {
		s.log.Error().Err(err).Str("profile", profile).Msg("save session history")
		result.Persisted = false
	}

	stats := s.loadStats(ctx, profile, bank)
	result.Stats = FoldIntoStats(stats, resolved, bank, s.now())
	if err := s.saveJSON(ctx, domain.StorageKey(profile, domain.KeyStats), result.Stats); err != nil {
		s.log.Error().Err(err).Str("profile", profile).Msg("save stats")
		result.Persisted = false
	}

	if link, err := s.ShareURL(ctx, profile, resolved); err != nil {
		s.log.Warn().Err(err).Msg("build share url")
	} else {
		result.ShareURL = link
	}

	s.log.Info().
		Str("profile", profile).
		Str("session", resolved.ID).
		Int("score", resolved.Score).
		Int("total", len(resolved.Answers)).
		Int("seconds", resolved.TotalTime).
		Msg("quiz finished")
	return result, nil
}

func (s *QuizService) profileLock(profile string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(profile, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Stats returns the cumulative stats of profile, initializing them if absent.
func (s *QuizService) Stats(ctx context.Context, profile string) domain.UserStats {
	bank, err := s.Bank(ctx, profile)
	if err != nil {
		bank = nil
	}
	return s.loadStats(ctx, profile, bank)
}

func (s *QuizService) loadStats(ctx context.Context, profile string, bank []domain.Question) domain.UserStats {
	key := domain.StorageKey(profile, domain.KeyStats)
	var stats domain.UserStats
	err := s.loadJSON(ctx, key, &stats)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		stats = NewStats(questions.Categories(bank))
		if err := s.saveJSON(ctx, key, stats); err != nil {
			s.log.Warn().Err(err).Msg("save initial stats")
		}
		return stats
	case err != nil:
		s.log.Error().Err(err).Str("profile", profile).Msg("read stats, using defaults")
		return NewStats(questions.Categories(bank))
	}
	// Clone fills any bucket map the stored record lacks.
	return stats.Clone()
}

// History returns every finalized session of profile, oldest first.
func (s *QuizService) History(ctx context.Context, profile string) []domain.Session {
	var sessions []domain.Session
	if err := s.loadJSON(ctx, domain.StorageKey(profile, domain.KeySessions), &sessions); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Str("profile", profile).Msg("read sessions")
		}
		return []domain.Session{}
	}
	return sessions
}

// HistoryByCategory filters History.
func (s *QuizService) HistoryByCategory(ctx context.Context, profile, category string) []domain.Session {
	out := make([]domain.Session, 0)
	for _, session := range s.History(ctx, profile) {
		if session.Category == category {
			out = append(out, session)
		}
	}
	return out
}

func (s *QuizService) appendHistory(ctx context.Context, profile string, session domain.Session) error {
	key := domain.StorageKey(profile, domain.KeySessions)
	var sessions []domain.Session
	if err := s.loadJSON(ctx, key, &sessions); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	sessions = append(sessions, session)
	return s.saveJSON(ctx, key, sessions)
}

// ClearAll removes every key owned by profile and drops its attempt.
func (s *QuizService) ClearAll(ctx context.Context, profile string) error {
	var errs []error
	for _, key := range domain.AllKeys {
		if err := s.store.Delete(ctx, domain.StorageKey(profile, key)); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	s.attempts.Delete(profile)
	if err := errors.Join(errs...); err != nil {
		s.log.Error().Err(err).Str("profile", profile).Msg("clear data")
		return err
	}
	return nil
}

// User returns the profile owner, creating and saving one on first use.
func (s *QuizService) User(ctx context.Context, profile string) domain.User {
	key := domain.StorageKey(profile, domain.KeyUser)
	var user domain.User
	err := s.loadJSON(ctx, key, &user)
	if err == nil && user.ID != "" {
		return user
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.Error().Err(err).Msg("read user")
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	user = domain.User{
		ID:        id,
		Name:      "User" + strings.ToUpper(id[:4]),
		CreatedAt: s.now(),
	}
	if err := s.saveJSON(ctx, key, user); err != nil {
		s.log.Error().Err(err).Msg("save user")
	}
	return user
}

// ShareURL signs the score of a resolved session into a share link.
func (s *QuizService) ShareURL(ctx context.Context, profile string, session domain.Session) (string, error) {
	user := s.User(ctx, profile)
	claim := s.signer.NewClaim(user.ID, session.Score, len(session.Answers), session.Category, session.CreatedAt)
	return share.BuildURL(s.shareBase, claim)
}

// OpenShareLink verifies a share link against the categories known to profile.
func (s *QuizService) OpenShareLink(ctx context.Context, profile, raw string) (share.Claim, error) {
	return s.signer.Open(raw, s.Categories(ctx, profile))
}

func (s *QuizService) cachedBank(ctx context.Context, profile string) ([]domain.Question, string) {
	var bank []domain.Question
	if err := s.loadJSON(ctx, domain.StorageKey(profile, domain.KeyQuestions), &bank); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Msg("read cached questions")
		}
		return nil, ""
	}
	version, err := s.store.Load(ctx, domain.StorageKey(profile, domain.KeyDataVersion))
	if err != nil {
		return bank, ""
	}
	return bank, string(version)
}

func (s *QuizService) cacheBank(ctx context.Context, profile string, bank []domain.Question) {
	if err := s.saveJSON(ctx, domain.StorageKey(profile, domain.KeyQuestions), bank); err != nil {
		s.log.Warn().Err(err).Msg("cache questions")
		return
	}
	if err := s.store.Save(ctx, domain.StorageKey(profile, domain.KeyDataVersion), []byte(domain.DataVersion)); err != nil {
		s.log.Warn().Err(err).Msg("save data version")
	}
}

func (s *QuizService) loadJSON(ctx context.Context, key string, v any) error {
	raw, err := s.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *QuizService) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Save(ctx, key, raw)
}
