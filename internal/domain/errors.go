package domain

import "errors"

var (
	// ErrNoQuestions is returned when a quiz is started without questions.
	ErrNoQuestions = errors.New("quiz requires at least one question")
	// ErrSessionNotFound is returned when a profile has no quiz session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned for actions that need an active session.
	ErrSessionNotActive = errors.New("quiz session is not active")
	// ErrQuestionNotInSession indicates an answer for a question the session does not contain.
	ErrQuestionNotInSession = errors.New("question is not part of the session")
	// ErrInvalidOption indicates a negative option index.
	ErrInvalidOption = errors.New("invalid option index")
	// ErrQuestionNotFound indicates a question id is missing from the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCategoryUnavailable is returned when no questions match the requested category or difficulty.
	ErrCategoryUnavailable = errors.New("no questions available for selection")
	// ErrInvalidDifficulty is returned for an unknown difficulty level.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrNotFound is returned by stores when a key is absent.
	ErrNotFound = errors.New("key not found")
	// ErrBankUnavailable indicates neither the supply nor the cache could provide questions.
	ErrBankUnavailable = errors.New("question bank unavailable")
)
