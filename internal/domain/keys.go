package domain

// Storage keys, namespaced per profile.
const (
	KeySessions    = "js_quiz_sessions"
	KeyStats       = "js_quiz_stats"
	KeyQuestions   = "js_quiz_questions"
	KeyDataVersion = "js_quiz_data_version"
	KeyUser        = "js_quiz_user"
)

// AllKeys lists every key a profile may own.
var AllKeys = []string{KeySessions, KeyStats, KeyQuestions, KeyDataVersion, KeyUser}

// DataVersion tags the cached copy of the question bank.
const DataVersion = "1.0.1"

// StorageKey scopes key to a profile.
func StorageKey(profile, key string) string {
	if profile == "" {
		return key
	}
	return profile + ":" + key
}
