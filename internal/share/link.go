package share

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quizzy/internal/domain"
)

// ErrUntrusted is the single outcome for every rejected share link; it
// carries no reason.
var ErrUntrusted = errors.New("untrusted share link")

// Query parameter names of a share URL.
const (
	ParamUser      = "user"
	ParamScore     = "score"
	ParamCategory  = "category"
	ParamDate      = "date"
	ParamTimestamp = "ts"
	ParamSignature = "sig"
)

const dateLayout = "2006-01-02"

var scorePattern = regexp.MustCompile(`^\d+/\d+$`)

// Claim is a signed score assertion. It is never persisted.
type Claim struct {
	UserID    string `json:"userId"`
	Score     string `json:"score"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

// NewClaim signs a score of correct/total taken on date, stamped with the
// signer's current time.
func (s *Signer) NewClaim(userID string, correct, total int, category string, date time.Time) Claim {
	claim := Claim{
		UserID:    userID,
		Score:     fmt.Sprintf("%d/%d", correct, total),
		Category:  category,
		Date:      date.UTC().Format(dateLayout),
		Timestamp: s.Now(),
	}
	claim.Signature = s.Sign(claim.UserID, claim.Score, claim.Timestamp)
	return claim
}

// Values encodes the claim as query parameters.
func (c Claim) Values() url.Values {
	v := url.Values{}
	v.Set(ParamUser, c.UserID)
	v.Set(ParamScore, c.Score)
	v.Set(ParamCategory, c.Category)
	v.Set(ParamDate, c.Date)
	v.Set(ParamTimestamp, strconv.FormatInt(c.Timestamp, 10))
	v.Set(ParamSignature, c.Signature)
	return v
}

// BuildURL appends the claim to base, replacing any existing query.
func BuildURL(base string, c Claim) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse share base url: %w", err)
	}
	u.RawQuery = c.Values().Encode()
	return u.String(), nil
}

// ParseScore splits "correct/total" and range-checks it.
func ParseScore(score string) (correct, total int, err error) {
	if !scorePattern.MatchString(score) {
		return 0, 0, fmt.Errorf("malformed score %q", score)
	}
	parts := strings.SplitN(score, "/", 2)
	if correct, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, err
	}
	if total, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, err
	}
	if total <= 0 || correct > total {
		return 0, 0, fmt.Errorf("score %q out of range", score)
	}
	return correct, total, nil
}

// Open decodes and checks a share link given as a full URL or a bare query
// string. The claim is returned only when every field is present, the score
// is well formed, the timestamp is a canonical integer, the category is known (or comprehensive), the timestamp is
// within the signer's max age and the signature matches. Any failure yields
// ErrUntrusted.
func (s *Signer) Open(raw string, knownCategories []string) (Claim, error) {
	values, err := queryOf(raw)
	if err != nil {
		return Claim{}, ErrUntrusted
	}

	claim := Claim{
		UserID:    values.Get(ParamUser),
		Score:     values.Get(ParamScore),
		Category:  values.Get(ParamCategory),
		Date:      values.Get(ParamDate),
		Signature: values.Get(ParamSignature),
	}
	rawTS := values.Get(ParamTimestamp)
	if claim.UserID == "" || claim.Score == "" || claim.Category == "" ||
		claim.Date == "" || rawTS == "" || claim.Signature == "" {
		return Claim{}, ErrUntrusted
	}

	if _, _, err := ParseScore(claim.Score); err != nil {
		return Claim{}, ErrUntrusted
	}
	if !knownCategory(claim.Category, knownCategories) {
		return Claim{}, ErrUntrusted
	}
	if _, err := time.Parse(dateLayout, claim.Date); err != nil {
		return Claim{}, ErrUntrusted
	}

	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil || strconv.FormatInt(ts, 10) != rawTS {
		return Claim{}, ErrUntrusted
	}
	claim.Timestamp = ts
	if !s.IsTimestampValid(ts, s.maxAge) {
		return Claim{}, ErrUntrusted
	}
	if !s.Verify(claim.UserID, claim.Score, claim.Timestamp, claim.Signature) {
		return Claim{}, ErrUntrusted
	}
	return claim, nil
}

func queryOf(raw string) (url.Values, error) {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		return u.Query(), nil
	}
	return url.ParseQuery(raw)
}

func knownCategory(category string, known []string) bool {
	if category == domain.ComprehensiveCategory {
		return true
	}
	for _, c := range known {
		if c == category {
			return true
		}
	}
	return false
}
