package moderation

import (
	"fmt"
	"math"
	"time"

	"github.com/comment-moderation-api/internal/models"
)

const day = 24 * time.Hour

// MaxWindowDays is the largest close or moderate threshold a time.Duration can hold
const MaxWindowDays = int(math.MaxInt64 / int64(day))

// ActionMode decides what happens to a comment the spam checker flags
type ActionMode string

const (
	// ActionAuto rejects spam outright and lets everything else through
	ActionAuto ActionMode = "auto"
	// ActionModerate keeps spam visible but marks it for review
	ActionModerate ActionMode = "moderate"
	// ActionSoftDelete marks spam for review and hides it
	ActionSoftDelete ActionMode = "soft_delete"
	// ActionDelete rejects spam and marks it removed
	ActionDelete ActionMode = "delete"
)

// ValidActionModes defines the accepted spam action modes
var ValidActionModes = map[ActionMode]bool{
	ActionAuto:       true,
	ActionModerate:   true,
	ActionSoftDelete: true,
	ActionDelete:     true,
}

// FailureMode decides what happens when the spam checker itself fails
type FailureMode string

const (
	// FailError surfaces the error to the caller
	FailError FailureMode = "error"
	// FailAllow treats the comment as not spam
	FailAllow FailureMode = "allow"
	// FailModerate holds the comment for manual review
	FailModerate FailureMode = "moderate"
)

// ValidFailureModes defines the accepted spam check failure modes
var ValidFailureModes = map[FailureMode]bool{
	FailError:    true,
	FailAllow:    true,
	FailModerate: true,
}

// Policy is the complete moderation configuration.
// A zero CloseAfterDays or ModerateAfterDays disables that window.
type Policy struct {
	CloseAfterDays    int
	ModerateAfterDays int
	BadWords          []string
	UseAkismet        bool
	AkismetAction     ActionMode
	OnSpamCheckError  FailureMode
}

// Validate checks that the policy is usable
func (p Policy) Validate() error {
	if p.CloseAfterDays < 0 {
		return fmt.Errorf("close after days must not be negative, got %d", p.CloseAfterDays)
	}
	if p.ModerateAfterDays < 0 {
		return fmt.Errorf("moderate after days must not be negative, got %d", p.ModerateAfterDays)
	}
	if p.CloseAfterDays > MaxWindowDays || p.ModerateAfterDays > MaxWindowDays {
		return fmt.Errorf("window thresholds must not exceed %d days", MaxWindowDays)
	}
	if p.UseAkismet && !ValidActionModes[p.AkismetAction] {
		return fmt.Errorf("invalid akismet action %q, must be one of: auto, moderate, soft_delete, delete", p.AkismetAction)
	}
	if p.OnSpamCheckError != "" && !ValidFailureModes[p.OnSpamCheckError] {
		return fmt.Errorf("invalid spam check failure mode %q, must be one of: error, allow, moderate", p.OnSpamCheckError)
	}
	return nil
}

// CommentsAreOpen reports whether the article still accepts comments at now.
// The close window is inclusive: an article published exactly CloseAfterDays ago is closed.
func (p Policy) CommentsAreOpen(article *models.Article, now time.Time) bool {
	if !article.EnableComments {
		return false
	}
	if p.CloseAfterDays == 0 {
		return true
	}
	age, ok := article.Age(now)
	if !ok {
		return true
	}
	return age < window(p.CloseAfterDays)
}

// CommentsAreModerated reports whether new comments on the article need review at now.
func (p Policy) CommentsAreModerated(article *models.Article, now time.Time) bool {
	if p.ModerateAfterDays == 0 {
		return false
	}
	age, ok := article.Age(now)
	if !ok {
		return false
	}
	return age >= window(p.ModerateAfterDays)
}

// window converts a day threshold to a duration, saturating instead of overflowing
func window(days int) time.Duration {
	if days >= MaxWindowDays {
		return math.MaxInt64
	}
	return time.Duration(days) * day
}
