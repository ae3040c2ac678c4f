package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/comment-moderation-api/internal/models"
	"github.com/rs/zerolog"
)

// Moderator applies a fixed Policy to comment submissions, with logging and metrics
type Moderator struct {
	policy Policy
	words  *WordFilter
	spam   SpamChecker
	log    zerolog.Logger
	now    func() time.Time
}

// NewModerator validates the policy and builds a moderator.
// spam may be nil when the policy does not use Akismet.
func NewModerator(policy Policy, spam SpamChecker, log zerolog.Logger) (*Moderator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.UseAkismet && spam == nil {
		return nil, errors.New("akismet is enabled but no spam checker was given")
	}

	m := &Moderator{
		policy: policy,
		words:  NewWordFilter(policy.BadWords),
		log:    log.With().Str("component", "moderator").Logger(),
		now:    time.Now,
	}
	if spam != nil {
		m.spam = &instrumentedChecker{inner: spam}
	}

	m.log.Info().
		Int("close_after_days", policy.CloseAfterDays).
		Int("moderate_after_days", policy.ModerateAfterDays).
		Int("bad_words", m.words.Len()).
		Bool("akismet", policy.UseAkismet).
		Str("akismet_action", string(policy.AkismetAction)).
		Msg("Moderator configured")

	return m, nil
}

// Policy returns the policy the moderator was built with
func (m *Moderator) Policy() Policy {
	return m.policy
}

// CommentsAreOpen reports whether the article accepts comments right now
func (m *Moderator) CommentsAreOpen(article *models.Article) bool {
	return m.policy.CommentsAreOpen(article, m.now())
}

// CommentsAreModerated reports whether new comments on the article need review right now
func (m *Moderator) CommentsAreModerated(article *models.Article) bool {
	return m.policy.CommentsAreModerated(article, m.now())
}

// Moderate decides what to do with a submission. in.Now defaults to the current time.
func (m *Moderator) Moderate(ctx context.Context, in Input) (Result, error) {
	if in.Now.IsZero() {
		in.Now = m.now()
	}

	res, err := decide(ctx, m.policy, m.words, m.spam, in)
	if err != nil {
		m.log.Error().Err(err).Msg("Moderation failed")
		decisionCount.WithLabelValues("error", ReasonSpamCheckFailed).Inc()
		return res, err
	}
	if res.SpamErr != nil {
		m.log.Warn().Err(res.SpamErr).
			Str("fallback", string(m.policy.OnSpamCheckError)).
			Msg("Spam check failed, applying fallback")
	}

	decisionCount.WithLabelValues(string(res.Decision), res.Reason).Inc()
	m.log.Debug().
		Str("article_id", in.Article.ID).
		Str("user_name", in.Comment.UserName).
		Str("decision", string(res.Decision)).
		Str("reason", res.Reason).
		Str("detail", res.Detail).
		Str("spam_status", string(res.SpamStatus)).
		Msg("Comment moderated")

	return res, nil
}

// instrumentedChecker records spam check metrics around another checker
type instrumentedChecker struct {
	inner SpamChecker
}

func (c *instrumentedChecker) CheckComment(ctx context.Context, check SpamCheck) (SpamStatus, error) {
	start := time.Now()
	status, err := c.inner.CheckComment(ctx, check)
	spamCheckDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		spamCheckCount.WithLabelValues(string(SpamCheckFailed)).Inc()
		return status, err
	}
	spamCheckCount.WithLabelValues(string(status)).Inc()
	return status, nil
}
