package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	status moderation.SpamStatus
	err    error
	calls  int
	last   moderation.SpamCheck
}

func (f *fakeChecker) CheckComment(ctx context.Context, check moderation.SpamCheck) (moderation.SpamStatus, error) {
	f.calls++
	f.last = check
	return f.status, f.err
}

func newInput(body string) moderation.Input {
	return moderation.Input{
		Comment: &models.Comment{ArticleID: "article-1", UserName: "viagra-test-123", UserEmail: "test@example.com", Body: body},
		Article: publishedAgo(1),
		Request: models.RequestMeta{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0", Permalink: "https://example.com/a/1"},
		Now:     testNow,
	}
}

func akismetPolicy(action moderation.ActionMode) moderation.Policy {
	return moderation.Policy{UseAkismet: true, AkismetAction: action}
}

func TestDecide_BadWords(t *testing.T) {
	ctx := context.Background()
	policy := moderation.Policy{BadWords: []string{"viagra"}}

	res, err := moderation.Decide(ctx, policy, nil, newInput("Testing:viagra!!"))
	require.NoError(t, err)
	assert.False(t, res.Allowed, "bad_words should reject")
	assert.Equal(t, models.DecisionReject, res.Decision)
	assert.Equal(t, moderation.ReasonBadWord, res.Reason)
	assert.Equal(t, "viagra", res.Detail)

	res, err = moderation.Decide(ctx, policy, nil, newInput("Just normal words"))
	require.NoError(t, err)
	assert.True(t, res.Allowed, "bad_words should not trigger")
	assert.False(t, res.Moderated)
}

func TestDecide_BadWordsBeatSpamCheck(t *testing.T) {
	verdicts := []moderation.SpamStatus{moderation.SpamNotSpam, moderation.SpamProbable, moderation.SpamDefinite}
	actions := []moderation.ActionMode{moderation.ActionAuto, moderation.ActionModerate, moderation.ActionSoftDelete, moderation.ActionDelete}

	for _, action := range actions {
		for _, verdict := range verdicts {
			checker := &fakeChecker{status: verdict}
			policy := akismetPolicy(action)
			policy.BadWords = []string{"Viagra"}

			res, err := moderation.Decide(context.Background(), policy, checker, newInput("buy VIAGRA now"))
			require.NoError(t, err)
			assert.Equal(t, models.DecisionReject, res.Decision, "action=%s verdict=%s", action, verdict)
			assert.False(t, res.Allowed)
			assert.Zero(t, checker.calls, "spam checker should not be called after a bad word match")
		}
	}
}

func TestDecide_NoAkismet(t *testing.T) {
	checker := &fakeChecker{status: moderation.SpamDefinite}
	policy := moderation.Policy{AkismetAction: moderation.ActionDelete}

	res, err := moderation.Decide(context.Background(), policy, checker, newInput("Hello world"))
	require.NoError(t, err)
	assert.True(t, res.Allowed, "no akismet, comment should be allowed")
	assert.False(t, res.Moderated, "no akismet, comment should not be moderated")
	assert.False(t, res.Removed)
	assert.Equal(t, models.DecisionAllow, res.Decision)
	assert.Equal(t, moderation.SpamUnchecked, res.SpamStatus)
	assert.Zero(t, checker.calls)
}

func TestDecide_AkismetActions(t *testing.T) {
	tests := []struct {
		action        moderation.ActionMode
		verdict       moderation.SpamStatus
		wantDecision  models.Decision
		wantAllowed   bool
		wantModerated bool
		wantRemoved   bool
	}{
		{moderation.ActionAuto, moderation.SpamDefinite, models.DecisionDelete, false, true, true},
		{moderation.ActionAuto, moderation.SpamProbable, models.DecisionSoftDelete, true, true, true},
		{moderation.ActionAuto, moderation.SpamNotSpam, models.DecisionAllow, true, false, false},
		{moderation.ActionModerate, moderation.SpamProbable, models.DecisionFlag, true, true, false},
		{moderation.ActionModerate, moderation.SpamNotSpam, models.DecisionAllow, true, false, false},
		{moderation.ActionSoftDelete, moderation.SpamProbable, models.DecisionSoftDelete, true, true, true},
		{moderation.ActionSoftDelete, moderation.SpamNotSpam, models.DecisionAllow, true, false, false},
		{moderation.ActionDelete, moderation.SpamProbable, models.DecisionDelete, false, true, true},
		{moderation.ActionDelete, moderation.SpamDefinite, models.DecisionDelete, false, true, true},
		{moderation.ActionDelete, moderation.SpamNotSpam, models.DecisionAllow, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.verdict), func(t *testing.T) {
			checker := &fakeChecker{status: tt.verdict}

			res, err := moderation.Decide(context.Background(), akismetPolicy(tt.action), checker, newInput("Hello world"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDecision, res.Decision)
			assert.Equal(t, tt.wantAllowed, res.Allowed)
			assert.Equal(t, tt.wantModerated, res.Moderated)
			assert.Equal(t, tt.wantRemoved, res.Removed)
			assert.Equal(t, tt.verdict, res.SpamStatus)
			assert.Equal(t, 1, checker.calls)
		})
	}
}

func TestDecide_SpamCheckPayload(t *testing.T) {
	checker := &fakeChecker{status: moderation.SpamNotSpam}

	_, err := moderation.Decide(context.Background(), akismetPolicy(moderation.ActionAuto), checker, newInput("Hello world"))
	require.NoError(t, err)

	assert.Equal(t, "Hello world", checker.last.Body)
	assert.Equal(t, "viagra-test-123", checker.last.Author)
	assert.Equal(t, "test@example.com", checker.last.AuthorEmail)
	assert.Equal(t, "127.0.0.1", checker.last.UserIP)
	assert.Equal(t, "Mozilla/5.0", checker.last.UserAgent)
	assert.Equal(t, "https://example.com/a/1", checker.last.Permalink)
	assert.Equal(t, "comment", checker.last.CommentType)
}

func TestDecide_ClosedComments(t *testing.T) {
	checker := &fakeChecker{status: moderation.SpamNotSpam}
	policy := akismetPolicy(moderation.ActionModerate)
	policy.CloseAfterDays = 10

	in := newInput("Hello world")
	in.Article = publishedAgo(10)
	res, err := moderation.Decide(context.Background(), policy, checker, in)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, res.Decision)
	assert.Equal(t, moderation.ReasonCommentsClosed, res.Reason)
	assert.Zero(t, checker.calls)

	in.Article = publishedAgo(3)
	in.Article.EnableComments = false
	res, err = moderation.Decide(context.Background(), policy, checker, in)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, res.Decision)
	assert.Equal(t, moderation.ReasonCommentsDisabled, res.Reason)
}

func TestDecide_AutoModerateWindow(t *testing.T) {
	policy := moderation.Policy{ModerateAfterDays: 30}

	in := newInput("Hello world")
	in.Article = publishedAgo(30)
	res, err := moderation.Decide(context.Background(), policy, nil, in)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionFlag, res.Decision)
	assert.True(t, res.Allowed)
	assert.True(t, res.Moderated)
	assert.False(t, res.Removed)
	assert.Equal(t, moderation.ReasonAutoModerated, res.Reason)

	in.Article = publishedAgo(29)
	res, err = moderation.Decide(context.Background(), policy, nil, in)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAllow, res.Decision)
}

func TestDecide_SpamCheckFailure(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("error", func(t *testing.T) {
		checker := &fakeChecker{err: boom}
		_, err := moderation.Decide(context.Background(), akismetPolicy(moderation.ActionAuto), checker, newInput("Hello"))
		require.Error(t, err)
		assert.ErrorIs(t, err, moderation.ErrSpamCheckFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("allow", func(t *testing.T) {
		checker := &fakeChecker{err: boom}
		policy := akismetPolicy(moderation.ActionAuto)
		policy.OnSpamCheckError = moderation.FailAllow

		res, err := moderation.Decide(context.Background(), policy, checker, newInput("Hello"))
		require.NoError(t, err)
		assert.Equal(t, models.DecisionAllow, res.Decision)
		assert.Equal(t, moderation.SpamCheckFailed, res.SpamStatus)
		assert.ErrorIs(t, res.SpamErr, boom)
	})

	t.Run("moderate", func(t *testing.T) {
		checker := &fakeChecker{err: boom}
		policy := akismetPolicy(moderation.ActionAuto)
		policy.OnSpamCheckError = moderation.FailModerate

		res, err := moderation.Decide(context.Background(), policy, checker, newInput("Hello"))
		require.NoError(t, err)
		assert.Equal(t, models.DecisionFlag, res.Decision)
		assert.True(t, res.Moderated)
		assert.False(t, res.Removed)
		assert.Equal(t, moderation.ReasonSpamCheckFailed, res.Reason)
	})

	t.Run("missing checker", func(t *testing.T) {
		_, err := moderation.Decide(context.Background(), akismetPolicy(moderation.ActionAuto), nil, newInput("Hello"))
		assert.ErrorIs(t, err, moderation.ErrSpamCheckFailed)
	})
}

func TestDecide_InvalidInput(t *testing.T) {
	_, err := moderation.Decide(context.Background(), moderation.Policy{}, nil, moderation.Input{Comment: &models.Comment{}})
	assert.Error(t, err)

	_, err = moderation.Decide(context.Background(), moderation.Policy{}, nil, moderation.Input{Article: &models.Article{}})
	assert.Error(t, err)
}

func TestDecide_IsRepeatable(t *testing.T) {
	checker := &fakeChecker{status: moderation.SpamProbable}
	policy := akismetPolicy(moderation.ActionSoftDelete)
	in := newInput("Hello world")

	first, err := moderation.Decide(context.Background(), policy, checker, in)
	require.NoError(t, err)
	second, err := moderation.Decide(context.Background(), policy, checker, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestModerator(t *testing.T) {
	_, err := moderation.NewModerator(moderation.Policy{CloseAfterDays: -1}, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = moderation.NewModerator(akismetPolicy(moderation.ActionAuto), nil, zerolog.Nop())
	assert.Error(t, err, "akismet without a checker should fail")

	checker := &fakeChecker{status: moderation.SpamProbable}
	m, err := moderation.NewModerator(akismetPolicy(moderation.ActionModerate), checker, zerolog.Nop())
	require.NoError(t, err)

	in := newInput("Hello world")
	res, err := m.Moderate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Moderated)
	assert.False(t, res.Removed)
	assert.Equal(t, 1, checker.calls)

	assert.True(t, m.CommentsAreOpen(&models.Article{EnableComments: true}))
	assert.False(t, m.CommentsAreModerated(&models.Article{EnableComments: true}))
	assert.Equal(t, moderation.ActionModerate, m.Policy().AkismetAction)
}
