package moderation_test

import (
	"testing"
	"time"

	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func publishedAgo(days int) *models.Article {
	pub := testNow.Add(-time.Duration(days) * 24 * time.Hour)
	return &models.Article{ID: "article-1", EnableComments: true, PublicationDate: &pub}
}

func TestCommentsAreOpen(t *testing.T) {
	assert := assert.New(t)
	policy := moderation.Policy{CloseAfterDays: 10}

	assert.True(policy.CommentsAreOpen(&models.Article{EnableComments: true}, testNow), "unpublished article should be open")
	assert.False(policy.CommentsAreOpen(&models.Article{EnableComments: false}, testNow), "disabled comments should be closed")

	assert.True(policy.CommentsAreOpen(publishedAgo(9), testNow))
	assert.False(policy.CommentsAreOpen(publishedAgo(10), testNow))
	assert.False(policy.CommentsAreOpen(publishedAgo(11), testNow))

	old := &models.Article{EnableComments: true, PublicationDate: &time.Time{}}
	assert.False(policy.CommentsAreOpen(old, testNow), "oldest possible article should be closed")
}

func TestCommentsAreOpen_NoWindow(t *testing.T) {
	policy := moderation.Policy{}

	assert.True(t, policy.CommentsAreOpen(publishedAgo(5000), testNow))

	disabled := publishedAgo(1)
	disabled.EnableComments = false
	assert.False(t, policy.CommentsAreOpen(disabled, testNow))
}

func TestCommentsAreOpen_AllThresholds(t *testing.T) {
	for n := 1; n <= 400; n++ {
		policy := moderation.Policy{CloseAfterDays: n}
		if !policy.CommentsAreOpen(publishedAgo(n-1), testNow) {
			t.Fatalf("threshold %d: article published %d days ago should be open", n, n-1)
		}
		if policy.CommentsAreOpen(publishedAgo(n), testNow) {
			t.Fatalf("threshold %d: article published %d days ago should be closed", n, n)
		}
	}
}

func TestCommentsAreModerated(t *testing.T) {
	assert := assert.New(t)
	policy := moderation.Policy{ModerateAfterDays: 10}

	assert.False(policy.CommentsAreModerated(&models.Article{EnableComments: true}, testNow), "unpublished article should not be moderated")
	old := &models.Article{EnableComments: true, PublicationDate: &time.Time{}}
	assert.True(policy.CommentsAreModerated(old, testNow), "old article should be moderated")

	assert.False(policy.CommentsAreModerated(publishedAgo(9), testNow))
	assert.True(policy.CommentsAreModerated(publishedAgo(10), testNow))
	assert.True(policy.CommentsAreModerated(publishedAgo(11), testNow))

	assert.False(moderation.Policy{}.CommentsAreModerated(publishedAgo(5000), testNow), "no window means never moderated")
}

func TestCommentsAreModerated_AllThresholds(t *testing.T) {
	for m := 1; m <= 400; m++ {
		policy := moderation.Policy{ModerateAfterDays: m}
		if policy.CommentsAreModerated(publishedAgo(m-1), testNow) {
			t.Fatalf("threshold %d: article published %d days ago should not be moderated", m, m-1)
		}
		if !policy.CommentsAreModerated(publishedAgo(m), testNow) {
			t.Fatalf("threshold %d: article published %d days ago should be moderated", m, m)
		}
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  moderation.Policy
		wantErr bool
	}{
		{name: "zero policy", policy: moderation.Policy{}},
		{name: "akismet auto", policy: moderation.Policy{UseAkismet: true, AkismetAction: moderation.ActionAuto}},
		{name: "akismet without action", policy: moderation.Policy{UseAkismet: true}, wantErr: true},
		{name: "unknown action", policy: moderation.Policy{UseAkismet: true, AkismetAction: "burn"}, wantErr: true},
		{name: "unused unknown action", policy: moderation.Policy{AkismetAction: "burn"}},
		{name: "negative close window", policy: moderation.Policy{CloseAfterDays: -1}, wantErr: true},
		{name: "negative moderate window", policy: moderation.Policy{ModerateAfterDays: -3}, wantErr: true},
		{name: "unknown failure mode", policy: moderation.Policy{OnSpamCheckError: "retry"}, wantErr: true},
		{name: "largest close window", policy: moderation.Policy{CloseAfterDays: moderation.MaxWindowDays}},
		{name: "close window too large", policy: moderation.Policy{CloseAfterDays: 200000}, wantErr: true},
		{name: "moderate window too large", policy: moderation.Policy{ModerateAfterDays: moderation.MaxWindowDays + 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_HugeWindows(t *testing.T) {
	pub := testNow.Add(-time.Hour)
	article := &models.Article{ID: "article-1", EnableComments: true, PublicationDate: &pub}
	policy := moderation.Policy{CloseAfterDays: 200000, ModerateAfterDays: 200000}

	assert.True(t, policy.CommentsAreOpen(article, testNow), "new article should stay open")
	assert.False(t, policy.CommentsAreModerated(article, testNow), "new article should not be moderated")
}
