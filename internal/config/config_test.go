package config

import (
	"testing"

	"github.com/comment-moderation-api/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 0, cfg.Moderation.CloseAfterDays)
	assert.False(t, cfg.Moderation.UseAkismet)
	assert.Zero(t, cfg.Akismet.MaxRetries, "retries must be opt-in")
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "comments:moderation", cfg.Redis.Channel)
}

func TestLoad_Moderation(t *testing.T) {
	t.Setenv("MODERATION_CLOSE_AFTER_DAYS", "30")
	t.Setenv("MODERATION_MODERATE_AFTER_DAYS", "10")
	t.Setenv("MODERATION_BAD_WORDS", "viagra, casino ,,")
	t.Setenv("MODERATION_USE_AKISMET", "true")
	t.Setenv("MODERATION_AKISMET_ACTION", "delete")
	t.Setenv("MODERATION_SPAM_CHECK_FAILURE", "moderate")
	t.Setenv("AKISMET_API_KEY", "FOOBAR")
	t.Setenv("AKISMET_BLOG_URL", "https://example.com")

	cfg, err := Load()
	require.NoError(t, err)

	policy := cfg.Policy()
	assert.Equal(t, 30, policy.CloseAfterDays)
	assert.Equal(t, 10, policy.ModerateAfterDays)
	assert.Equal(t, []string{"viagra", "casino"}, policy.BadWords)
	assert.True(t, policy.UseAkismet)
	assert.Equal(t, moderation.ActionDelete, policy.AkismetAction)
	assert.Equal(t, moderation.FailModerate, policy.OnSpamCheckError)
}

func TestLoad_AkismetRequiresKey(t *testing.T) {
	t.Setenv("MODERATION_USE_AKISMET", "true")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AKISMET_API_KEY", "FOOBAR")
	_, err = Load()
	assert.Error(t, err, "blog url is still missing")
}

func TestLoad_InvalidAction(t *testing.T) {
	t.Setenv("MODERATION_USE_AKISMET", "true")
	t.Setenv("MODERATION_AKISMET_ACTION", "shred")
	t.Setenv("AKISMET_API_KEY", "FOOBAR")
	t.Setenv("AKISMET_BLOG_URL", "https://example.com")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WindowTooLarge(t *testing.T) {
	t.Setenv("MODERATION_CLOSE_AFTER_DAYS", "200000")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "comments", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=comments sslmode=disable", db.GetDSN())
}
