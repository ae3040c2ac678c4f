package akismet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comment-moderation-api/internal/moderation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		APIKey:     "FOOBAR",
		BlogURL:    "https://example.com",
		Endpoint:   srv.URL,
		Timeout:    time.Second,
		MaxRetries: retries,
		IsTest:     true,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

var testCheck = moderation.SpamCheck{
	Body:        "Hello world",
	Author:      "viagra-test-123",
	AuthorEmail: "test@example.com",
	UserIP:      "127.0.0.1",
	UserAgent:   "Mozilla/5.0",
	CommentType: "comment",
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BlogURL: "https://example.com"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "FOOBAR"}, zerolog.Nop())
	assert.Error(t, err)

	c, err := NewClient(Config{APIKey: "FOOBAR", BlogURL: "https://example.com"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, c.cfg.Endpoint)
	assert.Zero(t, c.http.RetryMax)
}

func TestCheckComment(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		proTip string
		want   moderation.SpamStatus
	}{
		{name: "not spam", body: "false", want: moderation.SpamNotSpam},
		{name: "probable spam", body: "true", want: moderation.SpamProbable},
		{name: "definite spam", body: "true", proTip: "discard", want: moderation.SpamDefinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/comment-check", r.URL.Path)
				assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "FOOBAR", r.PostForm.Get("api_key"))
				assert.Equal(t, "https://example.com", r.PostForm.Get("blog"))
				assert.Equal(t, "Hello world", r.PostForm.Get("comment_content"))
				assert.Equal(t, "viagra-test-123", r.PostForm.Get("comment_author"))
				assert.Equal(t, "127.0.0.1", r.PostForm.Get("user_ip"))
				assert.Equal(t, "1", r.PostForm.Get("is_test"))
				assert.Empty(t, r.PostForm.Get("comment_author_url"))

				if tt.proTip != "" {
					w.Header().Set("X-akismet-pro-tip", tt.proTip)
				}
				w.Write([]byte(tt.body))
			}, 0)

			status, err := c.CheckComment(context.Background(), testCheck)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestCheckComment_InvalidKey(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-akismet-debug-help", "Empty \"api_key\" value")
		w.Write([]byte("invalid"))
	}, 0)

	status, err := c.CheckComment(context.Background(), testCheck)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, err.Error(), "api_key")
	assert.Equal(t, moderation.SpamCheckFailed, status)
}

func TestCheckComment_ServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("oops"))
	}, 0)

	_, err := c.CheckComment(context.Background(), testCheck)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "comment-check", apiErr.Method)
}

func TestCheckComment_NoRetryByDefault(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0)

	_, err := c.CheckComment(context.Background(), testCheck)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCheckComment_Retries(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("false"))
	}, 2)

	status, err := c.CheckComment(context.Background(), testCheck)
	require.NoError(t, err)
	assert.Equal(t, moderation.SpamNotSpam, status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCheckComment_UnexpectedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("maybe"))
	}, 0)

	_, err := c.CheckComment(context.Background(), testCheck)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestVerifyKey(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-key", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("api_key") == "FOOBAR" {
			w.Write([]byte("valid"))
			return
		}
		w.Write([]byte("invalid"))
	}, 0)
	assert.NoError(t, c.VerifyKey(context.Background()))

	c.cfg.APIKey = "WRONG"
	assert.ErrorIs(t, c.VerifyKey(context.Background()), ErrInvalidKey)
}

func TestSubmitSpamAndHam(t *testing.T) {
	var paths []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(submitThanks))
	}, 0)

	require.NoError(t, c.SubmitSpam(context.Background(), testCheck))
	require.NoError(t, c.SubmitHam(context.Background(), testCheck))
	assert.Equal(t, []string{"/submit-spam", "/submit-ham"}, paths)
}

func TestSubmit_Unexpected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("nope"))
	}, 0)

	assert.Error(t, c.SubmitSpam(context.Background(), testCheck))
}
