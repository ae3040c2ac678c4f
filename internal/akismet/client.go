// Package akismet is a small client for the Akismet anti-spam REST API.
//
// See https://akismet.com/developers/ for the protocol. The client implements
// moderation.SpamChecker so it can be handed straight to a Moderator.
package akismet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comment-moderation-api/internal/moderation"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// DefaultEndpoint is the Akismet REST API base URL
const DefaultEndpoint = "https://rest.akismet.com/1.1/"

const (
	headerProTip    = "X-akismet-pro-tip"
	headerDebugHelp = "X-akismet-debug-help"

	submitThanks = "Thanks for making the web a better place."
)

// ErrInvalidKey is returned when Akismet rejects the API key
var ErrInvalidKey = errors.New("akismet: invalid api key")

// APIError is an unexpected response from the Akismet API
type APIError struct {
	Method     string
	StatusCode int
	Body       string
	DebugHelp  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("akismet: unexpected %s response (status %d): %q", e.Method, e.StatusCode, e.Body)
	if e.DebugHelp != "" {
		msg += ": " + e.DebugHelp
	}
	return msg
}

// Config holds Akismet client settings
type Config struct {
	APIKey     string
	BlogURL    string
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	IsTest     bool
	UserAgent  string
}

// Client talks to the Akismet API
type Client struct {
	cfg  Config
	http *retryablehttp.Client
	log  zerolog.Logger
}

var _ moderation.SpamChecker = (*Client)(nil)

// NewClient creates an Akismet client.
// Retries are off unless cfg.MaxRetries is positive.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("akismet: api key is required")
	}
	if cfg.BlogURL == "" {
		return nil, errors.New("akismet: blog url is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(cfg.Endpoint, "/") {
		cfg.Endpoint += "/"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "comment-moderation-api/1.0"
	}

	logger := log.With().Str("component", "akismet").Logger()

	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.HTTPClient.Timeout = cfg.Timeout
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = retryablehttp.LeveledLogger(leveledZerolog{log: logger})

	return &Client{
		cfg:  cfg,
		http: client,
		log:  logger,
	}, nil
}

// VerifyKey checks that the configured key is valid for the configured blog
func (c *Client) VerifyKey(ctx context.Context) error {
	form := url.Values{
		"api_key": {c.cfg.APIKey},
		"blog":    {c.cfg.BlogURL},
	}
	body, resp, err := c.post(ctx, "verify-key", form)
	if err != nil {
		return err
	}

	switch body {
	case "valid":
		return nil
	case "invalid":
		return fmt.Errorf("%w: %s", ErrInvalidKey, resp.Header.Get(headerDebugHelp))
	default:
		return apiError("verify-key", resp, body)
	}
}

// CheckComment asks Akismet whether a comment is spam
func (c *Client) CheckComment(ctx context.Context, check moderation.SpamCheck) (moderation.SpamStatus, error) {
	body, resp, err := c.post(ctx, "comment-check", c.commentForm(check))
	if err != nil {
		return moderation.SpamCheckFailed, err
	}

	switch body {
	case "true":
		if resp.Header.Get(headerProTip) == "discard" {
			return moderation.SpamDefinite, nil
		}
		return moderation.SpamProbable, nil
	case "false":
		return moderation.SpamNotSpam, nil
	case "invalid":
		return moderation.SpamCheckFailed, fmt.Errorf("%w: %s", ErrInvalidKey, resp.Header.Get(headerDebugHelp))
	default:
		return moderation.SpamCheckFailed, apiError("comment-check", resp, body)
	}
}

// SubmitSpam reports a comment Akismet missed
func (c *Client) SubmitSpam(ctx context.Context, check moderation.SpamCheck) error {
	return c.submit(ctx, "submit-spam", check)
}

// SubmitHam reports a comment Akismet wrongly flagged
func (c *Client) SubmitHam(ctx context.Context, check moderation.SpamCheck) error {
	return c.submit(ctx, "submit-ham", check)
}

func (c *Client) submit(ctx context.Context, method string, check moderation.SpamCheck) error {
	body, resp, err := c.post(ctx, method, c.commentForm(check))
	if err != nil {
		return err
	}
	if body != submitThanks {
		return apiError(method, resp, body)
	}
	c.log.Info().Str("method", method).Str("author", check.Author).Msg("Comment reported to Akismet")
	return nil
}

func (c *Client) commentForm(check moderation.SpamCheck) url.Values {
	form := url.Values{}
	form.Set("api_key", c.cfg.APIKey)
	form.Set("blog", c.cfg.BlogURL)
	form.Set("blog_charset", "UTF-8")
	setIf(form, "user_ip", check.UserIP)
	setIf(form, "user_agent", check.UserAgent)
	setIf(form, "referrer", check.Referrer)
	setIf(form, "permalink", check.Permalink)
	setIf(form, "comment_type", check.CommentType)
	setIf(form, "comment_author", check.Author)
	setIf(form, "comment_author_email", check.AuthorEmail)
	setIf(form, "comment_author_url", check.AuthorURL)
	setIf(form, "comment_content", check.Body)
	setIf(form, "blog_lang", check.Language)
	if c.cfg.IsTest {
		form.Set("is_test", "1")
	}
	return form
}

func (c *Client) post(ctx context.Context, method string, form url.Values) (string, *http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+method, strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("akismet: failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("akismet: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", nil, fmt.Errorf("akismet: failed to read %s response: %w", method, err)
	}

	c.log.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Akismet call completed")

	if resp.StatusCode != http.StatusOK {
		return "", nil, apiError(method, resp, string(raw))
	}
	return strings.TrimSpace(string(raw)), resp, nil
}

func apiError(method string, resp *http.Response, body string) *APIError {
	return &APIError{
		Method:     method,
		StatusCode: resp.StatusCode,
		Body:       body,
		DebugHelp:  resp.Header.Get(headerDebugHelp),
	}
}

func setIf(form url.Values, key, value string) {
	if value != "" {
		form.Set(key, value)
	}
}

// leveledZerolog adapts zerolog to retryablehttp's logger interface.
// Errors are logged as warnings since a retry usually follows.
type leveledZerolog struct {
	log zerolog.Logger
}

func (l leveledZerolog) Error(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}
