package moderation

import (
	"context"
	"errors"
)

// ErrSpamCheckFailed wraps any error returned by the spam checker
var ErrSpamCheckFailed = errors.New("spam check failed")

// SpamStatus is the verdict of a spam check, including its confidence
type SpamStatus string

const (
	SpamUnchecked   SpamStatus = ""
	SpamNotSpam     SpamStatus = "not_spam"
	SpamProbable    SpamStatus = "probable_spam"
	SpamDefinite    SpamStatus = "definite_spam"
	SpamCheckFailed SpamStatus = "check_failed"
)

// IsSpam reports whether the verdict classifies the comment as spam
func (s SpamStatus) IsSpam() bool {
	return s == SpamProbable || s == SpamDefinite
}

// SpamCheck is everything sent to the spam classifier for a single comment
type SpamCheck struct {
	Body        string
	Author      string
	AuthorEmail string
	AuthorURL   string
	UserIP      string
	UserAgent   string
	Referrer    string
	Permalink   string
	CommentType string
	Language    string
}

// SpamChecker classifies comments. Implementations may block on the network.
type SpamChecker interface {
	CheckComment(ctx context.Context, check SpamCheck) (SpamStatus, error)
}
