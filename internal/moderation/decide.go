package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comment-moderation-api/internal/models"
)

// Reasons attached to a Result
const (
	ReasonCommentsDisabled = "comments_disabled"
	ReasonCommentsClosed   = "comments_closed"
	ReasonBadWord          = "bad_word"
	ReasonSpam             = "spam"
	ReasonSpamCheckFailed  = "spam_check_failed"
	ReasonAutoModerated    = "auto_moderated"
)

// Input is a single comment submission to be moderated
type Input struct {
	Comment *models.Comment
	Article *models.Article
	Request models.RequestMeta
	Now     time.Time
}

// Result is the outcome of moderating one comment.
//
// Allowed is false when the comment must not be posted. Moderated means it needs
// manual review (is_public=false), Removed means it is hidden (is_removed=true).
type Result struct {
	Decision   models.Decision
	Allowed    bool
	Moderated  bool
	Removed    bool
	Reason     string
	Detail     string
	SpamStatus SpamStatus
	SpamErr    error
}

// Decide runs the moderation rules for one submission.
//
// Rules are evaluated in order: disabled or closed comments, banned words, the spam
// check and finally the auto-moderate window. The first rule that fires wins.
// An error is only returned for invalid input or, with FailError, a spam check failure.
func Decide(ctx context.Context, policy Policy, checker SpamChecker, in Input) (Result, error) {
	return decide(ctx, policy, NewWordFilter(policy.BadWords), checker, in)
}

func decide(ctx context.Context, policy Policy, words *WordFilter, checker SpamChecker, in Input) (Result, error) {
	if in.Article == nil {
		return Result{}, errors.New("moderation: article is required")
	}
	if in.Comment == nil {
		return Result{}, errors.New("moderation: comment is required")
	}

	if !in.Article.EnableComments {
		return rejected(ReasonCommentsDisabled, ""), nil
	}
	if !policy.CommentsAreOpen(in.Article, in.Now) {
		return rejected(ReasonCommentsClosed, ""), nil
	}
	if word, ok := words.Match(in.Comment.Body); ok {
		return rejected(ReasonBadWord, word), nil
	}

	status := SpamUnchecked
	var spamErr error
	if policy.UseAkismet {
		if checker == nil {
			return Result{}, fmt.Errorf("%w: no spam checker configured", ErrSpamCheckFailed)
		}
		verdict, err := checker.CheckComment(ctx, spamCheckFor(in))
		switch {
		case err != nil:
			status, spamErr = SpamCheckFailed, err
			switch policy.OnSpamCheckError {
			case FailAllow:
			case FailModerate:
				return Result{
					Decision:   models.DecisionFlag,
					Allowed:    true,
					Moderated:  true,
					Reason:     ReasonSpamCheckFailed,
					SpamStatus: status,
					SpamErr:    err,
				}, nil
			default:
				return Result{SpamStatus: status, SpamErr: err}, fmt.Errorf("%w: %w", ErrSpamCheckFailed, err)
			}
		case verdict.IsSpam():
			return spamResult(policy.AkismetAction, verdict), nil
		default:
			status = verdict
		}
	}

	if policy.CommentsAreModerated(in.Article, in.Now) {
		return Result{
			Decision:   models.DecisionFlag,
			Allowed:    true,
			Moderated:  true,
			Reason:     ReasonAutoModerated,
			SpamStatus: status,
			SpamErr:    spamErr,
		}, nil
	}

	return Result{
		Decision:   models.DecisionAllow,
		Allowed:    true,
		SpamStatus: status,
		SpamErr:    spamErr,
	}, nil
}

func rejected(reason, detail string) Result {
	return Result{
		Decision: models.DecisionReject,
		Reason:   reason,
		Detail:   detail,
	}
}

// spamResult maps a spam verdict to a disposition.
// In auto mode only definite spam is discarded, probable spam is kept hidden for review.
func spamResult(action ActionMode, verdict SpamStatus) Result {
	res := Result{
		Moderated:  true,
		Reason:     ReasonSpam,
		Detail:     string(verdict),
		SpamStatus: verdict,
	}
	switch {
	case action == ActionDelete, action == ActionAuto && verdict == SpamDefinite:
		res.Decision = models.DecisionDelete
		res.Removed = true
	case action == ActionSoftDelete, action == ActionAuto:
		res.Decision = models.DecisionSoftDelete
		res.Allowed = true
		res.Removed = true
	default:
		res.Decision = models.DecisionFlag
		res.Allowed = true
	}
	return res
}

func spamCheckFor(in Input) SpamCheck {
	return SpamCheck{
		Body:        in.Comment.Body,
		Author:      in.Comment.UserName,
		AuthorEmail: in.Comment.UserEmail,
		AuthorURL:   in.Comment.UserURL,
		UserIP:      in.Request.IPAddress,
		UserAgent:   in.Request.UserAgent,
		Referrer:    in.Request.Referrer,
		Permalink:   in.Request.Permalink,
		CommentType: "comment",
		Language:    in.Request.Language,
	}
}
