package models

import (
	"time"
)

// Comment represents a comment on an article
type Comment struct {
	ID         string    `json:"id" db:"id"`
	ArticleID  string    `json:"article_id" db:"article_id"`
	UserID     *string   `json:"user_id,omitempty" db:"user_id"`
	UserName   string    `json:"user_name" db:"user_name"`
	UserEmail  string    `json:"user_email,omitempty" db:"user_email"`
	UserURL    string    `json:"user_url,omitempty" db:"user_url"`
	Body       string    `json:"comment" db:"comment"`
	IPAddress  string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  string    `json:"-" db:"user_agent"`
	Referrer   string    `json:"-" db:"referrer"`
	IsPublic   bool      `json:"is_public" db:"is_public"`
	IsRemoved  bool      `json:"is_removed" db:"is_removed"`
	Decision   Decision  `json:"decision" db:"decision"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	SubmitDate time.Time `json:"submit_date" db:"submit_date"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CommentSubmission is the payload accepted from the comment form
type CommentSubmission struct {
	UserName  string `json:"user_name" form:"user_name"`
	UserEmail string `json:"user_email" form:"user_email"`
	UserURL   string `json:"user_url" form:"user_url"`
	Body      string `json:"comment" form:"comment"`
}

// RequestMeta is the request information forwarded to the spam checker
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Referrer  string
	Permalink string
	Language  string
}

// CommentFilter narrows admin comment listings
type CommentFilter struct {
	UserName  string
	ArticleID string
	Decision  Decision
	IsPublic  *bool
	IsRemoved *bool
	Limit     int
	Offset    int
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500

// MaxCommentLength is the maximum comment body length in characters
const MaxCommentLength = 3000

// PublicView returns a copy without the author's email and IP address
func (c *Comment) PublicView() *Comment {
	cp := *c
	cp.UserEmail = ""
	cp.IPAddress = ""
	return &cp
}
