package models

import (
	"time"
)

// Article is the content item comments are attached to
type Article struct {
	ID              string     `json:"id" db:"id"`
	Slug            string     `json:"slug" db:"slug"`
	Title           string     `json:"title" db:"title"`
	EnableComments  bool       `json:"enable_comments" db:"enable_comments"`
	PublicationDate *time.Time `json:"publication_date,omitempty" db:"publication_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Age returns how long ago the article was published.
// The second return value is false when there is no publication date.
func (a *Article) Age(now time.Time) (time.Duration, bool) {
	if a.PublicationDate == nil {
		return 0, false
	}
	return now.Sub(*a.PublicationDate), true
}
