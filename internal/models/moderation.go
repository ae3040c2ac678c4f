package models

// Decision is the disposition a moderation run assigns to a comment
type Decision string

const (
	DecisionAllow      Decision = "allow"
	DecisionReject     Decision = "reject"
	DecisionFlag       Decision = "flag"
	DecisionSoftDelete Decision = "soft_delete"
	DecisionDelete     Decision = "delete"
)

// ValidDecisions defines the known dispositions
var ValidDecisions = map[Decision]bool{
	DecisionAllow:      true,
	DecisionReject:     true,
	DecisionFlag:       true,
	DecisionSoftDelete: true,
	DecisionDelete:     true,
}

// Stored reports whether a comment with this decision is persisted.
// Rejected and deleted comments are dropped before they reach the database.
func (d Decision) Stored() bool {
	return d != DecisionReject && d != DecisionDelete
}

// CommentEvent is published after a submission has been moderated
type CommentEvent struct {
	CommentID string   `json:"comment_id,omitempty"`
	ArticleID string   `json:"article_id"`
	UserName  string   `json:"user_name"`
	Decision  Decision `json:"decision"`
	Reason    string   `json:"reason,omitempty"`
	IsPublic  bool     `json:"is_public"`
	IsRemoved bool     `json:"is_removed"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}
