package domain

import "time"

// Status represents the lifecycle state of an article.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusSubmitted    Status = "submitted"
	StatusReviewEditor Status = "review_editor"
	StatusRevision     Status = "revision"
	StatusRevised      Status = "revised"
	StatusApproved     Status = "approved"
	StatusReviewAdmin  Status = "review_admin"
	StatusRejected     Status = "rejected"
	StatusPublished    Status = "published"
)

// ValidStatuses contains all valid article statuses.
var ValidStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusReviewEditor,
	StatusRevision,
	StatusRevised,
	StatusApproved,
	StatusReviewAdmin,
	StatusRejected,
	StatusPublished,
}

// IsValid checks if a status is a member of the closed status set.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Article represents an article entity in the system.
type Article struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Excerpt     *string        `json:"excerpt,omitempty"`
	Body        string         `json:"body"`
	AuthorID    string         `json:"author_id"`
	Rubric      *string        `json:"rubric,omitempty"`
	Division    *string        `json:"division,omitempty"`
	Anonymous   bool           `json:"anonymous"`
	Status      Status         `json:"status"`
	Meta        map[string]any `json:"meta,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Version     int64          `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// InRubric reports whether the article is assigned to the given rubric.
func (a *Article) InRubric(rubric string) bool {
	return a.Rubric != nil && *a.Rubric == rubric
}
