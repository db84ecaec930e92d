package service

import (
	"context"
	"io"

	"editorial-pipeline/internal/domain"
)

// CreateArticleInput carries the fields an author supplies for a new draft.
type CreateArticleInput struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Excerpt   *string  `json:"excerpt,omitempty"`
	Body      string   `json:"body"`
	Rubric    *string  `json:"rubric,omitempty"`
	Division  *string  `json:"division,omitempty"`
	Anonymous bool     `json:"anonymous"`
	Keywords  []string `json:"keywords,omitempty"`
}

// UpdateArticleInput carries a partial content update. Nil fields are left
// untouched.
type UpdateArticleInput struct {
	Title       *string                 `json:"title,omitempty"`
	Slug        *string                 `json:"slug,omitempty"`
	Excerpt     *string                 `json:"excerpt,omitempty"`
	Body        *string                 `json:"body,omitempty"`
	Anonymous   *bool                   `json:"anonymous,omitempty"`
	Annotations domain.AnnotationUpdate `json:"annotations,omitempty"`
}

// Page selects a listing window.
type Page struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// ArticleServiceInterface defines the article lifecycle operations.
// Used for dependency injection and mocking in tests.
type ArticleServiceInterface interface {
	// Create creates a new draft owned by the actor.
	Create(ctx context.Context, actor domain.Actor, in CreateArticleInput) (*domain.Article, error)
	// Get returns one article within the actor's visibility.
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error)
	// List returns articles within the actor's visibility.
	List(ctx context.Context, actor domain.Actor, page Page) ([]domain.Article, error)
	// Update applies an author content/meta update without changing state.
	Update(ctx context.Context, actor domain.Actor, id string, in UpdateArticleInput) (*domain.Article, error)
	// Delete removes a draft.
	Delete(ctx context.Context, actor domain.Actor, id string) error

	// Submit moves a draft to submitted, or a revision to revised.
	Submit(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error)
	// StartEditorReview moves the article into editor review.
	StartEditorReview(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error)
	// RequestRevision sends the article back to its author with a reason and
	// optional reviewer annotations.
	RequestRevision(ctx context.Context, actor domain.Actor, id string, note string, ann *domain.AnnotationUpdate) (*domain.Article, error)
	// Approve marks the article ready for admin review.
	Approve(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error)
	// StartAdminReview moves the article into admin review.
	StartAdminReview(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error)
	// Reject terminates the article with a reason.
	Reject(ctx context.Context, actor domain.Actor, id string, note string) (*domain.Article, error)
	// Publish publishes the article and stamps published_at.
	Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error)

	// UpdateHighlights applies reviewer annotations without changing state.
	UpdateHighlights(ctx context.Context, actor domain.Actor, id string, ann domain.AnnotationUpdate) (*domain.Article, error)
	// ChangeCover stores an uploaded cover image and records its reference.
	ChangeCover(ctx context.Context, actor domain.Actor, id string, filename string, r io.Reader) (*domain.Article, error)

	// History returns the review ledger for an article, newest first.
	History(ctx context.Context, actor domain.Actor, id string) ([]domain.ReviewEntry, error)
}
