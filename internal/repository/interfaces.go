package repository

import (
	"context"

	"editorial-pipeline/internal/domain"
)

// ArticleFilter constrains article listings. Nil fields mean no constraint
// on that dimension; it is built from the authorization gate's visibility so
// filtering happens at the query boundary.
type ArticleFilter struct {
	Statuses []domain.Status
	Rubric   *string
	AuthorID *string
	Limit    int
	Offset   int
}

// ArticleRepository defines methods for article data access.
type ArticleRepository interface {
	// Create inserts a new draft. A slug collision surfaces as
	// domain.ErrConflict.
	Create(ctx context.Context, article *domain.Article) error
	// Get fetches an article by id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Article, error)
	// List returns articles matching the filter, most recently updated first.
	List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error)
	// ApplyTransition writes the mutated article and its ledger entry as one
	// transaction, guarded by a compare-and-swap on article.Version. A stale
	// version surfaces as domain.ErrConflict and writes nothing. On success
	// the article's Version is advanced in place.
	ApplyTransition(ctx context.Context, article *domain.Article, entry *domain.ReviewEntry) error
	// Delete removes an article (review entries cascade), guarded by the
	// same version compare-and-swap and the draft-only rule.
	Delete(ctx context.Context, id string, version int64) error
}

// ReviewRepository defines read access to the review audit ledger. Ledger
// rows are only ever written inside ApplyTransition's transaction; there is
// no standalone append because a ledger row without its article write would
// break the head-of-ledger invariant.
type ReviewRepository interface {
	// History returns all ledger entries for an article, newest first.
	History(ctx context.Context, articleID string) ([]domain.ReviewEntry, error)
}
