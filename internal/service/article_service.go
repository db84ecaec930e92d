package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"editorial-pipeline/internal/authz"
	"editorial-pipeline/internal/domain"
	"editorial-pipeline/internal/logger"
	"editorial-pipeline/internal/metrics"
	"editorial-pipeline/internal/repository"
	"editorial-pipeline/internal/storage"
	"editorial-pipeline/internal/validator"
)

const (
	// DefaultPageSize is used when a listing request carries no limit.
	DefaultPageSize = 50
	// MaxPageSize caps a single listing window.
	MaxPageSize = 200
)

// ArticleService orchestrates the article lifecycle: it validates each
// requested action against the authorization gate and the transition table,
// applies side effects, and persists the article mutation together with its
// ledger entry as one atomic unit.
type ArticleService struct {
	articles  repository.ArticleRepository
	reviews   repository.ReviewRepository
	gate      *authz.Gate
	blobs     storage.BlobStore
	validator *validator.Validator
}

// NewArticleService creates a new ArticleService.
func NewArticleService(
	articles repository.ArticleRepository,
	reviews repository.ReviewRepository,
	gate *authz.Gate,
	blobs storage.BlobStore,
	v *validator.Validator,
) *ArticleService {
	return &ArticleService{
		articles:  articles,
		reviews:   reviews,
		gate:      gate,
		blobs:     blobs,
		validator: v,
	}
}

// Create creates a new draft owned by the actor.
func (s *ArticleService) Create(ctx context.Context, actor domain.Actor, in CreateArticleInput) (*domain.Article, error) {
	if err := s.gate.AllowCreate(actor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article := &domain.Article{
		ID:        uuid.New().String(),
		Slug:      in.Slug,
		Title:     in.Title,
		Excerpt:   in.Excerpt,
		Body:      in.Body,
		AuthorID:  actor.ID,
		Rubric:    in.Rubric,
		Division:  in.Division,
		Anonymous: in.Anonymous,
		Status:    domain.StatusDraft,
		Meta:      map[string]any{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(in.Keywords) > 0 {
		if err := s.validator.ValidateAnnotations(domain.AnnotationUpdate{Keywords: in.Keywords}); err != nil {
			return nil, err
		}
		article.Meta = domain.MergeAnnotations(article.Meta, domain.AnnotationUpdate{Keywords: in.Keywords})
	}

	if err := s.validator.ValidateArticle(article); err != nil {
		return nil, err
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Draft created",
		slog.String("article_id", article.ID),
		slog.String("author_id", actor.ID))

	return article, nil
}

// Get returns one article within the actor's visibility.
func (s *ArticleService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(actor, article); err != nil {
		return nil, err
	}
	return article, nil
}

// List returns articles within the actor's visibility, most recently
// updated first. Filtering happens at the query boundary.
func (s *ArticleService) List(ctx context.Context, actor domain.Actor, page Page) ([]domain.Article, error) {
	vis, err := s.gate.VisibilityFor(actor)
	if err != nil {
		return nil, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	return s.articles.List(ctx, repository.ArticleFilter{
		Statuses: vis.Statuses,
		Rubric:   vis.Rubric,
		AuthorID: vis.AuthorID,
		Limit:    limit,
		Offset:   offset,
	})
}

// Submit moves a draft to submitted, or an article in revision to revised,
// so reviewers can tell resubmissions from first-time submissions.
func (s *ArticleService) Submit(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	return s.transition(ctx, actor, id, domain.ActionSubmit, nil, nil)
}

// StartEditorReview moves the article into editor review.
func (s *ArticleService) StartEditorReview(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	return s.transition(ctx, actor, id, domain.ActionReviewEditor, nil, nil)
}

// RequestRevision sends the article back to its author, attaching the
// revision reason and any reviewer annotations.
func (s *ArticleService) RequestRevision(ctx context.Context, actor domain.Actor, id string, note string, ann *domain.AnnotationUpdate) (*domain.Article, error) {
	if err := s.validator.ValidateNote(note); err != nil {
		return nil, err
	}
	if ann != nil {
		if err := s.validator.ValidateAnnotations(*ann); err != nil {
			return nil, err
		}
	}
	return s.transition(ctx, actor, id, domain.ActionRequestRevision, notePtr(note), ann)
}

// Approve marks the article ready for admin review.
func (s *ArticleService) Approve(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	return s.transition(ctx, actor, id, domain.ActionApprove, nil, nil)
}

// StartAdminReview moves the article into admin review.
func (s *ArticleService) StartAdminReview(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	return s.transition(ctx, actor, id, domain.ActionReviewAdmin, nil, nil)
}

// Reject terminates the article with a reason.
func (s *ArticleService) Reject(ctx context.Context, actor domain.Actor, id string, note string) (*domain.Article, error) {
	if err := s.validator.ValidateNote(note); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, domain.ActionReject, notePtr(note), nil)
}

// Publish publishes the article and stamps published_at.
func (s *ArticleService) Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	return s.transition(ctx, actor, id, domain.ActionPublish, nil, nil)
}

// transition runs one lifecycle transition end to end: authorization gate,
// transition table, side effects, then the atomic article write plus ledger
// append. A failed gate or table check mutates nothing and writes no ledger
// row.
func (s *ArticleService) transition(ctx context.Context, actor domain.Actor, id string, action domain.Action, note *string, ann *domain.AnnotationUpdate) (*domain.Article, error) {
	timer := metrics.NewTimer()

	article, err := s.doTransition(ctx, actor, id, action, note, ann)
	metrics.ObserveTransition(string(action), resultLabel(err), timer.Seconds())
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Lifecycle transition applied",
		slog.String("article_id", article.ID),
		slog.String("action", string(action)),
		slog.String("status", string(article.Status)),
		slog.String("actor_id", actor.ID))

	return article, nil
}

func (s *ArticleService) doTransition(ctx context.Context, actor domain.Actor, id string, action domain.Action, note *string, ann *domain.AnnotationUpdate) (*domain.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Allow(actor, action, article); err != nil {
		return nil, err
	}

	from := article.Status
	next, err := domain.NextStatus(action, from)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article.Status = next
	article.UpdatedAt = now
	if action == domain.ActionPublish {
		article.PublishedAt = &now
	}
	if ann != nil {
		article.Meta = domain.MergeAnnotations(article.Meta, *ann)
	}

	entry := newLedgerEntry(article, actor, action, from, next, note, now)
	if err := s.articles.ApplyTransition(ctx, article, entry); err != nil {
		return nil, err
	}

	return article, nil
}

// Update applies an author content/meta update. Lifecycle state is
// untouched; the ledger row records from and to as the current status.
func (s *ArticleService) Update(ctx context.Context, actor domain.Actor, id string, in UpdateArticleInput) (*domain.Article, error) {
	if err := s.validator.ValidateAnnotations(in.Annotations); err != nil {
		return nil, err
	}

	return s.contentUpdate(ctx, actor, id, domain.ActionUpdate, func(article *domain.Article) error {
		if in.Title != nil {
			article.Title = *in.Title
		}
		if in.Slug != nil {
			article.Slug = *in.Slug
		}
		if in.Excerpt != nil {
			article.Excerpt = in.Excerpt
		}
		if in.Body != nil {
			article.Body = *in.Body
		}
		if in.Anonymous != nil {
			article.Anonymous = *in.Anonymous
		}
		if !in.Annotations.IsZero() {
			article.Meta = domain.MergeAnnotations(article.Meta, in.Annotations)
		}
		return s.validator.ValidateArticle(article)
	})
}

// UpdateHighlights applies reviewer annotations (highlight markers,
// keywords) without changing lifecycle state.
func (s *ArticleService) UpdateHighlights(ctx context.Context, actor domain.Actor, id string, ann domain.AnnotationUpdate) (*domain.Article, error) {
	if err := s.validator.ValidateAnnotations(ann); err != nil {
		return nil, err
	}

	return s.contentUpdate(ctx, actor, id, domain.ActionHighlightUpdate, func(article *domain.Article) error {
		article.Meta = domain.MergeAnnotations(article.Meta, ann)
		return nil
	})
}

// ChangeCover stores the uploaded cover image in the blob store and records
// the returned reference in the article meta bag.
func (s *ArticleService) ChangeCover(ctx context.Context, actor domain.Actor, id string, filename string, r io.Reader) (*domain.Article, error) {
	article, err := s.contentUpdate(ctx, actor, id, domain.ActionChangeCover, func(article *domain.Article) error {
		path, url, err := s.blobs.Save(ctx, filename, r)
		if err != nil {
			metrics.BlobUploadsTotal.WithLabelValues(metrics.ResultError).Inc()
			return err
		}
		metrics.BlobUploadsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		article.Meta = domain.MergeAnnotations(article.Meta, domain.AnnotationUpdate{
			CoverPath: &path,
			CoverURL:  &url,
		})
		return nil
	})
	return article, err
}

// contentUpdate runs a content-only action: same gate and atomic write as a
// transition, but the status stays put and the ledger row records from and
// to as the current status.
func (s *ArticleService) contentUpdate(ctx context.Context, actor domain.Actor, id string, action domain.Action, mutate func(*domain.Article) error) (*domain.Article, error) {
	timer := metrics.NewTimer()

	article, err := s.doContentUpdate(ctx, actor, id, action, mutate)
	metrics.ObserveTransition(string(action), resultLabel(err), timer.Seconds())
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Content updated",
		slog.String("article_id", article.ID),
		slog.String("action", string(action)),
		slog.String("actor_id", actor.ID))

	return article, nil
}

func (s *ArticleService) doContentUpdate(ctx context.Context, actor domain.Actor, id string, action domain.Action, mutate func(*domain.Article) error) (*domain.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Allow(actor, action, article); err != nil {
		return nil, err
	}
	if !domain.ContentUpdateAllowed(action, article.Status) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := mutate(article); err != nil {
		return nil, err
	}
	article.UpdatedAt = now

	entry := newLedgerEntry(article, actor, action, article.Status, article.Status, nil, now)
	if err := s.articles.ApplyTransition(ctx, article, entry); err != nil {
		return nil, err
	}

	return article, nil
}

// Delete removes a draft. Ledger rows cascade with the article; deleting in
// any other state is rejected without mutating anything.
func (s *ArticleService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gate.AllowDelete(actor, article); err != nil {
		return err
	}
	if !domain.CanDelete(article.Status) {
		return domain.ErrInvalidTransition
	}

	if err := s.articles.Delete(ctx, article.ID, article.Version); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Draft deleted",
		slog.String("article_id", article.ID),
		slog.String("actor_id", actor.ID))

	return nil
}

// History returns the review ledger for an article, newest first.
func (s *ArticleService) History(ctx context.Context, actor domain.Actor, id string) ([]domain.ReviewEntry, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(actor, article); err != nil {
		return nil, err
	}
	return s.reviews.History(ctx, article.ID)
}

func newLedgerEntry(article *domain.Article, actor domain.Actor, action domain.Action, from, to domain.Status, note *string, now time.Time) *domain.ReviewEntry {
	return &domain.ReviewEntry{
		ID:         uuid.New().String(),
		ArticleID:  article.ID,
		ActorID:    actor.ID,
		Action:     action,
		FromStatus: &from,
		ToStatus:   &to,
		Note:       note,
		CreatedAt:  now,
	}
}

func notePtr(note string) *string {
	if note == "" {
		return nil
	}
	return &note
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrInvalidTransition):
		return metrics.ResultInvalidTransition
	case errors.Is(err, domain.ErrForbidden):
		return metrics.ResultForbidden
	case errors.Is(err, domain.ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
