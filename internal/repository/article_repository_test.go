package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editorial-pipeline/internal/domain"
	"editorial-pipeline/internal/repository"
)

func newDraft(authorID string) *domain.Article {
	now := time.Now().UTC().Truncate(time.Microsecond)
	rubric := "science"
	return &domain.Article{
		ID:        uuid.New().String(),
		Slug:      "draft-" + uuid.New().String(),
		Title:     "Test Article",
		Body:      "Body content",
		AuthorID:  authorID,
		Rubric:    &rubric,
		Status:    domain.StatusDraft,
		Meta:      map[string]any{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newEntry(article *domain.Article, action domain.Action, from, to domain.Status) *domain.ReviewEntry {
	return &domain.ReviewEntry{
		ID:         uuid.New().String(),
		ArticleID:  article.ID,
		ActorID:    article.AuthorID,
		Action:     action,
		FromStatus: &from,
		ToStatus:   &to,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgresArticleRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	repo := repository.NewPostgresArticleRepository(testDB.Pool)
	ctx := context.Background()

	t.Run("create and read back a draft", func(t *testing.T) {
		testDB.TruncateTables(t, "articles")

		article := newDraft(uuid.New().String())
		article.Meta = map[string]any{"keywords": []string{"go", "testing"}}
		require.NoError(t, repo.Create(ctx, article))

		got, err := repo.Get(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, article.ID, got.ID)
		assert.Equal(t, article.Slug, got.Slug)
		assert.Equal(t, domain.StatusDraft, got.Status)
		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, []any{"go", "testing"}, got.Meta["keywords"])
	})

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		testDB.TruncateTables(t, "articles")

		first := newDraft(uuid.New().String())
		require.NoError(t, repo.Create(ctx, first))

		second := newDraft(uuid.New().String())
		second.Slug = first.Slug
		err := repo.Create(ctx, second)
		assert.True(t, errors.Is(err, domain.ErrConflict), "expected ErrConflict, got %v", err)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New().String())
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPostgresArticleRepository_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	repo := repository.NewPostgresArticleRepository(testDB.Pool)
	ctx := context.Background()

	testDB.TruncateTables(t, "articles")

	author := uuid.New().String()
	politics := "politics"

	submitted := newDraft(author)
	submitted.Status = domain.StatusSubmitted
	require.NoError(t, repo.Create(ctx, submitted))

	draft := newDraft(author)
	require.NoError(t, repo.Create(ctx, draft))

	foreign := newDraft(uuid.New().String())
	foreign.Status = domain.StatusSubmitted
	foreign.Rubric = &politics
	require.NoError(t, repo.Create(ctx, foreign))

	t.Run("filter by statuses and rubric", func(t *testing.T) {
		rubric := "science"
		articles, err := repo.List(ctx, repository.ArticleFilter{
			Statuses: []domain.Status{domain.StatusSubmitted},
			Rubric:   &rubric,
		})
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, submitted.ID, articles[0].ID)
	})

	t.Run("filter by author sees all own statuses", func(t *testing.T) {
		articles, err := repo.List(ctx, repository.ArticleFilter{AuthorID: &author})
		require.NoError(t, err)
		assert.Len(t, articles, 2)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		articles, err := repo.List(ctx, repository.ArticleFilter{})
		require.NoError(t, err)
		assert.Len(t, articles, 3)
	})

	t.Run("limit and offset page through results", func(t *testing.T) {
		page, err := repo.List(ctx, repository.ArticleFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := repo.List(ctx, repository.ArticleFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}

func TestPostgresArticleRepository_ApplyTransition(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	repo := repository.NewPostgresArticleRepository(testDB.Pool)
	reviews := repository.NewPostgresReviewRepository(testDB.Pool)
	ctx := context.Background()

	t.Run("writes status and ledger row atomically", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		require.NoError(t, repo.Create(ctx, article))

		article.Status = domain.StatusSubmitted
		article.UpdatedAt = time.Now().UTC()
		entry := newEntry(article, domain.ActionSubmit, domain.StatusDraft, domain.StatusSubmitted)
		require.NoError(t, repo.ApplyTransition(ctx, article, entry))
		assert.Equal(t, int64(2), article.Version)

		got, err := repo.Get(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, got.Status)

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.ActionSubmit, history[0].Action)
		require.NotNil(t, history[0].ToStatus)
		assert.Equal(t, got.Status, *history[0].ToStatus)
	})

	t.Run("stale version is a conflict and writes nothing", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		require.NoError(t, repo.Create(ctx, article))

		stale := *article
		stale.Meta = map[string]any{}

		article.Status = domain.StatusSubmitted
		require.NoError(t, repo.ApplyTransition(ctx, article,
			newEntry(article, domain.ActionSubmit, domain.StatusDraft, domain.StatusSubmitted)))

		stale.Status = domain.StatusSubmitted
		err := repo.ApplyTransition(ctx, &stale,
			newEntry(&stale, domain.ActionSubmit, domain.StatusDraft, domain.StatusSubmitted))
		assert.True(t, errors.Is(err, domain.ErrConflict), "expected ErrConflict, got %v", err)

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1, "losing writer must not append a ledger row")
	})

	t.Run("unknown article is not found", func(t *testing.T) {
		article := newDraft(uuid.New().String())
		article.Status = domain.StatusSubmitted
		err := repo.ApplyTransition(ctx, article,
			newEntry(article, domain.ActionSubmit, domain.StatusDraft, domain.StatusSubmitted))
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("concurrent transitions: exactly one wins", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		article.Status = domain.StatusSubmitted
		require.NoError(t, repo.Create(ctx, article))

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				copy := *article
				copy.Status = domain.StatusApproved
				results[i] = repo.ApplyTransition(ctx, &copy,
					newEntry(&copy, domain.ActionApprove, domain.StatusSubmitted, domain.StatusApproved))
			}(i)
		}
		wg.Wait()

		var conflicts, successes int
		for _, err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, conflicts)

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}

func TestPostgresArticleRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	repo := repository.NewPostgresArticleRepository(testDB.Pool)
	reviews := repository.NewPostgresReviewRepository(testDB.Pool)
	ctx := context.Background()

	t.Run("deleting a draft cascades ledger rows", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		require.NoError(t, repo.Create(ctx, article))

		// Content update leaves the article in draft but appends a ledger row.
		article.Title = "Edited"
		from := article.Status
		require.NoError(t, repo.ApplyTransition(ctx, article,
			newEntry(article, domain.ActionUpdate, from, from)))

		require.NoError(t, repo.Delete(ctx, article.ID, article.Version))

		_, err := repo.Get(ctx, article.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("deleting a non-draft changes nothing", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		article.Status = domain.StatusSubmitted
		require.NoError(t, repo.Create(ctx, article))

		err := repo.Delete(ctx, article.ID, article.Version)
		assert.True(t, errors.Is(err, domain.ErrConflict), "expected ErrConflict, got %v", err)

		got, err := repo.Get(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, got.Status)
	})

	t.Run("deleting an unknown article is not found", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New().String(), 1)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
