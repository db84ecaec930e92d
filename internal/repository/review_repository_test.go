package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editorial-pipeline/internal/domain"
	"editorial-pipeline/internal/repository"
)

func TestPostgresReviewRepository_History(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	articles := repository.NewPostgresArticleRepository(testDB.Pool)
	reviews := repository.NewPostgresReviewRepository(testDB.Pool)
	ctx := context.Background()

	t.Run("history is ordered newest first", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		require.NoError(t, articles.Create(ctx, article))

		steps := []struct {
			action domain.Action
			from   domain.Status
			to     domain.Status
		}{
			{domain.ActionSubmit, domain.StatusDraft, domain.StatusSubmitted},
			{domain.ActionRequestRevision, domain.StatusSubmitted, domain.StatusRevision},
			{domain.ActionSubmit, domain.StatusRevision, domain.StatusRevised},
		}

		base := time.Now().UTC().Truncate(time.Microsecond)
		for i, step := range steps {
			article.Status = step.to
			entry := newEntry(article, step.action, step.from, step.to)
			entry.CreatedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, articles.ApplyTransition(ctx, article, entry))
		}

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, history, 3)

		// Newest first: resubmission, revision request, original submit.
		assert.Equal(t, domain.ActionSubmit, history[0].Action)
		require.NotNil(t, history[0].ToStatus)
		assert.Equal(t, domain.StatusRevised, *history[0].ToStatus)
		assert.Equal(t, domain.ActionRequestRevision, history[1].Action)
		assert.Equal(t, domain.ActionSubmit, history[2].Action)
		require.NotNil(t, history[2].ToStatus)
		assert.Equal(t, domain.StatusSubmitted, *history[2].ToStatus)

		for i := 1; i < len(history); i++ {
			assert.False(t, history[i-1].CreatedAt.Before(history[i].CreatedAt))
		}
	})

	t.Run("head of ledger agrees with article status", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		require.NoError(t, articles.Create(ctx, article))

		article.Status = domain.StatusSubmitted
		require.NoError(t, articles.ApplyTransition(ctx, article,
			newEntry(article, domain.ActionSubmit, domain.StatusDraft, domain.StatusSubmitted)))

		article.Status = domain.StatusApproved
		require.NoError(t, articles.ApplyTransition(ctx, article,
			newEntry(article, domain.ActionApprove, domain.StatusSubmitted, domain.StatusApproved)))

		got, err := articles.Get(ctx, article.ID)
		require.NoError(t, err)

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		require.NotNil(t, history[0].ToStatus)
		assert.Equal(t, got.Status, *history[0].ToStatus)
	})

	t.Run("empty history for article without entries", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		require.NoError(t, articles.Create(ctx, article))

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("note round-trips", func(t *testing.T) {
		testDB.TruncateTables(t, "review_entries", "articles")

		article := newDraft(uuid.New().String())
		article.Status = domain.StatusSubmitted
		require.NoError(t, articles.Create(ctx, article))

		note := "fix intro"
		article.Status = domain.StatusRevision
		entry := newEntry(article, domain.ActionRequestRevision, domain.StatusSubmitted, domain.StatusRevision)
		entry.Note = &note
		require.NoError(t, articles.ApplyTransition(ctx, article, entry))

		history, err := reviews.History(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.NotNil(t, history[0].Note)
		assert.Equal(t, "fix intro", *history[0].Note)
	})
}
