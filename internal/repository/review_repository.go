package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"editorial-pipeline/internal/domain"
)

// PostgresReviewRepository implements ReviewRepository using PostgreSQL.
// Rows are append-only: they are written exclusively inside
// ApplyTransition's transaction and removed only by the articles cascade.
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository.
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

// History returns all ledger entries for an article, newest first.
func (r *PostgresReviewRepository) History(ctx context.Context, articleID string) ([]domain.ReviewEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, article_id, actor_id, action, from_status, to_status, note, created_at
		FROM review_entries
		WHERE article_id = $1
		ORDER BY created_at DESC, id DESC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query review entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ReviewEntry
	for rows.Next() {
		var e domain.ReviewEntry
		if err := rows.Scan(&e.ID, &e.ArticleID, &e.ActorID, &e.Action,
			&e.FromStatus, &e.ToStatus, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// insertReviewEntry appends a ledger row within an open transaction. A
// foreign-key violation means the parent article vanished mid-transaction.
func insertReviewEntry(ctx context.Context, tx pgx.Tx, entry *domain.ReviewEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO review_entries (id, article_id, actor_id, action, from_status, to_status, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.ArticleID, entry.ActorID, entry.Action,
		entry.FromStatus, entry.ToStatus, entry.Note, entry.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("article %s: %w", entry.ArticleID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert review entry: %w", err)
	}

	return nil
}
