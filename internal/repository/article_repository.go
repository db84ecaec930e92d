package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"editorial-pipeline/internal/domain"
)

const articleColumns = `id, slug, title, excerpt, body, author_id, rubric, division,
	anonymous, status, meta, published_at, version, created_at, updated_at`

// PostgresArticleRepository implements ArticleRepository using PostgreSQL.
type PostgresArticleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresArticleRepository creates a new PostgresArticleRepository.
func NewPostgresArticleRepository(pool *pgxpool.Pool) *PostgresArticleRepository {
	return &PostgresArticleRepository{pool: pool}
}

// Create inserts a new draft article.
func (r *PostgresArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	meta, err := json.Marshal(article.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO articles (id, slug, title, excerpt, body, author_id, rubric, division,
			anonymous, status, meta, published_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, article.ID, article.Slug, article.Title, article.Excerpt, article.Body,
		article.AuthorID, article.Rubric, article.Division, article.Anonymous,
		article.Status, meta, article.PublishedAt, article.Version,
		article.CreatedAt, article.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "slug") {
			return fmt.Errorf("slug %q already taken: %w", article.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("insert article: %w", err)
	}

	return nil
}

// Get fetches an article by id.
func (r *PostgresArticleRepository) Get(ctx context.Context, id string) (*domain.Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)

	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	return article, nil
}

// List returns articles matching the filter, most recently updated first.
func (r *PostgresArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error) {
	var conds []string
	var args []interface{}
	argNum := 1

	if filter.Statuses != nil {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", argNum))
		args = append(args, statuses)
		argNum++
	}
	if filter.Rubric != nil {
		conds = append(conds, fmt.Sprintf("rubric = $%d", argNum))
		args = append(args, *filter.Rubric)
		argNum++
	}
	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = $%d", argNum))
		args = append(args, *filter.AuthorID)
		argNum++
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

// ApplyTransition writes the mutated article row and appends its ledger
// entry in a single transaction. The UPDATE carries a version precondition:
// if another transition committed since the article was read, zero rows
// match and nothing is written, so a crash or a concurrent writer can never
// produce a status change without its matching ledger row or vice versa.
func (r *PostgresArticleRepository) ApplyTransition(ctx context.Context, article *domain.Article, entry *domain.ReviewEntry) error {
	meta, err := json.Marshal(article.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE articles
		SET slug = $3, title = $4, excerpt = $5, body = $6, anonymous = $7,
			status = $8, meta = $9, published_at = $10, updated_at = $11,
			version = version + 1
		WHERE id = $1 AND version = $2
	`, article.ID, article.Version, article.Slug, article.Title, article.Excerpt,
		article.Body, article.Anonymous, article.Status, meta,
		article.PublishedAt, article.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "slug") {
			return fmt.Errorf("slug %q already taken: %w", article.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("update article: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)`, article.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check article existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("article %s: %w", article.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("article %s version %d is stale: %w", article.ID, article.Version, domain.ErrConflict)
	}

	if err := insertReviewEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}

	article.Version++
	return nil
}

// Delete removes an article, cascading its ledger rows. The version and
// status preconditions mirror ApplyTransition so a submit racing a delete
// cannot silently drop review history.
func (r *PostgresArticleRepository) Delete(ctx context.Context, id string, version int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM articles WHERE id = $1 AND version = $2 AND status = $3
	`, id, version, domain.StatusDraft)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check article existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("article %s changed since read: %w", id, domain.ErrConflict)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var a domain.Article
	var meta []byte

	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Excerpt, &a.Body, &a.AuthorID,
		&a.Rubric, &a.Division, &a.Anonymous, &a.Status, &meta, &a.PublishedAt,
		&a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &a.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
	}

	return &a, nil
}

func isUniqueViolation(err error, constraintPart string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" &&
		strings.Contains(pgErr.ConstraintName, constraintPart)
}
