package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/miniwiki/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// ListByPageSlug はページのコメントをID昇順で返す。
func (r *PostgresCommentRepo) ListByPageSlug(ctx context.Context, slug string) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.wiki_page_slug, c.author_id, u.username, c.content, c.created_at
		 FROM comments c
		 JOIN users u ON c.author_id = u.id
		 WHERE c.wiki_page_slug = $1
		 ORDER BY c.id ASC`,
		slug,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PageSlug, &c.AuthorID, &c.AuthorUsername, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// CreateWithinLimit はページ行をFOR UPDATEでロックしてからコメント数を確認し、
// 上限未満であればコメントを挿入する。
// 同一ページへの同時投稿はロックにより直列化される。
func (r *PostgresCommentRepo) CreateWithinLimit(ctx context.Context, comment *model.Comment, limit int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pageID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM wiki_pages WHERE slug = $1 FOR UPDATE`,
		comment.PageSlug,
	).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock page: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE wiki_page_slug = $1`,
		comment.PageSlug,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	if count >= limit {
		return ErrCommentLimitReached
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO comments (wiki_page_slug, author_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		comment.PageSlug, comment.AuthorID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
