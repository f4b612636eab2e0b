package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/miniwiki/internal/model"
)

// PostgresPageRepo はPostgreSQLを使用したWikiページリポジトリ。
type PostgresPageRepo struct {
	db *sql.DB
}

// NewPostgresPageRepo はPostgresPageRepoを生成する。
func NewPostgresPageRepo(db *sql.DB) *PostgresPageRepo {
	return &PostgresPageRepo{db: db}
}

// ListSlugs は全ページのスラッグをスラッグ順で返す。
func (r *PostgresPageRepo) ListSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slug FROM wiki_pages ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list page slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan page slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate page slugs: %w", err)
	}

	return slugs, nil
}

// FindBySlug はスラッグでページを取得する。見つからない場合はnilを返す。
func (r *PostgresPageRepo) FindBySlug(ctx context.Context, slug string) (*model.Page, error) {
	page := &model.Page{}
	var authorID sql.NullInt64
	var authorName sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.slug, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
		 FROM wiki_pages p
		 LEFT JOIN users u ON p.author_id = u.id
		 WHERE p.slug = $1`,
		slug,
	).Scan(&page.ID, &page.Slug, &page.Title, &page.Content, &authorID, &authorName, &page.CreatedAt, &page.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find page by slug: %w", err)
	}

	page.AuthorID = authorID.Int64
	page.AuthorUsername = authorName.String
	return page, nil
}

// Save はページを作成、または作成者本人による更新を行う。
// 競合時のUPDATEはauthor_idが一致する場合のみ実行されるため、
// 行が返らなければ他ユーザーのページとみなす。
func (r *PostgresPageRepo) Save(ctx context.Context, page *model.Page) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO wiki_pages (slug, title, content, author_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (slug) DO UPDATE
		   SET content = EXCLUDED.content, updated_at = now()
		   WHERE wiki_pages.author_id = EXCLUDED.author_id
		 RETURNING id, title, created_at, updated_at`,
		page.Slug, page.Title, page.Content, page.AuthorID,
	).Scan(&page.ID, &page.Title, &page.CreatedAt, &page.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotPageAuthor
	}
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}

	return nil
}

// compile-time interface check
var _ PageRepository = (*PostgresPageRepo)(nil)
