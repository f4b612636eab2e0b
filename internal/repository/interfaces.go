// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/miniwiki/internal/model"
)

var (
	// ErrUsernameTaken はユーザー名のユニーク制約に違反した場合に返される。
	ErrUsernameTaken = errors.New("username already exists")

	// ErrNotPageAuthor は既存ページを作成者以外が更新しようとした場合に返される。
	ErrNotPageAuthor = errors.New("page is owned by another user")

	// ErrPageNotFound はコメント対象のページが存在しない場合に返される。
	ErrPageNotFound = errors.New("page not found")

	// ErrCommentLimitReached はページのコメント数が上限に達している場合に返される。
	ErrCommentLimitReached = errors.New("comment limit reached")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDと作成日時をuserに設定する。
	// ユーザー名が既に存在する場合はErrUsernameTakenを返す。
	Create(ctx context.Context, user *model.User) error
}

// PageRepository はWikiページの永続化インターフェース。
type PageRepository interface {
	// ListSlugs は全ページのスラッグをスラッグ順で返す。
	ListSlugs(ctx context.Context) ([]string, error)

	// FindBySlug はスラッグでページを取得する。作成者のユーザー名をLEFT JOINで含む。
	// 見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Page, error)

	// Save はページを作成、または既存ページの本文とupdated_atを更新する。
	// 既存ページのauthor_idがpage.AuthorIDと異なる場合は更新せずErrNotPageAuthorを返す。
	// 存在確認と書き込みは1文で行われる。
	Save(ctx context.Context, page *model.Page) error
}

// CommentRepository はコメントの永続化インターフェース。
type CommentRepository interface {
	// ListByPageSlug はページのコメントをID昇順で返す。投稿者のユーザー名を含む。
	ListByPageSlug(ctx context.Context, slug string) ([]model.Comment, error)

	// CreateWithinLimit はページのコメント数がlimit未満の場合のみコメントを作成する。
	// 件数確認と挿入は同一トランザクション内でページ行をロックして行う。
	// 上限に達している場合はErrCommentLimitReached、ページが無い場合はErrPageNotFoundを返す。
	CreateWithinLimit(ctx context.Context, comment *model.Comment, limit int) error
}
