// Package wiki はWikiページとコメントのドメインロジックを提供する。
package wiki

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/hitoshi/miniwiki/internal/model"
	"github.com/hitoshi/miniwiki/internal/repository"
)

const (
	// MaxCommentLength はコメント本文の最大文字数（UTF-16コード単位数）。
	MaxCommentLength = 100

	// MaxCommentsPerPage は1ページあたりのコメント数の上限。
	MaxCommentsPerPage = 20
)

// CanMutate はユーザーがページの内容を変更できるかを返す。
// 匿名ユーザー、または作成者が削除済みのページに対してはfalse。
func CanMutate(user *model.User, page *model.Page) bool {
	if user == nil || page == nil {
		return false
	}
	return page.AuthorID != 0 && page.AuthorID == user.ID
}

// Recorder はページ保存とコメント投稿の結果を記録するインターフェース。
// metrics.Collectorが実装する。
type Recorder interface {
	RecordPageSave(outcome string)
	RecordComment(outcome string)
}

// Service はWikiページとコメントのサービス層。
type Service struct {
	pageRepo    repository.PageRepository
	commentRepo repository.CommentRepository
	recorder    Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnilでもよい。
func NewService(
	pageRepo repository.PageRepository,
	commentRepo repository.CommentRepository,
	recorder Recorder,
) *Service {
	return &Service{
		pageRepo:    pageRepo,
		commentRepo: commentRepo,
		recorder:    recorder,
	}
}

// ListSlugs は全ページのスラッグ一覧を返す。
func (s *Service) ListSlugs(ctx context.Context) ([]string, error) {
	slugs, err := s.pageRepo.ListSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ページ一覧の取得に失敗しました: %w", err)
	}
	return slugs, nil
}

// GetPage はスラッグでページを取得する。存在しない場合はnilを返す。
func (s *Service) GetPage(ctx context.Context, slug string) (*model.Page, error) {
	page, err := s.pageRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	return page, nil
}

// PageForEdit は編集画面に表示するページを返す。
// ページが存在しない場合はnil（新規作成）。存在して編集権限が無い場合はEDIT_FORBIDDEN。
func (s *Service) PageForEdit(ctx context.Context, slug string, user *model.User) (*model.Page, error) {
	page, err := s.GetPage(ctx, slug)
	if err != nil {
		return nil, err
	}
	if page != nil && !CanMutate(user, page) {
		return nil, model.NewEditForbiddenError()
	}
	return page, nil
}

// SavePage はページを新規作成、または本文を更新する。
// 新規作成時のタイトルはスラッグ、作成者は現在のユーザー。
func (s *Service) SavePage(ctx context.Context, slug, content string, user *model.User) error {
	if user == nil {
		return model.NewEditForbiddenError()
	}
	if _, err := s.PageForEdit(ctx, slug, user); err != nil {
		s.recordPageSave(err)
		return err
	}

	page := &model.Page{
		Slug:     slug,
		Title:    slug,
		Content:  content,
		AuthorID: user.ID,
	}
	err := s.pageRepo.Save(ctx, page)
	if errors.Is(err, repository.ErrNotPageAuthor) {
		// 確認後に他のユーザーが同じスラッグで作成した場合
		err = model.NewEditForbiddenError()
	} else if err != nil {
		err = fmt.Errorf("ページの保存に失敗しました: %w", err)
	}
	s.recordPageSave(err)
	return err
}

// ListComments はページのコメントを投稿順に返す。
func (s *Service) ListComments(ctx context.Context, slug string) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListByPageSlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, nil
}

// CommentLength はコメント本文の長さをUTF-16コード単位で数える。
// フォームのmaxlength属性と同じ数え方で、絵文字などBMP外の文字は2と数える。
func CommentLength(content string) int {
	n := 0
	for _, r := range content {
		n += utf16.RuneLen(r)
	}
	return n
}

// AddComment はページにコメントを投稿する。
// 文字数の検証後、ページのコメント数が上限未満の場合のみ保存する。
// ページが削除済みの場合はrepository.ErrPageNotFoundをラップして返す。
func (s *Service) AddComment(ctx context.Context, slug string, user *model.User, content string) error {
	if user == nil {
		return errors.New("comment author is required")
	}
	if CommentLength(content) > MaxCommentLength {
		err := model.NewCommentTooLongError(MaxCommentLength)
		s.recordComment(err)
		return err
	}

	comment := &model.Comment{
		PageSlug: slug,
		AuthorID: user.ID,
		Content:  content,
	}
	err := s.commentRepo.CreateWithinLimit(ctx, comment, MaxCommentsPerPage)
	switch {
	case errors.Is(err, repository.ErrCommentLimitReached):
		err = model.NewCommentLimitError()
	case errors.Is(err, repository.ErrPageNotFound):
		err = fmt.Errorf("コメント対象のページが存在しません: %w", err)
	case err != nil:
		err = fmt.Errorf("コメントの保存に失敗しました: %w", err)
	}
	s.recordComment(err)
	return err
}

func (s *Service) recordPageSave(err error) {
	if s.recorder != nil {
		s.recorder.RecordPageSave(outcomeOf(err))
	}
}

func (s *Service) recordComment(err error) {
	if s.recorder != nil {
		s.recorder.RecordComment(outcomeOf(err))
	}
}

// outcomeOf はエラーをメトリクスのラベル値に変換する。
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "error"
}
