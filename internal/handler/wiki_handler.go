package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/miniwiki/internal/middleware"
	"github.com/hitoshi/miniwiki/internal/model"
	"github.com/hitoshi/miniwiki/internal/repository"
	"github.com/hitoshi/miniwiki/internal/view"
	"github.com/hitoshi/miniwiki/internal/wiki"
)

// WikiServiceInterface はWikiハンドラーが必要とするサービスインターフェース。
type WikiServiceInterface interface {
	ListSlugs(ctx context.Context) ([]string, error)
	GetPage(ctx context.Context, slug string) (*model.Page, error)
	PageForEdit(ctx context.Context, slug string, user *model.User) (*model.Page, error)
	SavePage(ctx context.Context, slug, content string, user *model.User) error
	ListComments(ctx context.Context, slug string) ([]model.Comment, error)
	AddComment(ctx context.Context, slug string, user *model.User, content string) error
}

// WikiHandler はページ一覧・閲覧・編集・コメントのHTTPハンドラー。
type WikiHandler struct {
	service  WikiServiceInterface
	renderer view.Renderer
}

// NewWikiHandler はWikiHandlerを生成する。
func NewWikiHandler(service WikiServiceInterface, renderer view.Renderer) *WikiHandler {
	return &WikiHandler{
		service:  service,
		renderer: renderer,
	}
}

// Index は全ページのスラッグ一覧を表示する。匿名でも閲覧できる。
// GET|POST / , /wiki
func (h *WikiHandler) Index(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.service.ListSlugs(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	user := middleware.UserFromContext(r.Context())
	writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return h.renderer.Index(out, user, slugs)
	})
}

// NewPageForm はスラッグ入力フォームを表示する。
// GET /wiki/new
func (h *WikiHandler) NewPageForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return h.renderer.NewPage(out, user)
	})
}

// CreatePage は入力されたスラッグの編集ページへリダイレクトする。
// POST /wiki/new
func (h *WikiHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	slug := r.PostFormValue("slug")
	if slug == "" {
		handleServiceError(w, r, model.NewSlugRequiredError())
		return
	}
	http.Redirect(w, r, view.EditPath(slug), http.StatusFound)
}

// Edit は編集フォームを表示する。既存ページは作成者のみ開ける。
// GET /wiki/{slug}/edit
func (h *WikiHandler) Edit(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	user := middleware.UserFromContext(r.Context())
	page, err := h.service.PageForEdit(r.Context(), slug, user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	content := ""
	if page != nil {
		content = page.Content
	}
	writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return h.renderer.Edit(out, user, slug, content)
	})
}

// Save はページを作成または更新し、閲覧ページへリダイレクトする。
// POST /wiki/{slug}/edit
func (h *WikiHandler) Save(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if err := h.service.SavePage(r.Context(), slug, r.PostFormValue("content"), user); err != nil {
		handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, view.PagePath(slug), http.StatusFound)
}

// View はページ本文とコメントを表示する。ページが無ければ編集ページへリダイレクトする。
// GET /wiki/{slug}
func (h *WikiHandler) View(w http.ResponseWriter, r *http.Request) {
	slug, page, ok := h.lookupPage(w, r)
	if !ok {
		return
	}

	comments, err := h.service.ListComments(r.Context(), slug)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	user := middleware.UserFromContext(r.Context())
	canEdit := wiki.CanMutate(user, page)
	writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return h.renderer.Page(out, user, page, comments, canEdit)
	})
}

// Comment はページにコメントを投稿し、303で同じURLへ戻す。
// POST /wiki/{slug}
// ページの存在確認をログイン確認より先に行う。
func (h *WikiHandler) Comment(w http.ResponseWriter, r *http.Request) {
	slug, _, ok := h.lookupPage(w, r)
	if !ok {
		return
	}

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	err := h.service.AddComment(r.Context(), slug, user, r.PostFormValue("content"))
	if errors.Is(err, repository.ErrPageNotFound) {
		http.Redirect(w, r, view.EditPath(slug), http.StatusFound)
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
}

// lookupPage はスラッグのページを取得する。
// 存在しない場合は編集ページへ302でリダイレクトし、okにfalseを返す。
func (h *WikiHandler) lookupPage(w http.ResponseWriter, r *http.Request) (string, *model.Page, bool) {
	slug, ok := slugParam(r)
	if !ok {
		http.NotFound(w, r)
		return "", nil, false
	}

	page, err := h.service.GetPage(r.Context(), slug)
	if err != nil {
		handleServiceError(w, r, err)
		return "", nil, false
	}
	if page == nil {
		http.Redirect(w, r, view.EditPath(slug), http.StatusFound)
		return "", nil, false
	}
	return slug, page, true
}

// slugParam はURLパスからスラッグを取り出す。
// chiはRawPathがある場合エスケープされたままの値でマッチするため、その場合のみデコードする。
func slugParam(r *http.Request) (string, bool) {
	slug := chi.URLParam(r, "slug")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(slug)
		if err != nil {
			return "", false
		}
		slug = unescaped
	}
	return slug, slug != ""
}
