// Package view はHTMLページの描画を提供する。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/hitoshi/miniwiki/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer はハンドラーが利用するページ描画のインターフェース。
// 各メソッドは完全なHTMLドキュメントをwに書き込む。
type Renderer interface {
	Index(w io.Writer, user *model.User, slugs []string) error
	Page(w io.Writer, user *model.User, page *model.Page, comments []model.Comment, canEdit bool) error
	Edit(w io.Writer, user *model.User, slug, content string) error
	NewPage(w io.Writer, user *model.User) error
	Login(w io.Writer, errMsg string) error
	Register(w io.Writer, errMsg string) error
}

// PageSettings はページ描画に使う上限値。
type PageSettings struct {
	MaxCommentLength   int
	MaxCommentsPerPage int
}

// renderedComment はMarkdown変換済みのコメント。
type renderedComment struct {
	model.Comment
	HTML template.HTML
}

// viewData はテンプレートに渡す値。ページごとに使うフィールドが異なる。
type viewData struct {
	Title string
	User  *model.User
	Error string

	Slugs []string

	Page             *model.Page
	PageHTML         template.HTML
	Comments         []renderedComment
	CanEdit          bool
	CommentsOpen     bool
	MaxCommentLength int

	Slug    string
	Content string
}

// HTMLRenderer はhtml/templateによるRendererの実装。
type HTMLRenderer struct {
	templates map[string]*template.Template
	markdown  *MarkdownRenderer
	settings  PageSettings
}

// NewHTMLRenderer は埋め込みテンプレートを読み込みHTMLRendererを生成する。
func NewHTMLRenderer(markdown *MarkdownRenderer, settings PageSettings) (*HTMLRenderer, error) {
	funcs := template.FuncMap{
		"pagePath": PagePath,
		"editPath": EditPath,
	}

	pages := []string{"index", "page", "edit", "new", "login", "register"}
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &HTMLRenderer{
		templates: templates,
		markdown:  markdown,
		settings:  settings,
	}, nil
}

// Index はページ一覧を描画する。
func (r *HTMLRenderer) Index(w io.Writer, user *model.User, slugs []string) error {
	return r.execute(w, "index", viewData{
		Title: "miniwiki",
		User:  user,
		Slugs: slugs,
	})
}

// Page はページ本文とコメント一覧を描画する。
// canEditがtrueの場合のみ編集リンクを表示する。
func (r *HTMLRenderer) Page(w io.Writer, user *model.User, page *model.Page, comments []model.Comment, canEdit bool) error {
	body, err := r.markdown.Render(page.Content)
	if err != nil {
		return err
	}

	rendered := make([]renderedComment, len(comments))
	for i, c := range comments {
		html, err := r.markdown.Render(c.Content)
		if err != nil {
			return err
		}
		rendered[i] = renderedComment{Comment: c, HTML: html}
	}

	return r.execute(w, "page", viewData{
		Title:            page.Title,
		User:             user,
		Page:             page,
		PageHTML:         body,
		Comments:         rendered,
		CanEdit:          canEdit,
		CommentsOpen:     len(comments) < r.settings.MaxCommentsPerPage,
		MaxCommentLength: r.settings.MaxCommentLength,
	})
}

// Edit は編集フォームを描画する。新規ページの場合contentは空文字列。
func (r *HTMLRenderer) Edit(w io.Writer, user *model.User, slug, content string) error {
	return r.execute(w, "edit", viewData{
		Title:   "Editing: " + slug,
		User:    user,
		Slug:    slug,
		Content: content,
	})
}

// NewPage はスラッグ入力フォームを描画する。
func (r *HTMLRenderer) NewPage(w io.Writer, user *model.User) error {
	return r.execute(w, "new", viewData{
		Title: "New Wiki Page",
		User:  user,
	})
}

// Login はログインフォームを描画する。errMsgが空でなければフォーム上部に表示する。
func (r *HTMLRenderer) Login(w io.Writer, errMsg string) error {
	return r.execute(w, "login", viewData{
		Title: "Login",
		Error: errMsg,
	})
}

// Register は登録フォームを描画する。
func (r *HTMLRenderer) Register(w io.Writer, errMsg string) error {
	return r.execute(w, "register", viewData{
		Title: "Register",
		Error: errMsg,
	})
}

func (r *HTMLRenderer) execute(w io.Writer, name string, data viewData) error {
	if err := r.templates[name].ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
