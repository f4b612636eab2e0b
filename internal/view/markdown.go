package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownRenderer はMarkdownをサニタイズ済みのHTMLに変換する。
// 生のHTMLはgoldmarkが出力せず、変換結果はさらにbluemondayの許可リストを通す。
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdownRenderer はMarkdownRendererを生成する。
// ポリシーの内容:
//   - 許可タグ: 見出し、段落、リスト、引用、コード、表、強調、打ち消し線、hr、a、img
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - a, imgのURL: http, https, mailto と相対URL（ページ間リンク）
//   - 外部リンク: target="_blank" と rel="noopener noreferrer" を自動付与
func NewMarkdownRenderer() *MarkdownRenderer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "del",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("th", "td")
	// コードブロックの言語指定 (class="language-go")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("title").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// タスクリストのチェックボックス
	p.AllowAttrs("type").Matching(bluemonday.SpaceSeparatedTokens).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	return &MarkdownRenderer{
		md:     md,
		policy: p,
	}
}

// Render はMarkdownをHTMLに変換する。
func (m *MarkdownRenderer) Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	// 出力はポリシーでサニタイズ済み
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes())), nil
}

// PagePath はスラッグの閲覧ページのパスを返す。
func PagePath(slug string) string {
	return "/wiki/" + url.PathEscape(slug)
}

// EditPath はスラッグの編集ページのパスを返す。
func EditPath(slug string) string {
	return PagePath(slug) + "/edit"
}
