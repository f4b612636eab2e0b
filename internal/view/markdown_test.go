package view

import (
	"strings"
	"testing"
)

func render(t *testing.T, source string) string {
	t.Helper()
	got, err := NewMarkdownRenderer().Render(source)
	if err != nil {
		t.Fatalf("Render(%q) error = %v", source, err)
	}
	return string(got)
}

// TestRender_BasicMarkdown はMarkdownの基本要素がHTMLに変換されることを検証する。
func TestRender_BasicMarkdown(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{"見出し", "# タイトル", []string{"<h1>タイトル</h1>"}},
		{"段落と強調", "これは **太字** と *斜体*", []string{"<p>", "<strong>太字</strong>", "<em>斜体</em>"}},
		{"リスト", "- 項目1\n- 項目2", []string{"<ul>", "<li>項目1</li>", "<li>項目2</li>"}},
		{"コードブロック", "```go\nfmt.Println(1)\n```", []string{"<pre>", `<code class="language-go">`}},
		{"打ち消し線", "~~古い~~", []string{"<del>古い</del>"}},
		{"表", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<th>a</th>", "<td>2</td>"}},
		{"引用", "> 引用文", []string{"<blockquote>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestRender_Links はリンクの属性が制御されることを検証する。
func TestRender_Links(t *testing.T) {
	external := render(t, "[外部](https://example.com)")
	for _, want := range []string{`href="https://example.com"`, `target="_blank"`, "noopener", "noreferrer"} {
		if !strings.Contains(external, want) {
			t.Errorf("external link = %q, want to contain %q", external, want)
		}
	}

	internal := render(t, "[別ページ](/wiki/other)")
	if !strings.Contains(internal, `href="/wiki/other"`) {
		t.Errorf("internal link = %q, want relative href", internal)
	}
	if strings.Contains(internal, `target="_blank"`) {
		t.Errorf("internal link = %q, should not open a new tab", internal)
	}
}

// TestRender_XSSPayloads は典型的なXSSペイロードが無害化されることを検証する。
func TestRender_XSSPayloads(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAbsent []string
	}{
		{
			name:       "scriptタグ",
			input:      "<script>alert('xss')</script>",
			wantAbsent: []string{"<script", "alert"},
		},
		{
			name:       "SVG onloadによるXSS",
			input:      `<svg onload="alert('xss')">`,
			wantAbsent: []string{"<svg", "onload", "alert"},
		},
		{
			name:       "インラインのimg onerror",
			input:      `テキスト <img src="x" onerror="alert('xss')">`,
			wantAbsent: []string{"onerror", "alert"},
		},
		{
			name:       "Markdownリンクのjavascript URI",
			input:      "[クリック](javascript:alert('xss'))",
			wantAbsent: []string{"javascript:"},
		},
		{
			name:       "生HTMLのjavascript URI",
			input:      `<a href="javascript:alert('xss')">クリック</a>`,
			wantAbsent: []string{"javascript:"},
		},
		{
			name:       "style属性",
			input:      `<p style="background:url(javascript:alert('xss'))">テスト</p>`,
			wantAbsent: []string{"style=", "javascript:"},
		},
		{
			name:       "iframe",
			input:      `<iframe src="https://evil.example"></iframe>`,
			wantAbsent: []string{"<iframe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(strings.ToLower(got), strings.ToLower(absent)) {
					t.Errorf("Render(%q) = %q, should NOT contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestRender_Empty は空文字列が空のHTMLになることを検証する。
func TestRender_Empty(t *testing.T) {
	if got := render(t, ""); strings.TrimSpace(got) != "" {
		t.Errorf("Render(\"\") = %q, want empty", got)
	}
}

// TestRender_Idempotent は同一入力に対して同一出力を返すことを検証する。
func TestRender_Idempotent(t *testing.T) {
	m := NewMarkdownRenderer()
	input := "# 見出し\n\n[link](https://example.com) <b>raw</b>"

	first, _ := m.Render(input)
	second, _ := m.Render(input)
	if first != second {
		t.Errorf("Render is not deterministic: %q vs %q", first, second)
	}
}

func TestPaths_EscapeSlug(t *testing.T) {
	tests := []struct {
		slug     string
		wantPage string
		wantEdit string
	}{
		{"home", "/wiki/home", "/wiki/home/edit"},
		{"hello world", "/wiki/hello%20world", "/wiki/hello%20world/edit"},
		{"a?b#c", "/wiki/a%3Fb%23c", "/wiki/a%3Fb%23c/edit"},
		{"日本語", "/wiki/%E6%97%A5%E6%9C%AC%E8%AA%9E", "/wiki/%E6%97%A5%E6%9C%AC%E8%AA%9E/edit"},
	}
	for _, tt := range tests {
		if got := PagePath(tt.slug); got != tt.wantPage {
			t.Errorf("PagePath(%q) = %q, want %q", tt.slug, got, tt.wantPage)
		}
		if got := EditPath(tt.slug); got != tt.wantEdit {
			t.Errorf("EditPath(%q) = %q, want %q", tt.slug, got, tt.wantEdit)
		}
	}
}
