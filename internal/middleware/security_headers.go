package middleware

import (
	"net/http"
	"strings"
)

// wikiCSPDirectives はテンプレートが必要とするものだけを許可する。
//   - スクリプトは一切使わない
//   - layout.htmlのインライン<style>のみ許可
//   - Markdownの画像はhttp(s)の外部URLも表示する
//   - フォームの送信先は自サイトのみ（/login, /register, /logout, /wiki/...）
var wikiCSPDirectives = []string{
	"default-src 'none'",
	"script-src 'none'",
	"style-src 'unsafe-inline'",
	"img-src 'self' http: https: data:",
	"form-action 'self'",
	"base-uri 'none'",
	"frame-ancestors 'none'",
}

// contentSecurityPolicy はContent-Security-Policyヘッダーの値。
var contentSecurityPolicy = strings.Join(wikiCSPDirectives, "; ")

// NewSecurityHeadersMiddleware はWikiの全レスポンスに付けるセキュリティヘッダーのミドルウェアを返す。
// 描画結果はログイン中のユーザー名を含むため、共有キャッシュに残さない。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			h.Set("Cache-Control", "private, no-store")
			next.ServeHTTP(w, r)
		})
	}
}
