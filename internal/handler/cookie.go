package handler

import (
	"net/http"

	"github.com/hitoshi/miniwiki/internal/auth"
)

// CookieConfig はセッションCookieの設定。
type CookieConfig struct {
	Secure bool
	MaxAge int // セッションCookieの有効期間（秒）
}

// setSessionCookie はauth_token Cookieを設定する。
func setSessionCookie(w http.ResponseWriter, config CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はauth_token Cookieを削除する。
// 属性は設定時と同じにする。
func clearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // Max-Age=0 として出力される
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
