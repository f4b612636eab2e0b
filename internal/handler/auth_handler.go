// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/miniwiki/internal/model"
	"github.com/hitoshi/miniwiki/internal/view"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password string) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
}

// AuthEventRecorder は認証イベントを記録するインターフェース。
type AuthEventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// AuthHandler はユーザー登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	renderer view.Renderer
	cookies  CookieConfig
	recorder AuthEventRecorder
}

// NewAuthHandler はAuthHandlerを生成する。recorderはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, renderer view.Renderer, cookies CookieConfig, recorder AuthEventRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		cookies:  cookies,
		recorder: recorder,
	}
}

// ShowRegister は登録フォームを表示する。
// GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return h.renderer.Register(out, "")
	})
}

// Register はユーザーを登録し、そのままログイン状態にする。
// POST /register
// 入力エラーと重複はフォームを再描画して返す。ログイン済みユーザーも登録できる。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	_, token, err := h.service.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	h.record("register", err)
	if err != nil {
		h.renderFormError(w, r, err, h.renderer.Register)
		return
	}

	setSessionCookie(w, h.cookies, token)
	http.Redirect(w, r, "/wiki", http.StatusFound)
}

// ShowLogin はログインフォームを表示する。
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return h.renderer.Login(out, "")
	})
}

// Login はユーザー名とパスワードを検証し、セッションCookieを設定する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	_, token, err := h.service.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	h.record("login", err)
	if err != nil {
		h.renderFormError(w, r, err, h.renderer.Login)
		return
	}

	setSessionCookie(w, h.cookies, token)
	http.Redirect(w, r, "/wiki", http.StatusFound)
}

// Logout はセッションCookieを削除する。トークンはステートレスなため検証しない。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.record("logout", nil)
	clearSessionCookie(w, h.cookies)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// renderFormError はAPIErrorのメッセージを載せてフォームを再描画する。
func (h *AuthHandler) renderFormError(w http.ResponseWriter, r *http.Request, err error, form func(io.Writer, string) error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		handleServiceError(w, r, err)
		return
	}

	writeHTML(w, r, mapAPIErrorToHTTPStatus(apiErr), func(out io.Writer) error {
		return form(out, apiErr.Message)
	})
}

func (h *AuthHandler) record(event string, err error) {
	if h.recorder == nil {
		return
	}
	outcome := "ok"
	var apiErr *model.APIError
	switch {
	case errors.As(err, &apiErr):
		outcome = apiErr.Code
	case err != nil:
		outcome = "error"
	}
	h.recorder.RecordAuthEvent(event, outcome)
}
