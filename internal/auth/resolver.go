package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/miniwiki/internal/model"
)

// CookieName はセッショントークンを保持するCookieの名前。
const CookieName = "auth_token"

// TokenVerifier はトークン検証のインターフェース。
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserFinder はユーザー検索のインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionResolver はリクエストのCookieからログイン中のユーザーを解決する。
type SessionResolver struct {
	tokens TokenVerifier
	users  UserFinder
}

// NewSessionResolver はSessionResolverを生成する。
func NewSessionResolver(tokens TokenVerifier, users UserFinder) *SessionResolver {
	return &SessionResolver{
		tokens: tokens,
		users:  users,
	}
}

// Resolve はauth_token Cookieを検証し、対応するユーザーを返す。
// Cookieが無い、トークンが無効、ユーザーが存在しない、ストレージエラーのいずれの場合もnilを返す。
// 認証エラーは呼び出し側に伝播させず、匿名アクセスとして扱う。
func (s *SessionResolver) Resolve(r *http.Request) *model.User {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	userID, err := s.tokens.Verify(cookie.Value)
	if err != nil {
		slog.Debug("session token rejected",
			slog.String("error", err.Error()),
		)
		return nil
	}

	user, err := s.users.FindByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to resolve session user",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	// トークンは有効だがユーザーが削除済みの場合もnil
	return user
}
