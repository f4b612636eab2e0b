// Package auth はセッショントークンの発行・検証、ユーザー登録とログインを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/miniwiki/internal/model"
	"github.com/hitoshi/miniwiki/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int
}

// Service はユーザー登録とログインのビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokens    TokenIssuer
	config    ServiceConfig
	dummyHash []byte
}

// NewService はServiceを生成する。
// 存在しないユーザーでのログイン時にも同等のコストで比較するため、ダミーハッシュを事前に生成する。
func NewService(userRepo repository.UserRepository, tokens TokenIssuer, config ServiceConfig) (*Service, error) {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("miniwiki-dummy-password"), config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		userRepo:  userRepo,
		tokens:    tokens,
		config:    config,
		dummyHash: dummy,
	}, nil
}

// Register はユーザーを登録し、ログイン済みのセッショントークンを返す。
// ユーザー名とパスワードはどちらも必須。ユーザー名が既に使われている場合はエラーを返す。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, string, error) {
	if username == "" || password == "" {
		return nil, "", model.NewInvalidInputError()
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewUsernameTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, "", model.NewPasswordTooLongError()
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	// 事前確認後に同名ユーザーが作成された場合はユニーク制約で検出する
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, "", model.NewUsernameTakenError()
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}

// Login はユーザー名とパスワードを検証し、セッショントークンを返す。
// ユーザーが存在しない場合とパスワードが一致しない場合は同じエラーを返す。
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		slog.Info("login failed", slog.String("reason", "unknown_user"))
		return nil, "", model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Info("login failed",
			slog.String("reason", "password_mismatch"),
			slog.Int64("user_id", user.ID),
		)
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return user, token, nil
}
