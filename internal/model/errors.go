// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はユーザーに提示するドメインエラーを表す。
// Messageはフォームの再描画やエラーレスポンスにそのまま表示される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, permission
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeSlugRequired       = "SLUG_REQUIRED"
	ErrCodeCommentTooLong     = "COMMENT_TOO_LONG"
	ErrCodeCommentLimit       = "COMMENT_LIMIT"
	ErrCodeEditForbidden      = "EDIT_FORBIDDEN"
)

// NewInvalidInputError は必須項目の未入力エラーを生成する。
func NewInvalidInputError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  "Username and password are required.",
		Category: "validation",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "Username already taken.",
		Category: "validation",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名とパスワードのどちらが誤っていたかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid username or password.",
		Category: "auth",
	}
}

// NewSlugRequiredError はスラッグ未入力エラーを生成する。
func NewSlugRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSlugRequired,
		Message:  "Slug is required",
		Category: "validation",
	}
}

// NewCommentTooLongError はコメント文字数超過エラーを生成する。
func NewCommentTooLongError(max int) *APIError {
	return &APIError{
		Code:     ErrCodeCommentTooLong,
		Message:  fmt.Sprintf("Comment cannot exceed %d characters.", max),
		Category: "validation",
	}
}

// NewCommentLimitError はページごとのコメント上限到達エラーを生成する。
func NewCommentLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentLimit,
		Message:  "Comment limit reached for this page.",
		Category: "permission",
	}
}

// NewEditForbiddenError はページ編集権限なしエラーを生成する。
func NewEditForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeEditForbidden,
		Message:  "You do not have permission to edit this page.",
		Category: "permission",
	}
}

// NewPasswordTooLongError はパスワード長超過エラーを生成する。
// bcryptは72バイトを超える入力を扱えない。
func NewPasswordTooLongError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  "Password must be at most 72 bytes.",
		Category: "validation",
	}
}
