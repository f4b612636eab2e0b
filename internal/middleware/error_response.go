package middleware

import (
	"net/http"

	"github.com/hitoshi/miniwiki/internal/model"
)

// WriteErrorResponse はフォームを再描画しないエラーをプレーンテキストで書き込む。
// 本文はAPIErrorのMessageのみ。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	http.Error(w, apiErr.Message, statusCode)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
