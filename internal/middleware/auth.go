package middleware

import (
	"net/http"

	"github.com/tasukuchiba/chat_message_api/internal/handlers"
)

// APIKeyHeader は認証キーを渡すヘッダー名
const APIKeyHeader = "X-API-Key"

// APIKeyAuth はX-API-Keyヘッダーを検証するミドルウェア。
// キーが一致しないリクエストは後続のハンドラーに到達しない
func APIKeyAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(APIKeyHeader) != apiKey {
			handlers.WriteError(w, http.StatusUnauthorized, handlers.CodeUnauthorized,
				"invalid or missing API key", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
