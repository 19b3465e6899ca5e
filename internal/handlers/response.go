package handlers

import (
	"encoding/json"
	"net/http"
)

// エラーレスポンスのコード
const (
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeDuplicate        = "DUPLICATE_MESSAGE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrorDetail はエラーレスポンスの詳細部
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse は標準化されたエラーレスポンス
type ErrorResponse struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// SuccessResponse は標準化された成功レスポンス
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// WriteSuccess は成功レスポンスをエンベロープ形式で書き込む
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SuccessResponse{Status: "success", Data: data})
}

// WriteError はエラーレスポンスをエンベロープ形式で書き込む
func WriteError(w http.ResponseWriter, statusCode int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status: "error",
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
