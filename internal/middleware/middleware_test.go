package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasukuchiba/chat_message_api/internal/handlers"
)

const testAPIKey = "test-api-key"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth(testAPIKey, okHandler())

	tests := []struct {
		name           string
		key            string
		expectedStatus int
	}{
		{"valid key", testAPIKey, http.StatusOK},
		{"wrong key", "wrong-key", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/messages/s1", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusUnauthorized {
				var envelope handlers.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
				assert.Equal(t, handlers.CodeUnauthorized, envelope.Error.Code)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	// 容量2・補充1/秒のバケット: 3リクエスト目が拒否される
	bucket := NewTokenBucket(2, 1)
	handler := RateLimit(bucket, okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/messages/s1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/messages/s1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var envelope handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, handlers.CodeRateLimited, envelope.Error.Code)
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := NewTokenBucket(1, 1)

	require.True(t, bucket.Allow())
	require.False(t, bucket.Allow())

	// 補充時刻を過去にずらして補充を発生させる
	bucket.mu.Lock()
	bucket.lastRefill = bucket.lastRefill.Add(-2 * time.Second)
	bucket.mu.Unlock()

	assert.True(t, bucket.Allow())
}

func TestRequestLogging(t *testing.T) {
	handler := RequestLogging(zap.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/messages/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// ステータスはそのまま透過する
	assert.Equal(t, http.StatusCreated, rec.Code)
}
