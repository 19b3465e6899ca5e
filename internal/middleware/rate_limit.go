package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/tasukuchiba/chat_message_api/internal/handlers"
)

// TokenBucket はトークンバケット方式のレートリミッター
type TokenBucket struct {
	capacity   int64     // バケット容量
	tokens     int64     // 現在のトークン数
	refillRate int64     // 毎秒補充するトークン数
	lastRefill time.Time // 前回の補充時刻
	mu         sync.Mutex
}

// NewTokenBucket は新しいTokenBucketを作成する
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow はリクエストを許可するかどうかを判定する
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 経過時間ぶんのトークンを補充
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int64(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit はトークンバケットによるレートリミットミドルウェア
func RateLimit(bucket *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !bucket.Allow() {
			handlers.WriteError(w, http.StatusTooManyRequests, handlers.CodeRateLimited,
				"too many requests", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
