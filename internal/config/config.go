package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション全体の設定
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	StorageType string `envconfig:"STORAGE_TYPE" default:"memory"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"messages.db"`

	// APIKey は X-API-Key ヘッダーで照合する固定キー。
	// 本番環境ではシークレットストアから注入すること
	APIKey string `envconfig:"API_KEY" default:"my-super-secret-key"`

	// BannedWords はカンマ区切りの禁止語リスト
	BannedWords []string `envconfig:"BANNED_WORDS" default:"inapropiada,prohibida,baneada"`

	// レートリミット（トークンバケット）の設定
	RateLimitCapacity int64 `envconfig:"RATE_LIMIT_CAPACITY" default:"100"`
	RateLimitRefill   int64 `envconfig:"RATE_LIMIT_REFILL" default:"50"`
}

// Load は環境変数からConfigを読み込む
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	// 空要素や前後の空白を除去しておく
	words := make([]string, 0, len(cfg.BannedWords))
	for _, w := range cfg.BannedWords {
		w = strings.TrimSpace(w)
		if w != "" {
			words = append(words, w)
		}
	}
	cfg.BannedWords = words
	return cfg, nil
}
