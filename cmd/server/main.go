package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tasukuchiba/chat_message_api/internal/config"
	"github.com/tasukuchiba/chat_message_api/internal/handlers"
	"github.com/tasukuchiba/chat_message_api/internal/middleware"
	"github.com/tasukuchiba/chat_message_api/internal/service"
	"github.com/tasukuchiba/chat_message_api/internal/storage"
	"github.com/tasukuchiba/chat_message_api/internal/websocket"
)

func main() {
	// .envがあれば読み込む（なくてもよい）
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ストレージの初期化
	store, cleanup := initStorage(cfg, logger)
	if cleanup != nil {
		defer cleanup()
	}

	// WebSocket Hub（接続レジストリ）の初期化と起動
	hub := websocket.NewHub(logger)
	go hub.Run()

	// パイプラインとハンドラーの初期化
	filter := service.NewContentFilter(cfg.BannedWords)
	svc := service.NewMessageService(store, filter, hub, logger)
	messageHandler := handlers.NewMessageHandler(svc, logger)

	// /api 配下は 認証 → レートリミット の順で通す
	bucket := middleware.NewTokenBucket(cfg.RateLimitCapacity, cfg.RateLimitRefill)
	api := middleware.RequestLogging(logger,
		middleware.APIKeyAuth(cfg.APIKey,
			middleware.RateLimit(bucket,
				http.HandlerFunc(messageHandler.HandleMessages))))

	mux := http.NewServeMux()
	mux.Handle("/api/messages/", api)

	// WebSocketエンドポイント（ルーターのプレフィックス/wsの下に/ws/messagesを置く）
	mux.HandleFunc("/ws/ws/messages", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(hub, w, r)
	})

	// ルートとヘルスチェック
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to the Chat Message API"}`))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr), zap.String("storage", cfg.StorageType))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server failed to start", zap.Error(err))
	}
}

// initStorage は設定に基づいてストレージを初期化する
func initStorage(cfg config.Config, logger *zap.Logger) (storage.Storage, func()) {
	switch cfg.StorageType {
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is required when STORAGE_TYPE=postgres")
		}
		store, err := storage.NewPostgresStorage(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
		}
		logger.Info("using PostgreSQL storage")
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("error closing database connection", zap.Error(err))
			}
		}

	case "sqlite":
		store, err := storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("failed to open SQLite database",
				zap.Error(err),
				zap.String("path", cfg.SQLitePath))
		}
		logger.Info("using SQLite storage", zap.String("path", cfg.SQLitePath))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("error closing database connection", zap.Error(err))
			}
		}

	default:
		logger.Info("using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}
}
