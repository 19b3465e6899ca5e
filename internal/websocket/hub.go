package websocket

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Hub は全WebSocket接続を管理するレジストリ。
// clientsはRunのgoroutineのみが触るため、ロックではなくチャネルで直列化する
type Hub struct {
	// 接続中のクライアント
	clients map[*Client]bool

	// ブロードキャスト用チャネル
	broadcast chan []byte

	// クライアント登録用チャネル
	register chan *Client

	// クライアント登録解除用チャネル
	unregister chan *Client

	// 接続数（ClientCountから安全に読めるようにatomicで持つ）
	count atomic.Int64

	logger *zap.Logger
}

// NewHub は新しいHubを作成する
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run はHubのメインループを開始する
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			h.logger.Info("client registered",
				zap.String("clientID", client.id),
				zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			// 二重解除は何もしない
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.count.Store(int64(len(h.clients)))
				h.logger.Info("client unregistered",
					zap.String("clientID", client.id),
					zap.Int("total", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 送信バッファが詰まったクライアントは切り離す。
					// 残りのクライアントへの配信は継続する
					close(client.send)
					delete(h.clients, client)
					h.count.Store(int64(len(h.clients)))
					h.logger.Warn("client dropped: send buffer full",
						zap.String("clientID", client.id))
				}
			}
		}
	}
}

// Broadcast はペイロードを全クライアントへ配信する。
// 個々の接続の送信失敗は呼び出し側には伝わらない
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// ClientCount は接続中のクライアント数を返す
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
