package service

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tasukuchiba/chat_message_api/internal/models"
	"github.com/tasukuchiba/chat_message_api/internal/storage"
)

// ErrInvalidSender はsenderが許容値（user/system）以外の場合のエラー
var ErrInvalidSender = errors.New("sender must be 'user' or 'system'")

// Notifier は新着メッセージをリアルタイム購読者へ配信するインターフェース。
// 配信の成否は呼び出し側に通知されない（fire-and-forget）
type Notifier interface {
	Broadcast(payload []byte)
}

// SubmitRequest はメッセージ投稿の入力
type SubmitRequest struct {
	MessageID string
	SessionID string
	Content   string
	Timestamp time.Time
	Sender    string
}

// MessageService はメッセージ処理のパイプラインを担う。
// フィルタ → メタデータ算出 → 永続化 → レスポンス → ブロードキャストの順に処理する
type MessageService struct {
	storage  storage.Storage
	filter   *ContentFilter
	notifier Notifier
	logger   *zap.Logger

	// now は処理時刻の取得関数（テスト用に差し替え可能）
	now func() time.Time
}

// NewMessageService は新しいMessageServiceを作成する
func NewMessageService(store storage.Storage, filter *ContentFilter, notifier Notifier, logger *zap.Logger) *MessageService {
	return &MessageService{
		storage:  store,
		filter:   filter,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit はメッセージを処理して保存し、レスポンス用のビューを返す。
// message_idが重複する場合はstorage.ErrDuplicateIDを返す（事前チェックはせず、
// ストレージの一意性制約に委ねる）
func (s *MessageService) Submit(req SubmitRequest) (models.MessageView, error) {
	if !models.IsValidSender(req.Sender) {
		return models.MessageView{}, ErrInvalidSender
	}

	// フィルタは破壊的: 以降の処理はフィルタ済み本文のみを参照する
	req.Content = s.filter.Apply(req.Content)

	meta := ComputeMetadata(req.Content, s.now())

	msg := models.Message{
		MessageID:      req.MessageID,
		SessionID:      req.SessionID,
		Content:        req.Content,
		Timestamp:      req.Timestamp,
		Sender:         req.Sender,
		WordCount:      meta.WordCount,
		CharacterCount: meta.CharacterCount,
		ProcessedAt:    meta.ProcessedAt,
	}

	if err := s.storage.Save(msg); err != nil {
		return models.MessageView{}, err
	}

	view := msg.View()

	// 保存成功後のブロードキャストはベストエフォート。
	// 失敗してもSubmitの結果には影響しない
	s.notify(view)

	return view, nil
}

// ListBySession は指定セッションのメッセージを取得する
func (s *MessageService) ListBySession(sessionID, sender string, skip, limit int) ([]models.Message, error) {
	return s.storage.ListBySession(sessionID, sender, skip, limit)
}

// Search はcontentにqueryを含むメッセージを取得する
func (s *MessageService) Search(query string, skip, limit int) ([]models.Message, error) {
	return s.storage.Search(query, skip, limit)
}

// notify はビューをJSONにシリアライズして購読者へ配信する
func (s *MessageService) notify(view models.MessageView) {
	if s.notifier == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.Error("failed to serialize message for broadcast",
			zap.Error(err),
			zap.String("messageID", view.MessageID))
		return
	}
	s.notifier.Broadcast(data)
}
