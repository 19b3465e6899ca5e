package storage

import (
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/tasukuchiba/chat_message_api/internal/models"
)

// MemoryStorage はメッセージをメモリ上に保存するストレージ。
// スライスが挿入順を保持し、idsがmessage_idの一意性を保証する
type MemoryStorage struct {
	mu       sync.RWMutex
	messages []models.Message
	ids      map[string]struct{}
}

// NewMemoryStorage は新しいMemoryStorageを作成する
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages: make([]models.Message, 0),
		ids:      make(map[string]struct{}),
	}
}

// Save はメッセージを保存する
func (s *MemoryStorage) Save(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[msg.MessageID]; ok {
		return ErrDuplicateID
	}
	s.ids[msg.MessageID] = struct{}{}
	s.messages = append(s.messages, msg)
	return nil
}

// ListBySession は指定セッションのメッセージを挿入順で取得する
func (s *MemoryStorage) ListBySession(sessionID, sender string, skip, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(s.messages, func(msg models.Message, _ int) bool {
		if msg.SessionID != sessionID {
			return false
		}
		return sender == "" || msg.Sender == sender
	})
	return paginate(matched, skip, limit), nil
}

// Search はcontentにqueryを含むメッセージを挿入順で取得する
func (s *MemoryStorage) Search(query string, skip, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(query)
	matched := lo.Filter(s.messages, func(msg models.Message, _ int) bool {
		return strings.Contains(strings.ToLower(msg.Content), lower)
	})
	return paginate(matched, skip, limit), nil
}
