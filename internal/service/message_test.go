package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasukuchiba/chat_message_api/internal/models"
	"github.com/tasukuchiba/chat_message_api/internal/storage"
)

// fakeNotifier はブロードキャストされたペイロードを記録するNotifier
type fakeNotifier struct {
	payloads [][]byte
}

func (f *fakeNotifier) Broadcast(payload []byte) {
	f.payloads = append(f.payloads, payload)
}

func newTestService(notifier Notifier) (*MessageService, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	filter := NewContentFilter([]string{"inapropiada", "prohibida"})
	svc := NewMessageService(store, filter, notifier, zap.NewNop())
	return svc, store
}

func TestMessageService_Submit(t *testing.T) {
	req := require.New(t)
	notifier := &fakeNotifier{}
	svc, store := newTestService(notifier)

	// 処理時刻を固定する
	processedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return processedAt }

	timestamp := time.Date(2026, 3, 1, 9, 29, 0, 0, time.UTC)
	view, err := svc.Submit(SubmitRequest{
		MessageID: "msg-1",
		SessionID: "s1",
		Content:   "Este es un mensaje con una palabra inapropiada y otra prohibida.",
		Timestamp: timestamp,
		Sender:    models.SenderUser,
	})
	req.NoError(err)

	// レスポンスにはフィルタ済み本文とメタデータが入る
	assert.Equal(t, "msg-1", view.MessageID)
	assert.Equal(t, "Este es un mensaje con una palabra **** y otra ****.", view.Content)
	assert.Equal(t, 11, view.Metadata.WordCount)
	assert.Equal(t, 52, view.Metadata.CharacterCount)
	assert.Equal(t, processedAt, view.Metadata.ProcessedAt)
	assert.Equal(t, timestamp, view.Timestamp)

	// 保存されるのはフィルタ済み本文のみ（フィルタ前の本文はどこにも残らない）
	messages, err := store.ListBySession("s1", "", 0, 100)
	req.NoError(err)
	req.Len(messages, 1)
	assert.Equal(t, "Este es un mensaje con una palabra **** y otra ****.", messages[0].Content)

	// 保存成功後にビューがそのままブロードキャストされる
	req.Len(notifier.payloads, 1)
	var broadcast models.MessageView
	req.NoError(json.Unmarshal(notifier.payloads[0], &broadcast))
	assert.Equal(t, view, broadcast)
}

func TestMessageService_Submit_InvalidSender(t *testing.T) {
	req := require.New(t)
	notifier := &fakeNotifier{}
	svc, store := newTestService(notifier)

	_, err := svc.Submit(SubmitRequest{
		MessageID: "msg-1",
		SessionID: "s1",
		Content:   "hola",
		Timestamp: time.Now(),
		Sender:    "invalid_sender",
	})
	req.ErrorIs(err, ErrInvalidSender)

	// 検証エラー時は何も保存されずブロードキャストもされない
	messages, err := store.ListBySession("s1", "", 0, 100)
	req.NoError(err)
	req.Empty(messages)
	req.Empty(notifier.payloads)
}

func TestMessageService_Submit_DuplicateID(t *testing.T) {
	req := require.New(t)
	notifier := &fakeNotifier{}
	svc, store := newTestService(notifier)

	submit := func(content string) error {
		_, err := svc.Submit(SubmitRequest{
			MessageID: "msg-1",
			SessionID: "s1",
			Content:   content,
			Timestamp: time.Now(),
			Sender:    models.SenderUser,
		})
		return err
	}

	req.NoError(submit("first"))
	req.ErrorIs(submit("second"), storage.ErrDuplicateID)

	// 最初の1件だけが残り、ブロードキャストも1回だけ
	messages, err := store.ListBySession("s1", "", 0, 100)
	req.NoError(err)
	req.Len(messages, 1)
	assert.Equal(t, "first", messages[0].Content)
	req.Len(notifier.payloads, 1)
}

func TestMessageService_Submit_NilNotifier(t *testing.T) {
	svc, _ := newTestService(nil)

	// Notifierが無くても投稿は成功する
	_, err := svc.Submit(SubmitRequest{
		MessageID: "msg-1",
		SessionID: "s1",
		Content:   "hola",
		Timestamp: time.Now(),
		Sender:    models.SenderSystem,
	})
	require.NoError(t, err)
}

func TestMessageService_ListBySession_Search(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(&fakeNotifier{})

	contents := []string{"Hola mundo de la búsqueda", "Otro mensaje para buscar", "Mundo feliz"}
	for i, c := range contents {
		_, err := svc.Submit(SubmitRequest{
			MessageID: string(rune('a' + i)),
			SessionID: "s1",
			Content:   c,
			Timestamp: time.Now(),
			Sender:    models.SenderUser,
		})
		req.NoError(err)
	}

	messages, err := svc.ListBySession("s1", models.SenderUser, 0, 100)
	req.NoError(err)
	req.Len(messages, 3)

	found, err := svc.Search("mundo", 0, 100)
	req.NoError(err)
	req.Len(found, 2)
	assert.Equal(t, "Hola mundo de la búsqueda", found[0].Content)
	assert.Equal(t, "Mundo feliz", found[1].Content)
}
