package models

import "time"

// Sender の許容値
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// IsValidSender はsenderが許容値かどうかを判定する
func IsValidSender(sender string) bool {
	return sender == SenderUser || sender == SenderSystem
}

// Message は永続化されるチャットメッセージを表す構造体。
// Contentはフィルタ済みの本文のみを保持する（フィルタ前の本文は保存しない）
type Message struct {
	MessageID      string    `json:"message_id"`
	SessionID      string    `json:"session_id"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Sender         string    `json:"sender"`
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// Metadata はメッセージ処理時に算出されるメタデータ。
// CharacterCountはバイト数ではなく文字数（rune数）で数える
type Metadata struct {
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// MessageView はAPIレスポンスおよびWebSocket配信用の表現。
// メタデータをネストした形で返す
type MessageView struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Metadata  Metadata  `json:"metadata"`
}

// View はMessageをレスポンス用のMessageViewに変換する
func (m Message) View() MessageView {
	return MessageView{
		MessageID: m.MessageID,
		SessionID: m.SessionID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Sender:    m.Sender,
		Metadata: Metadata{
			WordCount:      m.WordCount,
			CharacterCount: m.CharacterCount,
			ProcessedAt:    m.ProcessedAt,
		},
	}
}
