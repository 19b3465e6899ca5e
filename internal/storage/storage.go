package storage

import (
	"errors"

	"github.com/tasukuchiba/chat_message_api/internal/models"
)

// ErrDuplicateID は同じmessage_idのメッセージが既に存在する場合のエラー
var ErrDuplicateID = errors.New("message_id already exists")

// Storage はメッセージストレージのインターフェース。
// メッセージは作成後に更新・削除されない前提で、書き込みはSaveのみ
type Storage interface {
	// Save はメッセージを保存する。message_idが重複する場合はErrDuplicateIDを返す
	Save(msg models.Message) error

	// ListBySession は指定セッションのメッセージを挿入順で取得する。
	// senderが空でない場合はsenderで絞り込む。limit <= 0 の場合は空スライスを返す
	ListBySession(sessionID, sender string, skip, limit int) ([]models.Message, error)

	// Search はcontentにqueryを含むメッセージを挿入順で取得する（大文字小文字を区別しない）
	Search(query string, skip, limit int) ([]models.Message, error)
}

// paginate はskip/limitによるページングを適用する。
// skipが件数を超える場合とlimit <= 0の場合は空スライスを返す
func paginate(msgs []models.Message, skip, limit int) []models.Message {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(msgs) || limit <= 0 {
		return []models.Message{}
	}
	end := skip + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	result := make([]models.Message, end-skip)
	copy(result, msgs[skip:end])
	return result
}
