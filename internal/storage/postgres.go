package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tasukuchiba/chat_message_api/internal/models"
)

// PostgresStorage はメッセージをPostgreSQLに保存するストレージ
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage は新しいPostgresStorageを作成する
func NewPostgresStorage(databaseURL string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// 接続プール設定
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 接続確認
	if err := db.Ping(); err != nil {
		return nil, err
	}

	storage := &PostgresStorage{db: db}

	// マイグレーション実行
	if err := storage.migrate(); err != nil {
		return nil, err
	}

	return storage, nil
}

// migrate はデータベーススキーマを作成する。
// idカラム（SERIAL）が挿入順を保持する
func (s *PostgresStorage) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS messages (
			id SERIAL PRIMARY KEY,
			message_id VARCHAR(255) NOT NULL UNIQUE,
			session_id VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			"timestamp" TIMESTAMP WITH TIME ZONE NOT NULL,
			sender VARCHAR(16) NOT NULL,
			word_count INTEGER NOT NULL,
			character_count INTEGER NOT NULL,
			processed_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save はメッセージを保存する。message_idの一意性はUNIQUE制約で保証する
func (s *PostgresStorage) Save(msg models.Message) error {
	query := `
		INSERT INTO messages (message_id, session_id, content, "timestamp", sender, word_count, character_count, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(query,
		msg.MessageID, msg.SessionID, msg.Content, msg.Timestamp,
		msg.Sender, msg.WordCount, msg.CharacterCount, msg.ProcessedAt)
	if err != nil {
		// 23505 = unique_violation
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// ListBySession は指定セッションのメッセージを挿入順で取得する
func (s *PostgresStorage) ListBySession(sessionID, sender string, skip, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return []models.Message{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	query := `
		SELECT message_id, session_id, content, "timestamp", sender, word_count, character_count, processed_at
		FROM messages
		WHERE session_id = $1
	`
	args := []interface{}{sessionID}
	if sender != "" {
		query += " AND sender = $2 ORDER BY id ASC OFFSET $3 LIMIT $4"
		args = append(args, sender, skip, limit)
	} else {
		query += " ORDER BY id ASC OFFSET $2 LIMIT $3"
		args = append(args, skip, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Search はcontentにqueryを含むメッセージを挿入順で取得する（ILIKEによる部分一致）
func (s *PostgresStorage) Search(query string, skip, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return []models.Message{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	stmt := `
		SELECT message_id, session_id, content, "timestamp", sender, word_count, character_count, processed_at
		FROM messages
		WHERE content ILIKE '%' || $1 || '%'
		ORDER BY id ASC
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.Query(stmt, escapeLike(query), skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Close はデータベース接続を閉じる
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// scanMessages は検索結果の行をMessageのスライスに変換する
func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Content, &msg.Timestamp,
			&msg.Sender, &msg.WordCount, &msg.CharacterCount, &msg.ProcessedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// nilではなく空のスライスを返す
	if messages == nil {
		messages = []models.Message{}
	}

	return messages, nil
}

// escapeLike はLIKE/ILIKEパターンのメタ文字をエスケープする
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
