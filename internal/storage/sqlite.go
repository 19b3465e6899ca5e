package storage

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/tasukuchiba/chat_message_api/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL UNIQUE,
    session_id TEXT NOT NULL,
    content TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    sender TEXT NOT NULL,
    word_count INTEGER NOT NULL,
    character_count INTEGER NOT NULL,
    processed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
`

// SQLiteStorage はメッセージをSQLiteに保存するストレージ
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage は新しいSQLiteStorageを作成する
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

// Save はメッセージを保存する
func (s *SQLiteStorage) Save(msg models.Message) error {
	query := `
		INSERT INTO messages (message_id, session_id, content, timestamp, sender, word_count, character_count, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		msg.MessageID, msg.SessionID, msg.Content, msg.Timestamp,
		msg.Sender, msg.WordCount, msg.CharacterCount, msg.ProcessedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// ListBySession は指定セッションのメッセージを挿入順で取得する
func (s *SQLiteStorage) ListBySession(sessionID, sender string, skip, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return []models.Message{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	query := `
		SELECT message_id, session_id, content, timestamp, sender, word_count, character_count, processed_at
		FROM messages
		WHERE session_id = ?
	`
	args := []interface{}{sessionID}
	if sender != "" {
		query += " AND sender = ?"
		args = append(args, sender)
	}
	query += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Search はcontentにqueryを含むメッセージを挿入順で取得する。
// SQLiteのlower()はASCIIのみ対応のため、非ASCII文字の大文字小文字は区別される
func (s *SQLiteStorage) Search(query string, skip, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return []models.Message{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	stmt := `
		SELECT message_id, session_id, content, timestamp, sender, word_count, character_count, processed_at
		FROM messages
		WHERE instr(lower(content), lower(?)) > 0
		ORDER BY id ASC LIMIT ? OFFSET ?
	`
	rows, err := s.db.Query(stmt, query, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Close はデータベース接続を閉じる
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
