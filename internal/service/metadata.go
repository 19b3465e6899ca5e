package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tasukuchiba/chat_message_api/internal/models"
)

// ComputeMetadata はフィルタ済み本文からメタデータを算出する。
// 文字数はバイト数ではなくrune数で数える（クライアント側の文字数と一致させるため）。
// nowは呼び出し側が渡す（テストで時刻を固定できるようにするため）
func ComputeMetadata(filteredContent string, now time.Time) models.Metadata {
	return models.Metadata{
		WordCount:      len(strings.Fields(filteredContent)),
		CharacterCount: utf8.RuneCountInString(filteredContent),
		ProcessedAt:    now,
	}
}
