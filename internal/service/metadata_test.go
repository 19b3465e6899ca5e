package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeMetadata(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		content       string
		expectedWords int
		expectedChars int
	}{
		{
			name:          "simple sentence",
			content:       "Hola mundo",
			expectedWords: 2,
			expectedChars: 10,
		},
		{
			name:          "empty content",
			content:       "",
			expectedWords: 0,
			expectedChars: 0,
		},
		{
			name:          "whitespace only",
			content:       "   \t\n  ",
			expectedWords: 0,
			expectedChars: 7,
		},
		{
			name:          "consecutive spaces count as one separator",
			content:       "uno  dos   tres",
			expectedWords: 3,
			expectedChars: 15,
		},
		{
			name: "filtered reference scenario",
			// マスク済み本文は52文字・11単語になる
			content:       "Este es un mensaje con una palabra **** y otra ****.",
			expectedWords: 11,
			expectedChars: 52,
		},
		{
			name:          "multibyte characters are counted as characters, not bytes",
			content:       "búsqueda",
			expectedWords: 1,
			expectedChars: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ComputeMetadata(tt.content, now)
			assert.Equal(t, tt.expectedWords, meta.WordCount)
			assert.Equal(t, tt.expectedChars, meta.CharacterCount)
			assert.Equal(t, now, meta.ProcessedAt)
		})
	}
}
