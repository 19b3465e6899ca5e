package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentFilter_Apply(t *testing.T) {
	tests := []struct {
		name     string
		banned   []string
		content  string
		expected string
	}{
		{
			name:     "no banned words in content",
			banned:   []string{"inapropiada", "prohibida"},
			content:  "Este es un mensaje limpio y seguro.",
			expected: "Este es un mensaje limpio y seguro.",
		},
		{
			name:     "multiple banned words masked",
			banned:   []string{"inapropiada", "prohibida"},
			content:  "Este es un mensaje con una palabra inapropiada y otra prohibida.",
			expected: "Este es un mensaje con una palabra **** y otra ****.",
		},
		{
			name:     "case insensitive",
			banned:   []string{"inapropiada"},
			content:  "Mensaje con INAPROPIADA en mayúsculas.",
			expected: "Mensaje con **** en mayúsculas.",
		},
		{
			name:     "banned word inside a larger word",
			banned:   []string{"bad"},
			content:  "that was badly done",
			expected: "that was ****ly done",
		},
		{
			name:     "mask is fixed length regardless of word length",
			banned:   []string{"no"},
			content:  "no means no",
			expected: "**** means ****",
		},
		{
			name:     "regex metacharacters are treated literally",
			banned:   []string{"a.b"},
			content:  "match a.b but not axb",
			expected: "match **** but not axb",
		},
		{
			name:     "empty content",
			banned:   []string{"inapropiada"},
			content:  "",
			expected: "",
		},
		{
			name:     "empty banned list",
			banned:   nil,
			content:  "cualquier cosa",
			expected: "cualquier cosa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewContentFilter(tt.banned)
			assert.Equal(t, tt.expected, filter.Apply(tt.content))
		})
	}
}

// フィルタ済みの文字列を再度フィルタしても変化しない（マスクには禁止語が含まれないため）
func TestContentFilter_Apply_Idempotent(t *testing.T) {
	filter := NewContentFilter([]string{"inapropiada", "prohibida", "baneada"})

	content := "Una palabra inapropiada, otra PROHIBIDA y una baneada."
	once := filter.Apply(content)
	twice := filter.Apply(once)

	assert.Equal(t, once, twice)
}
