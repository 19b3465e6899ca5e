package service

import "regexp"

// maskToken は禁止語を置き換える固定マスク。
// マッチした語の長さに関係なく常にこの4文字に置き換える
const maskToken = "****"

// ContentFilter は禁止語を大文字小文字を区別せずマスクするフィルタ。
// 禁止語リストの順に1語ずつ置換するため、同じリストに対して結果は決定的
type ContentFilter struct {
	patterns []*regexp.Regexp
}

// NewContentFilter は禁止語リストからContentFilterを作成する
func NewContentFilter(bannedWords []string) *ContentFilter {
	patterns := make([]*regexp.Regexp, 0, len(bannedWords))
	for _, word := range bannedWords {
		if word == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(word)))
	}
	return &ContentFilter{patterns: patterns}
}

// Apply はcontent中の禁止語の出現をすべてマスクした文字列を返す。
// 単語境界は考慮しない（より長い語の内側に現れる禁止語もマスクする）
func (f *ContentFilter) Apply(content string) string {
	for _, p := range f.patterns {
		content = p.ReplaceAllLiteralString(content, maskToken)
	}
	return content
}
