// Package normalizer cleans a day's worth of raw bridge messages before
// summarization: noise filtering, same-author merging and deduplication.
package normalizer

import (
	"strings"

	"github.com/wa-resumo-bot/internal/models"
)

// DefaultAuthor is used when the bridge delivers a message without an author.
const DefaultAuthor = "Contato"

// noise holds short filler texts that carry no summarizable content.
// Matched against the trimmed, lowercased message text.
var noise = map[string]struct{}{
	"bom dia":   {},
	"boa tarde": {},
	"boa noite": {},
	"ok":        {},
	"blz":       {},
	"beleza":    {},
	"show":      {},
	"kk":        {},
	"kkk":       {},
	"rs":        {},
	"vlw":       {},
	"valeu":     {},
}

// Normalize filters noise messages, merges consecutive messages from the
// same author and drops exact duplicates. The input is expected in
// chronological order and is not modified. Normalize is a pure function:
// the result preserves first-appearance order, no two adjacent entries
// share an author and no (author, text) pair appears twice.
func Normalize(items []models.Message) []models.Message {
	clean := make([]models.Message, 0, len(items))
	for _, m := range items {
		t := strings.TrimSpace(m.Text)
		if len([]rune(t)) < 3 {
			continue
		}
		if _, isNoise := noise[strings.ToLower(t)]; isNoise {
			continue
		}
		author := m.Author
		if author == "" {
			author = DefaultAuthor
		}
		clean = append(clean, models.Message{
			At:     m.At,
			Author: author,
			Text:   t,
			ChatID: m.ChatID,
		})
	}

	// Merge consecutive entries from the same author, keeping the later
	// timestamp and space-joining the texts.
	merged := make([]models.Message, 0, len(clean))
	for _, m := range clean {
		if len(merged) > 0 && merged[len(merged)-1].Author == m.Author {
			last := &merged[len(merged)-1]
			last.Text += " " + m.Text
			last.At = m.At
			continue
		}
		merged = append(merged, m)
	}

	// Drop exact (author, text) duplicates, keeping the first occurrence.
	type key struct{ author, text string }
	seen := make(map[key]struct{}, len(merged))
	out := make([]models.Message, 0, len(merged))
	for _, m := range merged {
		k := key{m.Author, m.Text}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}

	return out
}
