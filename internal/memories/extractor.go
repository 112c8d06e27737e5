// Package memories extracts bounded, human-readable excerpts from a
// parsed transcript.
package memories

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/memoria-app/memoria/internal/core"
)

// Limits holds the extraction thresholds. Defaults match the product
// behavior; tests can tighten them to exercise edge cases in isolation.
type Limits struct {
	GapThreshold  time.Duration // silence that starts a new conversation group
	MinGroupSize  int           // messages required for a group to qualify
	MinExcerptLen int           // rune length for a standalone excerpt
	MaxExcerpts   int           // cap on standalone excerpts
	MaxTotal      int           // cap on the combined memory list
}

// DefaultLimits returns the product defaults.
func DefaultLimits() Limits {
	return Limits{
		GapThreshold:  2 * time.Hour,
		MinGroupSize:  3,
		MinExcerptLen: 50,
		MaxExcerpts:   20,
		MaxTotal:      30,
	}
}

// Extract produces at most MaxTotal memories: time-gap conversation groups
// first, then standalone excerpts. Deterministic and order-preserving.
func Extract(t *core.ParsedTranscript, target string) []string {
	return ExtractWithLimits(t, target, DefaultLimits())
}

// ExtractWithLimits is Extract with explicit thresholds.
func ExtractWithLimits(t *core.ParsedTranscript, target string, limits Limits) []string {
	out := conversationGroups(t.Messages, limits)

	excerpts := standaloneExcerpts(t.Messages, target, limits)
	out = append(out, excerpts...)

	if len(out) > limits.MaxTotal {
		out = out[:limits.MaxTotal]
	}
	return out
}

// conversationGroups renders clusters of messages separated by long silences.
func conversationGroups(messages []core.Message, limits Limits) []string {
	var (
		groups  []string
		current []core.Message
		lastTS  *time.Time
	)

	flush := func() {
		if len(current) >= limits.MinGroupSize {
			groups = append(groups, renderGroup(current))
		}
		current = nil
	}

	for _, m := range messages {
		if m.Timestamp != nil && lastTS != nil && m.Timestamp.Sub(*lastTS) > limits.GapThreshold {
			flush()
		}
		current = append(current, m)
		if m.Timestamp != nil {
			lastTS = m.Timestamp
		}
	}
	flush()

	return groups
}

func renderGroup(messages []core.Message) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Timestamp != nil {
			b.WriteString(m.Timestamp.Format("02/01/2006"))
			b.WriteString(":\n")
			break
		}
	}
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Sender)
		b.WriteString(": ")
		b.WriteString(m.Text)
	}
	return b.String()
}

// standaloneExcerpts picks individual standout messages: long enough to
// carry meaning and not attachment placeholders. When a target is known,
// only their messages qualify.
func standaloneExcerpts(messages []core.Message, target string, limits Limits) []string {
	var out []string
	for _, m := range messages {
		if len(out) >= limits.MaxExcerpts {
			break
		}
		if target != "" && m.Sender != target {
			continue
		}
		if utf8.RuneCountInString(m.Text) <= limits.MinExcerptLen {
			continue
		}
		if isMediaPlaceholder(m.Text) {
			continue
		}
		out = append(out, renderExcerpt(m))
	}
	return out
}

func renderExcerpt(m core.Message) string {
	if m.Timestamp != nil {
		return "[" + m.Timestamp.Format("02/01/2006") + "] " + m.Sender + ": " + m.Text
	}
	return m.Sender + ": " + m.Text
}

var placeholderMarkers = []string{
	"media omitted",
	"imagem ocultada",
	"áudio ocultado",
	"audio ocultado",
	"vídeo omitido",
	"video omitido",
	"figurinha omitida",
	"sticker omitted",
	"document omitted",
	"arquivo anexado",
	"(file attached)",
}

func isMediaPlaceholder(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
