package transcript

import (
	"strings"

	"github.com/memoria-app/memoria/internal/core"
)

// Assemble parses a full chat export into a ParsedTranscript.
//
// Lines that match no format are folded into the previous message as
// continuation text, since exports wrap multi-line messages under a single
// timestamp. Returns core.ErrFormatUnrecognized when nothing matched.
func Assemble(text string) (*core.ParsedTranscript, error) {
	var (
		messages []core.Message
		current  *core.Message
	)

	flush := func() {
		if current != nil {
			messages = append(messages, *current)
			current = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		msg, ok := ParseLine(line)
		if ok {
			flush()
			current = msg
			continue
		}

		// Continuation line. Content before the first structural match has
		// no message to attach to and is dropped.
		if current == nil {
			continue
		}
		if current.Text == "" {
			current.Text = line
		} else {
			current.Text += "\n" + line
		}
	}
	flush()

	if len(messages) == 0 {
		return nil, core.ErrFormatUnrecognized
	}

	t := &core.ParsedTranscript{
		Messages:   messages,
		TotalCount: len(messages),
	}

	seen := make(map[string]bool)
	for _, m := range messages {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			t.Participants = append(t.Participants, m.Sender)
		}
		if m.Timestamp == nil {
			continue
		}
		if t.DateRange == nil {
			t.DateRange = &core.DateRange{Start: *m.Timestamp, End: *m.Timestamp}
			continue
		}
		if m.Timestamp.Before(t.DateRange.Start) {
			t.DateRange.Start = *m.Timestamp
		}
		if m.Timestamp.After(t.DateRange.End) {
			t.DateRange.End = *m.Timestamp
		}
	}

	return t, nil
}
