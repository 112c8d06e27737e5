package transcript

import (
	"testing"
	"time"
)

func TestParseLine_Formats(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantSender string
		wantText   string
		wantTime   *time.Time
	}{
		{
			name:       "bracketed whatsapp ios",
			line:       "[01/02/2024, 09:00:00] Maria: Bom dia!",
			wantSender: "Maria",
			wantText:   "Bom dia!",
			wantTime:   tsPtr(2024, 2, 1, 9, 0, 0),
		},
		{
			name:       "bracketed without seconds",
			line:       "[5/3/24, 18:45] João Silva: até amanhã",
			wantSender: "João Silva",
			wantText:   "até amanhã",
			wantTime:   tsPtr(2024, 3, 5, 18, 45, 0),
		},
		{
			name:       "dashed whatsapp android",
			line:       "01/02/2024, 09:01 - João: Bom dia, Maria!",
			wantSender: "João",
			wantText:   "Bom dia, Maria!",
			wantTime:   tsPtr(2024, 2, 1, 9, 1, 0),
		},
		{
			name:       "telegram dot date",
			line:       "01.02.2024 09:00:30 - Maria: oi",
			wantSender: "Maria",
			wantText:   "oi",
			wantTime:   tsPtr(2024, 2, 1, 9, 0, 30),
		},
		{
			name:       "discord full date pm",
			line:       "Maria — 01/02/2024 9:05 PM",
			wantSender: "Maria",
			wantText:   "",
			wantTime:   tsPtr(2024, 2, 1, 21, 5, 0),
		},
		{
			name:       "discord today header",
			line:       "Maria — Today at 9:00 PM",
			wantSender: "Maria",
			wantText:   "",
			wantTime:   nil,
		},
		{
			name:       "plain sender colon message",
			line:       "Maria: tudo bem?",
			wantSender: "Maria",
			wantText:   "tudo bem?",
			wantTime:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := ParseLine(tt.line)
			if !ok {
				t.Fatalf("ParseLine(%q) did not match", tt.line)
			}
			if msg.Sender != tt.wantSender {
				t.Errorf("sender = %q, want %q", msg.Sender, tt.wantSender)
			}
			if msg.Text != tt.wantText {
				t.Errorf("text = %q, want %q", msg.Text, tt.wantText)
			}
			switch {
			case tt.wantTime == nil && msg.Timestamp != nil:
				t.Errorf("timestamp = %v, want nil", msg.Timestamp)
			case tt.wantTime != nil && msg.Timestamp == nil:
				t.Errorf("timestamp = nil, want %v", tt.wantTime)
			case tt.wantTime != nil && !msg.Timestamp.Equal(*tt.wantTime):
				t.Errorf("timestamp = %v, want %v", msg.Timestamp, tt.wantTime)
			}
		})
	}
}

func TestParseLine_NoMatch(t *testing.T) {
	lines := []string{
		"just a continuation line without any colon",
		"https://example.com/some/link: not a sender",
		"",
	}
	for _, line := range lines {
		if msg, ok := ParseLine(line); ok {
			t.Errorf("ParseLine(%q) matched unexpectedly: %+v", line, msg)
		}
	}
}

// A matched line with an impossible calendar date keeps sender and text but
// drops the timestamp, instead of failing the line.
func TestParseLine_MalformedDate(t *testing.T) {
	msg, ok := ParseLine("[31/02/2024, 09:00:00] Maria: oi")
	if !ok {
		t.Fatal("line with bad date should still match structurally")
	}
	if msg.Timestamp != nil {
		t.Errorf("timestamp = %v, want nil for 31/02", msg.Timestamp)
	}
	if msg.Sender != "Maria" || msg.Text != "oi" {
		t.Errorf("got sender=%q text=%q", msg.Sender, msg.Text)
	}
}

func TestParseLine_TimestampedBeforePlain(t *testing.T) {
	// The bracketed line also matches the generic "sender: message" shape;
	// ordering must pick the timestamped interpretation.
	msg, ok := ParseLine("[01/02/2024, 09:00] Maria: oi")
	if !ok {
		t.Fatal("expected match")
	}
	if msg.Timestamp == nil {
		t.Error("timestamped format should win over the plain fallback")
	}
}

func tsPtr(y int, mo time.Month, d, h, mi, s int) *time.Time {
	ts := time.Date(y, mo, d, h, mi, s, 0, time.UTC)
	return &ts
}
