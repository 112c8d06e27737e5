// Package transcript parses exported chat files into normalized messages.
package transcript

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/memoria-app/memoria/internal/core"
)

// Line patterns, tried in order. The specific timestamped formats must come
// before the plain "sender: message" fallback or every timestamped line would
// be swallowed as an untimed one.
var (
	// WhatsApp iOS: [01/02/2024, 09:00:00] Maria: Bom dia!
	reBracketed = regexp.MustCompile(`^\[(\d{1,2})/(\d{1,2})/(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\]\s+([^:]+?):\s?(.*)$`)

	// WhatsApp Android: 01/02/2024, 09:00 - Maria: Bom dia!
	reDashed = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s+-\s+([^:]+?):\s?(.*)$`)

	// Telegram desktop export: 01.02.2024 09:00 - Maria: Bom dia!
	reTelegram = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s+-\s+([^:]+?):\s?(.*)$`)

	// Discord copy-paste with a full date: Maria — 01/02/2024 9:00 PM
	reDiscordDate = regexp.MustCompile(`^(.{1,64}?)\s+[—–-]\s+(\d{1,2})/(\d{1,2})/(\d{2,4}),?\s+(\d{1,2}):(\d{2})(?:\s?([AP]M))?$`)

	// Discord copy-paste, relative day: Maria — Today at 9:00 PM
	// The message body follows on continuation lines; no date is recoverable.
	reDiscordToday = regexp.MustCompile(`^(.{1,64}?)\s+[—–-]\s+(?:Today|Yesterday)\s+at\s+\d{1,2}:\d{2}(?:\s?[AP]M)?$`)

	// Generic fallback: Maria: Bom dia!
	rePlain = regexp.MustCompile(`^([^:]{1,40}?):\s(.*)$`)
)

// ParseLine recognizes a single export line. The second return value is false
// when the line matches no known format (a candidate continuation line).
func ParseLine(line string) (*core.Message, bool) {
	if m := reBracketed.FindStringSubmatch(line); m != nil {
		return timestamped(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]), true
	}
	if m := reDashed.FindStringSubmatch(line); m != nil {
		return timestamped(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]), true
	}
	if m := reTelegram.FindStringSubmatch(line); m != nil {
		return timestamped(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]), true
	}
	if m := reDiscordDate.FindStringSubmatch(line); m != nil {
		msg := &core.Message{Sender: strings.TrimSpace(m[1])}
		if ts, ok := buildTimestamp(m[2], m[3], m[4], adjustMeridiem(m[5], m[7]), m[6], ""); ok {
			msg.Timestamp = &ts
		}
		return msg, true
	}
	if m := reDiscordToday.FindStringSubmatch(line); m != nil {
		return &core.Message{Sender: strings.TrimSpace(m[1])}, true
	}
	if m := rePlain.FindStringSubmatch(line); m != nil {
		sender := strings.TrimSpace(m[1])
		if sender == "" || strings.HasPrefix(strings.ToLower(sender), "http") {
			return nil, false
		}
		return &core.Message{Sender: sender, Text: m[2]}, true
	}
	return nil, false
}

func timestamped(day, month, year, hour, minute, second, sender, text string) *core.Message {
	msg := &core.Message{
		Sender: strings.TrimSpace(sender),
		Text:   text,
	}
	// A bad date/time keeps the message, just without a timestamp.
	if ts, ok := buildTimestamp(day, month, year, hour, minute, second); ok {
		msg.Timestamp = &ts
	}
	return msg
}

// buildTimestamp assumes day/month/year ordering, the convention of the
// supported export formats. Two-digit years are taken as 2000-2099.
func buildTimestamp(day, month, year, hour, minute, second string) (time.Time, bool) {
	d, _ := strconv.Atoi(day)
	mo, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)
	s := 0
	if second != "" {
		s, _ = strconv.Atoi(second)
	}

	if y < 100 {
		y += 2000
	}
	if mo < 1 || mo > 12 || d < 1 || d > 31 || h > 23 || mi > 59 || s > 59 {
		return time.Time{}, false
	}

	ts := time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
	// time.Date normalizes impossible calendar dates (e.g. 31/02); reject those.
	if ts.Day() != d || ts.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return ts, true
}

// adjustMeridiem converts a 12-hour clock hour string to 24-hour form.
func adjustMeridiem(hour, meridiem string) string {
	if meridiem == "" {
		return hour
	}
	h, _ := strconv.Atoi(hour)
	switch meridiem {
	case "PM":
		if h < 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}
	return strconv.Itoa(h)
}
