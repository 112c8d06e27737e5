package transcript

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/memoria-app/memoria/internal/core"
)

func TestAssemble_TwoMessages(t *testing.T) {
	text := "[01/02/2024, 09:00:00] Maria: Bom dia!\n[01/02/2024, 09:01:00] João: Bom dia, Maria!"

	tr, err := Assemble(text)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tr.TotalCount != 2 {
		t.Errorf("total_count = %d, want 2", tr.TotalCount)
	}
	if want := []string{"Maria", "João"}; !reflect.DeepEqual(tr.Participants, want) {
		t.Errorf("participants = %v, want %v", tr.Participants, want)
	}
	if tr.DateRange == nil {
		t.Fatal("date_range is nil")
	}
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !tr.DateRange.Start.Truncate(24 * time.Hour).Equal(day) {
		t.Errorf("range start = %v, want day 01/02/2024", tr.DateRange.Start)
	}
	if !tr.DateRange.End.Truncate(24 * time.Hour).Equal(day) {
		t.Errorf("range end = %v, want day 01/02/2024", tr.DateRange.End)
	}
}

func TestAssemble_ContinuationLines(t *testing.T) {
	text := "[01/02/2024, 09:00] Maria: primeira linha\nsegunda linha\nterceira linha\n[01/02/2024, 09:05] João: ok"

	tr, err := Assemble(text)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// Continuation lines never increase the message count.
	if tr.TotalCount != 2 {
		t.Fatalf("total_count = %d, want 2", tr.TotalCount)
	}
	want := "primeira linha\nsegunda linha\nterceira linha"
	if tr.Messages[0].Text != want {
		t.Errorf("text = %q, want %q", tr.Messages[0].Text, want)
	}
}

func TestAssemble_DiscordHeaderThenBody(t *testing.T) {
	text := "Maria — Today at 9:00 PM\nhello there\nstill me"

	tr, err := Assemble(text)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tr.TotalCount != 1 {
		t.Fatalf("total_count = %d, want 1", tr.TotalCount)
	}
	if tr.Messages[0].Text != "hello there\nstill me" {
		t.Errorf("text = %q", tr.Messages[0].Text)
	}
}

func TestAssemble_Empty(t *testing.T) {
	_, err := Assemble("")
	if !errors.Is(err, core.ErrFormatUnrecognized) {
		t.Errorf("err = %v, want ErrFormatUnrecognized", err)
	}
}

func TestAssemble_NoRecognizableLines(t *testing.T) {
	_, err := Assemble("nothing here\nresembles a chat export\n\n")
	if !errors.Is(err, core.ErrFormatUnrecognized) {
		t.Errorf("err = %v, want ErrFormatUnrecognized", err)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	text := "[01/02/2024, 09:00] Maria: oi\ncontinuação\n[02/02/2024, 10:00] João: olá"
	a, err := Assemble(text)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Assemble(text)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Assemble is not deterministic for identical input")
	}
}

func TestAssemble_NoTimestampsNoDateRange(t *testing.T) {
	tr, err := Assemble("Maria: oi\nJoão: olá")
	if err != nil {
		t.Fatal(err)
	}
	if tr.DateRange != nil {
		t.Errorf("date_range = %+v, want nil", tr.DateRange)
	}
	if tr.TotalCount != 2 {
		t.Errorf("total_count = %d, want 2", tr.TotalCount)
	}
}

func TestAssemble_DateRangeMinMax(t *testing.T) {
	text := "[05/02/2024, 10:00] Maria: meio\n[01/02/2024, 09:00] João: começo\n[09/02/2024, 22:00] Maria: fim"
	tr, err := Assemble(text)
	if err != nil {
		t.Fatal(err)
	}
	if tr.DateRange.Start.Day() != 1 || tr.DateRange.End.Day() != 9 {
		t.Errorf("range = %v..%v, want 01..09", tr.DateRange.Start, tr.DateRange.End)
	}
}
