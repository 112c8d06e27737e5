package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/memoria-app/memoria/internal/core"
)

type fakeLLM struct {
	insights   string
	err        error
	configured bool
	gotCtx     context.Context
	gotProfile string
	gotMems    []string
	calls      int
}

func (f *fakeLLM) DeepAnalysis(ctx context.Context, profileJSON string, mems []string) (string, error) {
	f.calls++
	f.gotCtx = ctx
	f.gotProfile = profileJSON
	f.gotMems = mems
	return f.insights, f.err
}

func (f *fakeLLM) IsConfigured() bool { return f.configured }

func sampleTranscript() string {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "01/02/2024, %02d:%02d - Maria: bom dia meu amor, saudade de você ❤️\n", 9+i/60, i%60)
		fmt.Fprintf(&b, "01/02/2024, %02d:%02d - João: bom dia mãe, tudo bem kkkk\n", 9+i/60, i%60)
	}
	return b.String()
}

func TestRun_EndToEnd(t *testing.T) {
	p := New(nil)
	got, err := p.Run(context.Background(), Input{
		TranscriptText:     sampleTranscript(),
		TargetPersonName:   "Maria",
		RelationshipToUser: "mãe",
		Locale:             "pt-BR",
		ConsentConfirmed:   true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got.TargetName != "Maria" {
		t.Errorf("target = %q, want Maria", got.TargetName)
	}
	if got.Transcript.TotalCount != 60 {
		t.Errorf("total messages = %d, want 60", got.Transcript.TotalCount)
	}
	if len(got.Memories) == 0 {
		t.Error("expected extracted memories")
	}

	a := got.Analysis
	if a.PersonaProfile == nil || a.ReplyStyleTemplate == nil {
		t.Fatal("analysis missing profile or template")
	}
	if a.PersonaProfile.SpeechDNA.WarmthLevel == 0 {
		t.Error("warmth = 0 for an affectionate transcript")
	}
	if a.ConfidenceOverall != core.ConfidenceMedium {
		t.Errorf("confidence = %v, want medium for 30 target messages", a.ConfidenceOverall)
	}
	if len(a.Evidence) == 0 {
		t.Error("expected evidence entries")
	}
	if a.DeepInsights != "" {
		t.Error("deep insights without DeepAnalysis requested")
	}
}

func TestRun_UnrecognizedFormat(t *testing.T) {
	p := New(nil)
	_, err := p.Run(context.Background(), Input{TranscriptText: "just some prose\nwith no chat structure"})
	if !errors.Is(err, core.ErrFormatUnrecognized) {
		t.Errorf("err = %v, want ErrFormatUnrecognized", err)
	}
}

func TestRun_TargetNotIdentified(t *testing.T) {
	p := New(nil)
	// Every sender is a system artifact, so the candidate pool is empty.
	_, err := p.Run(context.Background(), Input{
		TranscriptText:   "12345: service message\n67890: another one\n12345: third line here\n",
		TargetPersonName: "Maria",
	})
	if !errors.Is(err, core.ErrPersonNotIdentified) {
		t.Errorf("err = %v, want ErrPersonNotIdentified", err)
	}
}

func TestRun_ArtifactOnlySendersWithoutHint(t *testing.T) {
	p := New(nil)
	// No hint and no real sender either: the run must fail rather than
	// produce a profile for nobody.
	_, err := p.Run(context.Background(), Input{
		TranscriptText: "12345: system message\n67890: more noise\n12345: third line\n",
	})
	if !errors.Is(err, core.ErrPersonNotIdentified) {
		t.Errorf("err = %v, want ErrPersonNotIdentified", err)
	}
}

func TestRun_DeepAnalysisEnriches(t *testing.T) {
	fake := &fakeLLM{insights: "writes with steady warmth", configured: true}
	p := New(fake)

	got, err := p.Run(context.Background(), Input{
		TranscriptText:   sampleTranscript(),
		TargetPersonName: "Maria",
		DeepAnalysis:     true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Analysis.DeepInsights != "writes with steady warmth" {
		t.Errorf("deep insights = %q", got.Analysis.DeepInsights)
	}
	if !strings.Contains(fake.gotProfile, `"target_person_name":"Maria"`) {
		t.Errorf("profile JSON not passed through:\n%s", fake.gotProfile)
	}
	if len(fake.gotMems) == 0 {
		t.Error("memories not passed to deep analysis")
	}
	if _, ok := fake.gotCtx.Deadline(); !ok {
		t.Error("deep analysis context has no deadline")
	}
}

func TestRun_DeepAnalysisFailureAbsorbed(t *testing.T) {
	fake := &fakeLLM{err: errors.New("model overloaded"), configured: true}
	p := New(fake)

	got, err := p.Run(context.Background(), Input{
		TranscriptText:   sampleTranscript(),
		TargetPersonName: "Maria",
		DeepAnalysis:     true,
	})
	if err != nil {
		t.Fatalf("deep failure must not fail the run: %v", err)
	}
	if got.Analysis.DeepInsights != "" {
		t.Errorf("deep insights = %q, want empty after failure", got.Analysis.DeepInsights)
	}
	if got.Analysis.PersonaProfile == nil {
		t.Error("heuristic profile missing after deep failure")
	}
}

func TestRun_DeepAnalysisSkippedWhenUnconfigured(t *testing.T) {
	fake := &fakeLLM{configured: false}
	p := New(fake)

	_, err := p.Run(context.Background(), Input{
		TranscriptText:   sampleTranscript(),
		TargetPersonName: "Maria",
		DeepAnalysis:     true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("LLM called %d times despite missing key", fake.calls)
	}
}

func TestRun_DeepTimeoutConfigurable(t *testing.T) {
	fake := &fakeLLM{insights: "x", configured: true}
	p := New(fake)
	p.DeepTimeout = 100 * time.Millisecond

	start := time.Now()
	if _, err := p.Run(context.Background(), Input{
		TranscriptText:   sampleTranscript(),
		TargetPersonName: "Maria",
		DeepAnalysis:     true,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline, ok := fake.gotCtx.Deadline()
	if !ok {
		t.Fatal("no deadline on deep context")
	}
	if remaining := time.Until(deadline); remaining > 150*time.Millisecond || time.Since(start) > time.Second {
		t.Errorf("deadline not derived from configured timeout: %v remaining", remaining)
	}
}

func TestSafetyNotes(t *testing.T) {
	sc := safetyNotes(Input{})
	found := false
	for _, n := range sc.Notes {
		if strings.Contains(n, "consent not confirmed") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing consent note: %v", sc.Notes)
	}

	sc = safetyNotes(Input{ConsentConfirmed: true})
	for _, n := range sc.Notes {
		if strings.Contains(n, "consent not confirmed") {
			t.Errorf("unexpected consent note when confirmed: %v", sc.Notes)
		}
	}
}
