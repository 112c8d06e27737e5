// Package pipeline orchestrates the full transcript-to-persona flow:
// assemble, resolve the target, extract memories, score the persona,
// synthesize a reply style, and optionally enrich with LLM insights.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/memoria-app/memoria/internal/core"
	"github.com/memoria-app/memoria/internal/logging"
	"github.com/memoria-app/memoria/internal/memories"
	"github.com/memoria-app/memoria/internal/participant"
	"github.com/memoria-app/memoria/internal/persona"
	"github.com/memoria-app/memoria/internal/transcript"
)

// DefaultDeepTimeout bounds the optional LLM enrichment call. The
// structured result never waits longer than this on the model.
const DefaultDeepTimeout = 45 * time.Second

// DeepAnalyzer produces prose insights from a profile and excerpts.
// *llm.Client implements it.
type DeepAnalyzer interface {
	DeepAnalysis(ctx context.Context, profileJSON string, memories []string) (string, error)
	IsConfigured() bool
}

// Input carries one analysis request through the pipeline.
type Input struct {
	TranscriptText     string
	TargetPersonName   string // hint; may be empty or partial
	UserName           string // phone owner, if known
	RelationshipToUser string
	Locale             string // "pt-BR" or "en-US"
	DisallowedTopics   []string
	SportsTeam         string
	ReligiousCues      []string
	ConsentConfirmed   bool
	DeepAnalysis       bool
}

// Result is everything one run produced. Analysis is the caller-facing
// payload; the rest is what a persistence layer needs to store it.
type Result struct {
	Analysis   *core.AnalysisResult
	TargetName string
	Memories   []string
	Transcript *core.ParsedTranscript
}

// Pipeline wires the stages together. LLM may be nil; deep analysis is
// then skipped.
type Pipeline struct {
	LLM         DeepAnalyzer
	DeepTimeout time.Duration

	log *logging.Logger
}

// New returns a pipeline with the default deep-analysis timeout.
func New(llm DeepAnalyzer) *Pipeline {
	return &Pipeline{
		LLM:         llm,
		DeepTimeout: DefaultDeepTimeout,
		log:         logging.WithField("component", "pipeline"),
	}
}

// Run executes the full pipeline. Parse and resolution failures are
// returned; a deep-analysis failure is logged and absorbed so the
// heuristic result still comes back.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	t, err := transcript.Assemble(in.TranscriptText)
	if err != nil {
		return nil, fmt.Errorf("assembling transcript: %w", err)
	}
	p.log.WithFields(map[string]interface{}{
		"messages":     t.TotalCount,
		"participants": len(t.Participants),
	}).Info("transcript assembled")

	target, err := participant.Resolve(t, in.TargetPersonName)
	if err != nil {
		return nil, fmt.Errorf("resolving target participant: %w", err)
	}
	if target == "" {
		// Every sender was filtered as export noise. A persona needs a
		// real participant behind it.
		return nil, fmt.Errorf("resolving target participant: %w", core.ErrPersonNotIdentified)
	}

	mems := memories.Extract(t, target)

	profile := persona.Analyze(t, target, persona.Options{
		Relationship:     in.RelationshipToUser,
		Locale:           in.Locale,
		DisallowedTopics: in.DisallowedTopics,
		SportsTeam:       in.SportsTeam,
		ReligiousCues:    in.ReligiousCues,
		ConsentConfirmed: in.ConsentConfirmed,
	})

	analysis := &core.AnalysisResult{
		PersonaProfile:     profile,
		ReplyStyleTemplate: persona.Synthesize(profile),
		Evidence:           persona.Evidence(t, target),
		ConfidenceOverall:  persona.Confidence(t, target),
		SafetyAndConsent:   safetyNotes(in),
	}

	if in.DeepAnalysis {
		analysis.DeepInsights = p.deepInsights(ctx, profile, mems)
	}

	return &Result{
		Analysis:   analysis,
		TargetName: target,
		Memories:   mems,
		Transcript: t,
	}, nil
}

// deepInsights runs the bounded LLM call. Any failure returns "".
func (p *Pipeline) deepInsights(ctx context.Context, profile *core.PersonaProfile, mems []string) string {
	if p.LLM == nil || !p.LLM.IsConfigured() {
		p.log.Debug("deep analysis skipped, no LLM configured")
		return ""
	}

	timeout := p.DeepTimeout
	if timeout <= 0 {
		timeout = DefaultDeepTimeout
	}
	deepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		p.log.Error("deep analysis skipped, profile marshal failed: %v", err)
		return ""
	}

	insights, err := p.LLM.DeepAnalysis(deepCtx, string(profileJSON), mems)
	if err != nil {
		p.log.Warn("deep analysis failed, returning heuristic result only: %v", err)
		return ""
	}
	return insights
}

func safetyNotes(in Input) core.SafetyAndConsent {
	sc := core.SafetyAndConsent{
		Notes: []string{"transcript processed as provided, no redaction applied"},
	}
	if !in.ConsentConfirmed {
		sc.Notes = append(sc.Notes, "consent not confirmed by the requesting user")
	}
	if len(in.DisallowedTopics) > 0 {
		sc.Notes = append(sc.Notes, "disallowed topics folded into persona boundaries")
	}
	return sc
}
