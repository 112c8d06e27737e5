// Package core defines the fundamental types for Memoria.
// These types are shared by every stage of the transcript pipeline.
package core

import (
	"time"
)

// -----------------------------------------------------------------------------
// TRANSCRIPT - The parsed chat export
// -----------------------------------------------------------------------------

// Message is a single message recognized in a chat export.
// Timestamp is nil when the source line carried no parseable date/time.
type Message struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Sender    string     `json:"sender"`
	Text      string     `json:"text"`
}

// DateRange spans the timestamped messages of a transcript.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParsedTranscript is the normalized form of one exported chat file.
// Participants preserves first-seen order so output is deterministic.
type ParsedTranscript struct {
	Messages     []Message  `json:"messages"`
	Participants []string   `json:"participants"`
	TotalCount   int        `json:"total_count"`
	DateRange    *DateRange `json:"date_range,omitempty"`
}

// CountBySender returns how many messages each participant sent.
func (t *ParsedTranscript) CountBySender() map[string]int {
	counts := make(map[string]int, len(t.Participants))
	for _, m := range t.Messages {
		counts[m.Sender]++
	}
	return counts
}

// MessagesFrom returns the messages sent by one participant, in file order.
func (t *ParsedTranscript) MessagesFrom(sender string) []Message {
	var out []Message
	for _, m := range t.Messages {
		if m.Sender == sender {
			out = append(out, m)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// PERSONA - The heuristic communication profile
// -----------------------------------------------------------------------------

// Language is the dominant language detected in the target's messages
type Language string

const (
	LanguagePT    Language = "pt-BR"
	LanguageEN    Language = "en-US"
	LanguageMixed Language = "mixed"
)

// EmojiFrequency bands the emoji-to-message ratio
type EmojiFrequency string

const (
	EmojiLow    EmojiFrequency = "low"
	EmojiMedium EmojiFrequency = "medium"
	EmojiHigh   EmojiFrequency = "high"
)

// CoreIdentity holds coarse identity guesses for the target person
type CoreIdentity struct {
	AgeRangeGuess string   `json:"age_range_guess"`
	Roles         []string `json:"roles"`
}

// EmojiStyle describes how the target uses emoji
type EmojiStyle struct {
	Frequency EmojiFrequency `json:"frequency"`
	Examples  []string       `json:"examples"`
}

// SpeechDNA is the numeric/categorical heart of a persona profile.
// All level scores are integers in 0..3.
type SpeechDNA struct {
	WarmthLevel    int        `json:"warmth_level"`
	Formality      int        `json:"formality"`
	Humor          int        `json:"humor"`
	EmojiStyle     EmojiStyle `json:"emoji_style"`
	CommonClosings []string   `json:"common_closings"`
	Catchphrases   []string   `json:"catchphrases"`
}

// InteractionPatterns captures recurring behaviors observed in the transcript
type InteractionPatterns struct {
	CheckInHabits  []string `json:"check_in_habits"`
	CareSignals    []string `json:"care_signals"`
	MediaInterests []string `json:"media_interests"`
	RoutinesPlaces []string `json:"routines_places"`
}

// Boundaries lists topics and behaviors to lean into or avoid
type Boundaries struct {
	Do   []string `json:"do"`
	Dont []string `json:"dont"`
}

// PersonaProfile is the structured heuristic description of how the target
// person communicates. It is a pure function of the transcript and hints.
type PersonaProfile struct {
	ConsentOK           bool                `json:"consent_ok"`
	TargetPersonName    string              `json:"target_person_name"`
	RelationshipToUser  string              `json:"relationship_to_user"`
	Language            Language            `json:"language"`
	CoreIdentity        CoreIdentity        `json:"core_identity"`
	ValuesAndThemes     []string            `json:"values_and_themes"`
	SpeechDNA           SpeechDNA           `json:"speech_dna"`
	InteractionPatterns InteractionPatterns `json:"interaction_patterns"`
	Boundaries          Boundaries          `json:"boundaries"`
	MemoryNuggets       []string            `json:"memory_nuggets"`
}

// -----------------------------------------------------------------------------
// REPLY STYLE - Template for downstream conversation generation
// -----------------------------------------------------------------------------

// SampleReply pairs a situation with an example reply in the target's voice
type SampleReply struct {
	Situation string `json:"situation"`
	Reply     string `json:"reply"`
}

// ReplyStyleTemplate maps speech DNA onto concrete generation guidance
type ReplyStyleTemplate struct {
	Tone            string        `json:"tone"`
	Pacing          string        `json:"pacing"`
	Structure       []string      `json:"structure"`
	ClosingExamples []string      `json:"closing_examples"`
	SampleReplies   []SampleReply `json:"sample_replies"`
}

// -----------------------------------------------------------------------------
// ANALYSIS RESULT - The full pipeline output
// -----------------------------------------------------------------------------

// ConfidenceLevel reflects how much target data backed the persona inference
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Evidence ties a persona trait to a supporting transcript snippet
type Evidence struct {
	Trait   string `json:"trait"`
	Snippet string `json:"snippet"`
}

// SafetyAndConsent records what was done (or not) about sensitive content
type SafetyAndConsent struct {
	PIIRemoved bool     `json:"pii_removed"`
	Notes      []string `json:"notes"`
}

// AnalysisResult is everything the pipeline produces for one transcript
type AnalysisResult struct {
	PersonaProfile     *PersonaProfile     `json:"persona_profile"`
	ReplyStyleTemplate *ReplyStyleTemplate `json:"reply_style_template"`
	SafetyAndConsent   SafetyAndConsent    `json:"safety_and_consent"`
	Evidence           []Evidence          `json:"evidence"`
	ConfidenceOverall  ConfidenceLevel     `json:"confidence_overall"`
	DeepInsights       string              `json:"deep_insights,omitempty"`
}

// -----------------------------------------------------------------------------
// PERSON - A preserved contact (storage collaborator)
// -----------------------------------------------------------------------------

// Person is a target participant whose memories and persona are persisted
type Person struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MemoryRecord is one persisted memory excerpt, keyed by person
type MemoryRecord struct {
	ID          string    `json:"id"`
	PersonID    string    `json:"person_id"`
	Content     string    `json:"content"`
	EmbeddingID string    `json:"embedding_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
