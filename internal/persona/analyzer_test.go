package persona

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/memoria-app/memoria/internal/core"
)

func transcriptFor(sender string, texts []string) *core.ParsedTranscript {
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	t := &core.ParsedTranscript{Participants: []string{sender}}
	for i, text := range texts {
		ts := base.Add(time.Duration(i) * time.Minute)
		t.Messages = append(t.Messages, core.Message{Timestamp: &ts, Sender: sender, Text: text})
	}
	t.TotalCount = len(t.Messages)
	return t
}

func TestAnalyze_WarmHumorousProfile(t *testing.T) {
	texts := make([]string, 0, 60)
	for i := 0; i < 20; i++ {
		texts = append(texts, "bom dia meu amor ❤️")
		texts = append(texts, "kkkk que engraçado")
		texts = append(texts, fmt.Sprintf("hoje o dia foi corrido no trabalho %d", i))
	}
	tr := transcriptFor("Ana", texts)

	p := Analyze(tr, "Ana", Options{Relationship: "mãe", Locale: "pt-BR", ConsentConfirmed: true})

	if p.SpeechDNA.WarmthLevel == 0 {
		t.Error("warmth_level = 0, want > 0")
	}
	if p.SpeechDNA.Humor == 0 {
		t.Error("humor = 0, want > 0")
	}
	if got := Confidence(tr, "Ana"); got != core.ConfidenceHigh {
		t.Errorf("confidence = %v, want high for 60 messages", got)
	}
	if !p.ConsentOK {
		t.Error("consent_ok should carry through")
	}
	if p.CoreIdentity.AgeRangeGuess != "50-70" {
		t.Errorf("age_range_guess = %q, want 50-70 for mãe", p.CoreIdentity.AgeRangeGuess)
	}
	if p.Language != core.LanguagePT {
		t.Errorf("language = %v, want pt-BR", p.Language)
	}
}

func TestAnalyze_ScoresAreBounded(t *testing.T) {
	texts := []string{
		"meu amor querido, saudade, te amo, beijo, abraço, coração",
		"kkkk haha rsrs 😂 😂 😂 piada engraçado",
		"prezado senhor, atenciosamente, cordialmente, por gentileza",
	}
	tr := transcriptFor("Ana", texts)
	p := Analyze(tr, "Ana", Options{})

	for name, score := range map[string]int{
		"warmth":    p.SpeechDNA.WarmthLevel,
		"formality": p.SpeechDNA.Formality,
		"humor":     p.SpeechDNA.Humor,
	} {
		if score < 0 || score > 3 {
			t.Errorf("%s = %d, want 0..3", name, score)
		}
	}
}

func TestConfidence_Bands(t *testing.T) {
	tests := []struct {
		count int
		want  core.ConfidenceLevel
	}{
		{0, core.ConfidenceLow},
		{20, core.ConfidenceLow},
		{21, core.ConfidenceMedium},
		{50, core.ConfidenceMedium},
		{51, core.ConfidenceHigh},
		{500, core.ConfidenceHigh},
	}
	for _, tt := range tests {
		texts := make([]string, tt.count)
		for i := range texts {
			texts[i] = "mensagem"
		}
		tr := transcriptFor("Ana", texts)
		if got := Confidence(tr, "Ana"); got != tt.want {
			t.Errorf("Confidence(%d msgs) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestEmojiStyle_FrequencyBands(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  core.EmojiFrequency
	}{
		{
			name:  "no emoji",
			texts: []string{"oi", "tudo bem", "sim"},
			want:  core.EmojiLow,
		},
		{
			name:  "heavy emoji",
			texts: []string{"❤️", "😂 😂", "🙏"},
			want:  core.EmojiHigh,
		},
		{
			name: "occasional emoji",
			texts: append([]string{"oi ❤️"}, func() []string {
				out := make([]string, 7)
				for i := range out {
					out[i] = "sem emoji"
				}
				return out
			}()...),
			want: core.EmojiMedium,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := transcriptFor("Ana", tt.texts)
			p := Analyze(tr, "Ana", Options{})
			if p.SpeechDNA.EmojiStyle.Frequency != tt.want {
				t.Errorf("frequency = %v, want %v", p.SpeechDNA.EmojiStyle.Frequency, tt.want)
			}
		})
	}
}

func TestEmojiExamples_Deduplicated(t *testing.T) {
	tr := transcriptFor("Ana", []string{"❤️ ❤️ ❤️", "😂 ❤️"})
	p := Analyze(tr, "Ana", Options{})
	ex := p.SpeechDNA.EmojiStyle.Examples
	seen := make(map[string]bool)
	for _, e := range ex {
		if seen[e] {
			t.Errorf("duplicate emoji example %q in %v", e, ex)
		}
		seen[e] = true
	}
}

func TestCatchphrases_RequireRepetition(t *testing.T) {
	tr := transcriptFor("Ana", []string{
		"se Deus quiser!",
		"se Deus quiser!",
		"uma frase que aparece só uma vez",
		"vai com fé, meu filho",
		"vai com fé, meu filho",
		"vai com fé, meu filho",
	})
	p := Analyze(tr, "Ana", Options{})

	got := p.SpeechDNA.Catchphrases
	want := []string{"se deus quiser!", "vai com fé, meu filho"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("catchphrases = %v, want %v", got, want)
	}
}

func TestClosings_CappedAndOrdered(t *testing.T) {
	var texts []string
	for i := 0; i < 10; i++ {
		texts = append(texts, fmt.Sprintf("bom dia número %d", i))
	}
	tr := transcriptFor("Ana", texts)
	p := Analyze(tr, "Ana", Options{})

	if len(p.SpeechDNA.CommonClosings) > 5 {
		t.Errorf("closings = %d entries, cap is 5", len(p.SpeechDNA.CommonClosings))
	}
	if len(p.SpeechDNA.CommonClosings) == 0 {
		t.Fatal("expected at least one closing")
	}
	if p.SpeechDNA.CommonClosings[0] != "bom dia número 0" {
		t.Errorf("first closing = %q, want document order", p.SpeechDNA.CommonClosings[0])
	}
}

func TestThemes_KeywordAndHints(t *testing.T) {
	tr := transcriptFor("Ana", []string{
		"domingo tem jogo do time, vou ver com a família",
		"depois da missa a gente conversa",
	})
	p := Analyze(tr, "Ana", Options{Locale: "pt-BR", SportsTeam: "Flamengo"})

	for _, want := range []string{"família", "futebol", "fé e religião", "torcedor do Flamengo"} {
		if !containsString(p.ValuesAndThemes, want) {
			t.Errorf("themes missing %q: %v", want, p.ValuesAndThemes)
		}
	}
}

func TestBoundaries_DisallowedTopicsFolded(t *testing.T) {
	tr := transcriptFor("Ana", []string{"oi"})
	p := Analyze(tr, "Ana", Options{DisallowedTopics: []string{"política", "doença"}})

	for _, topic := range []string{"política", "doença"} {
		if !containsString(p.Boundaries.Dont, topic) {
			t.Errorf("boundaries.dont missing %q: %v", topic, p.Boundaries.Dont)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name   string
		texts  []string
		locale string
		want   core.Language
	}{
		{"portuguese", []string{"não sei, você também já viu? obrigada, muito bom"}, "", core.LanguagePT},
		{"english", []string{"thanks, the weather is very good and you know it, yes"}, "", core.LanguageEN},
		{"mixed", []string{"não você obrigado sim já", "thanks the very yes and good morning how are"}, "", core.LanguageMixed},
		{"empty falls back to locale", []string{"xyz"}, "en-US", core.LanguageEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := transcriptFor("Ana", tt.texts)
			p := Analyze(tr, "Ana", Options{Locale: tt.locale})
			if p.Language != tt.want {
				t.Errorf("language = %v, want %v", p.Language, tt.want)
			}
		})
	}
}

func TestEvidence_TracksTraits(t *testing.T) {
	tr := transcriptFor("Ana", []string{
		"te amo, meu querido ❤️",
		"kkkk muito engraçado",
	})
	ev := Evidence(tr, "Ana")
	if len(ev) == 0 {
		t.Fatal("expected evidence entries")
	}
	traits := make(map[string]string)
	for _, e := range ev {
		traits[e.Trait] = e.Snippet
	}
	if s, ok := traits["warmth"]; !ok || s == "" {
		t.Errorf("missing warmth evidence: %v", traits)
	}
	if s, ok := traits["humor"]; !ok || s == "" {
		t.Errorf("missing humor evidence: %v", traits)
	}
	if s, ok := traits["emoji"]; !ok || s == "" {
		t.Errorf("missing emoji evidence: %v", traits)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	tr := transcriptFor("Ana", []string{
		"bom dia, te amo ❤️", "kkkk", "domingo tem almoço na casa da vó",
	})
	opts := Options{Relationship: "avó", Locale: "pt-BR"}
	a := Analyze(tr, "Ana", opts)
	b := Analyze(tr, "Ana", opts)
	if !reflect.DeepEqual(a, b) {
		t.Error("Analyze is not deterministic")
	}
}
