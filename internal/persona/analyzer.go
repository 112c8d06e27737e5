package persona

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/memoria-app/memoria/internal/core"
)

// Thresholds holds the score-band cutoffs. Exported as a rule table so each
// band is tunable and testable in isolation.
type Thresholds struct {
	WarmthHigh int // keyword hits for warmth level 3
	WarmthMid  int // keyword hits for warmth level 2
	HumorHigh  int
	HumorMid   int

	EmojiHigh   float64 // emoji-per-message ratio for "high"
	EmojiMedium float64

	MaxClosings      int
	MaxCatchphrases  int
	MaxEmojiExamples int
	MaxNuggets       int

	CatchphraseMinLen int // rune bounds for a repeatable phrase
	CatchphraseMaxLen int

	ConfidenceHigh   int // target message count for "high"
	ConfidenceMedium int
}

// DefaultThresholds returns the product defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarmthHigh:        10,
		WarmthMid:         5,
		HumorHigh:         8,
		HumorMid:          3,
		EmojiHigh:         0.3,
		EmojiMedium:       0.1,
		MaxClosings:       5,
		MaxCatchphrases:   3,
		MaxEmojiExamples:  8,
		MaxNuggets:        5,
		CatchphraseMinLen: 10,
		CatchphraseMaxLen: 50,
		ConfidenceHigh:    50,
		ConfidenceMedium:  20,
	}
}

// Options carry the caller-supplied hints for an analysis.
type Options struct {
	Relationship     string
	Locale           string // "pt-BR" or "en-US"
	DisallowedTopics []string
	SportsTeam       string
	ReligiousCues    []string
	ConsentConfirmed bool

	// Zero value means DefaultThresholds.
	Thresholds Thresholds
}

func (o *Options) thresholds() Thresholds {
	if o.Thresholds == (Thresholds{}) {
		return DefaultThresholds()
	}
	return o.Thresholds
}

// emojiRe matches the common emoji blocks plus the heavy-use heart.
var emojiRe = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{2764}]\x{FE0F}?`)

// Analyze builds a persona profile for the target participant. Pure function
// of the transcript and options; safe to call concurrently.
func Analyze(t *core.ParsedTranscript, target string, opts Options) *core.PersonaProfile {
	th := opts.thresholds()
	lexicons := lexiconsFor(opts.Locale)
	msgs := t.MessagesFrom(target)
	corpus := lowerCorpus(msgs)

	profile := &core.PersonaProfile{
		ConsentOK:          opts.ConsentConfirmed,
		TargetPersonName:   target,
		RelationshipToUser: opts.Relationship,
		Language:           detectLanguage(corpus, opts.Locale),
	}

	profile.CoreIdentity = coreIdentity(corpus, opts.Relationship, lexicons)
	profile.ValuesAndThemes = themes(corpus, lexicons, opts)
	profile.SpeechDNA = speechDNA(msgs, corpus, lexicons, th)
	profile.InteractionPatterns = interactionPatterns(corpus, lexicons)
	profile.Boundaries = boundaries(corpus, lexicons, profile.SpeechDNA, opts)
	profile.MemoryNuggets = memoryNuggets(msgs, lexicons, th)

	return profile
}

// Confidence reflects how much target data backed the inference:
// > 50 messages is high, > 20 is medium, anything less is low.
func Confidence(t *core.ParsedTranscript, target string) core.ConfidenceLevel {
	return confidenceForCount(len(t.MessagesFrom(target)), DefaultThresholds())
}

func confidenceForCount(count int, th Thresholds) core.ConfidenceLevel {
	switch {
	case count > th.ConfidenceHigh:
		return core.ConfidenceHigh
	case count > th.ConfidenceMedium:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}

// Evidence returns transcript snippets supporting the scored traits.
func Evidence(t *core.ParsedTranscript, target string) []core.Evidence {
	lexicons := lexiconsFor("")
	msgs := t.MessagesFrom(target)

	var out []core.Evidence
	add := func(trait string, keywords []string) {
		for _, m := range msgs {
			lower := strings.ToLower(m.Text)
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					out = append(out, core.Evidence{Trait: trait, Snippet: snippet(m.Text, 80)})
					return
				}
			}
		}
	}

	add("warmth", collect(lexicons, func(l Lexicon) []string { return l.Warmth }))
	add("humor", collect(lexicons, func(l Lexicon) []string { return l.Humor }))
	add("formality", collect(lexicons, func(l Lexicon) []string { return l.Formal }))
	add("closings", collect(lexicons, func(l Lexicon) []string { return l.Closings }))

	for _, m := range msgs {
		if emojiRe.MatchString(m.Text) {
			out = append(out, core.Evidence{Trait: "emoji", Snippet: snippet(m.Text, 80)})
			break
		}
	}

	return out
}

// --- sub-algorithms ---

func speechDNA(msgs []core.Message, corpus string, lexicons []Lexicon, th Thresholds) core.SpeechDNA {
	warmthHits := countAny(corpus, collect(lexicons, func(l Lexicon) []string { return l.Warmth }))
	humorHits := countAny(corpus, collect(lexicons, func(l Lexicon) []string { return l.Humor }))
	formalHits := countAny(corpus, collect(lexicons, func(l Lexicon) []string { return l.Formal }))
	informalHits := countAny(corpus, collect(lexicons, func(l Lexicon) []string { return l.Informal }))

	dna := core.SpeechDNA{
		WarmthLevel: band(warmthHits, th.WarmthHigh, th.WarmthMid),
		Humor:       band(humorHits, th.HumorHigh, th.HumorMid),
		Formality:   relativeFormality(formalHits, informalHits),
	}

	dna.EmojiStyle = emojiStyle(msgs, th)
	dna.CommonClosings = closings(msgs, lexicons, th)
	dna.Catchphrases = catchphrases(msgs, th)

	return dna
}

// band maps an absolute keyword count onto a 0..3 level.
func band(hits, high, mid int) int {
	switch {
	case hits > high:
		return 3
	case hits > mid:
		return 2
	case hits > 0:
		return 1
	default:
		return 0
	}
}

// relativeFormality compares formal-register hits against informal ones.
// Unlike warmth/humor the score is relative, not an absolute band: a person
// who writes "prezado" once among slang is still informal.
func relativeFormality(formal, informal int) int {
	switch {
	case formal == 0 && informal == 0:
		return 1
	case formal > 2*informal:
		return 3
	case formal > informal:
		return 2
	case 2*formal >= informal:
		return 1
	default:
		return 0
	}
}

func emojiStyle(msgs []core.Message, th Thresholds) core.EmojiStyle {
	style := core.EmojiStyle{Frequency: core.EmojiLow}
	if len(msgs) == 0 {
		return style
	}

	var total int
	seen := make(map[string]bool)
	for _, m := range msgs {
		matches := emojiRe.FindAllString(m.Text, -1)
		total += len(matches)
		for _, e := range matches {
			if !seen[e] && len(style.Examples) < th.MaxEmojiExamples {
				seen[e] = true
				style.Examples = append(style.Examples, e)
			}
		}
	}

	ratio := float64(total) / float64(len(msgs))
	switch {
	case ratio > th.EmojiHigh:
		style.Frequency = core.EmojiHigh
	case ratio > th.EmojiMedium:
		style.Frequency = core.EmojiMedium
	}
	return style
}

// closings picks the first few messages carrying greeting/farewell cues,
// in document order, deduplicated.
func closings(msgs []core.Message, lexicons []Lexicon, th Thresholds) []string {
	keywords := collect(lexicons, func(l Lexicon) []string { return l.Closings })

	var out []string
	seen := make(map[string]bool)
	for _, m := range msgs {
		if len(out) >= th.MaxClosings {
			break
		}
		lower := strings.ToLower(m.Text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				s := snippet(m.Text, 60)
				if !seen[strings.ToLower(s)] {
					seen[strings.ToLower(s)] = true
					out = append(out, s)
				}
				break
			}
		}
	}
	return out
}

// catchphrases finds short messages the target repeats verbatim.
func catchphrases(msgs []core.Message, th Thresholds) []string {
	counts := make(map[string]int)
	var order []string
	for _, m := range msgs {
		text := strings.ToLower(strings.TrimSpace(m.Text))
		n := utf8.RuneCountInString(text)
		if n < th.CatchphraseMinLen || n > th.CatchphraseMaxLen {
			continue
		}
		if counts[text] == 0 {
			order = append(order, text)
		}
		counts[text]++
	}

	var out []string
	for _, phrase := range order {
		if len(out) >= th.MaxCatchphrases {
			break
		}
		if counts[phrase] > 1 {
			out = append(out, phrase)
		}
	}
	return out
}

func coreIdentity(corpus, relationship string, lexicons []Lexicon) core.CoreIdentity {
	identity := core.CoreIdentity{}
	rel := strings.ToLower(relationship)

	switch {
	case containsAny(rel, []string{"avô", "avó", "avo", "grandfather", "grandmother", "grandpa", "grandma"}):
		identity.AgeRangeGuess = "65+"
		identity.Roles = append(identity.Roles, "grandparent")
	case containsAny(rel, []string{"pai", "mãe", "mae", "father", "mother", "dad", "mom"}):
		identity.AgeRangeGuess = "50-70"
		identity.Roles = append(identity.Roles, "parent")
	case containsAny(rel, []string{"filho", "filha", "son", "daughter"}):
		identity.AgeRangeGuess = "18-35"
	}

	for _, lex := range lexicons {
		for _, rule := range lex.Roles {
			if containsAny(corpus, rule.Keywords) && !containsString(identity.Roles, rule.Tag) {
				identity.Roles = append(identity.Roles, rule.Tag)
			}
		}
	}

	if identity.AgeRangeGuess == "" && containsAny(corpus, []string{"aposentad", "retire"}) {
		identity.AgeRangeGuess = "60+"
	}

	return identity
}

func themes(corpus string, lexicons []Lexicon, opts Options) []string {
	var out []string
	for _, lex := range lexicons {
		for _, rule := range lex.Themes {
			if containsAny(corpus, rule.Keywords) && !containsString(out, rule.Tag) {
				out = append(out, rule.Tag)
			}
		}
	}
	if opts.SportsTeam != "" {
		out = append(out, teamTag(opts.SportsTeam, opts.Locale))
	}
	out = append(out, opts.ReligiousCues...)
	return out
}

func teamTag(team, locale string) string {
	if locale == "en-US" {
		return "fan of " + team
	}
	return "torcedor do " + team
}

func interactionPatterns(corpus string, lexicons []Lexicon) core.InteractionPatterns {
	patterns := core.InteractionPatterns{}
	for _, lex := range lexicons {
		patterns.CheckInHabits = appendTriggered(patterns.CheckInHabits, corpus, lex.CheckIns)
		patterns.CareSignals = appendTriggered(patterns.CareSignals, corpus, lex.Care)
		patterns.MediaInterests = appendTriggered(patterns.MediaInterests, corpus, lex.Media)
		patterns.RoutinesPlaces = appendTriggered(patterns.RoutinesPlaces, corpus, lex.Routines)
	}
	return patterns
}

func boundaries(corpus string, lexicons []Lexicon, dna core.SpeechDNA, opts Options) core.Boundaries {
	b := core.Boundaries{}
	primary := lexicons[0]

	if dna.WarmthLevel >= 2 {
		b.Do = append(b.Do, primary.AdviceWarm)
	}
	if dna.Humor >= 2 {
		b.Do = append(b.Do, primary.AdviceHumor)
	}
	if len(dna.CommonClosings) > 0 {
		b.Do = append(b.Do, primary.AdviceGreeting)
	}
	if dna.EmojiStyle.Frequency != core.EmojiLow {
		b.Do = append(b.Do, primary.AdviceEmoji)
	}

	for _, lex := range lexicons {
		b.Dont = appendTriggered(b.Dont, corpus, lex.AvoidCues)
	}
	b.Dont = append(b.Dont, opts.DisallowedTopics...)
	return b
}

func memoryNuggets(msgs []core.Message, lexicons []Lexicon, th Thresholds) []string {
	keywords := collect(lexicons, func(l Lexicon) []string { return l.Nuggets })

	var out []string
	for _, m := range msgs {
		if len(out) >= th.MaxNuggets {
			break
		}
		if containsAny(strings.ToLower(m.Text), keywords) {
			out = append(out, snippet(m.Text, 80))
		}
	}
	return out
}

func detectLanguage(corpus, locale string) core.Language {
	pt := countAny(corpus, lexiconPT.Markers)
	en := countAny(corpus, lexiconEN.Markers)

	switch {
	case pt == 0 && en == 0:
		if locale == "en-US" {
			return core.LanguageEN
		}
		return core.LanguagePT
	case pt > 0 && en > 0 && 3*minInt(pt, en) >= maxInt(pt, en):
		return core.LanguageMixed
	case en > pt:
		return core.LanguageEN
	default:
		return core.LanguagePT
	}
}

// --- helpers ---

func lowerCorpus(msgs []core.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToLower(m.Text))
	}
	return b.String()
}

func collect(lexicons []Lexicon, pick func(Lexicon) []string) []string {
	var out []string
	for _, lex := range lexicons {
		out = append(out, pick(lex)...)
	}
	return out
}

func countAny(corpus string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		total += strings.Count(corpus, kw)
	}
	return total
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func appendTriggered(dst []string, corpus string, rules []taggedRule) []string {
	for _, rule := range rules {
		if containsAny(corpus, rule.Keywords) && !containsString(dst, rule.Tag) {
			dst = append(dst, rule.Tag)
		}
	}
	return dst
}

func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
