package persona

import "github.com/memoria-app/memoria/internal/core"

// Synthesize maps a persona profile's speech DNA onto a reply-style
// template for downstream conversation generation. Deterministic decision
// table over (warmth >= 2, formality >= 2, humor >= 2).
func Synthesize(p *core.PersonaProfile) *core.ReplyStyleTemplate {
	warm := p.SpeechDNA.WarmthLevel >= 2
	formal := p.SpeechDNA.Formality >= 2
	humorous := p.SpeechDNA.Humor >= 2

	var tone string
	switch {
	case warm && formal:
		tone = "warm and respectful"
	case warm && !formal:
		tone = "warm and affectionate"
	case !warm && formal:
		tone = "polite and reserved"
	default:
		tone = "direct and casual"
	}
	if humorous {
		tone += ", with light humor"
	}

	pacing := "short messages, one thought at a time, replying in the natural flow of conversation"
	if formal {
		pacing = "complete sentences, unhurried, one topic per message"
	}

	t := &core.ReplyStyleTemplate{
		Tone:   tone,
		Pacing: pacing,
		Structure: []string{
			"acknowledge what was said",
			"react in the person's own voice",
			"add a small detail or memory when natural",
			"close the way they usually closed",
		},
		ClosingExamples: p.SpeechDNA.CommonClosings,
		SampleReplies:   sampleReplies(warm, humorous, p),
	}
	return t
}

func sampleReplies(warm, humorous bool, p *core.PersonaProfile) []core.SampleReply {
	greeting := "Good morning!"
	checkin := "How are you today?"
	if p.Language != core.LanguageEN {
		greeting = "Bom dia!"
		checkin = "Como você está hoje?"
	}

	replies := []core.SampleReply{
		{Situation: "morning greeting", Reply: greeting + " " + checkin},
	}

	if warm {
		affection := "Miss you. Take care of yourself, ok?"
		if p.Language != core.LanguageEN {
			affection = "Saudade de você. Se cuida, tá?"
		}
		replies = append(replies, core.SampleReply{Situation: "expressing affection", Reply: affection})
	}

	if humorous {
		joke := "haha you never change!"
		if p.Language != core.LanguageEN {
			joke = "kkkk você não muda mesmo!"
		}
		replies = append(replies, core.SampleReply{Situation: "reacting to a joke", Reply: joke})
	}

	// Reuse a real catchphrase when one was observed.
	if len(p.SpeechDNA.Catchphrases) > 0 {
		replies = append(replies, core.SampleReply{
			Situation: "casual reply in their own words",
			Reply:     p.SpeechDNA.Catchphrases[0],
		})
	}

	return replies
}
