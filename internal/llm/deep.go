package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/memoria-app/memoria/internal/core"
)

const deepAnalysisSystem = `You are a communication analyst. You receive a heuristic persona profile (JSON) and a handful of conversation excerpts for one person. Write a short prose analysis of how this person communicates: tone, rhythm, recurring expressions, what they care about, and anything the structured profile misses. Be concrete and quote the excerpts where useful. Do not invent facts that the excerpts do not support.`

// DeepAnalysis enriches a heuristic profile with model-written insights.
// Callers bound it with a context deadline; a failure here never blocks
// the structured result.
func (c *Client) DeepAnalysis(ctx context.Context, profileJSON string, memories []string) (string, error) {
	if !c.IsConfigured() {
		return "", core.ErrLLMUnavailable
	}

	var b strings.Builder
	b.WriteString("Persona profile:\n")
	b.WriteString(profileJSON)
	if len(memories) > 0 {
		b.WriteString("\n\nConversation excerpts:\n")
		for i, m := range memories {
			fmt.Fprintf(&b, "--- excerpt %d ---\n%s\n", i+1, m)
		}
	}

	return c.Chat(ctx, deepAnalysisSystem, b.String())
}
