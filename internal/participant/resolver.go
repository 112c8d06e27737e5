// Package participant identifies which chat participant the pipeline
// should focus on.
package participant

import (
	"strings"

	"github.com/memoria-app/memoria/internal/core"
)

// selfReferences are names the exporting device uses for its own owner.
// When one side of a two-person chat is "You"/"Eu", the other side is the
// person being preserved.
var selfReferences = map[string]bool{
	"you":  true,
	"eu":   true,
	"me":   true,
	"voce": true,
}

// mediaPlaceholders mark parser artifacts that look like senders but are
// export noise (system lines, omitted attachments).
var mediaPlaceholders = []string{
	"media omitted",
	"imagem ocultada",
	"audio ocultado",
	"video omitido",
	"figurinha omitida",
	"sticker omitted",
	"attached",
	"arquivo anexado",
}

// Resolve determines the target participant for a transcript.
//
// With no hint it falls back to heuristics (single candidate, phone-owner
// self-reference, fewest messages). With a hint it tries exact and partial
// normalized matching first. Returns core.ErrPersonNotIdentified when a hint
// was supplied but no candidate survives filtering.
func Resolve(t *core.ParsedTranscript, hint string) (string, error) {
	candidates := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		if isArtifact(p) {
			continue
		}
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		if hint != "" {
			return "", core.ErrPersonNotIdentified
		}
		return "", nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	if hint != "" {
		normHint := Normalize(hint)

		for _, c := range candidates {
			if Normalize(c) == normHint {
				return c, nil
			}
		}

		// Whole-name containment covers short hints like "Jo" for "João".
		if len(normHint) > 1 {
			for _, c := range candidates {
				nc := Normalize(c)
				if strings.Contains(nc, normHint) || strings.Contains(normHint, nc) {
					return c, nil
				}
			}
		}

		for _, c := range candidates {
			if tokensOverlap(normHint, Normalize(c)) {
				return c, nil
			}
		}
	}

	// Phone-owner heuristic: if one side is a self-reference, the target is
	// the other side.
	if len(candidates) == 2 {
		for i, c := range candidates {
			if selfReferences[Normalize(c)] {
				return candidates[1-i], nil
			}
		}
	}

	// The less frequent sender is more likely the contact being preserved,
	// not the exporter.
	counts := t.CountBySender()
	best := candidates[0]
	for _, c := range candidates[1:] {
		if counts[c] < counts[best] {
			best = c
		}
	}
	return best, nil
}

// Normalize lowercases a name, strips diacritics and punctuation, and
// collapses whitespace.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if folded, ok := diacriticFold[r]; ok {
			b.WriteRune(folded)
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune(' ')
		}
		// Everything else (punctuation, symbols) is dropped.
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokensOverlap reports whether any hint token of length > 2 is a substring
// of any candidate token, or vice versa. This covers nicknames, first-name
// hints and partial surnames.
func tokensOverlap(hint, candidate string) bool {
	for _, ht := range strings.Fields(hint) {
		if len(ht) <= 2 {
			continue
		}
		for _, ct := range strings.Fields(candidate) {
			if strings.Contains(ct, ht) || strings.Contains(ht, ct) {
				return true
			}
		}
	}
	return false
}

// isArtifact reports whether a participant name looks like parsing noise
// rather than a real sender. Heuristic: real names that start with a digit
// are misclassified; known limitation.
func isArtifact(name string) bool {
	if name == "" {
		return true
	}
	if strings.ContainsAny(name, "[]<>") {
		return true
	}
	first := rune(name[0])
	if first >= '0' && first <= '9' {
		return true
	}
	lower := strings.ToLower(name)
	for _, placeholder := range mediaPlaceholders {
		if strings.Contains(lower, placeholder) {
			return true
		}
	}
	return false
}

// diacriticFold maps accented letters seen in pt-BR names to ASCII.
var diacriticFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}
