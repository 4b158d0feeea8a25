// Package analyze contains the pure functions that turn raw platform answers
// into observations, visibility scores, and pattern summaries. Nothing here
// performs I/O; the same inputs always produce the same outputs.
package analyze

import (
	"strings"

	"github.com/sells-group/geo-cli/internal/model"
)

// wordsPerPositionUnit converts a word offset into an approximate "position"
// in the answer, roughly one unit per paragraph.
const wordsPerPositionUnit = 50

// contextSnippetLen caps the stored context excerpt.
const contextSnippetLen = 500

// BuildObservation extracts a structured observation from one platform answer.
// Matching is relaxed: a domain counts as mentioned when either the full
// domain or its first label (the name segment before the first dot) appears
// in the answer text. When the platform returned a citation list, an explicit
// citation rank takes precedence over the word-offset position estimate.
func BuildObservation(platform model.Platform, query, brandDomain string, competitors []string, text string, citations []string) model.Observation {
	lower := strings.ToLower(text)

	obs := model.Observation{
		Query:                query,
		Platform:             platform,
		BrandMentioned:       domainMentioned(lower, brandDomain),
		Context:              snippet(text),
		CompetitorsMentioned: []string{},
		RawResponse:          text,
	}

	for _, comp := range competitors {
		if domainMentioned(lower, comp) {
			obs.CompetitorsMentioned = append(obs.CompetitorsMentioned, comp)
		}
	}

	if !obs.BrandMentioned {
		return obs
	}

	if rank := citationRank(citations, brandDomain); rank > 0 {
		obs.CitationRank = &rank
		obs.Position = &rank
		return obs
	}

	if pos := textPosition(lower, brandDomain); pos > 0 {
		obs.Position = &pos
	}
	return obs
}

// domainMentioned reports whether domain or its name segment occurs in text.
// text must already be lowercased.
func domainMentioned(text, domain string) bool {
	if domain == "" {
		return false
	}
	d := strings.ToLower(domain)
	if strings.Contains(text, d) {
		return true
	}
	name := nameSegment(d)
	return name != "" && strings.Contains(text, name)
}

// nameSegment returns the label before the first dot of a domain, so
// "hubspot.com" matches plain "hubspot" in prose.
func nameSegment(domain string) string {
	if i := strings.Index(domain, "."); i > 0 {
		return domain[:i]
	}
	return domain
}

// citationRank returns the 1-based rank of the first citation mentioning the
// domain, or 0 when none does.
func citationRank(citations []string, domain string) int {
	d := strings.ToLower(domain)
	name := nameSegment(d)
	for i, c := range citations {
		cl := strings.ToLower(c)
		if strings.Contains(cl, d) || (name != "" && strings.Contains(cl, name)) {
			return i + 1
		}
	}
	return 0
}

// textPosition estimates where in the answer the domain first appears,
// counting whole words before the match. Returns 0 when absent.
func textPosition(lowerText, domain string) int {
	d := strings.ToLower(domain)
	idx := strings.Index(lowerText, d)
	if idx < 0 {
		idx = strings.Index(lowerText, nameSegment(d))
	}
	return positionAt(lowerText, idx)
}

// exactTextPosition matches only the full domain, never its name segment.
func exactTextPosition(lowerText, domain string) int {
	return positionAt(lowerText, strings.Index(lowerText, strings.ToLower(domain)))
}

func positionAt(lowerText string, idx int) int {
	if idx < 0 {
		return 0
	}
	return len(strings.Fields(lowerText[:idx]))/wordsPerPositionUnit + 1
}

func snippet(text string) string {
	if len(text) <= contextSnippetLen {
		return text
	}
	return text[:contextSnippetLen]
}
