package model

import (
	"github.com/rotisserie/eris"
)

// Platform identifies an answer-generation service to query.
type Platform string

const (
	PlatformChatGPT    Platform = "chatgpt"
	PlatformPerplexity Platform = "perplexity"
)

// KnownPlatforms lists every platform the collector can dispatch to.
var KnownPlatforms = []Platform{PlatformChatGPT, PlatformPerplexity}

// Valid reports whether the platform is one the collector knows how to query.
func (p Platform) Valid() bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// DefaultNumQueries caps query-variation expansion when the request does not
// specify a count.
const DefaultNumQueries = 5

// AnalysisRequest describes one visibility analysis to run.
type AnalysisRequest struct {
	Query       string     `json:"query"`
	BrandDomain string     `json:"brand_domain"`
	Competitors []string   `json:"competitors"`
	Platforms   []Platform `json:"platforms"`
	NumQueries  int        `json:"num_queries"`
}

// Normalize fills defaults for optional fields. Called before Validate.
func (r *AnalysisRequest) Normalize() {
	if len(r.Platforms) == 0 {
		r.Platforms = []Platform{PlatformChatGPT, PlatformPerplexity}
	}
	if r.NumQueries <= 0 {
		r.NumQueries = DefaultNumQueries
	}
}

// Validate rejects structurally invalid requests. A validation error fails
// the run before any pipeline stage starts.
func (r *AnalysisRequest) Validate() error {
	if r.Query == "" {
		return eris.New("request: query is required")
	}
	if r.BrandDomain == "" {
		return eris.New("request: brand_domain is required")
	}
	for _, p := range r.Platforms {
		if !p.Valid() {
			return eris.Errorf("request: unknown platform %q", p)
		}
	}
	for _, c := range r.Competitors {
		if c == "" {
			return eris.New("request: competitor domain must not be empty")
		}
	}
	return nil
}
