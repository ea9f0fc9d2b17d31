package analysis

import (
	"time"

	"supportlens.app/triage/internal/model"
)

// confidenceCeiling is fixed: classification is heuristic, never verified,
// so the engine must not claim near-certainty regardless of evidence volume.
const confidenceCeiling = 0.9

const (
	defaultOverallDeadline = 30 * time.Second
	defaultTicketTimeout   = 10 * time.Second
	defaultSearchTimeout   = 10 * time.Second
	defaultDocsTimeout     = 8 * time.Second

	defaultMaxRelatedTickets = 3
	defaultMaxRelatedDocs    = 3
	relatedCap               = 5
	defaultMaxSeedComments   = 3
	defaultSeedCommentChars  = 280

	defaultBaseConfidence  = 0.3
	defaultPerTicketWeight = 0.2
	defaultPerDocWeight    = 0.0
	defaultUnknownFloor    = 0.2
)

// Config holds the pipeline tuning knobs. Zero values select the defaults
// above so a zero Config is usable in tests.
type Config struct {
	// OverallDeadline bounds the whole fan-out; when it fires the pipeline
	// assembles whatever arrived and marks the rest unavailable.
	OverallDeadline time.Duration

	// Per-adapter budgets, each below OverallDeadline so one slow source
	// cannot consume the whole request. The summarizer budget lives in its
	// own adapter config since that adapter enforces its own timeout.
	TicketTimeout time.Duration
	SearchTimeout time.Duration
	DocsTimeout   time.Duration

	MaxRelatedTickets int // clamped to 1..5
	MaxRelatedDocs    int // clamped to 1..5
	MaxSeedComments   int
	SeedCommentChars  int

	// FallbackDocs stand in for related docs whenever the document index
	// reports unavailable, so that list is never shown empty. Wire
	// docsearch.Fallback(domain) here.
	FallbackDocs []model.RelatedDoc

	Scoring    ScoringConfig
	Classifier ClassifierConfig
}

// ScoringConfig names the confidence formula constants. The ceiling is not
// configurable.
type ScoringConfig struct {
	Base         float64
	PerTicket    float64
	PerDoc       float64
	UnknownFloor float64
}

// ClassifierConfig carries the category phrase sets. Nil slices select the
// built-in defaults.
type ClassifierConfig struct {
	UpgradePhrases      []string
	WorkaroundPhrases   []string
	NotSupportedPhrases []string
}

func (c Config) overallDeadline() time.Duration {
	if c.OverallDeadline <= 0 {
		return defaultOverallDeadline
	}
	return c.OverallDeadline
}

func (c Config) ticketTimeout() time.Duration {
	if c.TicketTimeout <= 0 {
		return defaultTicketTimeout
	}
	return c.TicketTimeout
}

func (c Config) searchTimeout() time.Duration {
	if c.SearchTimeout <= 0 {
		return defaultSearchTimeout
	}
	return c.SearchTimeout
}

func (c Config) docsTimeout() time.Duration {
	if c.DocsTimeout <= 0 {
		return defaultDocsTimeout
	}
	return c.DocsTimeout
}

func (c Config) maxRelatedTickets() int {
	return clampCap(c.MaxRelatedTickets, defaultMaxRelatedTickets)
}

func (c Config) maxRelatedDocs() int {
	return clampCap(c.MaxRelatedDocs, defaultMaxRelatedDocs)
}

func (c Config) maxSeedComments() int {
	if c.MaxSeedComments <= 0 {
		return defaultMaxSeedComments
	}
	return c.MaxSeedComments
}

func (c Config) seedCommentChars() int {
	if c.SeedCommentChars <= 0 {
		return defaultSeedCommentChars
	}
	return c.SeedCommentChars
}

func clampCap(v, def int) int {
	if v <= 0 {
		return def
	}
	if v > relatedCap {
		return relatedCap
	}
	return v
}

func (s ScoringConfig) base() float64 {
	if s.Base <= 0 {
		return defaultBaseConfidence
	}
	return s.Base
}

func (s ScoringConfig) perTicket() float64 {
	if s.PerTicket <= 0 {
		return defaultPerTicketWeight
	}
	return s.PerTicket
}

func (s ScoringConfig) perDoc() float64 {
	if s.PerDoc <= 0 {
		return defaultPerDocWeight
	}
	return s.PerDoc
}

func (s ScoringConfig) unknownFloor() float64 {
	if s.UnknownFloor <= 0 {
		return defaultUnknownFloor
	}
	return s.UnknownFloor
}
