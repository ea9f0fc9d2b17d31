package docsearch

import (
	"context"
	"fmt"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
)

// Provider constants for documentation index selection.
const (
	ProviderTypesense = "typesense"
	ProviderSearx     = "searx"
)

const (
	defaultMaxResults = 5

	snippetLength = 160
)

// Searcher is the documentation source contract. Every query is scoped to
// the configured documentation domain; failures surface as Result reasons,
// never as errors.
type Searcher interface {
	Search(ctx context.Context, keywords []string) source.Result[model.RelatedDoc]
}

// Config holds documentation search configuration.
type Config struct {
	Provider string // "typesense" or "searx"

	// DocsDomain is the product documentation host, e.g.
	// "doc.castsoftware.com". Required: it scopes web queries and anchors
	// the fallback links.
	DocsDomain string

	MaxResults int
	Typesense  TypesenseConfig
	Searx      SearxConfig
}

// TypesenseConfig points at a self-hosted documentation index.
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// SearxConfig points at a SearXNG instance with the JSON format enabled.
type SearxConfig struct {
	BaseURL string
}

func (c Config) maxResults() int {
	if c.MaxResults <= 0 {
		return defaultMaxResults
	}
	return c.MaxResults
}

// New creates a Searcher for the provider named in cfg.Provider.
// Defaults to Searx if no provider is specified.
func New(cfg Config) (Searcher, error) {
	if cfg.DocsDomain == "" {
		return nil, fmt.Errorf("docsearch: docs domain is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderSearx
	}

	switch provider {
	case ProviderTypesense:
		return newTypesense(cfg)
	case ProviderSearx:
		return newSearx(cfg)
	default:
		return nil, fmt.Errorf("unsupported doc search provider: %s", provider)
	}
}

// Fallback returns the canonical documentation entry points for domain.
// The reducer substitutes this list whenever the documentation source is
// unavailable, so users are never shown an empty reference section.
func Fallback(domain string) []model.RelatedDoc {
	base := "https://" + domain
	return []model.RelatedDoc{
		{Title: "Documentation Home", URL: base + "/"},
		{Title: "Release Notes", URL: base + "/release-notes"},
		{Title: "Troubleshooting Guide", URL: base + "/troubleshooting"},
	}
}
