package ticketstore

import (
	"context"
	"fmt"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
)

// Provider constants for ticket store selection.
const (
	ProviderZendesk = "zendesk"
	ProviderGitLab  = "gitlab"
)

const (
	defaultMaxComments = 10
	defaultMaxResults  = 5

	snippetLength = 160
)

// SearchQuery describes a related-ticket search.
type SearchQuery struct {
	Text       string
	SolvedOnly bool
	Limit      int
}

// Store is the ticket source contract. Implementations convert every
// upstream failure into a Result reason at their own boundary; methods
// never return raw transport errors.
type Store interface {
	// FetchTicket returns the ticket header plus its comment thread as a
	// single-item result.
	FetchTicket(ctx context.Context, ticketID int64) source.Result[model.Ticket]

	// SearchTickets returns tickets matching the query, most recent first.
	SearchTickets(ctx context.Context, q SearchQuery) source.Result[model.RelatedTicket]
}

// Config holds ticket store configuration.
type Config struct {
	Provider    string // "zendesk" or "gitlab"
	Zendesk     ZendeskConfig
	GitLab      GitLabConfig
	MaxComments int // cap on comments fetched per ticket
	MaxResults  int // cap on search hits processed per query
}

func (c Config) maxComments() int {
	if c.MaxComments <= 0 {
		return defaultMaxComments
	}
	return c.MaxComments
}

func (c Config) maxResults() int {
	if c.MaxResults <= 0 {
		return defaultMaxResults
	}
	return c.MaxResults
}

// New creates a Store for the provider named in cfg.Provider.
// Defaults to Zendesk if no provider is specified.
func New(cfg Config) (Store, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderZendesk
	}

	switch provider {
	case ProviderZendesk:
		return NewZendesk(cfg)
	case ProviderGitLab:
		return NewGitLab(cfg)
	default:
		return nil, fmt.Errorf("unsupported ticket store provider: %s", provider)
	}
}
