package analysis_test

import (
	"context"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
	"supportlens.app/triage/internal/source/summarizer"
	"supportlens.app/triage/internal/source/ticketstore"
)

type mockTicketStore struct {
	fetchFn  func(ctx context.Context, ticketID int64) source.Result[model.Ticket]
	searchFn func(ctx context.Context, q ticketstore.SearchQuery) source.Result[model.RelatedTicket]

	fetchCalls  int
	searchCalls int
}

func (m *mockTicketStore) FetchTicket(ctx context.Context, ticketID int64) source.Result[model.Ticket] {
	m.fetchCalls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, ticketID)
	}
	return source.Unavailable[model.Ticket](source.ReasonEmpty)
}

func (m *mockTicketStore) SearchTickets(ctx context.Context, q ticketstore.SearchQuery) source.Result[model.RelatedTicket] {
	m.searchCalls++
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return source.Unavailable[model.RelatedTicket](source.ReasonEmpty)
}

type mockDocSearcher struct {
	searchFn func(ctx context.Context, keywords []string) source.Result[model.RelatedDoc]

	searchCalls int
}

func (m *mockDocSearcher) Search(ctx context.Context, keywords []string) source.Result[model.RelatedDoc] {
	m.searchCalls++
	if m.searchFn != nil {
		return m.searchFn(ctx, keywords)
	}
	return source.Unavailable[model.RelatedDoc](source.ReasonEmpty)
}

type mockSummarizer struct {
	summarizeFn func(ctx context.Context, in summarizer.Input) source.Result[model.TicketSummary]

	summarizeCalls int
}

func (m *mockSummarizer) Summarize(ctx context.Context, in summarizer.Input) source.Result[model.TicketSummary] {
	m.summarizeCalls++
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, in)
	}
	return source.Unavailable[model.TicketSummary](source.ReasonEmpty)
}

func (m *mockSummarizer) Enabled() bool { return m.summarizeFn != nil }
