package analysis

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source"
	"supportlens.app/triage/internal/source/docsearch"
	"supportlens.app/triage/internal/source/summarizer"
	"supportlens.app/triage/internal/source/ticketstore"
)

// Sources bundles the upstream adapters the pipeline fans out to. All three
// must be non-nil; a deployment without a generative provider wires
// summarizer.Disabled().
type Sources struct {
	Tickets    ticketstore.Store
	Docs       docsearch.Searcher
	Summarizer summarizer.Summarizer
}

type phase string

const (
	phaseIdle        phase = "idle"
	phaseDispatching phase = "dispatching"
	phaseCollecting  phase = "collecting"
	phaseDone        phase = "done"
)

// Outcome is everything the fan-out produced for one request. Every source
// slot is populated; unavailability is encoded in the Result, never as an
// error.
type Outcome struct {
	Ticket  source.Result[model.Ticket]
	Related source.Result[model.RelatedTicket]
	Docs    source.Result[model.RelatedDoc]
	Summary source.Result[model.TicketSummary]

	Keywords []string
}

type orchestrator struct {
	sources  Sources
	keywords *normalize.KeywordExtractor
	cfg      Config
}

func newOrchestrator(sources Sources, keywords *normalize.KeywordExtractor, cfg Config) *orchestrator {
	if keywords == nil {
		keywords = normalize.NewKeywordExtractor(0, nil, "")
	}
	return &orchestrator{sources: sources, keywords: keywords, cfg: cfg}
}

// Run drives one request through dispatch and collection under the overall
// deadline. It always returns a complete Outcome: when the deadline fires,
// sources that have not answered yet are recorded Unavailable(Timeout) and
// whatever did arrive is kept. Failed calls are never retried.
func (o *orchestrator) Run(ctx context.Context, req model.AnalysisRequest) Outcome {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.overallDeadline())
	defer cancel()

	o.logPhase(ctx, phaseIdle, phaseDispatching)

	var out Outcome
	var subject, conversation string

	if req.ByTicket() {
		out.Ticket = o.fetchTicket(ctx, req.TicketID)
		if t, ok := out.Ticket.First(); ok {
			subject = normalize.Normalize(t.Subject)
			conversation = flattenTicket(t)
		}
	} else {
		out.Ticket = source.Unavailable[model.Ticket](source.ReasonEmpty)
		conversation = normalize.Normalize(req.QueryText)
	}

	// Both secondary searches and the summarizer consume the keywords, so
	// extraction strictly precedes the fan-out. The extractor never returns
	// an empty set.
	out.Keywords = o.keywords.Extract(subject + " " + conversation)

	// Ticket mode finds siblings by the ticket's own subject; query mode
	// searches by the cleaned query text.
	searchText := subject
	if !req.ByTicket() {
		searchText = conversation
	}

	o.logPhase(ctx, phaseDispatching, phaseCollecting)

	// Each slot is buffered so a straggler finishing after the deadline
	// parks its result and exits instead of leaking, and its data can never
	// surface in a later request.
	relatedCh := make(chan source.Result[model.RelatedTicket], 1)
	docsCh := make(chan source.Result[model.RelatedDoc], 1)
	summaryCh := make(chan source.Result[model.TicketSummary], 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { relatedCh <- o.searchRelated(gctx, searchText); return nil })
	g.Go(func() error { docsCh <- o.searchDocs(gctx, out.Keywords); return nil })

	if o.sources.Summarizer.Enabled() {
		in := summarizer.Input{Subject: subject, Text: conversation, Keywords: out.Keywords}
		g.Go(func() error { summaryCh <- o.sources.Summarizer.Summarize(gctx, in); return nil })
	} else {
		summaryCh <- source.Unavailable[model.TicketSummary](source.ReasonEmpty)
	}

	groupDone := make(chan struct{})
	go func() {
		_ = g.Wait() // failures live in the Results, not in errors
		close(groupDone)
	}()

	select {
	case <-groupDone:
	case <-ctx.Done():
	}

	out.Related = drain(relatedCh)
	out.Docs = drain(docsCh)
	out.Summary = drain(summaryCh)

	o.logPhase(ctx, phaseCollecting, phaseDone)
	slog.DebugContext(ctx, "fan-out collected",
		"ticket_available", out.Ticket.Available(),
		"related_available", out.Related.Available(),
		"docs_available", out.Docs.Available(),
		"summary_available", out.Summary.Available(),
		"keywords", len(out.Keywords))

	return out
}

// fetchTicket bounds the ticket lookup with its own budget and with the
// overall deadline, whichever fires first. The indirection through a
// buffered channel keeps Run responsive even against a store implementation
// that ignores context cancellation.
func (o *orchestrator) fetchTicket(ctx context.Context, id int64) source.Result[model.Ticket] {
	ch := make(chan source.Result[model.Ticket], 1)
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.ticketTimeout())
		defer cancel()
		ch <- o.sources.Tickets.FetchTicket(callCtx, id)
	}()

	select {
	case res := <-ch:
		return res
	case <-ctx.Done():
		return source.Unavailable[model.Ticket](source.ReasonTimeout)
	}
}

func (o *orchestrator) searchRelated(ctx context.Context, text string) source.Result[model.RelatedTicket] {
	if strings.TrimSpace(text) == "" {
		return source.Unavailable[model.RelatedTicket](source.ReasonEmpty)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.searchTimeout())
	defer cancel()

	// Fetch a couple beyond the cap so self-exclusion and dedup still leave
	// a full list.
	return o.sources.Tickets.SearchTickets(ctx, ticketstore.SearchQuery{
		Text:       text,
		SolvedOnly: true,
		Limit:      o.cfg.maxRelatedTickets() + 2,
	})
}

func (o *orchestrator) searchDocs(ctx context.Context, keywords []string) source.Result[model.RelatedDoc] {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.docsTimeout())
	defer cancel()

	return o.sources.Docs.Search(ctx, keywords)
}

func (o *orchestrator) logPhase(ctx context.Context, from, to phase) {
	slog.DebugContext(ctx, "pipeline phase", "from", string(from), "to", string(to))
}

// drain returns the parked result, or a timeout marker when the source has
// not answered by collection time.
func drain[T any](ch <-chan source.Result[T]) source.Result[T] {
	select {
	case res := <-ch:
		return res
	default:
		return source.Unavailable[T](source.ReasonTimeout)
	}
}

// flattenTicket joins the normalized description and comment bodies, one
// per line, for keyword extraction and summarization.
func flattenTicket(t model.Ticket) string {
	parts := make([]string, 0, len(t.Comments)+1)
	if d := normalize.Normalize(t.Description); d != "" {
		parts = append(parts, d)
	}
	for _, c := range t.Comments {
		if b := normalize.Normalize(c.Body); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n")
}
