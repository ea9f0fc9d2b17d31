package analysis_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"supportlens.app/triage/internal/analysis"
	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
	"supportlens.app/triage/internal/source/summarizer"
	"supportlens.app/triage/internal/source/ticketstore"
)

var fallbackDocs = []model.RelatedDoc{
	{Title: "Documentation Home", URL: "https://docs.example.com/"},
	{Title: "Troubleshooting Guide", URL: "https://docs.example.com/troubleshooting"},
}

var _ = Describe("Service", func() {
	var (
		tickets *mockTicketStore
		docs    *mockDocSearcher
		sum     *mockSummarizer
		cfg     analysis.Config
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		tickets = &mockTicketStore{}
		docs = &mockDocSearcher{}
		sum = &mockSummarizer{}
		cfg = analysis.Config{FallbackDocs: fallbackDocs}
	})

	newService := func() analysis.Service {
		return analysis.NewService(analysis.Sources{
			Tickets:    tickets,
			Docs:       docs,
			Summarizer: sum,
		}, nil, cfg)
	}

	Describe("Analyze by ticket id", func() {
		BeforeEach(func() {
			tickets.fetchFn = func(_ context.Context, id int64) source.Result[model.Ticket] {
				return source.Ok([]model.Ticket{{
					ID:      id,
					Subject: "Analyzer crash during nightly export",
					Status:  "open",
					Comments: []model.Comment{
						{AuthorRef: "1001", Body: "The job dies halfway through with a heap error."},
						{AuthorRef: "2002", Body: "Please upgrade to version 8.4, this was fixed there."},
					},
				}}, 5*time.Millisecond)
			}
			tickets.searchFn = func(_ context.Context, _ ticketstore.SearchQuery) source.Result[model.RelatedTicket] {
				return source.Ok([]model.RelatedTicket{
					{ID: 12345, Subject: "Analyzer crash during nightly export", URL: "https://support.example.com/agent/tickets/12345"},
					{ID: 67890, Subject: "Export crash fixed by 8.4", URL: "https://support.example.com/agent/tickets/67890"},
				}, 5*time.Millisecond)
			}
			docs.searchFn = func(_ context.Context, _ []string) source.Result[model.RelatedDoc] {
				return source.Ok([]model.RelatedDoc{
					{Title: "Release notes 8.4", URL: "https://docs.example.com/release-notes/8.4"},
					{Title: "Export troubleshooting", URL: "https://docs.example.com/export"},
				}, 5*time.Millisecond)
			}
		})

		It("classifies an upgrade resolution and scores by corroborating evidence", func() {
			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 12345})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Resolution).To(Equal(model.ResolutionUpgrade))
			Expect(res.Confidence).To(Equal(0.5))
			Expect(res.RelatedTickets).To(HaveLen(1))
			Expect(res.RelatedTickets[0].ID).To(Equal(int64(67890)))
			Expect(res.RelatedDocs).To(HaveLen(2))
			Expect(res.Summary).To(ContainSubstring("Similar Issues:\n1 related tickets found."))
			Expect(res.Summary).To(ContainSubstring("Documentation References:\n2 documents found."))
			Expect(res.Recommendation).To(ContainSubstring("resolved by upgrading"))
		})

		It("never lists the requested ticket among its own siblings", func() {
			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 12345})

			Expect(err).NotTo(HaveOccurred())
			for _, rt := range res.RelatedTickets {
				Expect(rt.ID).NotTo(Equal(int64(12345)))
			}
		})

		It("seeds the observed behavior from comment excerpts when no summary exists", func() {
			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 12345})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summary).To(ContainSubstring("The job dies halfway through"))
		})

		It("prefers the generated summary and its resolution over raw extraction", func() {
			sum.summarizeFn = func(_ context.Context, _ summarizer.Input) source.Result[model.TicketSummary] {
				return source.Ok([]model.TicketSummary{{
					Summary:    "The export job crashes because the analyzer runs out of heap.",
					Resolution: "Increase the analyzer heap to 8 GB or upgrade to 8.4.",
				}}, 10*time.Millisecond)
			}

			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 12345})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summary).To(ContainSubstring("Observed Behavior:\nThe export job crashes because the analyzer runs out of heap."))
			Expect(res.Summary).NotTo(ContainSubstring("The job dies halfway through"))
			Expect(res.Recommendation).To(Equal("Increase the analyzer heap to 8 GB or upgrade to 8.4."))
		})

		It("caps the confidence at the ceiling no matter how much evidence arrives", func() {
			cfg.MaxRelatedTickets = 5
			tickets.searchFn = func(_ context.Context, _ ticketstore.SearchQuery) source.Result[model.RelatedTicket] {
				many := make([]model.RelatedTicket, 8)
				for i := range many {
					id := int64(i + 1)
					many[i] = model.RelatedTicket{ID: id, URL: fmt.Sprintf("https://support.example.com/agent/tickets/%d", id)}
				}
				return source.Ok(many, time.Millisecond)
			}

			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 12345})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.RelatedTickets).To(HaveLen(5))
			Expect(res.Confidence).To(Equal(0.9))
		})

		It("substitutes fallback docs when the doc index is unavailable", func() {
			docs.searchFn = func(_ context.Context, _ []string) source.Result[model.RelatedDoc] {
				return source.Unavailable[model.RelatedDoc](source.ReasonTransport)
			}

			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 12345})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.RelatedDocs).To(Equal(fallbackDocs))
		})

		It("proceeds degraded when the ticket itself cannot be fetched", func() {
			tickets.fetchFn = func(_ context.Context, _ int64) source.Result[model.Ticket] {
				return source.Unavailable[model.Ticket](source.ReasonNotFound)
			}
			docs.searchFn = func(_ context.Context, _ []string) source.Result[model.RelatedDoc] {
				return source.Unavailable[model.RelatedDoc](source.ReasonEmpty)
			}

			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 404})

			Expect(err).NotTo(HaveOccurred())
			Expect(tickets.searchCalls).To(BeZero(), "sibling search needs a subject")
			Expect(res.Resolution).To(Equal(model.ResolutionUnknown))
			Expect(res.Confidence).To(Equal(0.2))
			Expect(res.RelatedTickets).To(BeEmpty())
			Expect(res.RelatedDocs).To(Equal(fallbackDocs))
			Expect(res.Summary).To(ContainSubstring("Ticket #404 (unavailable)"))
			Expect(res.Summary).To(ContainSubstring("No discussion found."))
			Expect(res.Recommendation).To(ContainSubstring("No direct reference found"))
		})

		It("returns the same category and confidence for identical upstream data", func() {
			svc := newService()

			first, err := svc.Analyze(ctx, model.AnalysisRequest{TicketID: 12345})
			Expect(err).NotTo(HaveOccurred())
			second, err := svc.Analyze(ctx, model.AnalysisRequest{TicketID: 12345})
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Resolution).To(Equal(first.Resolution))
			Expect(second.Confidence).To(Equal(first.Confidence))
		})
	})

	Describe("Analyze by free-text query", func() {
		It("searches solved tickets by the cleaned query and classifies from it", func() {
			var gotQuery ticketstore.SearchQuery
			var gotKeywords []string

			tickets.searchFn = func(_ context.Context, q ticketstore.SearchQuery) source.Result[model.RelatedTicket] {
				gotQuery = q
				return source.Ok([]model.RelatedTicket{
					{ID: 1, URL: "https://support.example.com/agent/tickets/1"},
					{ID: 2, URL: "https://support.example.com/agent/tickets/2"},
				}, time.Millisecond)
			}
			docs.searchFn = func(_ context.Context, keywords []string) source.Result[model.RelatedDoc] {
				gotKeywords = keywords
				return source.Ok([]model.RelatedDoc{
					{Title: "Export guide", URL: "https://docs.example.com/export"},
				}, time.Millisecond)
			}

			res, err := newService().Analyze(ctx, model.AnalysisRequest{
				QueryText: "Is there a workaround for the PDF export crash?",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotQuery.Text).To(Equal("Is there a workaround for the PDF export crash?"))
			Expect(gotQuery.SolvedOnly).To(BeTrue())
			Expect(gotKeywords).To(ContainElement("workaround"))
			Expect(gotKeywords).To(ContainElement("export"))
			Expect(res.Resolution).To(Equal(model.ResolutionWorkaround))
			Expect(res.Confidence).To(Equal(0.7))
			Expect(res.Summary).To(ContainSubstring("Issue Summary:\nIs there a workaround for the PDF export crash?"))
		})

		It("never calls the ticket fetch endpoint", func() {
			_, err := newService().Analyze(ctx, model.AnalysisRequest{QueryText: "export hangs"})

			Expect(err).NotTo(HaveOccurred())
			Expect(tickets.fetchCalls).To(BeZero())
		})
	})

	Describe("Analyze with a malformed request", func() {
		It("rejects an empty request before any adapter call", func() {
			_, err := newService().Analyze(ctx, model.AnalysisRequest{})

			Expect(err).To(MatchError(analysis.ErrInvalidRequest))
			Expect(tickets.fetchCalls).To(BeZero())
			Expect(tickets.searchCalls).To(BeZero())
			Expect(docs.searchCalls).To(BeZero())
			Expect(sum.summarizeCalls).To(BeZero())
		})

		It("rejects a request that sets both origin modes", func() {
			_, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 7, QueryText: "both set"})

			Expect(err).To(MatchError(analysis.ErrInvalidRequest))
			Expect(tickets.fetchCalls).To(BeZero())
		})

		It("rejects a zero ticket id with no query", func() {
			_, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 0, QueryText: "   "})

			Expect(err).To(MatchError(analysis.ErrInvalidRequest))
			Expect(tickets.fetchCalls).To(BeZero())
		})
	})

	Describe("Analyze under its overall deadline", func() {
		It("assembles a degraded result when one source hangs past the deadline", func() {
			cfg.OverallDeadline = 300 * time.Millisecond
			cfg.DocsTimeout = 200 * time.Millisecond

			tickets.fetchFn = func(_ context.Context, id int64) source.Result[model.Ticket] {
				return source.Ok([]model.Ticket{{
					ID:      id,
					Subject: "Scheduler lockup on busy hosts",
					Comments: []model.Comment{
						{AuthorRef: "1", Body: "Restarting clears it, known workaround for now."},
					},
				}}, time.Millisecond)
			}
			tickets.searchFn = func(_ context.Context, _ ticketstore.SearchQuery) source.Result[model.RelatedTicket] {
				return source.Ok([]model.RelatedTicket{
					{ID: 99, URL: "https://support.example.com/agent/tickets/99"},
				}, time.Millisecond)
			}
			// Ignores cancellation on purpose; the pipeline must not wait for it.
			docs.searchFn = func(_ context.Context, _ []string) source.Result[model.RelatedDoc] {
				time.Sleep(2 * time.Second)
				return source.Ok([]model.RelatedDoc{{Title: "too late", URL: "https://docs.example.com/late"}}, 2*time.Second)
			}

			start := time.Now()
			res, err := newService().Analyze(ctx, model.AnalysisRequest{TicketID: 555})
			elapsed := time.Since(start)

			Expect(err).NotTo(HaveOccurred())
			Expect(elapsed).To(BeNumerically("<", time.Second))
			Expect(res.RelatedDocs).To(Equal(fallbackDocs))
			Expect(res.RelatedTickets).To(HaveLen(1))
			Expect(res.Resolution).To(Equal(model.ResolutionWorkaround))
		})
	})

	Describe("Analyze when the caller abandons the request", func() {
		It("returns the timeout error instead of a degraded result", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := newService().Analyze(canceled, model.AnalysisRequest{TicketID: 12345})

			Expect(err).To(MatchError(analysis.ErrRequestTimeout))
		})
	})
})
