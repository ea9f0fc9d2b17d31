package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"supportlens.app/triage/core/config"
	"supportlens.app/triage/internal/analysis"
	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source/docsearch"
	"supportlens.app/triage/internal/source/summarizer"
	"supportlens.app/triage/internal/source/ticketstore"
)

// One-shot analysis from the shell: point it at a ticket id or a free-form
// question and it prints the aggregate result as JSON on stdout. Diagnostics
// go to stderr so the output stays pipeable into jq.
func main() {
	ticketID := flag.Int64("ticket", 0, "ticket id to analyze")
	query := flag.String("query", "", "free-form question to analyze instead of a ticket")
	compact := flag.Bool("compact", false, "print the result as a single JSON line")
	flag.Parse()

	if (*ticketID >= 1) == (*query != "") {
		fmt.Fprintln(os.Stderr, "exactly one of -ticket or -query is required")
		flag.Usage()
		os.Exit(2)
	}

	// No logger.Setup here: the default slog handler writes to stderr,
	// which is exactly where CLI diagnostics belong.
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	svc, err := buildService(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiring sources: %v\n", err)
		os.Exit(1)
	}

	result, err := svc.Analyze(context.Background(), model.AnalysisRequest{
		TicketID:  *ticketID,
		QueryText: *query,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}

	var out []byte
	if *compact {
		out, err = json.Marshal(result)
	} else {
		out, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}

// buildService mirrors the server wiring: three source adapters plus the
// pipeline tuning, all from the same environment variables.
func buildService(cfg config.Config) (analysis.Service, error) {
	tickets, err := ticketstore.New(ticketstore.Config{
		Provider: cfg.Tickets.Provider,
		Zendesk: ticketstore.ZendeskConfig{
			Subdomain: cfg.Tickets.Zendesk.Subdomain,
			Cookie:    cfg.Tickets.Zendesk.Cookie,
			Email:     cfg.Tickets.Zendesk.Email,
			APIToken:  cfg.Tickets.Zendesk.APIToken,
			BaseURL:   cfg.Tickets.Zendesk.BaseURL,
		},
		GitLab: ticketstore.GitLabConfig{
			BaseURL:   cfg.Tickets.GitLab.BaseURL,
			Token:     cfg.Tickets.GitLab.Token,
			ProjectID: cfg.Tickets.GitLab.ProjectID,
		},
		MaxComments: cfg.Tickets.MaxComments,
		MaxResults:  cfg.Tickets.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("ticket store: %w", err)
	}

	docs, err := docsearch.New(docsearch.Config{
		Provider:   cfg.Docs.Provider,
		DocsDomain: cfg.Docs.Domain,
		MaxResults: cfg.Docs.MaxResults,
		Typesense: docsearch.TypesenseConfig{
			URL:        cfg.Docs.Typesense.URL,
			APIKey:     cfg.Docs.Typesense.APIKey,
			Collection: cfg.Docs.Typesense.Collection,
		},
		Searx: docsearch.SearxConfig{
			BaseURL: cfg.Docs.Searx.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("doc search: %w", err)
	}

	sum, err := summarizer.New(summarizer.Config{
		Provider:  cfg.Summarizer.Provider,
		APIKey:    cfg.Summarizer.APIKey,
		BaseURL:   cfg.Summarizer.BaseURL,
		Model:     cfg.Summarizer.Model,
		MaxTokens: cfg.Summarizer.MaxTokens,
		Timeout:   cfg.Summarizer.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	keywords := normalize.NewKeywordExtractor(
		cfg.Keywords.MaxWords,
		cfg.Keywords.StopWords,
		cfg.Keywords.Fallback,
	)

	return analysis.NewService(analysis.Sources{
		Tickets:    tickets,
		Docs:       docs,
		Summarizer: sum,
	}, keywords, analysis.Config{
		OverallDeadline:   cfg.Pipeline.OverallDeadline,
		TicketTimeout:     cfg.Pipeline.TicketTimeout,
		SearchTimeout:     cfg.Pipeline.SearchTimeout,
		DocsTimeout:       cfg.Pipeline.DocsTimeout,
		MaxRelatedTickets: cfg.Pipeline.MaxRelatedTickets,
		MaxRelatedDocs:    cfg.Pipeline.MaxRelatedDocs,
		MaxSeedComments:   cfg.Pipeline.MaxSeedComments,
		SeedCommentChars:  cfg.Pipeline.SeedCommentChars,
		FallbackDocs:      docsearch.Fallback(cfg.Docs.Domain),
		Scoring: analysis.ScoringConfig{
			Base:         cfg.Scoring.Base,
			PerTicket:    cfg.Scoring.PerTicket,
			PerDoc:       cfg.Scoring.PerDoc,
			UnknownFloor: cfg.Scoring.UnknownFloor,
		},
		Classifier: analysis.ClassifierConfig{
			UpgradePhrases:      cfg.Classifier.UpgradePhrases,
			WorkaroundPhrases:   cfg.Classifier.WorkaroundPhrases,
			NotSupportedPhrases: cfg.Classifier.NotSupportedPhrases,
		},
	}), nil
}
