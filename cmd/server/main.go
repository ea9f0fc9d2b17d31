package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"supportlens.app/triage/common/id"
	"supportlens.app/triage/common/logger"
	"supportlens.app/triage/common/otel"
	"supportlens.app/triage/core/config"
	"supportlens.app/triage/internal/analysis"
	"supportlens.app/triage/internal/http/middleware"
	httprouter "supportlens.app/triage/internal/http/router"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source/docsearch"
	"supportlens.app/triage/internal/source/summarizer"
	"supportlens.app/triage/internal/source/ticketstore"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet (OTel failed before logger setup)
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "triage starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	svc, err := buildService(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build analysis service", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "sources ready",
		"ticket_provider", cfg.Tickets.Provider,
		"docs_provider", cfg.Docs.Provider,
		"docs_domain", cfg.Docs.Domain,
		"summarizer_enabled", cfg.Summarizer.Enabled())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, svc)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// buildService wires the three source adapters and the pipeline tuning into
// one analysis service.
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

func setupRouter(cfg config.Config, svc analysis.Service) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → RequestID
	// tags the context → Logger logs with both
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, svc, httprouter.RouterConfig{
		TraceHeaderName: cfg.Pipeline.TraceHeaderName,
	})

	return router
}

const banner = `
████████╗██████╗ ██╗ █████╗  ██████╗ ███████╗
╚══██╔══╝██╔══██╗██║██╔══██╗██╔════╝ ██╔════╝
   ██║   ██████╔╝██║███████║██║  ███╗█████╗
   ██║   ██╔══██╗██║██╔══██║██║   ██║██╔══╝
   ██║   ██║  ██║██║██║  ██║╚██████╔╝███████╗
   ╚═╝   ╚═╝  ╚═╝╚═╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`
