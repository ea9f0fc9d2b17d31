package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"supportlens.app/triage/common/logger"
	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
)

var (
	// ErrInvalidRequest rejects a request carrying neither a usable ticket
	// id nor query text, or both at once. Nothing is dispatched upstream.
	ErrInvalidRequest = errors.New("request must carry exactly one of ticket id or query text")

	// ErrRequestTimeout reports that the caller's context ended before
	// assembly. The pipeline's own deadline degrades the result instead of
	// returning this.
	ErrRequestTimeout = errors.New("analysis request timed out")
)

// Service runs the full pipeline for one request: normalize, fan out,
// reduce, classify, score, assemble.
type Service interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
}

type analysisService struct {
	orch       *orchestrator
	classifier *classifier
	cfg        Config
}

func NewService(sources Sources, keywords *normalize.KeywordExtractor, cfg Config) Service {
	return &analysisService{
		orch:       newOrchestrator(sources, keywords, cfg),
		classifier: newClassifier(cfg.Classifier),
		cfg:        cfg,
	}
}

func (s *analysisService) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	if req.ByTicket() == req.ByQuery() {
		return nil, ErrInvalidRequest
	}

	fields := logger.LogFields{Component: "triage.analysis"}
	if req.ByTicket() {
		fields.TicketID = logger.Ptr(req.TicketID)
	} else {
		fields.Query = logger.Ptr(logger.Truncate(req.QueryText, 120))
	}
	ctx = logger.WithLogFields(ctx, fields)

	sc := logger.StartSpan(ctx, "triage.analysis.analyze")
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	out := s.orch.Run(ctx, req)

	// The caller abandoning the request is the single non-degradable
	// failure; the pipeline's own deadline has already produced a usable
	// Outcome by this point.
	if ctx.Err() != nil {
		return nil, ErrRequestTimeout
	}

	red := reduce(req, out, s.cfg)
	category := s.classifier.classify(collectEvidence(req, out))
	confidence := s.cfg.Scoring.score(category, len(red.tickets), red.docsFound)

	result := assemble(req, out, red, category, confidence)

	mode := "query"
	if req.ByTicket() {
		mode = "ticket"
	}
	slog.InfoContext(ctx, "analysis complete",
		"mode", mode,
		"category", string(category),
		"confidence", confidence,
		"related_tickets", len(red.tickets),
		"related_docs", len(red.docs),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
