package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"supportlens.app/triage/common/logger"
	"supportlens.app/triage/internal/analysis"
	"supportlens.app/triage/internal/http/dto"
	"supportlens.app/triage/internal/model"
)

type AnalysisHandler struct {
	service     analysis.Service
	traceHeader string
}

func NewAnalysisHandler(service analysis.Service, traceHeader string) *AnalysisHandler {
	return &AnalysisHandler{
		service:     service,
		traceHeader: traceHeader,
	}
}

// Analyze runs the full analysis pipeline for one request. The response is
// always structurally complete on 200; the only failure statuses are 400
// (malformed request) and 504 (caller deadline expired before assembly).
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid analyze request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Support tools calling in may forward their own trace id.
	sc := logger.StartSpanFromTraceID(ctx, c.GetHeader(h.traceHeader), "triage.http.analyze")
	defer sc.End()
	ctx = sc.Context()

	result, err := h.service.Analyze(ctx, model.AnalysisRequest{
		TicketID:  req.TicketID,
		QueryText: req.Query,
	})
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of ticket_id or query is required"})
		case errors.Is(err, analysis.ErrRequestTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "analysis timed out"})
		default:
			sc.RecordError(err)
			slog.ErrorContext(ctx, "analysis failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, toAnalyzeResponse(result))
}

// toAnalyzeResponse maps the domain result onto the wire shape. Slices are
// always non-nil so clients see [] rather than null.
func toAnalyzeResponse(res *model.AnalysisResult) dto.AnalyzeResponse {
	tickets := make([]dto.RelatedTicket, len(res.RelatedTickets))
	for i, t := range res.RelatedTickets {
		tickets[i] = dto.RelatedTicket{
			ID:      t.ID,
			Subject: t.Subject,
			URL:     t.URL,
			Snippet: t.Snippet,
		}
	}

	docs := make([]dto.RelatedDoc, len(res.RelatedDocs))
	for i, d := range res.RelatedDocs {
		docs[i] = dto.RelatedDoc{
			Title:   d.Title,
			URL:     d.URL,
			Snippet: d.Snippet,
		}
	}

	return dto.AnalyzeResponse{
		Summary:        res.Summary,
		Confidence:     res.Confidence,
		RelatedTickets: tickets,
		RelatedDocs:    docs,
		Resolution:     string(res.Resolution),
		Recommendation: res.Recommendation,
	}
}
