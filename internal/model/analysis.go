package model

import "strings"

type ResolutionCategory string

const (
	ResolutionUpgrade      ResolutionCategory = "upgrade"
	ResolutionWorkaround   ResolutionCategory = "workaround"
	ResolutionNotSupported ResolutionCategory = "not_supported"
	ResolutionUnknown      ResolutionCategory = "unknown"
)

// AnalysisRequest identifies what to analyze. Exactly one origin mode is
// allowed: either a ticket ID referencing an existing ticket, or a
// free-form query. Callers must reject requests that set both or neither.
type AnalysisRequest struct {
	TicketID  int64  `json:"ticket_id,omitempty"`
	QueryText string `json:"query,omitempty"`
}

// ByTicket reports whether the request targets an existing ticket.
func (r AnalysisRequest) ByTicket() bool { return r.TicketID >= 1 }

// ByQuery reports whether the request carries a free-form query.
func (r AnalysisRequest) ByQuery() bool { return strings.TrimSpace(r.QueryText) != "" }

// RelatedTicket is a cross-reference to another ticket that looks like the
// same underlying problem.
type RelatedTicket struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject,omitempty"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// RelatedDoc is a documentation page relevant to the analyzed problem.
type RelatedDoc struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// AnalysisResult is the single aggregate answer produced for one request.
// It is always structurally complete: when a source was unavailable its
// contribution is degraded (empty list, fallback docs, lower confidence),
// never absent.
type AnalysisResult struct {
	Summary        string             `json:"summary"`
	Confidence     float64            `json:"confidence"`
	RelatedTickets []RelatedTicket    `json:"related_tickets"`
	RelatedDocs    []RelatedDoc       `json:"related_docs"`
	Resolution     ResolutionCategory `json:"resolution"`
	Recommendation string             `json:"recommended_solution"`
}
