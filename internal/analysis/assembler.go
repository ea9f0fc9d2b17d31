package analysis

import (
	"fmt"
	"strings"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
)

// Canned recommendations, used when the summarizer produced no usable
// resolution text.
const (
	recommendUpgrade      = "Similar cases were resolved by upgrading. Review the release notes for the affected area and plan an update to the latest version."
	recommendWorkaround   = "A workaround is described in the referenced discussions. Apply it as an interim fix and track the permanent resolution."
	recommendNotSupported = "The reported behavior looks like a product limitation. Confirm against the documentation and consider filing an enhancement request."
	recommendReferences   = "Based on similar tickets and documentation, please follow known workarounds, apply recommended updates, or adjust configuration as per the product guidelines."
	recommendEscalate     = "No direct reference found. Investigate ticket comments and product documentation for a potential solution, or escalate with full logs and environment details."
)

// assemble composes the final result. It never fails: missing inputs
// degrade to empty lists and placeholder text, never to an error.
func assemble(req model.AnalysisRequest, out Outcome, red reduction, category model.ResolutionCategory, confidence float64) *model.AnalysisResult {
	recommendation := recommendationText(out, red, category)

	return &model.AnalysisResult{
		Summary:        summaryText(req, out, red, recommendation),
		Confidence:     confidence,
		RelatedTickets: red.tickets,
		RelatedDocs:    red.docs,
		Resolution:     category,
		Recommendation: recommendation,
	}
}

// recommendationText applies the fixed precedence: a resolution extracted
// by the summarizer wins, then the category's canned text, then the
// references-vs-escalate pair for Unknown.
func recommendationText(out Outcome, red reduction, category model.ResolutionCategory) string {
	if s, ok := out.Summary.First(); ok {
		if r := strings.TrimSpace(s.Resolution); r != "" {
			return r
		}
	}

	switch category {
	case model.ResolutionUpgrade:
		return recommendUpgrade
	case model.ResolutionWorkaround:
		return recommendWorkaround
	case model.ResolutionNotSupported:
		return recommendNotSupported
	}

	if len(red.tickets) > 0 || red.docsFound > 0 {
		return recommendReferences
	}
	return recommendEscalate
}

func summaryText(req model.AnalysisRequest, out Outcome, red reduction, recommendation string) string {
	return fmt.Sprintf(
		"Issue Summary:\n%s\n\n"+
			"Observed Behavior:\n%s\n\n"+
			"Similar Issues:\n%d related tickets found.\n\n"+
			"Documentation References:\n%d documents found.\n\n"+
			"Suggested Resolution:\n%s",
		headline(req, out), red.seed, len(red.tickets), len(red.docs), recommendation)
}

// headline is the ticket subject when known, else the cleaned query, else a
// reference to the requested id.
func headline(req model.AnalysisRequest, out Outcome) string {
	if t, ok := out.Ticket.First(); ok && strings.TrimSpace(t.Subject) != "" {
		return strings.TrimSpace(t.Subject)
	}
	if req.ByQuery() {
		return normalize.Normalize(req.QueryText)
	}
	return fmt.Sprintf("Ticket #%d (unavailable)", req.TicketID)
}
