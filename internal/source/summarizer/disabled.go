package summarizer

import (
	"context"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
)

type disabledSummarizer struct{}

// Disabled returns the no-op summarizer used when no API key is configured.
// It always reports Unavailable so the reducer falls back to comment excerpts.
func Disabled() Summarizer {
	return disabledSummarizer{}
}

func (disabledSummarizer) Enabled() bool { return false }

func (disabledSummarizer) Summarize(context.Context, Input) source.Result[model.TicketSummary] {
	return source.Unavailable[model.TicketSummary](source.ReasonEmpty)
}
