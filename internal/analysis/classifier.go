package analysis

import (
	"math"
	"strings"

	"supportlens.app/triage/internal/model"
)

// Default category phrase sets. Matching is case-insensitive and counts
// every occurrence, not just presence.
var (
	defaultUpgradePhrases      = []string{"upgrade", "new version", "update to", "latest release"}
	defaultWorkaroundPhrases   = []string{"workaround", "work-around", "mitigate", "exception", "temporary fix"}
	defaultNotSupportedPhrases = []string{"not supported", "unsupported", "limitation", "won't fix", "out of scope"}
)

type category struct {
	name    model.ResolutionCategory
	phrases []string
}

type classifier struct {
	// Order is the tie break: upgrade beats workaround beats not-supported.
	categories []category
}

func newClassifier(cfg ClassifierConfig) *classifier {
	upgrade := cfg.UpgradePhrases
	if len(upgrade) == 0 {
		upgrade = defaultUpgradePhrases
	}
	workaround := cfg.WorkaroundPhrases
	if len(workaround) == 0 {
		workaround = defaultWorkaroundPhrases
	}
	notSupported := cfg.NotSupportedPhrases
	if len(notSupported) == 0 {
		notSupported = defaultNotSupportedPhrases
	}

	return &classifier{categories: []category{
		{model.ResolutionUpgrade, lowered(upgrade)},
		{model.ResolutionWorkaround, lowered(workaround)},
		{model.ResolutionNotSupported, lowered(notSupported)},
	}}
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// classify tallies phrase occurrences per category and returns the highest
// tally's category. Ties keep the earlier category in the fixed order; zero
// matches across all categories yields Unknown.
func (c *classifier) classify(text string) model.ResolutionCategory {
	lower := strings.ToLower(text)

	best := model.ResolutionUnknown
	bestTally := 0
	for _, cat := range c.categories {
		tally := 0
		for _, p := range cat.phrases {
			tally += strings.Count(lower, p)
		}
		if tally > bestTally {
			best = cat.name
			bestTally = tally
		}
	}

	return best
}

// collectEvidence gathers every text classification may scan: the generated
// summary when present, the ticket thread, and the raw query.
func collectEvidence(req model.AnalysisRequest, out Outcome) string {
	var sb strings.Builder

	if s, ok := out.Summary.First(); ok {
		sb.WriteString(s.Summary)
		sb.WriteString("\n")
		sb.WriteString(s.Resolution)
		sb.WriteString("\n")
	}

	if t, ok := out.Ticket.First(); ok {
		sb.WriteString(t.Subject)
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
		for _, c := range t.Comments {
			sb.WriteString(c.Body)
			sb.WriteString("\n")
		}
	}

	if req.ByQuery() {
		sb.WriteString(req.QueryText)
	}

	return sb.String()
}

// score computes the evidence-monotonic confidence. Counts cover found
// items only; substituted fallback docs never raise confidence. Unknown
// with zero corroborating evidence pins to the floor.
func (s ScoringConfig) score(category model.ResolutionCategory, ticketCount, docCount int) float64 {
	if category == model.ResolutionUnknown && ticketCount == 0 && docCount == 0 {
		return round2(s.unknownFloor())
	}

	raw := s.base() + float64(ticketCount)*s.perTicket() + float64(docCount)*s.perDoc()
	return round2(math.Min(raw, confidenceCeiling))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
