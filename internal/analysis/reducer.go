package analysis

import (
	"strings"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source"
)

const noDiscussionPlaceholder = "No discussion found."

// reduction is the deduplicated, capped view of the fan-out handed to
// assembly. docsFound counts documents the index actually returned;
// substituted fallback links never count as evidence.
type reduction struct {
	seed      string
	tickets   []model.RelatedTicket
	docs      []model.RelatedDoc
	docsFound int
}

func reduce(req model.AnalysisRequest, out Outcome, cfg Config) reduction {
	var red reduction
	red.tickets = reduceTickets(req, cfg.maxRelatedTickets(), out.Related.Items())
	red.docs, red.docsFound = reduceDocs(cfg, out.Docs)
	red.seed = summarySeed(out, cfg)
	return red
}

// reduceTickets unions the given lists in order, drops the requested ticket
// itself, dedupes by id keeping the first occurrence, and caps the result.
func reduceTickets(req model.AnalysisRequest, max int, lists ...[]model.RelatedTicket) []model.RelatedTicket {
	reduced := make([]model.RelatedTicket, 0, max)
	seen := make(map[int64]struct{}, max)

	for _, list := range lists {
		for _, t := range list {
			if req.ByTicket() && t.ID == req.TicketID {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			reduced = append(reduced, t)
			if len(reduced) == max {
				return reduced
			}
		}
	}

	return reduced
}

// reduceDocs dedupes by url and caps. When the index reported unavailable,
// Empty included, the configured fallback links stand in so the caller is
// never shown nothing.
func reduceDocs(cfg Config, res source.Result[model.RelatedDoc]) (docs []model.RelatedDoc, found int) {
	max := cfg.maxRelatedDocs()

	if !res.Available() {
		return capDocs(cfg.FallbackDocs, max), 0
	}

	docs = capDocs(res.Items(), max)
	return docs, len(docs)
}

func capDocs(in []model.RelatedDoc, max int) []model.RelatedDoc {
	out := make([]model.RelatedDoc, 0, max)
	seen := make(map[string]struct{}, max)

	for _, d := range in {
		if _, dup := seen[d.URL]; dup {
			continue
		}
		seen[d.URL] = struct{}{}
		out = append(out, d)
		if len(out) == max {
			break
		}
	}

	return out
}

// summarySeed picks the observed-behavior text by strict preference:
// generated summary, then leading comment excerpts, then a placeholder.
// The tiers never blend.
func summarySeed(out Outcome, cfg Config) string {
	if s, ok := out.Summary.First(); ok && strings.TrimSpace(s.Summary) != "" {
		return strings.TrimSpace(s.Summary)
	}

	if t, ok := out.Ticket.First(); ok {
		excerpts := make([]string, 0, cfg.maxSeedComments())
		for _, c := range t.Comments {
			body := normalize.Normalize(c.Body)
			if body == "" {
				continue
			}
			excerpts = append(excerpts, normalize.Clip(body, cfg.seedCommentChars()))
			if len(excerpts) == cfg.maxSeedComments() {
				break
			}
		}
		if len(excerpts) > 0 {
			return strings.Join(excerpts, " ")
		}
	}

	return noDiscussionPlaceholder
}
