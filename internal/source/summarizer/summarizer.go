package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
)

// Provider constants for summarizer provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultMaxTokens = 1024
	defaultTimeout   = 20 * time.Second
)

// Input carries the sanitized conversation text handed to the provider.
// Keywords are advisory context; they are never summarized on their own.
type Input struct {
	Subject  string
	Text     string
	Keywords []string
}

func (in Input) empty() bool {
	return strings.TrimSpace(in.Subject) == "" && strings.TrimSpace(in.Text) == ""
}

// Summarizer condenses a ticket thread or free-form query into a short
// summary plus a suggested resolution. Failures surface as Unavailable
// results so the caller degrades instead of erroring.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) source.Result[model.TicketSummary]
	Enabled() bool
}

// Config holds summarizer provider configuration.
type Config struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string // optional custom endpoint
	Model     string
	MaxTokens int
	Timeout   time.Duration // per-call budget, enforced by the adapter itself
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// New selects a summarizer based on cfg.Provider. A missing API key selects
// the disabled no-op so the rest of the pipeline keeps working without a
// generative provider. Defaults to OpenAI when a key is present but no
// provider is named.
func New(cfg Config) (Summarizer, error) {
	if cfg.APIKey == "" {
		return Disabled(), nil
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAISummarizer(cfg), nil
	case ProviderAnthropic:
		return newAnthropicSummarizer(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", provider)
	}
}

// summaryResponse is the JSON shape both providers must return.
type summaryResponse struct {
	Summary    string `json:"summary" jsonschema_description:"2-4 sentence summary of the reported problem and observed behavior"`
	Resolution string `json:"resolution" jsonschema_description:"Most concrete next step or fix suggested by the conversation, empty if none"`
}

func (r summaryResponse) toModel() model.TicketSummary {
	return model.TicketSummary{
		Summary:    strings.TrimSpace(r.Summary),
		Resolution: strings.TrimSpace(r.Resolution),
	}
}

func buildUserPrompt(in Input) string {
	var sb strings.Builder

	if in.Subject != "" {
		sb.WriteString("## Subject\n")
		sb.WriteString(in.Subject)
		sb.WriteString("\n\n")
	}

	if in.Text != "" {
		sb.WriteString("## Conversation\n")
		sb.WriteString(in.Text)
		sb.WriteString("\n\n")
	}

	if len(in.Keywords) > 0 {
		sb.WriteString("## Key terms\n")
		sb.WriteString(strings.Join(in.Keywords, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}

const summarySystemPrompt = `You summarize support ticket conversations for support engineers.

Read the conversation and produce:
- summary: what the customer reports and what has been observed, in 2-4 sentences
- resolution: the most concrete next step or fix suggested by the conversation, in 1-2 sentences

## Rules

- Use only facts present in the text; never invent version numbers, commands, or links
- Plain prose, no markdown, no greetings
- If the conversation suggests no fix, leave resolution empty rather than guessing`
