package summarizer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
)

type anthropicSummarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func newAnthropicSummarizer(cfg Config) *anthropicSummarizer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = "claude-sonnet-4-5-20250514"
	}

	return &anthropicSummarizer{
		client:    anthropic.NewClient(opts...),
		model:     mdl,
		maxTokens: cfg.maxTokens(),
		timeout:   cfg.timeout(),
	}
}

func (s *anthropicSummarizer) Enabled() bool { return true }

func (s *anthropicSummarizer) Summarize(ctx context.Context, in Input) source.Result[model.TicketSummary] {
	if in.empty() {
		return source.Unavailable[model.TicketSummary](source.ReasonEmpty)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Anthropic has no strict schema mode; the system prompt pins the JSON
	// shape and extractJSON tolerates prose or fences around the object.
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: summarySystemPrompt + "\n\n" + jsonInstruction},
		},
		Messages: []anthropic.MessageParam{
			{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(buildUserPrompt(in))},
			},
		},
	}

	start := time.Now()
	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		slog.WarnContext(ctx, "summarizer call failed",
			"provider", ProviderAnthropic,
			"model", s.model,
			"error", err)
		return source.Unavailable[model.TicketSummary](source.FromError(err))
	}
	took := time.Since(start)

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	slog.DebugContext(ctx, "summary completed",
		"provider", ProviderAnthropic,
		"model", s.model,
		"duration_ms", took.Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason)

	var parsed summaryResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		slog.WarnContext(ctx, "summarizer response unmarshal failed",
			"provider", ProviderAnthropic,
			"error", err)
		return source.Unavailable[model.TicketSummary](source.ReasonTransport)
	}

	summary := parsed.toModel()
	if summary.Summary == "" {
		return source.Unavailable[model.TicketSummary](source.ReasonEmpty)
	}

	return source.Ok([]model.TicketSummary{summary}, took)
}

const jsonInstruction = `Respond with a single JSON object: {"summary": "...", "resolution": "..."}. No other text.`

// extractJSON returns the first top-level JSON object in text, or the text
// unchanged when no braces are found.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return text
	}
	return text[start : end+1]
}
