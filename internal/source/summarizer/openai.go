package summarizer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/source"
)

var summarySchema = generateSchema[summaryResponse]()

type openaiSummarizer struct {
	client    openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func newOpenAISummarizer(cfg Config) *openaiSummarizer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = "gpt-4o-mini"
	}

	return &openaiSummarizer{
		client:    openai.NewClient(opts...),
		model:     mdl,
		maxTokens: cfg.maxTokens(),
		timeout:   cfg.timeout(),
	}
}

func (s *openaiSummarizer) Enabled() bool { return true }

func (s *openaiSummarizer) Summarize(ctx context.Context, in Input) source.Result[model.TicketSummary] {
	if in.empty() {
		return source.Unavailable[model.TicketSummary](source.ReasonEmpty)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "ticket_summary",
		Description: openai.String("Ticket summary and suggested resolution"),
		Schema:      summarySchema,
		Strict:      openai.Bool(true),
	}

	params := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(buildUserPrompt(in)),
		},
		MaxTokens: openai.Int(int64(s.maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.WarnContext(ctx, "summarizer call failed",
			"provider", ProviderOpenAI,
			"model", s.model,
			"error", err)
		return source.Unavailable[model.TicketSummary](source.FromError(err))
	}
	took := time.Since(start)

	slog.DebugContext(ctx, "summary completed",
		"provider", ProviderOpenAI,
		"model", s.model,
		"duration_ms", took.Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return source.Unavailable[model.TicketSummary](source.ReasonTransport)
	}

	var parsed summaryResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		slog.WarnContext(ctx, "summarizer response unmarshal failed",
			"provider", ProviderOpenAI,
			"error", err)
		return source.Unavailable[model.TicketSummary](source.ReasonTransport)
	}

	summary := parsed.toModel()
	if summary.Summary == "" {
		return source.Unavailable[model.TicketSummary](source.ReasonEmpty)
	}

	return source.Ok([]model.TicketSummary{summary}, took)
}

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
