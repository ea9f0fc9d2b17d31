package summarizer

import (
	"context"
	"strings"
	"testing"
	"time"

	"supportlens.app/triage/internal/source"
)

func TestNewProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "no api key selects disabled",
			cfg:  Config{Provider: ProviderOpenAI},
			want: "disabled",
		},
		{
			name: "key without provider defaults to openai",
			cfg:  Config{APIKey: "sk-test"},
			want: "openai",
		},
		{
			name: "anthropic by name",
			cfg:  Config{Provider: ProviderAnthropic, APIKey: "sk-ant-test"},
			want: "anthropic",
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "bard", APIKey: "key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			var got string
			switch s.(type) {
			case disabledSummarizer:
				got = "disabled"
			case *openaiSummarizer:
				got = "openai"
			case *anthropicSummarizer:
				got = "anthropic"
			default:
				t.Fatalf("unexpected summarizer type %T", s)
			}
			if got != tt.want {
				t.Errorf("provider = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDisabledSummarizer(t *testing.T) {
	s := Disabled()

	if s.Enabled() {
		t.Error("disabled summarizer reports Enabled")
	}

	res := s.Summarize(context.Background(), Input{Subject: "anything", Text: "anything"})
	if res.Available() {
		t.Fatal("disabled summarizer returned an available result")
	}
	if res.Reason() != source.ReasonEmpty {
		t.Errorf("reason = %s, want %s", res.Reason(), source.ReasonEmpty)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	if got := cfg.maxTokens(); got != defaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", got, defaultMaxTokens)
	}
	if got := cfg.timeout(); got != defaultTimeout {
		t.Errorf("timeout = %v, want %v", got, defaultTimeout)
	}

	cfg = Config{MaxTokens: 256, Timeout: 5 * time.Second}
	if got := cfg.maxTokens(); got != 256 {
		t.Errorf("maxTokens = %d, want 256", got)
	}
	if got := cfg.timeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := buildUserPrompt(Input{
		Subject:  "License check fails",
		Text:     "Customer reports the nightly job aborts.",
		Keywords: []string{"license", "nightly"},
	})

	for _, want := range []string{
		"## Subject\nLicense check fails",
		"## Conversation\nCustomer reports the nightly job aborts.",
		"## Key terms\nlicense, nightly",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	prompt = buildUserPrompt(Input{Text: "only text"})
	if strings.Contains(prompt, "## Subject") || strings.Contains(prompt, "## Key terms") {
		t.Errorf("empty sections rendered:\n%s", prompt)
	}
}

func TestInputEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{"zero value", Input{}, true},
		{"whitespace only", Input{Subject: "  ", Text: "\n\t"}, true},
		{"keywords alone are not content", Input{Keywords: []string{"export"}}, true},
		{"subject only", Input{Subject: "crash"}, false},
		{"text only", Input{Text: "it crashed"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.empty(); got != tt.want {
				t.Errorf("empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
