package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Tickets    TicketsConfig
	Docs       DocsConfig
	Summarizer SummarizerConfig
	Pipeline   PipelineConfig
	Keywords   KeywordsConfig
	Scoring    ScoringConfig
	Classifier ClassifierConfig
	OTel       OTelConfig
	Env        string
	Port       string
}

type TicketsConfig struct {
	Provider    string // "zendesk" or "gitlab"
	Zendesk     ZendeskConfig
	GitLab      GitLabConfig
	MaxComments int
	MaxResults  int
}

type ZendeskConfig struct {
	Subdomain string
	Cookie    string
	Email     string
	APIToken  string
	BaseURL   string // Optional: tests and proxies only
}

type GitLabConfig struct {
	BaseURL   string // Optional: empty means gitlab.com
	Token     string
	ProjectID int64
}

type DocsConfig struct {
	Provider   string // "typesense" or "searx"
	Domain     string
	MaxResults int
	Typesense  TypesenseConfig
	Searx      SearxConfig
}

type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type SearxConfig struct {
	BaseURL string
}

type SummarizerConfig struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// PipelineConfig bounds the analysis fan-out: one overall deadline and a
// budget per source, plus the caps on what the reducer keeps.
type PipelineConfig struct {
	OverallDeadline   time.Duration
	TicketTimeout     time.Duration
	SearchTimeout     time.Duration
	DocsTimeout       time.Duration
	MaxRelatedTickets int
	MaxRelatedDocs    int
	MaxSeedComments   int
	SeedCommentChars  int
	TraceHeaderName   string
}

type KeywordsConfig struct {
	MaxWords  int
	StopWords []string // empty selects the built-in list
	Fallback  string
}

type ScoringConfig struct {
	Base         float64
	PerTicket    float64
	PerDoc       float64
	UnknownFloor float64
}

// ClassifierConfig overrides the category phrase lists. Empty lists keep
// the built-in phrases.
type ClassifierConfig struct {
	UpgradePhrases      []string
	WorkaroundPhrases   []string
	NotSupportedPhrases []string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.cli for the command line client
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("TRIAGE_ENV", "development") == "development" {
		// Try service-specific env file first, fall back to .env
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("TRIAGE_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		Tickets: TicketsConfig{
			Provider: getEnv("TICKET_PROVIDER", "zendesk"),
			Zendesk: ZendeskConfig{
				Subdomain: getEnv("ZENDESK_SUBDOMAIN", ""),
				Cookie:    getEnv("ZENDESK_COOKIE", ""),
				Email:     getEnv("ZENDESK_EMAIL", ""),
				APIToken:  getEnv("ZENDESK_API_TOKEN", ""),
				BaseURL:   getEnv("ZENDESK_BASE_URL", ""),
			},
			GitLab: GitLabConfig{
				BaseURL:   getEnv("GITLAB_BASE_URL", ""),
				Token:     getEnv("GITLAB_TOKEN", ""),
				ProjectID: getEnvInt64("GITLAB_PROJECT_ID", 0),
			},
			MaxComments: getEnvInt("TICKET_MAX_COMMENTS", 10),
			MaxResults:  getEnvInt("TICKET_MAX_RESULTS", 5),
		},
		Docs: DocsConfig{
			Provider:   getEnv("DOCS_PROVIDER", "searx"),
			Domain:     getEnv("DOCS_DOMAIN", ""),
			MaxResults: getEnvInt("DOCS_MAX_RESULTS", 5),
			Typesense: TypesenseConfig{
				URL:        getEnv("TYPESENSE_URL", ""),
				APIKey:     getEnv("TYPESENSE_API_KEY", ""),
				Collection: getEnv("TYPESENSE_COLLECTION", "docs"),
			},
			Searx: SearxConfig{
				BaseURL: getEnv("SEARX_BASE_URL", ""),
			},
		},
		Summarizer: SummarizerConfig{
			Provider:  getEnv("SUMMARIZER_PROVIDER", "openai"),
			APIKey:    getEnv("SUMMARIZER_API_KEY", ""),
			BaseURL:   getEnv("SUMMARIZER_BASE_URL", ""),
			Model:     getEnv("SUMMARIZER_MODEL", ""),
			MaxTokens: getEnvInt("SUMMARIZER_MAX_TOKENS", 1024),
			Timeout:   getEnvDuration("SUMMARIZER_TIMEOUT", 20*time.Second),
		},
		Pipeline: PipelineConfig{
			OverallDeadline:   getEnvDuration("ANALYSIS_DEADLINE", 30*time.Second),
			TicketTimeout:     getEnvDuration("TICKET_TIMEOUT", 10*time.Second),
			SearchTimeout:     getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
			DocsTimeout:       getEnvDuration("DOCS_TIMEOUT", 8*time.Second),
			MaxRelatedTickets: getEnvInt("MAX_RELATED_TICKETS", 3),
			MaxRelatedDocs:    getEnvInt("MAX_RELATED_DOCS", 3),
			MaxSeedComments:   getEnvInt("MAX_SEED_COMMENTS", 3),
			SeedCommentChars:  getEnvInt("SEED_COMMENT_CHARS", 280),
			TraceHeaderName:   getEnv("TRACE_HEADER_NAME", "X-Trace-Id"),
		},
		Keywords: KeywordsConfig{
			MaxWords:  getEnvInt("KEYWORDS_MAX", 8),
			StopWords: getEnvList("KEYWORDS_STOP_WORDS", nil),
			Fallback:  getEnv("KEYWORDS_FALLBACK", ""),
		},
		Scoring: ScoringConfig{
			Base:         getEnvFloat("SCORE_BASE", 0.3),
			PerTicket:    getEnvFloat("SCORE_PER_TICKET", 0.2),
			PerDoc:       getEnvFloat("SCORE_PER_DOC", 0),
			UnknownFloor: getEnvFloat("SCORE_UNKNOWN_FLOOR", 0.2),
		},
		Classifier: ClassifierConfig{
			UpgradePhrases:      getEnvList("CLASSIFIER_UPGRADE_PHRASES", nil),
			WorkaroundPhrases:   getEnvList("CLASSIFIER_WORKAROUND_PHRASES", nil),
			NotSupportedPhrases: getEnvList("CLASSIFIER_NOT_SUPPORTED_PHRASES", nil),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "triage"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	if cfg.Docs.Domain == "" {
		return Config{}, fmt.Errorf("DOCS_DOMAIN is required")
	}

	switch cfg.Tickets.Provider {
	case "zendesk":
		if cfg.Tickets.Zendesk.Subdomain == "" {
			return Config{}, fmt.Errorf("ZENDESK_SUBDOMAIN is required")
		}
	case "gitlab":
		if cfg.Tickets.GitLab.Token == "" || cfg.Tickets.GitLab.ProjectID == 0 {
			return Config{}, fmt.Errorf("GITLAB_TOKEN and GITLAB_PROJECT_ID are required")
		}
	}

	if cfg.Docs.Provider == "typesense" && !cfg.Docs.Typesense.Enabled() {
		return Config{}, fmt.Errorf("TYPESENSE_URL and TYPESENSE_API_KEY are required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c SummarizerConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c TypesenseConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList parses a comma-separated value, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return fallback
	}
	return list
}
