package docsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source"
)

type searxSearcher struct {
	baseURL    string
	docsDomain string
	maxResults int
	httpClient *http.Client
}

func newSearx(cfg Config) (Searcher, error) {
	if cfg.Searx.BaseURL == "" {
		return nil, fmt.Errorf("searx: base url is required")
	}
	return &searxSearcher{
		baseURL:    strings.TrimSuffix(cfg.Searx.BaseURL, "/"),
		docsDomain: cfg.DocsDomain,
		maxResults: cfg.maxResults(),
		httpClient: &http.Client{},
	}, nil
}

type searxResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

func (s *searxSearcher) Search(ctx context.Context, keywords []string) source.Result[model.RelatedDoc] {
	start := time.Now()

	params := url.Values{
		"q":      []string{fmt.Sprintf("site:%s %s", s.docsDomain, strings.Join(keywords, " "))},
		"format": []string{"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return source.Unavailable[model.RelatedDoc](source.FromError(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "doc search request failed", "error", err)
		return source.Unavailable[model.RelatedDoc](source.FromError(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		slog.WarnContext(ctx, "doc search rejected", "status", resp.StatusCode)
		return source.Unavailable[model.RelatedDoc](source.ReasonAuthFailure)
	case resp.StatusCode != http.StatusOK:
		slog.WarnContext(ctx, "doc search unexpected status", "status", resp.StatusCode)
		return source.Unavailable[model.RelatedDoc](source.ReasonTransport)
	}

	var body struct {
		Results []searxResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.WarnContext(ctx, "doc search decode failed", "error", err)
		return source.Unavailable[model.RelatedDoc](source.ReasonTransport)
	}

	var docs []model.RelatedDoc
	for _, r := range body.Results {
		if len(docs) == s.maxResults {
			break
		}
		if r.URL == "" {
			continue
		}
		docs = append(docs, model.RelatedDoc{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: normalize.Clip(r.Content, snippetLength),
		})
	}

	return source.Ok(docs, time.Since(start))
}
