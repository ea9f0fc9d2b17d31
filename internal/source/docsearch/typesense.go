package docsearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source"
)

// typesenseSearcher queries a self-hosted documentation index. The
// collection holds only the product documentation, so every query is
// domain-scoped by construction.
type typesenseSearcher struct {
	client     *typesense.Client
	collection string
	maxResults int
}

func newTypesense(cfg Config) (Searcher, error) {
	t := cfg.Typesense
	if t.URL == "" || t.APIKey == "" {
		return nil, fmt.Errorf("typesense: url and api key are required")
	}
	collection := t.Collection
	if collection == "" {
		collection = "docs"
	}

	client := typesense.NewClient(
		typesense.WithServer(t.URL),
		typesense.WithAPIKey(t.APIKey),
		typesense.WithConnectionTimeout(10*time.Second),
	)

	return &typesenseSearcher{
		client:     client,
		collection: collection,
		maxResults: cfg.maxResults(),
	}, nil
}

func (t *typesenseSearcher) Search(ctx context.Context, keywords []string) source.Result[model.RelatedDoc] {
	start := time.Now()

	res, err := t.client.Collection(t.collection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:       pointer.String(strings.Join(keywords, " ")),
		QueryBy: pointer.String("title,content"),
		PerPage: pointer.Int(t.maxResults),
	})
	if err != nil {
		slog.WarnContext(ctx, "typesense doc search failed", "error", err)
		return source.Unavailable[model.RelatedDoc](source.FromError(err))
	}
	if res.Hits == nil {
		return source.Unavailable[model.RelatedDoc](source.ReasonEmpty)
	}

	var docs []model.RelatedDoc
	for _, hit := range *res.Hits {
		if len(docs) == t.maxResults {
			break
		}
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		docURL, _ := doc["url"].(string)
		if docURL == "" {
			continue
		}
		title, _ := doc["title"].(string)
		content, _ := doc["content"].(string)

		docs = append(docs, model.RelatedDoc{
			Title:   title,
			URL:     docURL,
			Snippet: normalize.Clip(content, snippetLength),
		})
	}

	return source.Ok(docs, time.Since(start))
}
