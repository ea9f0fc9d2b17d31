package ticketstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source"
)

// GitLabConfig configures the GitLab provider, for teams that run their
// support desk as issues in a single project (GitLab Service Desk).
type GitLabConfig struct {
	BaseURL   string // empty means gitlab.com
	Token     string
	ProjectID int64
}

type gitlabStore struct {
	client      *gitlab.Client
	projectID   int64
	maxComments int
	maxResults  int
}

// NewGitLab creates a Store backed by a GitLab project's issue tracker.
func NewGitLab(cfg Config) (Store, error) {
	g := cfg.GitLab
	if g.Token == "" {
		return nil, fmt.Errorf("gitlab: token is required")
	}
	if g.ProjectID == 0 {
		return nil, fmt.Errorf("gitlab: project id is required")
	}

	client, err := newGitLabClient(g.BaseURL, g.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &gitlabStore{
		client:      client,
		projectID:   g.ProjectID,
		maxComments: cfg.maxComments(),
		maxResults:  cfg.maxResults(),
	}, nil
}

func newGitLabClient(baseURL, token string) (*gitlab.Client, error) {
	if baseURL == "" {
		return gitlab.NewClient(token)
	}
	apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
	return gitlab.NewClient(token, gitlab.WithBaseURL(apiURL))
}

func (g *gitlabStore) FetchTicket(ctx context.Context, ticketID int64) source.Result[model.Ticket] {
	start := time.Now()

	issue, resp, err := g.client.Issues.GetIssue(
		g.projectID,
		ticketID,
		nil,
		gitlab.WithContext(ctx),
	)
	if err != nil {
		slog.WarnContext(ctx, "gitlab issue fetch failed",
			"ticket_id", ticketID,
			"error", err)
		return source.Unavailable[model.Ticket](gitlabReason(resp, err))
	}

	ticket := model.Ticket{
		ID:          int64(issue.IID),
		Subject:     issue.Title,
		Description: issue.Description,
		Status:      issue.State,
		URL:         issue.WebURL,
	}
	if issue.UpdatedAt != nil {
		ticket.UpdatedAt = *issue.UpdatedAt
	}

	discussions, _, err := g.client.Discussions.ListIssueDiscussions(
		g.projectID,
		ticketID,
		nil,
		gitlab.WithContext(ctx),
	)
	if err != nil {
		// Header without the thread is still usable.
		slog.WarnContext(ctx, "gitlab discussions fetch failed",
			"ticket_id", ticketID,
			"error", err)
	}
	ticket.Comments = g.mapComments(discussions)

	return source.Ok([]model.Ticket{ticket}, time.Since(start))
}

func (g *gitlabStore) SearchTickets(ctx context.Context, q SearchQuery) source.Result[model.RelatedTicket] {
	start := time.Now()

	limit := q.Limit
	if limit <= 0 || limit > g.maxResults {
		limit = g.maxResults
	}

	opts := &gitlab.ListProjectIssuesOptions{
		Search:      gitlab.Ptr(q.Text),
		OrderBy:     gitlab.Ptr("updated_at"),
		Sort:        gitlab.Ptr("desc"),
		ListOptions: gitlab.ListOptions{PerPage: int64(limit)},
	}
	if q.SolvedOnly {
		opts.State = gitlab.Ptr("closed")
	}

	issues, resp, err := g.client.Issues.ListProjectIssues(g.projectID, opts, gitlab.WithContext(ctx))
	if err != nil {
		slog.WarnContext(ctx, "gitlab issue search failed", "error", err)
		return source.Unavailable[model.RelatedTicket](gitlabReason(resp, err))
	}

	var related []model.RelatedTicket
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		if len(related) == limit {
			break
		}
		related = append(related, model.RelatedTicket{
			ID:      int64(issue.IID),
			Subject: issue.Title,
			URL:     issue.WebURL,
			Snippet: normalize.Clip(issue.Description, snippetLength),
		})
	}

	return source.Ok(related, time.Since(start))
}

func (g *gitlabStore) mapComments(discussions []*gitlab.Discussion) []model.Comment {
	var comments []model.Comment

	for _, d := range discussions {
		if d == nil {
			continue
		}
		for _, n := range d.Notes {
			if n == nil || n.System {
				continue
			}
			if len(comments) == g.maxComments {
				return comments
			}

			authorRef := fmt.Sprintf("id:%d", n.Author.ID)
			if n.Author.Username != "" {
				authorRef = n.Author.Username
			}

			comment := model.Comment{
				AuthorRef: authorRef,
				Body:      n.Body,
				Public:    !n.Internal,
			}
			if n.CreatedAt != nil {
				comment.CreatedAt = *n.CreatedAt
			}

			comments = append(comments, comment)
		}
	}

	return comments
}

func gitlabReason(resp *gitlab.Response, err error) source.Reason {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return source.ReasonAuthFailure
		case http.StatusNotFound:
			return source.ReasonNotFound
		}
	}
	return source.FromError(err)
}
