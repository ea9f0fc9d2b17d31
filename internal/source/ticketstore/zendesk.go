package ticketstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"supportlens.app/triage/internal/model"
	"supportlens.app/triage/internal/normalize"
	"supportlens.app/triage/internal/source"
)

const zendeskUserAgent = "supportlens-triage"

// ZendeskConfig configures the Zendesk provider. Exactly one authentication
// mode must be set: a browser session cookie (agent workflows where no API
// token is provisioned), or email plus API token.
type ZendeskConfig struct {
	Subdomain string
	Cookie    string
	Email     string
	APIToken  string

	// BaseURL overrides https://{subdomain}.zendesk.com. Tests and proxies
	// only; agent-facing ticket links always use the real subdomain.
	BaseURL string
}

type zendeskStore struct {
	baseURL     string
	agentURL    string
	cookie      string
	email       string
	apiToken    string
	httpClient  *http.Client
	maxComments int
	maxResults  int
}

// NewZendesk creates a Store backed by the Zendesk ticket API.
func NewZendesk(cfg Config) (Store, error) {
	z := cfg.Zendesk
	if z.Subdomain == "" {
		return nil, fmt.Errorf("zendesk: subdomain is required")
	}

	hasCookie := z.Cookie != ""
	hasToken := z.Email != "" || z.APIToken != ""
	if hasCookie && hasToken {
		return nil, fmt.Errorf("zendesk: configure either a session cookie or email+api token, not both")
	}
	if !hasCookie && !hasToken {
		return nil, fmt.Errorf("zendesk: no credentials configured")
	}
	if hasToken && (z.Email == "" || z.APIToken == "") {
		return nil, fmt.Errorf("zendesk: both email and api token are required for token auth")
	}

	baseURL := z.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.zendesk.com", z.Subdomain)
	}

	return &zendeskStore{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		agentURL:    fmt.Sprintf("https://%s.zendesk.com/agent/tickets/", z.Subdomain),
		cookie:      z.Cookie,
		email:       z.Email,
		apiToken:    z.APIToken,
		httpClient:  &http.Client{},
		maxComments: cfg.maxComments(),
		maxResults:  cfg.maxResults(),
	}, nil
}

type zendeskTicket struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type zendeskComment struct {
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	PlainBody string    `json:"plain_body"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

type zendeskSearchHit struct {
	ID          int64  `json:"id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	ResultType  string `json:"result_type"`
}

func (z *zendeskStore) FetchTicket(ctx context.Context, ticketID int64) source.Result[model.Ticket] {
	start := time.Now()

	var ticketBody struct {
		Ticket zendeskTicket `json:"ticket"`
	}
	status, err := z.getJSON(ctx, fmt.Sprintf("/api/v2/tickets/%d.json", ticketID), nil, &ticketBody)
	if err != nil {
		slog.WarnContext(ctx, "zendesk ticket fetch failed",
			"ticket_id", ticketID,
			"status", status,
			"error", err)
		return source.Unavailable[model.Ticket](httpReason(status, err))
	}

	ticket := model.Ticket{
		ID:          ticketBody.Ticket.ID,
		Subject:     ticketBody.Ticket.Subject,
		Description: ticketBody.Ticket.Description,
		Status:      ticketBody.Ticket.Status,
		URL:         z.agentURL + strconv.FormatInt(ticketBody.Ticket.ID, 10),
		UpdatedAt:   ticketBody.Ticket.UpdatedAt,
	}

	var commentsBody struct {
		Comments []zendeskComment `json:"comments"`
	}
	if status, err := z.getJSON(ctx, fmt.Sprintf("/api/v2/tickets/%d/comments.json", ticketID), nil, &commentsBody); err != nil {
		// The header alone is still usable; continue without the thread.
		slog.WarnContext(ctx, "zendesk comments fetch failed",
			"ticket_id", ticketID,
			"status", status,
			"error", err)
	}
	for _, c := range commentsBody.Comments {
		if len(ticket.Comments) == z.maxComments {
			break
		}
		body := c.PlainBody
		if body == "" {
			body = c.Body
		}
		ticket.Comments = append(ticket.Comments, model.Comment{
			AuthorRef: strconv.FormatInt(c.AuthorID, 10),
			Body:      body,
			Public:    c.Public,
			CreatedAt: c.CreatedAt,
		})
	}

	return source.Ok([]model.Ticket{ticket}, time.Since(start))
}

func (z *zendeskStore) SearchTickets(ctx context.Context, q SearchQuery) source.Result[model.RelatedTicket] {
	start := time.Now()

	terms := []string{"type:ticket"}
	if q.SolvedOnly {
		terms = append(terms, "status:solved")
	}
	if q.Text != "" {
		terms = append(terms, q.Text)
	}
	params := url.Values{
		"query":      []string{strings.Join(terms, " ")},
		"sort_by":    []string{"updated_at"},
		"sort_order": []string{"desc"},
	}

	var body struct {
		Results []zendeskSearchHit `json:"results"`
	}
	status, err := z.getJSON(ctx, "/api/v2/search.json", params, &body)
	if err != nil {
		slog.WarnContext(ctx, "zendesk ticket search failed",
			"status", status,
			"error", err)
		return source.Unavailable[model.RelatedTicket](httpReason(status, err))
	}

	limit := q.Limit
	if limit <= 0 || limit > z.maxResults {
		limit = z.maxResults
	}

	var related []model.RelatedTicket
	for _, hit := range body.Results {
		if hit.ResultType != "" && hit.ResultType != "ticket" {
			continue
		}
		if len(related) == limit {
			break
		}
		related = append(related, model.RelatedTicket{
			ID:      hit.ID,
			Subject: hit.Subject,
			URL:     z.agentURL + strconv.FormatInt(hit.ID, 10),
			Snippet: normalize.Clip(hit.Description, snippetLength),
		})
	}

	return source.Ok(related, time.Since(start))
}

func (z *zendeskStore) getJSON(ctx context.Context, path string, params url.Values, out any) (int, error) {
	endpoint := z.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", zendeskUserAgent)
	req.Header.Set("Accept", "application/json")
	if z.cookie != "" {
		req.Header.Set("Cookie", z.cookie)
	} else {
		req.SetBasicAuth(z.email+"/token", z.apiToken)
	}

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("zendesk: unexpected status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

// httpReason maps an HTTP status plus transport error into the shared
// reason vocabulary. Status takes precedence: an expired cookie is an auth
// failure even though the transport succeeded.
func httpReason(status int, err error) source.Reason {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return source.ReasonAuthFailure
	case http.StatusNotFound:
		return source.ReasonNotFound
	}
	return source.FromError(err)
}
