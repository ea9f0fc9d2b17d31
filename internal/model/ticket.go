package model

import "time"

// Ticket is a normalized support ticket as returned by a ticket store
// adapter, independent of which upstream tracker it came from.
type Ticket struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at"`
	Comments    []Comment `json:"comments"`
}

// Comment is a single entry from a ticket's discussion thread.
// AuthorRef is an opaque reference into the upstream system; it is never
// resolved to a person here.
type Comment struct {
	AuthorRef string    `json:"author_ref"`
	Body      string    `json:"body"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketSummary is the structured output of the summarization source:
// a short description of the problem and, when the model can tell, how
// it was (or should be) resolved.
type TicketSummary struct {
	Summary    string `json:"summary"`
	Resolution string `json:"resolution"`
}
