package dto

// AnalyzeRequest carries exactly one origin: a ticket id or a free-form
// query. The service rejects requests setting both or neither.
type AnalyzeRequest struct {
	TicketID int64  `json:"ticket_id" binding:"omitempty,min=1"`
	Query    string `json:"query" binding:"omitempty,max=2048"`
}

type AnalyzeResponse struct {
	Summary        string          `json:"summary"`
	Confidence     float64         `json:"confidence"`
	RelatedTickets []RelatedTicket `json:"related_tickets"`
	RelatedDocs    []RelatedDoc    `json:"related_docs"`
	Resolution     string          `json:"resolution"`
	Recommendation string          `json:"recommended_solution"`
}

type RelatedTicket struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject,omitempty"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

type RelatedDoc struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}
