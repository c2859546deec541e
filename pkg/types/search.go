package types

// SearchRequest identifies what should currently be fetched. Query and Page
// together form the trigger key for a session: any change to either
// supersedes the fetch in flight.
type SearchRequest struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// SearchDocument is a single result item
type SearchDocument struct {
	Id    string  `json:"id"`
	Title string  `json:"title"`
	Body  string  `json:"body,omitempty"`
	Score float64 `json:"score"`
}

// SearchResponse is the settled result of one fetch attempt
type SearchResponse struct {
	Documents []SearchDocument `json:"documents"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
}
