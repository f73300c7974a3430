package models

// ChatTurn represents one historical exchange between the user and the bot.
// Bot is empty when the bot never answered that turn.
type ChatTurn struct {
	User string `json:"user"`
	Bot  string `json:"bot,omitempty"`
}

// ChatRequest represents the incoming chat request from the frontend
type ChatRequest struct {
	History          []ChatTurn `json:"history,omitempty"` // Previous conversation turns
	LastUserQuestion string     `json:"lastUserQuestion"`  // The current user question
}

// SupportingContentRecord is one retrieved chunk surfaced back to the client,
// titled with the source document it came from.
type SupportingContentRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ApproachResponse is the assembled answer sent back to the client. Answer
// carries the synthesized text plus inline [citation] and <<follow-up>>
// markers; DataPoints preserves retrieval order.
type ApproachResponse struct {
	Answer          string                    `json:"answer"`
	Thoughts        string                    `json:"thoughts,omitempty"`
	DataPoints      []SupportingContentRecord `json:"data_points"`
	CitationBaseURL string                    `json:"citation_base_url"`
	Error           string                    `json:"error,omitempty"`
}

// BasicResponse is a minimal status payload for health-style endpoints
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
