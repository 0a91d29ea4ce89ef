package dto

type SearchRequest struct {
	Query       string   `json:"query"`
	Threshold   *float64 `json:"threshold,omitempty"`
	Limit       *int     `json:"limit,omitempty"`
	SourceTypes []string `json:"source_types,omitempty"`
}

type SearchHit struct {
	ID         string  `json:"id"`
	SourceType string  `json:"source_type"`
	SourceID   string  `json:"source_id"`
	Content    string  `json:"content"`
	Metadata   string  `json:"metadata"`
	Similarity float64 `json:"similarity"`
}

type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}
