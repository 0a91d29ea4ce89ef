package dto

// SyncResult reports one source type's sync run. A non-empty Errors list
// does not imply the run failed; callers decide how to treat partial
// failure.
type SyncResult struct {
	SourceType string   `json:"source_type"`
	Synced     int      `json:"synced"`
	Errors     []string `json:"errors"`
}

// NewSyncResult returns an empty result for sourceType. Errors starts as
// an empty slice so a clean run serializes as a list, not null.
func NewSyncResult(sourceType string) *SyncResult {
	return &SyncResult{SourceType: sourceType, Errors: []string{}}
}
