package models

// LoginRequest carries the parent PIN.
type LoginRequest struct {
	PIN string `json:"pin"`
}

// LoginResponse acknowledges a successful login. The session itself travels
// in an HTTP-only cookie, never in the body.
type LoginResponse struct {
	OK bool `json:"ok"`
}

// CleanupResult reports per-batch deletion counts from a retention sweep.
type CleanupResult struct {
	Deleted CleanupCounts `json:"deleted"`
}

// CleanupCounts is the per-batch breakdown of a retention sweep.
type CleanupCounts struct {
	Pending     int64 `json:"pending"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Suggestions int64 `json:"suggestions"`
}
