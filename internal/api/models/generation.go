package models

// GenerationCreateRequest is the kid-facing submission shape. Every value is a
// dictionary label chosen from the published token lists; the server resolves
// labels to prompt text, so nothing here is free text.
type GenerationCreateRequest struct {
	DeviceID string `json:"deviceId"`

	// Required single-value tokens.
	Palette string `json:"palette"`
	Style   string `json:"style"`
	Theme   string `json:"theme"`
	Mood    string `json:"mood"`

	// Optional single-value tokens.
	Title    string `json:"title,omitempty"`
	Creature string `json:"creature,omitempty"`

	// Optional bounded token lists.
	Effects     []string `json:"effects,omitempty"`
	Addons      []string `json:"addons,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// GenerationCreated is returned after a submission is accepted into the
// parental approval queue.
type GenerationCreated struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	CreatedAt      Timestamp `json:"createdAt"`
	RemainingToday int       `json:"remainingToday"`
}

// TokenIDs echoes back the labels a child picked, field by field. Only the
// fields that were actually supplied are serialized.
type TokenIDs struct {
	Palette     string   `json:"palette"`
	Style       string   `json:"style"`
	Theme       string   `json:"theme"`
	Mood        string   `json:"mood"`
	Title       string   `json:"title,omitempty"`
	Creature    string   `json:"creature,omitempty"`
	Effects     []string `json:"effects,omitempty"`
	Addons      []string `json:"addons,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// QueueGeneration is a pending generation as shown to the reviewing parent.
// The composed prompt is deliberately absent; parents see the chosen labels.
type QueueGeneration struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	TokenIDs  TokenIDs  `json:"tokenIds"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"createdAt"`
}

// QueueSuggestion is a pending free-text suggestion in the review queue.
type QueueSuggestion struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Phrase    string    `json:"phrase"`
	Category  *string   `json:"category,omitempty"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"createdAt"`
}

// ReviewQueue is the full review queue for the admin surface.
type ReviewQueue struct {
	Generations []QueueGeneration `json:"generations"`
	Suggestions []QueueSuggestion `json:"suggestions"`
}

// ReviewRequest identifies the record a reviewer is acting on.
// Type selects between "generation" (default) and "suggestion" for rejects.
type ReviewRequest struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// ReviewResult reports the outcome of an approve or reject action.
// Policy rejections during approval (flagged image, oversized payload) are
// reported here with a reason, not as HTTP errors.
type ReviewResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// GalleryImage is an approved generation as served to the owning device.
type GalleryImage struct {
	ID        string    `json:"id"`
	TokenIDs  TokenIDs  `json:"tokenIds"`
	ImageData string    `json:"imageData"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Gallery wraps the approved images for a device.
type Gallery struct {
	Images []GalleryImage `json:"images"`
}
