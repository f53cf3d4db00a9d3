package models

// SuggestionCreateRequest is a kid-proposed phrase for the token dictionary.
type SuggestionCreateRequest struct {
	DeviceID string  `json:"deviceId"`
	Phrase   string  `json:"phrase"`
	Category *string `json:"category,omitempty"`
}

// SuggestionCreated acknowledges a stored suggestion.
type SuggestionCreated struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"createdAt"`
}
