// Package suggestion stores kid-proposed dictionary phrases for parental
// review. Suggestions never feed prompt composition directly; a parent
// curates accepted phrases into the dictionary out of band.
package suggestion

import (
	"errors"
	"time"
)

// MaxPhraseLength bounds the free-text phrase.
const MaxPhraseLength = 60

// Domain errors.
var (
	// ErrSuggestionNotFound is returned when no suggestion exists for an id.
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrSuggestionNotPending is returned when a reject is attempted on an
	// already-reviewed suggestion.
	ErrSuggestionNotPending = errors.New("suggestion is not pending")
)

// Status is the lifecycle state of a suggestion. There is no approved state:
// accepted phrases become dictionary items, the suggestion row just ages out.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Suggestion is a stored phrase proposal.
type Suggestion struct {
	ID         string
	DeviceID   string
	Phrase     string
	Category   *string
	Status     Status
	CreatedAt  time.Time
	ReviewedAt *time.Time
}
