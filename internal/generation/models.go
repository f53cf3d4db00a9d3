// Package generation implements the kid-submission admission pipeline and the
// parental review lifecycle for image-generation requests.
package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doodlechef/doodlechef/internal/prompt"
)

// Domain errors.
var (
	// ErrRequestNotFound is returned when no request exists for an id.
	ErrRequestNotFound = errors.New("generation request not found")

	// ErrRequestNotPending is returned when a terminal transition is attempted
	// on a request that already left the pending state.
	ErrRequestNotPending = errors.New("generation request is not pending")

	// ErrSlotUnavailable is returned when the quota reservation keeps
	// conflicting after all retries. Distinct from a quota rejection: the
	// caller may retry, no limit was hit.
	ErrSlotUnavailable = errors.New("could not reserve generation slot")

	// ErrPromptFlagged is returned when text moderation rejects a composed
	// prompt before any quota slot is consumed.
	ErrPromptFlagged = errors.New("composed prompt flagged by moderation")

	// ErrImageGeneration is returned when the image gateway produces no
	// usable payload. The request stays pending and the reviewer may retry.
	ErrImageGeneration = errors.New("image generation failed")
)

// Status is the lifecycle state of a generation request.
type Status string

// Lifecycle states. Pending is initial; approved and rejected are terminal.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// QuotaScope identifies which daily ceiling rejected a submission.
type QuotaScope string

const (
	QuotaScopeDevice QuotaScope = "device"
	QuotaScopeGlobal QuotaScope = "global"
)

// QuotaError is a policy rejection: a daily ceiling is already full.
// No row is created when this is returned.
type QuotaError struct {
	Scope QuotaScope
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily %s limit reached", e.Scope)
}

// Reason returns the user-visible rejection reason.
func (e *QuotaError) Reason() string {
	if e.Scope == QuotaScopeGlobal {
		return "Daily global limit reached"
	}
	return "Daily device limit reached"
}

// Request is a generation request row.
type Request struct {
	ID       string
	DeviceID string

	// TokenIDs are the labels the child picked, kept for display; the
	// composed prompt derived from them is never served to clients.
	TokenIDs       prompt.TokenIDs
	ComposedPrompt string

	Status Status

	// ImageData is the base64 image payload, present only when approved.
	ImageData *string

	// ModerationInput and ModerationOutput hold raw classifier responses
	// for audit (text check at submission, image check at approval).
	ModerationInput  json.RawMessage
	ModerationOutput json.RawMessage

	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// ReserveOutcome is the result of an atomic quota check-and-create.
type ReserveOutcome struct {
	// Allowed reports whether the reservation succeeded.
	Allowed bool

	// DeniedScope names the exhausted ceiling when Allowed is false.
	DeniedScope QuotaScope

	// Record is the created pending row when Allowed is true.
	Record *Request

	// DeviceUsed is the device's daily count including this reservation.
	DeviceUsed int
}

// TerminalUpdate is the single permitted post-creation mutation: moving a
// pending request into a terminal state.
type TerminalUpdate struct {
	Status           Status
	ImageData        *string
	ModerationOutput json.RawMessage
	ReviewedAt       time.Time
}
