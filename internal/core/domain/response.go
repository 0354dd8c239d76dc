package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response is one voter's complete submission for one poll, uniquely keyed by
// (poll, identity). Exactly one of UserID/AnonymousID is set. Resubmission
// replaces the answer list; the row itself is never duplicated.
type Response struct {
	ID          uuid.UUID  `json:"id"`
	PollID      uuid.UUID  `json:"poll_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	AnonymousID *string    `json:"anonymous_id,omitempty"`
	IPAddress   string     `json:"ip_address,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Answers     []Answer   `json:"answers,omitempty"`

	// User carries the voter's display fields when loaded for results; nil
	// for anonymous responses.
	User *User `json:"-"`
}

// Identity reconstructs the dedup key stored on the response.
func (r *Response) Identity() VoterIdentity {
	if r.UserID != nil {
		return VoterIdentity{Kind: IdentityUser, UserID: *r.UserID}
	}
	var token string
	if r.AnonymousID != nil {
		token = *r.AnonymousID
	}
	return VoterIdentity{Kind: IdentityAnonymous, AnonymousToken: token}
}

// VoterDisplayName follows the roster rule: user display name when the
// response is authenticated, "Anonymous" otherwise.
func (r *Response) VoterDisplayName() string {
	if r.User != nil {
		return r.User.DisplayName()
	}
	return "Anonymous"
}

// Answer is one materialized value within a response, tied to one question.
// The payload is polymorphic: at most one of option reference, text value or
// numeric value, optionally paired with a rank position.
type Answer struct {
	ID           uuid.UUID  `json:"id"`
	ResponseID   uuid.UUID  `json:"response_id"`
	QuestionID   uuid.UUID  `json:"question_id"`
	OptionID     *uuid.UUID `json:"option_id,omitempty"`
	TextValue    *string    `json:"text_value,omitempty"`
	NumericValue *float64   `json:"numeric_value,omitempty"`
	Position     *int       `json:"position,omitempty"`
}
