package ports

import (
	"context"

	"github.com/google/uuid"
)

type RankingEntryInput struct {
	OptionID *uuid.UUID `json:"option_id"`
	Position int        `json:"position"`
}

// AnswerInput is one submitted answer for one question. Whichever payload
// fields are present are materialized, independently of the question's own
// type tag.
type AnswerInput struct {
	QuestionID   uuid.UUID           `json:"question_id"`
	OptionID     *uuid.UUID          `json:"option_id,omitempty"`
	OptionIDs    []uuid.UUID         `json:"option_ids,omitempty"`
	TextValue    *string             `json:"text_value,omitempty"`
	NumericValue *float64            `json:"numeric_value,omitempty"`
	Ranking      []RankingEntryInput `json:"ranking,omitempty"`
}

type SubmitVoteInput struct {
	PollID         uuid.UUID
	UserID         *uuid.UUID
	AnonymousToken string
	ClientIP       string
	Answers        []AnswerInput
}

type SubmitVoteResult struct {
	ResponseID uuid.UUID
	WasUpdate  bool
}

type VoteService interface {
	Submit(ctx context.Context, input SubmitVoteInput) (*SubmitVoteResult, error)
}
