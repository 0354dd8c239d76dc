package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	Update(ctx context.Context, poll *domain.Poll, replaceQuestions bool) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	ListActive(ctx context.Context) ([]*domain.Poll, error)
	List(ctx context.Context, filter PollFilter) ([]*domain.Poll, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PollFilter struct {
	Search    string
	Active    *bool
	StartFrom *time.Time
	EndBy     *time.Time
}

type CreateOptionInput struct {
	Type         domain.OptionType
	TextContent  string
	ImageURL     string
	NumericValue *float64
	SortOrder    *int
	Weight       *float64
}

type CreateQuestionInput struct {
	Type          domain.QuestionType
	Title         string
	IsRequired    *bool
	AllowMultiple *bool
	SortOrder     *int
	Options       []CreateOptionInput
}

type CreatePollInput struct {
	Title          string
	Description    string
	IsActive       *bool
	AllowAnonymous *bool
	StartsAt       *time.Time
	EndsAt         *time.Time
	Settings       map[string]any
	Questions      []CreateQuestionInput
}

type UpdatePollInput struct {
	Title          *string
	Description    *string
	IsActive       *bool
	AllowAnonymous *bool
	StartsAt       *time.Time
	EndsAt         *time.Time
	Settings       map[string]any
	Questions      []CreateQuestionInput
}

// PollDetail is a poll plus whether the requesting identity already voted.
type PollDetail struct {
	Poll     *domain.Poll
	HasVoted bool
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePollInput) (*domain.Poll, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetPoll(ctx context.Context, id uuid.UUID, userID *uuid.UUID, anonymousToken string) (*PollDetail, error)
	ListActive(ctx context.Context) ([]*domain.Poll, error)
	List(ctx context.Context, filter PollFilter) ([]*domain.Poll, error)
}
