package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
)

// ResponseRepository persists responses together with their answers.
type ResponseRepository interface {
	// FindByPollAndUser returns nil (no error) when the user has no response
	// on the poll.
	FindByPollAndUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Response, error)
	FindByPollAndAnonymousToken(ctx context.Context, pollID uuid.UUID, token string) (*domain.Response, error)
	// Save persists the response and its answer list as one atomic unit. For
	// a new response it inserts the row; for an existing one it replaces the
	// stored answers. A uniqueness violation on first-time creation surfaces
	// as domain.ErrDuplicateResponse.
	Save(ctx context.Context, response *domain.Response) error
	// ListByPoll loads all responses with their answers and, for
	// authenticated voters, the user display fields.
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Response, error)
	ExistsForIdentity(ctx context.Context, pollID uuid.UUID, identity domain.VoterIdentity) (bool, error)
	CountByPoll(ctx context.Context, pollID uuid.UUID) (int64, error)
}

// OptionRepository is the option-existence view of the poll catalog used by
// answer materialization.
type OptionRepository interface {
	// Exist reports which of the given option ids resolve to a stored
	// option. Lookup is global, not scoped to a poll.
	Exist(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}
