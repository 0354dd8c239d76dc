package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
)

type ResultsService interface {
	Results(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error)
}
