package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
)

// UserRepository is a read-only view of the user directory maintained by the
// external identity service. GetByID returns nil (no error) when the user is
// unknown or soft deleted.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
