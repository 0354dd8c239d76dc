package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	LastName  string     `json:"last_name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// DisplayName is "first last" trimmed, falling back to the email when both
// name fields are blank.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.Name + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
