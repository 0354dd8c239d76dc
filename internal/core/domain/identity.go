package domain

import (
	"strings"

	"github.com/google/uuid"
)

type IdentityKind string

const (
	IdentityUser      IdentityKind = "user"
	IdentityAnonymous IdentityKind = "anonymous"
)

// VoterIdentity is the deduplication key for a voter on a poll: either an
// authenticated user id or a client-supplied anonymous token, never both.
type VoterIdentity struct {
	Kind           IdentityKind
	UserID         uuid.UUID
	AnonymousToken string
}

func (v VoterIdentity) IsAnonymous() bool {
	return v.Kind == IdentityAnonymous
}

// ResolveVoterIdentity derives the dedup key from an optional authenticated
// user id and an optional anonymous token, enforcing the poll's anonymous
// policy. A user id always wins over a supplied token. Blank tokens count as
// absent.
func ResolveVoterIdentity(userID *uuid.UUID, anonymousToken string, allowAnonymous bool) (VoterIdentity, error) {
	token := strings.TrimSpace(anonymousToken)

	if userID != nil {
		return VoterIdentity{Kind: IdentityUser, UserID: *userID}, nil
	}

	if !allowAnonymous {
		return VoterIdentity{}, ErrAuthenticationRequired
	}
	if token == "" {
		return VoterIdentity{}, ErrIdentityRequired
	}
	return VoterIdentity{Kind: IdentityAnonymous, AnonymousToken: token}, nil
}
