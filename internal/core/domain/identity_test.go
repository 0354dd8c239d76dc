package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVoterIdentity(t *testing.T) {
	userID := uuid.New()

	t.Run("user id wins over anonymous token", func(t *testing.T) {
		identity, err := ResolveVoterIdentity(&userID, "some-token", true)
		require.NoError(t, err)
		assert.Equal(t, IdentityUser, identity.Kind)
		assert.Equal(t, userID, identity.UserID)
		assert.Empty(t, identity.AnonymousToken)
	})

	t.Run("anonymous token accepted when policy allows", func(t *testing.T) {
		identity, err := ResolveVoterIdentity(nil, "session-abc", true)
		require.NoError(t, err)
		assert.Equal(t, IdentityAnonymous, identity.Kind)
		assert.Equal(t, "session-abc", identity.AnonymousToken)
	})

	t.Run("token is trimmed", func(t *testing.T) {
		identity, err := ResolveVoterIdentity(nil, "  session-abc  ", true)
		require.NoError(t, err)
		assert.Equal(t, "session-abc", identity.AnonymousToken)
	})

	t.Run("neither identity fails when anonymous allowed", func(t *testing.T) {
		_, err := ResolveVoterIdentity(nil, "", true)
		assert.ErrorIs(t, err, ErrIdentityRequired)
	})

	t.Run("blank token counts as absent", func(t *testing.T) {
		_, err := ResolveVoterIdentity(nil, "   ", true)
		assert.ErrorIs(t, err, ErrIdentityRequired)
	})

	t.Run("anonymous forbidden requires a user", func(t *testing.T) {
		_, err := ResolveVoterIdentity(nil, "session-abc", false)
		assert.ErrorIs(t, err, ErrAuthenticationRequired)
	})

	t.Run("anonymous forbidden accepts authenticated user", func(t *testing.T) {
		identity, err := ResolveVoterIdentity(&userID, "", false)
		require.NoError(t, err)
		assert.Equal(t, IdentityUser, identity.Kind)
	})
}

func TestResponseIdentityMutuallyExclusive(t *testing.T) {
	userID := uuid.New()
	token := "tok"

	userResponse := Response{UserID: &userID}
	identity := userResponse.Identity()
	assert.Equal(t, IdentityUser, identity.Kind)
	assert.False(t, identity.IsAnonymous())

	anonResponse := Response{AnonymousID: &token}
	identity = anonResponse.Identity()
	assert.Equal(t, IdentityAnonymous, identity.Kind)
	assert.Equal(t, "tok", identity.AnonymousToken)
}
