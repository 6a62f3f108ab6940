package service

import (
	"context"
	"testing"
	"time"

	"taskmaster/task-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	s := f.signup(t, "Ann", "ann@x.com", "Passw0rd!")
	ctx := context.Background()

	ghost, _, err := security.NewTokenIssuer(testSecret, time.Hour, f.clock.Now).Issue("ghost", 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"missing", "", ReasonMissing},
		{"blank", "   ", ReasonMissing},
		{"wrong scheme", "Token " + s.Token, ReasonMalformed},
		{"no token", "Bearer ", ReasonMalformed},
		{"bare token", s.Token, ReasonMalformed},
		{"garbage", "Bearer abc.def.ghi", ReasonInvalid},
		{"unknown user", bearer(ghost), ReasonInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.Authenticate(ctx, tt.header)
			require.ErrorIs(t, err, ErrUnauthenticated)

			var ue *UnauthenticatedError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.reason, ue.Reason)
		})
	}

	id, err := f.sessions.Authenticate(ctx, "bearer "+s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, id.UserID)
	assert.Equal(t, "ann@x.com", id.Email)
	assert.Equal(t, 1, id.PasswordVersion)
}

func TestAuthenticateExpired(t *testing.T) {
	f := newFixture(t)
	s := f.signup(t, "Ann", "ann@x.com", "Passw0rd!")

	f.clock.Advance(7*24*time.Hour + time.Second)

	_, err := f.sessions.Authenticate(context.Background(), bearer(s.Token))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), &Identity{UserID: "abc"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", id.UserID)
}
