package service

import (
	"context"
	"errors"
	"strings"
	"taskmaster/task-api/internal/store"
	"taskmaster/task-api/pkg/security"
	"time"
)

// TokenIssuer mints and verifies session credentials
type TokenIssuer interface {
	Issue(userID string, passwordVersion int) (string, time.Time, error)
	Decode(raw string) (*security.SessionClaims, error)
}

// Identity is the authenticated caller of a protected request
type Identity struct {
	UserID          string
	Email           string
	Name            string
	PasswordVersion int
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}

// Sessions validates bearer credentials against the live user record.
// Nothing is cached, a password change is picked up by the very next request.
type Sessions struct {
	users  UserStore
	tokens TokenIssuer
}

func NewSessions(users UserStore, tokens TokenIssuer) *Sessions {
	return &Sessions{users: users, tokens: tokens}
}

// Authenticate takes the raw Authorization header value
func (s *Sessions) Authenticate(ctx context.Context, header string) (*Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, unauthenticated(ReasonMissing)
	}

	scheme, raw, ok := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return nil, unauthenticated(ReasonMalformed)
	}

	claims, err := s.tokens.Decode(raw)
	if err != nil {
		return nil, unauthenticated(ReasonInvalid)
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthenticated(ReasonInvalid)
	}

	if err != nil {
		return nil, internalErr("load session user", err)
	}

	if u.PasswordVersion != claims.PasswordVersion {
		return nil, unauthenticated(ReasonInvalidated)
	}

	return &Identity{
		UserID:          u.ID,
		Email:           u.Email,
		Name:            u.Name,
		PasswordVersion: u.PasswordVersion,
	}, nil
}
