package service

import (
	"context"
	"errors"
	"taskmaster/task-api/internal/model"
	"taskmaster/task-api/internal/store"
	"taskmaster/task-api/pkg/security"
	"time"
)

// Raw tokens are 64 hex chars, anything far off that can't match
const maxResetTokenLength = 128

// ResetTokens manages single-use password reset tokens. Only a digest of the
// token is stored, the raw value leaves the process once.
type ResetTokens struct {
	users UserStore
	ttl   time.Duration
	now   Clock
}

func NewResetTokens(users UserStore, ttl time.Duration, now Clock) *ResetTokens {
	return &ResetTokens{users: users, ttl: ttl, now: now}
}

// Issue creates a token for u, replacing any earlier one
func (r *ResetTokens) Issue(ctx context.Context, u *model.User) (string, error) {
	raw, err := security.NewResetToken()
	if err != nil {
		return "", internalErr("generate reset token", err)
	}

	digest := security.DigestToken(raw)
	expiry := r.now().Add(r.ttl)

	err = r.users.SetResetToken(ctx, u.ID, digest, expiry)
	if err != nil {
		return "", internalErr("store reset token", err)
	}

	u.ResetTokenHash = &digest
	u.ResetTokenExpiry = &expiry
	return raw, nil
}

// Validate returns the owner of raw. Unknown and expired tokens fail the same way.
func (r *ResetTokens) Validate(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" || len(raw) > maxResetTokenLength {
		return nil, ErrInvalidOrExpiredToken
	}

	u, err := r.users.FindByResetToken(ctx, security.DigestToken(raw), r.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidOrExpiredToken
	}

	if err != nil {
		return nil, internalErr("find reset token", err)
	}

	return u, nil
}

// Consume swaps in newHash and clears the token in one conditional update.
// When two requests race with the same token only one of them gets through.
func (r *ResetTokens) Consume(ctx context.Context, u *model.User, raw, newHash string) error {
	ok, err := r.users.ConsumeResetToken(ctx, u.ID, security.DigestToken(raw), newHash, r.now())
	if err != nil {
		return internalErr("consume reset token", err)
	}

	if !ok {
		return ErrInvalidOrExpiredToken
	}

	u.PasswordHash = newHash
	u.PasswordVersion++
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	u.FailedLoginAttempts = 0
	u.LockUntil = nil

	return nil
}
