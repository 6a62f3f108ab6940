// Package store wraps every database query behind small typed methods
package store

import (
	"context"
	"errors"
	"fmt"
	"taskmaster/task-api/internal/model"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Users is the credential store. Methods that change lockout or reset state are
// conditional updates so concurrent requests for the same user can't both win.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts u. The email must already be normalized.
func (s *Users) Create(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}

	return err
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *Users) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

// FindByResetToken looks up the owner of a still valid reset token digest
func (s *Users) FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error) {
	return s.first(ctx, "reset_token_hash = ? AND reset_token_expiry > ?", digest, now)
}

func (s *Users) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Save persists every field of u
func (s *Users) Save(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Save(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}

	return err
}

// RecordFailure counts one failed login in a single conditional update, so
// concurrent failures never overwrite each other. A lock that has run out is
// cleared and the count starts over at 1. Returns false when the account is
// locked at now and nothing was written.
func (s *Users) RecordFailure(ctx context.Context, id string, now time.Time) (bool, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND (lock_until IS NULL OR lock_until <= ?)", id, now).
		Updates(map[string]any{
			"failed_login_attempts": gorm.Expr("CASE WHEN lock_until IS NULL THEN failed_login_attempts + 1 ELSE 1 END"),
			"lock_until":            nil,
			"revision":              gorm.Expr("revision + 1"),
		})
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

// LockIfOverThreshold starts a lock once the failed counter reached threshold.
// Only an unlocked row is touched, so an active lock is never extended.
func (s *Users) LockIfOverThreshold(ctx context.Context, id string, threshold int, until time.Time) (bool, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND lock_until IS NULL AND failed_login_attempts >= ?", id, threshold).
		Updates(map[string]any{
			"lock_until": until,
			"revision":   gorm.Expr("revision + 1"),
		})
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

// RecordSuccess clears the lockout state and stamps the login time. It only
// applies while the account is unlocked at now and the password is still the
// version the caller verified against.
func (s *Users) RecordSuccess(ctx context.Context, id string, version int, now time.Time) (bool, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND password_version = ? AND (lock_until IS NULL OR lock_until <= ?)", id, version, now).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"lock_until":            nil,
			"last_login":            now,
			"revision":              gorm.Expr("revision + 1"),
		})
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

// ReplacePassword sets a new hash and bumps the password version, as long as the
// version is still the one the caller verified against
func (s *Users) ReplacePassword(ctx context.Context, id string, version int, hash string) (bool, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND password_version = ?", id, version).
		Updates(map[string]any{
			"password_hash":    hash,
			"password_version": gorm.Expr("password_version + 1"),
		})
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

// UpdateProfile writes the given columns. Unknown users yield ErrNotFound.
func (s *Users) UpdateProfile(ctx context.Context, id string, fields map[string]any) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetResetToken stores a reset token digest, replacing any earlier one
func (s *Users) SetResetToken(ctx context.Context, id, digest string, expiry time.Time) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_token_hash":   digest,
			"reset_token_expiry": expiry,
		})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ConsumeResetToken replaces the password, bumps the version, clears the token
// and any lockout in a single statement that only matches while the token is
// still stored and unexpired. Returns false if someone else got there first.
func (s *Users) ConsumeResetToken(ctx context.Context, id, digest, hash string, now time.Time) (bool, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND reset_token_hash = ? AND reset_token_expiry > ?", id, digest, now).
		Updates(map[string]any{
			"password_hash":         hash,
			"password_version":      gorm.Expr("password_version + 1"),
			"reset_token_hash":      nil,
			"reset_token_expiry":    nil,
			"failed_login_attempts": 0,
			"lock_until":            nil,
			"revision":              gorm.Expr("revision + 1"),
		})
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

// ClearExpiredResetTokens drops reset tokens that can no longer be used
func (s *Users) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?", now).
		Updates(map[string]any{
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		})

	return r.RowsAffected, r.Error
}

// SoftDelete hides the user and frees up their email address for a new signup
func (s *Users) SoftDelete(ctx context.Context, id string, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}

		err := tx.Model(&u).Updates(map[string]any{
			"email":              fmt.Sprintf("%s.deleted.%d", u.Email, now.Unix()),
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&u).Error
	})
}
