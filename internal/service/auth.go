// Package service holds the account security logic: signup, login with
// lockout, password changes and the reset token flow.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"taskmaster/task-api/internal/model"
	"taskmaster/task-api/internal/store"
	"taskmaster/task-api/pkg/security"
	"taskmaster/task-api/pkg/validators"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength  = 16
)

// Clock returns the current time. Everything time sensitive goes through it.
type Clock func() time.Time

// UTC is the production clock
func UTC() time.Time {
	return time.Now().UTC()
}

// UserStore is the credential store the service persists users with
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error)
	RecordFailure(ctx context.Context, id string, now time.Time) (bool, error)
	LockIfOverThreshold(ctx context.Context, id string, threshold int, until time.Time) (bool, error)
	RecordSuccess(ctx context.Context, id string, version int, now time.Time) (bool, error)
	ReplacePassword(ctx context.Context, id string, version int, hash string) (bool, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]any) error
	SetResetToken(ctx context.Context, id, digest string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, id, digest, hash string, now time.Time) (bool, error)
	SoftDelete(ctx context.Context, id string, now time.Time) error
}

// PasswordHasher is satisfied by security.HashPool
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, encoded string) (bool, error)
}

type Options struct {
	Lockout  LockoutPolicy
	Password validators.PasswordPolicy
	ResetTTL time.Duration
	// Return raw reset tokens to the caller instead of only logging the request.
	// Development only, config refuses it in prod.
	ExposeResetToken bool
	Now              Clock
}

type Auth struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	resets   *ResetTokens
	lockout  LockoutPolicy
	password validators.PasswordPolicy
	expose   bool
	now      Clock

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(users UserStore, hasher PasswordHasher, tokens TokenIssuer, o Options) *Auth {
	if o.Now == nil {
		o.Now = UTC
	}

	return &Auth{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		resets:   NewResetTokens(users, o.ResetTTL, o.Now),
		lockout:  o.Lockout,
		password: o.Password,
		expose:   o.ExposeResetToken,
		now:      o.Now,
	}
}

// Session is what a client gets back after authenticating
type Session struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      *model.PublicUser `json:"user"`
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileInput struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
	Theme  *string `json:"theme"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetRequest is the outcome of a forgot password call. Token is only filled
// when token exposure is enabled.
type ResetRequest struct {
	Token string `json:"resetToken,omitempty"`
}

func (a *Auth) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := validators.NormalizeEmail(in.Email)

	if err := validators.NameValidator(name); err != nil {
		return nil, invalid(err)
	}

	if err := validators.EmailValidator(email); err != nil {
		return nil, invalid(err)
	}

	if err := a.password.Validate(in.Password); err != nil {
		return nil, invalid(err)
	}

	_, err := a.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}

	if !errors.Is(err, store.ErrNotFound) {
		return nil, internalErr("check email", err)
	}

	hash, err := a.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, internalErr("hash password", err)
	}

	id, err := gonanoid.Generate(idCharset, idLength)
	if err != nil {
		return nil, internalErr("generate user id", err)
	}

	u := &model.User{
		ID:              id,
		Email:           email,
		Name:            name,
		PasswordHash:    hash,
		PasswordVersion: 1,
		Role:            model.RoleUser,
		Theme:           "system",
	}

	// The unique index settles races that got past the lookup above
	err = a.users.Create(ctx, u)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}

	if err != nil {
		return nil, internalErr("create user", err)
	}

	return a.issue(u)
}

func (a *Auth) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := validators.NormalizeEmail(in.Email)

	if email == "" {
		return nil, invalid(validators.ErrEmailEmpty)
	}

	if in.Password == "" {
		return nil, invalid(validators.ErrPasswordEmpty)
	}

	u, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		a.burnVerify(ctx, in.Password)
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, internalErr("find user", err)
	}

	now := a.now()

	// Locked accounts are turned away before the password is even looked at
	if locked, remaining := a.lockout.Locked(u.Lockout(), now); locked {
		return nil, &AccountLockedError{Until: *u.LockUntil, Remaining: remaining}
	}

	ok, err := a.hasher.Verify(ctx, in.Password, u.PasswordHash)
	if err != nil {
		return nil, internalErr("verify password", err)
	}

	u, err = a.recordAttempt(ctx, u, ok, now)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return a.issue(u)
}

// recordAttempt persists the lockout transition for one login attempt. Every
// write is a single conditional update, when one matches nothing the account
// got locked (or its password changed) since it was read.
func (a *Auth) recordAttempt(ctx context.Context, u *model.User, success bool, now time.Time) (*model.User, error) {
	if success {
		ok, err := a.users.RecordSuccess(ctx, u.ID, u.PasswordVersion, now)
		if err != nil {
			return nil, internalErr("record login", err)
		}

		if !ok {
			return nil, a.lostRace(ctx, u.ID, now)
		}

		u.FailedLoginAttempts = 0
		u.LockUntil = nil
		u.LastLogin = &now

		return u, nil
	}

	ok, err := a.users.RecordFailure(ctx, u.ID, now)
	if err != nil {
		return nil, internalErr("record failed login", err)
	}

	if !ok {
		return nil, a.lostRace(ctx, u.ID, now)
	}

	until := now.Add(a.lockout.Duration)
	locked, err := a.users.LockIfOverThreshold(ctx, u.ID, a.lockout.Threshold, until)
	if err != nil {
		return nil, internalErr("lock account", err)
	}

	if locked {
		zap.L().Warn("Account locked after repeated failed logins",
			zap.String("userID", u.ID),
			zap.Time("until", until))
	}

	return u, nil
}

// lostRace reports why a lockout write matched no row
func (a *Auth) lostRace(ctx context.Context, id string, now time.Time) error {
	u, err := a.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCredentials
	}

	if err != nil {
		return internalErr("reload user", err)
	}

	if locked, remaining := a.lockout.Locked(u.Lockout(), now); locked {
		return &AccountLockedError{Until: *u.LockUntil, Remaining: remaining}
	}

	// The password changed while the old one was being verified
	return ErrInvalidCredentials
}

// burnVerify spends about as long as a real password check, so unknown
// emails can't be told apart by response time
func (a *Auth) burnVerify(ctx context.Context, plain string) {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash(context.Background(), "not-a-real-password-0")
	})

	if a.dummyHash != "" {
		a.hasher.Verify(ctx, plain, a.dummyHash)
	}
}

func (a *Auth) Profile(ctx context.Context, userID string) (*model.PublicUser, error) {
	u, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, internalErr("find user", err)
	}

	return u.Public(), nil
}

// UpdateProfile changes display fields only, sessions stay valid
func (a *Auth) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.PublicUser, error) {
	name := strings.TrimSpace(in.Name)
	if err := validators.NameValidator(name); err != nil {
		return nil, invalid(err)
	}

	fields := map[string]any{"name": name}

	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		if err := validators.AvatarValidator(avatar); err != nil {
			return nil, invalid(err)
		}

		fields["avatar"] = avatar
	}

	if in.Theme != nil {
		if err := validators.ThemeValidator(*in.Theme); err != nil {
			return nil, invalid(err)
		}

		fields["theme"] = *in.Theme
	}

	err := a.users.UpdateProfile(ctx, userID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, internalErr("update profile", err)
	}

	return a.Profile(ctx, userID)
}

// ChangePassword replaces the password and bumps the password version, which
// invalidates every session issued before. The returned session is bound to the
// new version so the caller stays logged in.
func (a *Auth) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) (*Session, error) {
	if in.CurrentPassword == "" {
		return nil, invalid(validators.ErrPasswordEmpty)
	}

	if err := a.password.Validate(in.NewPassword); err != nil {
		return nil, invalid(err)
	}

	if in.NewPassword == in.CurrentPassword {
		return nil, invalid(ErrPasswordUnchanged)
	}

	u, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, internalErr("find user", err)
	}

	ok, err := a.hasher.Verify(ctx, in.CurrentPassword, u.PasswordHash)
	if err != nil {
		return nil, internalErr("verify password", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	hash, err := a.hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		return nil, internalErr("hash password", err)
	}

	swapped, err := a.users.ReplacePassword(ctx, u.ID, u.PasswordVersion, hash)
	if err != nil {
		return nil, internalErr("replace password", err)
	}

	// Someone changed the password since it was verified
	if !swapped {
		return nil, ErrInvalidCredentials
	}

	u.PasswordHash = hash
	u.PasswordVersion++

	return a.issue(u)
}

// ForgotPassword answers the same way whether or not the email belongs to
// an account
func (a *Auth) ForgotPassword(ctx context.Context, email string) (*ResetRequest, error) {
	email = validators.NormalizeEmail(email)
	if err := validators.EmailValidator(email); err != nil {
		return nil, invalid(err)
	}

	u, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Debug("Password reset requested for unknown email")
		return a.resetRequest(a.decoyToken())
	}

	if err != nil {
		return nil, internalErr("find user", err)
	}

	raw, err := a.resets.Issue(ctx, u)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Password reset requested", zap.String("userID", u.ID), zap.Timep("expiresAt", u.ResetTokenExpiry))

	return a.resetRequest(raw)
}

func (a *Auth) resetRequest(raw string) (*ResetRequest, error) {
	if !a.expose {
		return &ResetRequest{}, nil
	}

	return &ResetRequest{Token: raw}, nil
}

// decoyToken has the same shape as a real token so exposed responses don't
// reveal whether the account exists
func (a *Auth) decoyToken() string {
	if !a.expose {
		return ""
	}

	raw, err := security.NewResetToken()
	if err != nil {
		return ""
	}

	return raw
}

func (a *Auth) ResetPassword(ctx context.Context, raw, newPassword string) error {
	u, err := a.resets.Validate(ctx, raw)
	if err != nil {
		return err
	}

	if err := a.password.Validate(newPassword); err != nil {
		return invalid(err)
	}

	hash, err := a.hasher.Hash(ctx, newPassword)
	if err != nil {
		return internalErr("hash password", err)
	}

	return a.resets.Consume(ctx, u, raw, hash)
}

// Logout has nothing to revoke, the client drops its token
func (a *Auth) Logout(ctx context.Context) error {
	if id, ok := IdentityFrom(ctx); ok {
		zap.L().Debug("User logged out", zap.String("userID", id.UserID))
	}

	return nil
}

// DeleteAccount soft deletes the user after checking their password. Their
// sessions stop working because the user can no longer be found.
func (a *Auth) DeleteAccount(ctx context.Context, userID, password string) error {
	if password == "" {
		return invalid(validators.ErrPasswordEmpty)
	}

	u, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return internalErr("find user", err)
	}

	ok, err := a.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return internalErr("verify password", err)
	}

	if !ok {
		return ErrInvalidCredentials
	}

	err = a.users.SoftDelete(ctx, u.ID, a.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return internalErr("delete user", err)
	}

	return nil
}

func (a *Auth) issue(u *model.User) (*Session, error) {
	token, exp, err := a.tokens.Issue(u.ID, u.PasswordVersion)
	if err != nil {
		return nil, internalErr("issue session token", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: exp,
		User:      u.Public(),
	}, nil
}
