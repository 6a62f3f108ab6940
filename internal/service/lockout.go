package service

import (
	"taskmaster/task-api/internal/model"
	"time"
)

// LockoutPolicy decides when repeated login failures lock an account.
//
// A lock that has run out is treated as if the counter were 0, so the first
// failure after expiry counts as attempt 1 instead of relocking immediately.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// Locked reports whether s is inside an active lock window at now and how
// much of it is left
func (p LockoutPolicy) Locked(s model.LockoutState, now time.Time) (bool, time.Duration) {
	if s.LockUntil == nil || !now.Before(*s.LockUntil) {
		return false, 0
	}

	return true, s.LockUntil.Sub(now)
}

// Fail returns the state after one more failed attempt. An active lock is
// returned unchanged, repeated attempts never extend it.
func (p LockoutPolicy) Fail(s model.LockoutState, now time.Time) model.LockoutState {
	if locked, _ := p.Locked(s, now); locked {
		return s
	}

	attempts := s.FailedAttempts
	if s.LockUntil != nil {
		attempts = 0
	}

	attempts++
	if attempts >= p.Threshold {
		until := now.Add(p.Duration)
		return model.LockoutState{FailedAttempts: attempts, LockUntil: &until}
	}

	return model.LockoutState{FailedAttempts: attempts}
}

// Succeed returns the state after a successful login
func (p LockoutPolicy) Succeed() model.LockoutState {
	return model.LockoutState{}
}
