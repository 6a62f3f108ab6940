package service

import (
	"testing"
	"time"

	"taskmaster/task-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutPolicy(t *testing.T) {
	p := LockoutPolicy{Threshold: 3, Duration: 10 * time.Minute}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	st := model.LockoutState{}

	st = p.Fail(st, now)
	assert.Equal(t, 1, st.FailedAttempts)
	assert.Nil(t, st.LockUntil)

	st = p.Fail(st, now)
	assert.Equal(t, 2, st.FailedAttempts)
	assert.Nil(t, st.LockUntil)

	st = p.Fail(st, now)
	assert.Equal(t, 3, st.FailedAttempts)
	require.NotNil(t, st.LockUntil)
	assert.True(t, st.LockUntil.Equal(now.Add(10*time.Minute)))

	locked, remaining := p.Locked(st, now.Add(4*time.Minute))
	assert.True(t, locked)
	assert.Equal(t, 6*time.Minute, remaining)

	// Failing while locked changes nothing
	same := p.Fail(st, now.Add(4*time.Minute))
	assert.Equal(t, st, same)

	locked, _ = p.Locked(st, now.Add(10*time.Minute))
	assert.False(t, locked, "lock ends exactly at LockUntil")

	after := p.Fail(st, now.Add(11*time.Minute))
	assert.Equal(t, 1, after.FailedAttempts)
	assert.Nil(t, after.LockUntil)

	assert.Equal(t, model.LockoutState{}, p.Succeed())
}

func TestLockoutThresholdOne(t *testing.T) {
	p := LockoutPolicy{Threshold: 1, Duration: time.Minute}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	st := p.Fail(model.LockoutState{}, now)
	require.NotNil(t, st.LockUntil)

	// After expiry the first failure locks again straight away
	st = p.Fail(st, now.Add(2*time.Minute))
	require.NotNil(t, st.LockUntil)
	assert.True(t, st.LockUntil.Equal(now.Add(3*time.Minute)))
	assert.Equal(t, 1, st.FailedAttempts)
}
