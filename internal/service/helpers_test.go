package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskmaster/task-api/db"
	"taskmaster/task-api/internal/model"
	"taskmaster/task-api/internal/store"
	"taskmaster/task-api/pkg/security"
	"taskmaster/task-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-test-secret-test-secret"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	auth     *Auth
	sessions *Sessions
	tasks    *Tasks
	users    *store.Users
	hasher   *security.HashPool
	clock    *fakeClock
}

func newFixture(t *testing.T, tweak ...func(*Options)) *fixture {
	t.Helper()

	conn, err := db.New("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", gonanoid.Must()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })

	clock := newFakeClock()
	users := store.NewUsers(conn)
	hasher := security.NewHashPool(4, &security.Bcrypt{Cost: bcrypt.MinCost})
	tokens := security.NewTokenIssuer(testSecret, 7*24*time.Hour, clock.Now)

	o := Options{
		Lockout:  LockoutPolicy{Threshold: 5, Duration: 30 * time.Minute},
		Password: validators.PasswordPolicy{MinLength: 8},
		ResetTTL: time.Hour,
		Now:      clock.Now,
	}
	for _, fn := range tweak {
		fn(&o)
	}

	return &fixture{
		auth:     NewAuth(users, hasher, tokens, o),
		sessions: NewSessions(users, tokens),
		tasks:    NewTasks(store.NewTasks(conn)),
		users:    users,
		hasher:   hasher,
		clock:    clock,
	}
}

func exposeTokens(o *Options) {
	o.ExposeResetToken = true
}

func (f *fixture) signup(t *testing.T, name, email, password string) *Session {
	t.Helper()

	s, err := f.auth.Signup(context.Background(), SignupInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)

	return s
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()

	u, err := f.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)

	return u
}

func bearer(token string) string {
	return "Bearer " + token
}
