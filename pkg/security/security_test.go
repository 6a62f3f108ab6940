package security

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastArgon() *ArgonHash {
	return &ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestHashers(t *testing.T) {
	hashers := []Hasher{&Bcrypt{Cost: bcrypt.MinCost}, fastArgon()}

	for _, h := range hashers {
		t.Run(h.Name(), func(t *testing.T) {
			encoded, err := h.GenerateFromPassword("Passw0rd!")
			require.NoError(t, err)

			assert.NotEqual(t, "Passw0rd!", encoded)
			assert.True(t, h.Handles(encoded))

			ok, err := h.VerifyPasswd("Passw0rd!", encoded)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.VerifyPasswd("wrong-password", encoded)
			require.NoError(t, err)
			assert.False(t, ok)

			again, err := h.GenerateFromPassword("Passw0rd!")
			require.NoError(t, err)
			assert.NotEqual(t, encoded, again, "salts must differ")
		})
	}
}

func TestNewBcryptDefaultCost(t *testing.T) {
	b := NewBcrypt(12)
	encoded, err := b.GenerateFromPassword("Passw0rd!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestArgonRejectsMalformed(t *testing.T) {
	_, err := fastArgon().VerifyPasswd("x", "$argon2id$nope")
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestHashPoolVerifiesAcrossAlgorithms(t *testing.T) {
	bc := &Bcrypt{Cost: bcrypt.MinCost}
	ar := fastArgon()

	old, err := bc.GenerateFromPassword("Passw0rd!")
	require.NoError(t, err)

	pool := NewHashPool(2, ar, bc)
	ctx := context.Background()

	fresh, err := pool.Hash(ctx, "Passw0rd!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fresh, argonPrefix))

	for _, encoded := range []string{old, fresh} {
		ok, err := pool.Verify(ctx, "Passw0rd!", encoded)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, err = pool.Verify(ctx, "Passw0rd!", "plaintext")
	assert.ErrorIs(t, err, ErrUnknownHash)
}

func TestHashPoolHonoursCancel(t *testing.T) {
	pool := NewHashPool(1, &Bcrypt{Cost: bcrypt.MinCost})

	// Hold the only slot
	require.NoError(t, pool.sem.Acquire(context.Background(), 1))
	defer pool.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Hash(ctx, "Passw0rd!")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret-test-secret-test-secret", 7*24*time.Hour, func() time.Time { return now })

	raw, exp, err := issuer.Issue("user-1", 3)
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), exp)

	claims, err := issuer.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, 3, claims.PasswordVersion)
}

func TestTokenIssuerRejects(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer := NewTokenIssuer("test-secret-test-secret-test-secret", time.Hour, clock)

	valid, _, err := issuer.Issue("user-1", 1)
	require.NoError(t, err)

	other := NewTokenIssuer("another-secret-another-secret-xx", time.Hour, clock)
	forged, _, err := other.Issue("user-1", 1)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("test-secret-test-secret-test-secret"))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	flip := "A"
	if parts[2][0] == 'A' {
		flip = "B"
	}
	tampered := parts[0] + "." + parts[1] + "." + flip + parts[2][1:]

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", forged},
		{"alg none", none},
		{"no expiry", noExp},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Decode(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("expired", func(t *testing.T) {
		now = now.Add(time.Hour)
		_, err := issuer.Decode(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestResetToken(t *testing.T) {
	a, err := NewResetToken()
	require.NoError(t, err)
	b, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	assert.Equal(t, DigestToken(a), DigestToken(a))
	assert.NotEqual(t, a, DigestToken(a))
	assert.Len(t, DigestToken(a), 64)
}
