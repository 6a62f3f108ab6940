package config

import (
	"io"
	"os"
	"testing"
	"time"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDefaults(t *testing.T) {
	t.Helper()

	v.Reset()
	t.Cleanup(v.Reset)

	SetDefaults()
	v.Set("jwt.secret", "0123456789abcdef0123456789abcdef")
}

func TestValidateDefaults(t *testing.T) {
	withDefaults(t)

	require.NoError(t, Validate())

	s := Load()
	assert.Equal(t, "dev", s.Env)
	assert.Equal(t, "sqlite", s.DBDriver)
	assert.Equal(t, "bcrypt", s.Hasher)
	assert.Equal(t, 12, s.BcryptCost)
	assert.Equal(t, 5, s.LockoutThreshold)
	assert.Equal(t, 30*time.Minute, s.LockoutDuration)
	assert.Equal(t, time.Hour, s.ResetTTL)
	assert.Equal(t, 7*24*time.Hour, s.JWTTTL)
	assert.False(t, s.ExposeResetToken)
	assert.False(t, s.Production())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"log level", "app.log_level", "loud"},
		{"env", "app.env", "staging"},
		{"port", "host.port", 0},
		{"driver", "db.driver", "mysql"},
		{"short secret", "jwt.secret", "short"},
		{"hasher", "security.hasher", "md5"},
		{"weak bcrypt cost", "security.bcrypt_cost", 10},
		{"lockout threshold", "security.lockout.threshold", 0},
		{"lockout duration", "security.lockout.duration", time.Duration(0)},
		{"reset ttl", "security.reset.ttl", -time.Minute},
		{"rate limit", "security.rate_limit", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withDefaults(t)
			v.Set(tt.key, tt.val)

			assert.Error(t, Validate())
		})
	}
}

func TestValidateMissingSecret(t *testing.T) {
	withDefaults(t)
	v.Set("jwt.secret", "")

	assert.ErrorIs(t, Validate(), ErrNoJWTSecret)
}

func TestExposeTokenRefusedInProd(t *testing.T) {
	withDefaults(t)
	v.Set("security.reset.expose_token", true)

	require.NoError(t, Validate())

	v.Set("app.env", "prod")
	assert.Error(t, Validate())
}

// stdout runs fn and returns what it printed. Validate runs before the
// logger exists, so its warnings go straight to stdout.
func stdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = orig })

	fn()

	os.Stdout = orig
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(out)
}

func TestExposeTokenWarnsWithoutLogger(t *testing.T) {
	withDefaults(t)
	v.Set("security.reset.expose_token", true)

	out := stdout(t, func() { require.NoError(t, Validate()) })
	assert.Contains(t, out, "Reset tokens will be returned in API responses")

	v.Set("security.reset.expose_token", false)

	out = stdout(t, func() { require.NoError(t, Validate()) })
	assert.NotContains(t, out, "Reset tokens")
}

func TestLoadSplitsCORS(t *testing.T) {
	withDefaults(t)
	v.Set("host.cors", "http://a.test,http://b.test")

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, Load().CORS)
}
