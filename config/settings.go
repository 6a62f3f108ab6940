package config

import (
	"strings"
	"time"

	v "github.com/spf13/viper"
)

// Settings is a typed snapshot of the loaded configuration. Components receive
// the parts they need from it instead of reading viper themselves.
type Settings struct {
	Env      string
	LogLevel string

	Port int
	CORS []string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	Hasher         string
	BcryptCost     int
	HashWorkers    int
	PasswordMinLen int

	LockoutThreshold int
	LockoutDuration  time.Duration

	ResetTTL         time.Duration
	ExposeResetToken bool

	RateLimit int
	BodyLimit int64

	ResetTokenCleanup time.Duration

	TurnstileEnabled bool
	TurnstileSecret  string
}

// Load reads the current viper state into Settings
func Load() Settings {
	cors := v.GetStringSlice("host.cors")
	// Env values come in as a single comma separated string
	if len(cors) == 1 && strings.Contains(cors[0], ",") {
		cors = strings.Split(cors[0], ",")
	}

	return Settings{
		Env:      v.GetString("app.env"),
		LogLevel: v.GetString("app.log_level"),

		Port: v.GetInt("host.port"),
		CORS: cors,

		DBDriver: v.GetString("db.driver"),
		DBDSN:    v.GetString("db.dsn"),

		JWTSecret: v.GetString("jwt.secret"),
		JWTTTL:    v.GetDuration("jwt.ttl"),

		Hasher:         v.GetString("security.hasher"),
		BcryptCost:     v.GetInt("security.bcrypt_cost"),
		HashWorkers:    v.GetInt("security.hash_workers"),
		PasswordMinLen: v.GetInt("security.password.min_length"),

		LockoutThreshold: v.GetInt("security.lockout.threshold"),
		LockoutDuration:  v.GetDuration("security.lockout.duration"),

		ResetTTL:         v.GetDuration("security.reset.ttl"),
		ExposeResetToken: v.GetBool("security.reset.expose_token"),

		RateLimit: v.GetInt("security.rate_limit"),
		BodyLimit: v.GetInt64("security.body_limit"),

		ResetTokenCleanup: v.GetDuration("cleanup.reset_tokens"),

		TurnstileEnabled: v.GetBool("turnstile.enabled"),
		TurnstileSecret:  v.GetString("turnstile.secret_token"),
	}
}

// Production reports whether the app runs with app.env = prod
func (s Settings) Production() bool {
	return s.Env == "prod"
}
