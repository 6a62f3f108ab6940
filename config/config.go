// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

const minBcryptCost = 12

var (
	configDir = pflag.String("config-dir", ".", "Directory containing config.toml")

	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validEnvs      = []string{"dev", "prod"}
	validDrivers   = []string{"sqlite", "postgres"}
	validHashers   = []string{"bcrypt", "argon2id"}
)

// ErrNoJWTSecret is returned by Validate when jwt.secret is empty
var ErrNoJWTSecret = errors.New("jwt.secret is not set")

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configDir)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.env", "app_env")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.ttl", "jwt_ttl")

	v.BindEnv("security.hasher", "security_hasher")
	v.BindEnv("security.bcrypt_cost", "security_bcrypt_cost")
	v.BindEnv("security.hash_workers", "security_hash_workers")
	v.BindEnv("security.password.min_length", "security_password_min_length")
	v.BindEnv("security.lockout.threshold", "security_lockout_threshold")
	v.BindEnv("security.lockout.duration", "security_lockout_duration")
	v.BindEnv("security.reset.ttl", "security_reset_ttl")
	v.BindEnv("security.reset.expose_token", "security_reset_expose_token")
	v.BindEnv("security.rate_limit", "security_rate_limit")
	v.BindEnv("security.body_limit", "security_body_limit")

	v.BindEnv("cleanup.reset_tokens", "cleanup_reset_tokens")

	v.BindEnv("turnstile.enabled", "turnstile_enabled")
	v.BindEnv("turnstile.secret_token", "turnstile_secret_token")

	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using defaults and environment variables")
	}

	err := Validate()
	if errors.Is(err, ErrNoJWTSecret) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return err
}

// SetDefaults registers the default value of every known key
func SetDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "dev")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.ttl", 7*24*time.Hour)

	v.SetDefault("security.hasher", "bcrypt")
	v.SetDefault("security.bcrypt_cost", minBcryptCost)
	v.SetDefault("security.hash_workers", runtime.NumCPU())
	v.SetDefault("security.password.min_length", 8)
	v.SetDefault("security.lockout.threshold", 5)
	v.SetDefault("security.lockout.duration", 30*time.Minute)
	v.SetDefault("security.reset.ttl", time.Hour)
	v.SetDefault("security.reset.expose_token", false)
	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.body_limit", 1<<20)

	v.SetDefault("cleanup.reset_tokens", time.Hour)

	v.SetDefault("turnstile.enabled", false)
}

// Validate checks the values currently loaded into viper
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if !slices.Contains(validEnvs, v.GetString("app.env")) {
		return errors.New("app.env must be either dev or prod")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return ErrNoJWTSecret
	}

	if len(v.GetString("jwt.secret")) < 32 {
		return errors.New("jwt.secret must be at least 32 characters long")
	}

	if v.GetDuration("jwt.ttl") <= 0 {
		return errors.New("jwt.ttl must be bigger than 0")
	}

	if !slices.Contains(validHashers, v.GetString("security.hasher")) {
		return errors.New("invalid password hasher provided")
	}

	if v.GetInt("security.bcrypt_cost") < minBcryptCost {
		return fmt.Errorf("security.bcrypt_cost must be at least %d", minBcryptCost)
	}

	if v.GetInt("security.hash_workers") <= 0 {
		return errors.New("security.hash_workers must be bigger than 0")
	}

	if v.GetInt("security.password.min_length") < 6 {
		return errors.New("security.password.min_length must be at least 6")
	}

	if v.GetInt("security.lockout.threshold") <= 0 {
		return errors.New("security.lockout.threshold must be bigger than 0")
	}

	if v.GetDuration("security.lockout.duration") <= 0 {
		return errors.New("security.lockout.duration must be bigger than 0")
	}

	if v.GetDuration("security.reset.ttl") <= 0 {
		return errors.New("security.reset.ttl must be bigger than 0")
	}

	if v.GetBool("security.reset.expose_token") {
		if v.GetString("app.env") == "prod" {
			return errors.New("security.reset.expose_token can't be enabled in prod")
		}

		fmt.Println("[WARNING]: Reset tokens will be returned in API responses, never enable this outside development")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetInt64("security.body_limit") <= 0 {
		return errors.New("security.body_limit must be bigger than 0")
	}

	if v.GetDuration("cleanup.reset_tokens") <= 0 {
		return errors.New("cleanup.reset_tokens must be bigger than 0")
	}

	if !v.GetBool("turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Signup and password recovery won't be guarded against bots")
	} else {
		if v.GetString("turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}
	}

	return nil
}
