// Package app wires the HTTP router and its dependencies together
package app

import (
	"context"
	"fmt"
	"taskmaster/task-api/app/auth"
	"taskmaster/task-api/app/root"
	"taskmaster/task-api/app/task"
	"taskmaster/task-api/config"
	"taskmaster/task-api/db"
	"taskmaster/task-api/internal"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/internal/store"
	"taskmaster/task-api/pkg/middleware"
	"taskmaster/task-api/pkg/security"
	"taskmaster/task-api/pkg/validators"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var memStore = persist.NewMemoryStore(time.Minute)

type App struct {
	Router *gin.Engine
	Deps   *internal.Deps

	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func New(s config.Settings) (*App, error) {
	conn, err := db.New(s.DBDriver, s.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	users := store.NewUsers(conn)
	tokens := security.NewTokenIssuer(s.JWTSecret, s.JWTTTL, service.UTC)

	d := &internal.Deps{
		DB:       conn,
		Settings: s,
		Users:    users,
		Sessions: service.NewSessions(users, tokens),
		Tasks:    service.NewTasks(store.NewTasks(conn)),
		Auth: service.NewAuth(users, newHashPool(s), tokens, service.Options{
			Lockout: service.LockoutPolicy{
				Threshold: s.LockoutThreshold,
				Duration:  s.LockoutDuration,
			},
			Password:         validators.PasswordPolicy{MinLength: s.PasswordMinLen},
			ResetTTL:         s.ResetTTL,
			ExposeResetToken: s.ExposeResetToken,
			Now:              service.UTC,
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Deps:   d,
		cancel: cancel,
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     s.CORS,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	session := middleware.NewSessionMiddleware(d.Sessions)
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled: s.TurnstileEnabled,
		Secret:  s.TurnstileSecret,
	})
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: s.RateLimit,
	})
	a.wg.Go(func() { limiter.Cleanup(ctx) })

	// GET /				-> Banner, mostly hit by uptime checks
	router.GET("/", cacheFor(60), root.Banner)

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// GET /api/private		-> Checks if a session is still accepted
		m.GET("/private", session, root.Private)
	}

	au := m.Group("/auth", limiter.Middleware(), middleware.BodySizeLimiter(s.BodyLimit))
	{
		// POST /api/auth/signup		-> Registers a new user and logs them in
		au.POST("/signup", turnstile, func(c *gin.Context) { auth.Signup(c, d) })

		// POST /api/auth/login		-> Logs in a user, subject to lockout
		au.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// GET /api/auth/profile		-> Returns the caller's profile
		au.GET("/profile", session, func(c *gin.Context) { auth.Profile(c, d) })

		// PUT /api/auth/update		-> Updates name, avatar and theme
		au.PUT("/update", session, func(c *gin.Context) { auth.UpdateProfile(c, d) })

		// POST /api/auth/change-password	-> Replaces the password, old sessions stop working
		au.POST("/change-password", session, func(c *gin.Context) { auth.ChangePassword(c, d) })

		// POST /api/auth/forgot-password	-> Starts password recovery
		au.POST("/forgot-password", turnstile, func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// POST /api/auth/reset-password/:token	-> Sets a new password with a reset token
		au.POST("/reset-password/:token", func(c *gin.Context) { auth.ResetPassword(c, d) })

		// POST /api/auth/logout		-> Acknowledges a logout
		au.POST("/logout", session, func(c *gin.Context) { auth.Logout(c, d) })

		// DELETE /api/auth/account		-> Deletes the caller's account
		au.DELETE("/account", session, func(c *gin.Context) { auth.DeleteAccount(c, d) })
	}

	t := m.Group("/task", session, middleware.BodySizeLimiter(s.BodyLimit))
	{
		// POST /api/task/add		-> Creates a task
		t.POST("/add", func(c *gin.Context) { task.Add(c, d) })

		// GET /api/task/my		-> Lists the caller's tasks, newest first
		t.GET("/my", func(c *gin.Context) { task.Fetch(c, d) })

		// PUT /api/task/update/:id	-> Updates a task
		t.PUT("/update/:id", func(c *gin.Context) { task.Update(c, d) })

		// DELETE /api/task/delete/:id	-> Deletes a task
		t.DELETE("/delete/:id", func(c *gin.Context) { task.Delete(c, d) })
	}

	wait := service.ResetTokenCleanup(ctx, s.ResetTokenCleanup, users, service.UTC)
	a.wg.Go(wait)

	return a, nil
}

// Close stops the background jobs and closes the database
func (a *App) Close() error {
	a.cancel()
	a.wg.Wait()

	return db.Close(a.Deps.DB)
}

func newHashPool(s config.Settings) *security.HashPool {
	bcrypt := security.NewBcrypt(s.BcryptCost)
	argon := security.NewArgon()

	// New hashes use the configured algorithm, older ones keep verifying
	if s.Hasher == "argon2id" {
		return security.NewHashPool(s.HashWorkers, argon, bcrypt)
	}

	return security.NewHashPool(s.HashWorkers, bcrypt, argon)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(memStore, time.Second*time.Duration(sec))
}
