package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taskmaster/task-api/app"
	"taskmaster/task-api/config"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	s := config.Load()

	if err := config.SetupLogger(s.LogLevel, s.Production()); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	a, err := app.New(s)
	if err != nil {
		zap.L().Fatal("Failed to set up the app", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.L().Info("Server starting", zap.Int("port", s.Port), zap.String("env", s.Env))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}

	if err := a.Close(); err != nil {
		zap.L().Error("Failed to close the app", zap.Error(err))
	}
}
