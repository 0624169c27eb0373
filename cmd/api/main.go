package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"crazy-eights-server/internal/server"
)

func gracefulShutdown(customServer *server.Server, httpServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logrus.Info("Shutdown signal received, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close player connections first so clients see a clean goodbye.
	if err := customServer.Shutdown(ctx); err != nil && err != context.Canceled {
		logrus.WithError(err).Error("error during connection shutdown")
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("HTTP server forced to shutdown")
	}

	done <- true
}

func main() {
	customServer, httpServer := server.NewServer()

	done := make(chan bool, 1)
	go gracefulShutdown(customServer, httpServer, done)

	logrus.WithField("addr", httpServer.Addr).Info("listening")
	err := httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("http server error")
	}

	<-done
	logrus.Info("Graceful shutdown complete.")
}
