package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

const defaultPort = 9000

// Server wires the game manager, the connection manager and the rate
// limiter behind one HTTP handler.
type Server struct {
	port              int
	gameManager       *GameManager
	connectionManager *ConnectionManager
	rateLimiter       *RateLimiter
}

func NewServer() (*Server, *http.Server) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = defaultPort
	}

	s := &Server{
		port:              port,
		gameManager:       NewGameManager(),
		connectionManager: NewConnectionManager(),
		// 10 messages/second is generous for a turn-based game.
		rateLimiter: NewRateLimiter(10, time.Second),
	}

	go s.rateLimitCleanupTask()

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.RegisterRoutes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: websocket connections stay open for the whole
		// game; per-push deadlines are handled in the client writer.
	}
	return s, httpServer
}

// Shutdown disconnects every live player so clients see a clean close
// instead of a dead socket.
func (s *Server) Shutdown(ctx context.Context) error {
	logrus.WithField("connections", s.connectionManager.Count()).Info("closing player connections")
	s.connectionManager.CloseAll(websocket.StatusGoingAway, "Server shutting down")
	return ctx.Err()
}

// rateLimitCleanupTask drops rate-limit bookkeeping for idle
// connections every minute.
func (s *Server) rateLimitCleanupTask() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.rateLimiter.Cleanup()
	}
}
