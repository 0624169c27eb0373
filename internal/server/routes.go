package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"crazy-eights-server/internal/crazyeights"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/js-bin/start-new-game", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		s.startNewGameHandler(w, r)
	})
	mux.HandleFunc("/streaming/crazy-eights", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // TODO: restrict per environment
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "up"}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("write health response")
	}
}

// startNewGameHandler accepts a JSON array of at least 2 player display
// names, starts a game and answers with the per-player play URLs. A
// previously running game is superseded: its connections are closed and
// its tokens die with it.
func (s *Server) startNewGameHandler(w http.ResponseWriter, r *http.Request) {
	var playerNames []string
	if err := json.NewDecoder(r.Body).Decode(&playerNames); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "expected a JSON array of player names")
		return
	}

	game, previous, nameToURL, err := s.gameManager.StartGame(playerNames)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	if previous != nil {
		// Player ids of the old game are no longer routable.
		s.connectionManager.CloseAll(websocket.StatusInternalError, "A new game has started")
	}

	// Everyone gets an initial snapshot; players connecting later get
	// theirs on attach.
	game.BroadcastAll()

	w.Header().Set("Content-Type", "application/json")
	resp := StartNewGameResponse{Success: true, NameToURL: nameToURL}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("write start-new-game response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorMessage{Error: message, Code: code}); err != nil {
		logrus.WithError(err).Error("write error response")
	}
}

// websocketHandler upgrades the per-player duplex stream. The player id
// rides in the query string; an id that doesn't belong to the current
// game closes the socket with 1003 so the client knows not to blame the
// network.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make environment-specific
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}

	playerID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		socket.Close(websocket.StatusUnsupportedData, "Unknown user id.")
		return
	}

	game, gameErr := s.gameManager.CurrentGame()
	if gameErr != nil || !game.HasPlayer(playerID) {
		socket.Close(websocket.StatusUnsupportedData, "Unknown user id.")
		return
	}

	cl, err := s.connectionManager.Attach(game, playerID, socket)
	if err != nil {
		logrus.WithField("player", playerID).WithError(err).Error("attach failed")
		socket.Close(websocket.StatusInternalError, "Failed to attach player")
		return
	}
	defer func() {
		s.connectionManager.Detach(game, cl)
		s.rateLimiter.RemoveConnection(cl.connID)
		cl.close(websocket.StatusNormalClosure, "Connection closed")
	}()

	s.readLoop(r.Context(), game, cl)
}

// readLoop consumes inbound frames for one connection until it drops.
// Protocol errors are answered on this connection only and never touch
// game state.
func (s *Server) readLoop(ctx context.Context, game *crazyeights.Game, cl *client) {
	log := logrus.WithFields(logrus.Fields{
		"connection": cl.connID,
		"player":     cl.playerID,
	})

	for {
		msgType, data, err := cl.conn.Read(ctx)
		if err != nil {
			log.WithError(err).Debug("read loop ended")
			return
		}
		if msgType != websocket.MessageText {
			log.Warn("non-text frame ignored")
			continue
		}

		if !s.rateLimiter.Allow(cl.connID) {
			s.sendClientError(ctx, cl, "RATE_LIMITED", "Too many messages, slow down")
			continue
		}

		var event ButtonPressEvent
		if err := json.Unmarshal(data, &event); err != nil || event.Type != ButtonPressType {
			s.sendClientError(ctx, cl, "INVALID_MESSAGE", "expected a ButtonPressEvent")
			continue
		}

		if err := game.HandleAction(event.Code); err != nil {
			if errors.Is(err, crazyeights.ErrInvalidAction) {
				// Stale token: a later broadcast already expired it.
				s.sendClientError(ctx, cl, "INVALID_ACTION", "that action is no longer available")
				continue
			}
			// Anything else means token issuance is buggy; the single
			// action was aborted, the game is intact.
			log.WithError(err).Error("action failed")
			s.sendClientError(ctx, cl, "INTERNAL_ERROR", "action could not be applied")
		}
	}
}

// sendClientError answers one connection with an error payload, outside
// the broadcast path.
func (s *Server) sendClientError(ctx context.Context, cl *client, code, message string) {
	data, err := json.Marshal(ErrorMessage{Error: message, Code: code})
	if err != nil {
		return
	}
	if err := cl.conn.Write(ctx, websocket.MessageText, data); err != nil {
		logrus.WithField("connection", cl.connID).WithError(err).Debug("send error failed")
	}
}
