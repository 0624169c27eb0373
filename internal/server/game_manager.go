package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"crazy-eights-server/internal/crazyeights"
)

var ErrNoGame = errors.New("NO_GAME: no game is currently running")

// GameManager owns the single currently running game. Starting a new
// game replaces the previous one; the caller is responsible for closing
// the replaced game's connections.
type GameManager struct {
	game *crazyeights.Game
	mu   sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{}
}

// StartGame validates the player names, creates a fresh game and makes
// it current. Returns the new game, the game it replaced (nil for the
// first start) and the name → play-URL map handed back to the creator.
func (gm *GameManager) StartGame(playerNames []string) (*crazyeights.Game, *crazyeights.Game, map[string]string, error) {
	if len(playerNames) < 2 {
		return nil, nil, nil, crazyeights.ErrNotEnoughPlayers
	}
	for _, name := range playerNames {
		if err := ValidatePlayerName(name); err != nil {
			return nil, nil, nil, err
		}
	}

	game, err := crazyeights.NewGame(playerNames)
	if err != nil {
		return nil, nil, nil, err
	}

	// Display names are not unique; the URL map is keyed by name, so a
	// duplicate name would silently lose a player's URL.
	nameToURL := make(map[string]string, len(playerNames))
	for _, info := range game.PlayersInfo() {
		if _, taken := nameToURL[info.Name]; taken {
			return nil, nil, nil, fmt.Errorf("DUPLICATE_NAME: player name %q used twice", info.Name)
		}
		nameToURL[info.Name] = fmt.Sprintf("./PlayCrazy8s.html?id=%d", info.ID)
	}

	gm.mu.Lock()
	previous := gm.game
	gm.game = game
	gm.mu.Unlock()

	return game, previous, nameToURL, nil
}

// CurrentGame returns the running game, or ErrNoGame before the first
// start.
func (gm *GameManager) CurrentGame() (*crazyeights.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if gm.game == nil {
		return nil, ErrNoGame
	}
	return gm.game, nil
}

// ValidatePlayerName checks display-name requirements.
func ValidatePlayerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("NAME_INVALID: player name cannot be empty")
	}
	if len(name) > 20 {
		return errors.New("NAME_INVALID: player name too long (max 20 characters)")
	}
	return nil
}
