package crazyeights

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"crazy-eights-server/internal/game"
)

var (
	ErrNotEnoughPlayers = errors.New("NOT_ENOUGH_PLAYERS: a game needs at least 2 players")
	ErrUnknownPlayer    = errors.New("UNKNOWN_PLAYER: no player with that id")
	ErrInvalidAction    = errors.New("INVALID_ACTION: unknown or expired action token")
	ErrNotYourTurn      = errors.New("NOT_YOUR_TURN: player is not at the head of the turn order")
	ErrCardNotInHand    = errors.New("CARD_NOT_IN_HAND: card index outside the player's hand")
	ErrIllegalMove      = errors.New("ILLEGAL_MOVE: move does not apply to this card")
)

// PlayerConnection is a live outbound push handle for one player. Send
// must never block on the network; the game calls it while holding its
// state lock. Cancel tears the underlying connection down.
type PlayerConnection interface {
	Send(GameStatus)
	Cancel()
}

// nextPlayerID assigns ids monotonically for the process lifetime, so an
// id never refers to two different players even across games.
var nextPlayerID atomic.Int64

// Player is one seat at the table. Owned exclusively by the Game; the
// connection manager refers to players only by id.
type Player struct {
	ID    int
	Name  string
	Score int

	cards    []game.Card
	conn     PlayerConnection
	lastSeen time.Time // zero until the first disconnect
}

// Hand returns a copy of the player's cards, sorted for display.
func (p *Player) Hand() []game.Card {
	hand := make([]game.Card, len(p.cards))
	copy(hand, p.cards)
	return hand
}

func (p *Player) sortCards() {
	sort.Slice(p.cards, func(i, j int) bool {
		return p.cards[i].SortOrder < p.cards[j].SortOrder
	})
}

// PlayerInfo is the public identity of a seat.
type PlayerInfo struct {
	ID   int
	Name string
}

// Game is the aggregate root: seats, turn order, the face-up top card and
// any pending draw penalty. Every mutation and every view computation is
// serialized through mu, so broadcasts observed by one connection always
// arrive in mutation order.
type Game struct {
	mu           sync.Mutex
	deck         *game.Deck
	players      map[int]*Player
	order        []int // order[0] is always the current player
	topCard      game.Card
	drawRequired int
	actions      *actionRegistry
	log          *logrus.Entry
}

// NewGame seats the named players with a freshly shuffled deck.
func NewGame(playerNames []string) (*Game, error) {
	return NewGameWithDeck(playerNames, game.NewDeck())
}

// NewGameWithDeck seats the named players, reveals a non-wild starting
// top card and deals 7 cards each for a 2-player game, otherwise 5.
func NewGameWithDeck(playerNames []string, deck *game.Deck) (*Game, error) {
	if len(playerNames) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	topCard, err := deck.RevealStart()
	if err != nil {
		return nil, fmt.Errorf("dealing starting card: %w", err)
	}

	g := &Game{
		deck:    deck,
		players: make(map[int]*Player),
		topCard: topCard,
		actions: newActionRegistry(),
		log:     logrus.WithField("component", "crazyeights"),
	}

	cardsPerPlayer := 5
	if len(playerNames) == 2 {
		cardsPerPlayer = 7
	}
	for _, name := range playerNames {
		id := int(nextPlayerID.Add(1))
		p := &Player{
			ID:    id,
			Name:  name,
			cards: deck.Draw(cardsPerPlayer),
		}
		p.sortCards()
		g.players[id] = p
		g.order = append(g.order, id)
	}

	g.log.WithFields(logrus.Fields{
		"players": len(playerNames),
		"topCard": topCard.String(),
	}).Info("new game started")
	return g, nil
}

// PlayersInfo lists every seat in current turn order.
func (g *Game) PlayersInfo() []PlayerInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	info := make([]PlayerInfo, 0, len(g.order))
	for _, id := range g.order {
		p := g.players[id]
		info = append(info, PlayerInfo{ID: p.ID, Name: p.Name})
	}
	return info
}

// HasPlayer reports whether id is seated in this game.
func (g *Game) HasPlayer(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.players[id]
	return ok
}

// CurrentPlayer returns the id of the player whose turn it is.
func (g *Game) CurrentPlayer() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.order[0]
}

// TopCard returns the face-up card the next play must match.
func (g *Game) TopCard() game.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.topCard
}

// DrawRequired returns the pending forced-draw count.
func (g *Game) DrawRequired() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.drawRequired
}

// HandOf returns a copy of a player's hand.
func (g *Game) HandOf(id int) ([]game.Card, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	return p.Hand(), nil
}

// SetConnection installs (or, with nil, clears) a player's push handle.
// Clearing stamps the disconnect time for the lastSeen display.
func (g *Game) SetConnection(playerID int, conn PlayerConnection) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
	}
	if conn == nil && p.conn != nil {
		p.lastSeen = time.Now()
	}
	p.conn = conn
	return nil
}

// HandleAction resolves a token to its move, applies it and rebroadcasts
// to every seat. Unknown or expired tokens are reported as
// ErrInvalidAction without touching game state.
func (g *Game) HandleAction(token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	move, ok := g.actions.lookup(token)
	if !ok {
		return ErrInvalidAction
	}
	if err := g.apply(move); err != nil {
		// Tokens are only minted for legal moves of the live broadcast
		// generation, so failing here means token issuance is buggy.
		g.log.WithFields(logrus.Fields{
			"player": move.PlayerID,
			"move":   string(move.Type),
		}).WithError(err).Error("registered move failed to apply")
		return err
	}
	g.broadcastAllLocked()
	return nil
}

// BroadcastAll recomputes every seat's personalized view and pushes it
// to each live connection. All action tokens from earlier broadcasts are
// invalidated first.
func (g *Game) BroadcastAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastAllLocked()
}

func (g *Game) broadcastAllLocked() {
	g.actions.rotate()
	for _, id := range g.order {
		p := g.players[id]
		if p.conn == nil {
			continue
		}
		p.conn.Send(g.buildStatusLocked(p))
	}
}

// BroadcastTo pushes a fresh snapshot to a single player, used on
// (re)connect. Tokens mint into the live generation, so nobody else's
// buttons are disturbed.
func (g *Game) BroadcastTo(playerID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
	}
	if p.conn != nil {
		p.conn.Send(g.buildStatusLocked(p))
	}
	return nil
}

// advance rotates the turn order left by steps, so the current player
// and the steps-1 players after them move to the back in relative order.
func (g *Game) advance(steps int) {
	n := len(g.order)
	steps %= n
	if steps == 0 {
		return
	}
	g.order = append(g.order[steps:], g.order[:steps]...)
}

// reverse flips the whole seating direction. The player who just acted
// ends up last and the player who acted right before them is up next.
func (g *Game) reverse() {
	for i, j := 0, len(g.order)-1; i < j; i, j = i+1, j-1 {
		g.order[i], g.order[j] = g.order[j], g.order[i]
	}
}

// playerAfter returns the seat that acts after p in the current order.
func (g *Game) playerAfter(p *Player) *Player {
	return g.players[g.neighbor(p.ID, 1)]
}

// playerBefore returns the seat that acted before p in the current order.
func (g *Game) playerBefore(p *Player) *Player {
	return g.players[g.neighbor(p.ID, -1)]
}

func (g *Game) neighbor(playerID, offset int) int {
	n := len(g.order)
	for i, id := range g.order {
		if id == playerID {
			return g.order[((i+offset)%n+n)%n]
		}
	}
	return g.order[0]
}
