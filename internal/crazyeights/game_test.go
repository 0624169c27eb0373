package crazyeights

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crazy-eights-server/internal/game"
)

func c(face game.Face, suit game.Suit, sortOrder int) game.Card {
	return game.Card{Face: face, Suit: suit, SortOrder: sortOrder}
}

// stackDeck builds a deck that yields draws in the given order: draws[0]
// is the revealed starting card, draws[1] the first card dealt, and so
// on. Cards past the deal are drawn later in order by draw moves.
func stackDeck(draws ...game.Card) *game.Deck {
	stock := make([]game.Card, len(draws))
	for i, card := range draws {
		stock[len(draws)-1-i] = card
	}
	return game.DeckFromCards(stock)
}

// riggedGame seats A, B and C with known hands on a 5♠ top card.
//
//	A (current): 7♠, 8●, A♦, Q♠, 2♠
//	B:           2♥, 3♥, 4♥, 5♥, 6♥
//	C:           7♣, 9♣, 10♣, J♣, K♣
//
// Four reserve clubs sit under the deal for draw moves.
func riggedGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGameWithDeck([]string{"A", "B", "C"}, stackDeck(
		c(game.Five, game.Spades, 1),
		// A
		c(game.Seven, game.Spades, 2),
		c(game.Eight, game.WildMarker, 3),
		c(game.Ace, game.Diamonds, 4),
		c(game.Queen, game.Spades, 5),
		c(game.Two, game.Spades, 6),
		// B
		c(game.Two, game.Hearts, 7),
		c(game.Three, game.Hearts, 8),
		c(game.Four, game.Hearts, 9),
		c(game.Five, game.Hearts, 10),
		c(game.Six, game.Hearts, 11),
		// C
		c(game.Seven, game.Clubs, 12),
		c(game.Nine, game.Clubs, 13),
		c(game.Ten, game.Clubs, 14),
		c(game.Jack, game.Clubs, 15),
		c(game.King, game.Clubs, 16),
		// reserve
		c(game.Three, game.Clubs, 17),
		c(game.Four, game.Clubs, 18),
		c(game.Five, game.Clubs, 19),
		c(game.Six, game.Clubs, 20),
	))
	require.NoError(t, err)
	return g
}

// fakeConn records pushes in memory, standing in for a live websocket.
type fakeConn struct {
	mu       sync.Mutex
	statuses []GameStatus
	cancels  int
}

func (f *fakeConn) Send(status GameStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeConn) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statuses)
}

func (f *fakeConn) last(t *testing.T) GameStatus {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		t.Fatal("no status pushed")
	}
	return f.statuses[len(f.statuses)-1]
}

func TestNewGame_DealSizes(t *testing.T) {
	var tests = []struct {
		names []string
		want  int
	}{
		{[]string{"A", "B"}, 7},
		{[]string{"A", "B", "C"}, 5},
		{[]string{"A", "B", "C", "D", "E"}, 5},
	}

	for _, tt := range tests {
		g, err := NewGame(tt.names)
		require.NoError(t, err)

		assert.False(t, g.TopCard().IsWild(), "starting top card must not be wild")
		for _, info := range g.PlayersInfo() {
			hand, err := g.HandOf(info.ID)
			require.NoError(t, err)
			assert.Len(t, hand, tt.want, "player %s", info.Name)
		}
	}
}

func TestNewGame_RejectsTooFewPlayers(t *testing.T) {
	for _, names := range [][]string{nil, {}, {"Solo"}} {
		_, err := NewGame(names)
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	}
}

func TestNewGame_PlayerIDsNeverReused(t *testing.T) {
	g1, err := NewGame([]string{"A", "B"})
	require.NoError(t, err)
	g2, err := NewGame([]string{"A", "B"})
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, info := range g1.PlayersInfo() {
		seen[info.ID] = true
	}
	for _, info := range g2.PlayersInfo() {
		assert.False(t, seen[info.ID], "id %d assigned twice", info.ID)
	}
}

func TestAdvance_IsRotationNotReset(t *testing.T) {
	g, err := NewGame([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	head := g.order[0]
	g.advance(1)
	g.advance(1)

	// Two single advances put the original head at position 2.
	assert.Equal(t, head, g.order[2])
	assert.NotEqual(t, head, g.order[0])
}

func TestAdvance_WrapsAround(t *testing.T) {
	g := riggedGame(t)
	original := append([]int(nil), g.order...)

	g.advance(3)
	assert.Equal(t, original, g.order, "advancing by the table size is a no-op")

	g.advance(2)
	assert.Equal(t, original[2], g.order[0])
}

func TestReverse_CurrentPlayerEndsLast(t *testing.T) {
	g := riggedGame(t)
	a, b, ccc := g.order[0], g.order[1], g.order[2]

	g.reverse()

	// The player before the actor is up next; the actor is last.
	assert.Equal(t, []int{ccc, b, a}, g.order)
}

func TestOrderAlwaysPermutation(t *testing.T) {
	g := riggedGame(t)
	ids := make(map[int]bool)
	for _, id := range g.order {
		ids[id] = true
	}

	moves := []Move{
		{Type: MovePlay, CardIndex: 0}, // A: 7♠
		{Type: MoveDraw},               // B draws
		{Type: MoveDraw},               // C draws
	}
	for i, m := range moves {
		m.PlayerID = g.order[0]
		require.NoError(t, g.apply(m), "move %d", i)

		assert.Len(t, g.order, len(ids), "move %d", i)
		for _, id := range g.order {
			assert.True(t, ids[id], "move %d produced unknown id %d", i, id)
		}
	}
}

func TestSetConnection_TracksLastSeen(t *testing.T) {
	g := riggedGame(t)
	a := g.order[0]
	conn := &fakeConn{}

	assert.Equal(t, "Never", g.players[a].lastSeenLabel())

	require.NoError(t, g.SetConnection(a, conn))
	assert.Equal(t, "Connected", g.players[a].lastSeenLabel())

	require.NoError(t, g.SetConnection(a, nil))
	label := g.players[a].lastSeenLabel()
	assert.NotEqual(t, "Connected", label)
	assert.NotEqual(t, "Never", label, "a disconnect should stamp the time")
}

func TestSetConnection_UnknownPlayer(t *testing.T) {
	g := riggedGame(t)
	assert.ErrorIs(t, g.SetConnection(999999, &fakeConn{}), ErrUnknownPlayer)
}

func TestBroadcastTo_DoesNotDisturbOthers(t *testing.T) {
	g := riggedGame(t)
	a, b := g.order[0], g.order[1]
	connA, connB := &fakeConn{}, &fakeConn{}
	require.NoError(t, g.SetConnection(a, connA))
	require.NoError(t, g.SetConnection(b, connB))

	require.NoError(t, g.BroadcastTo(a))

	assert.Equal(t, 1, connA.count())
	assert.Equal(t, 0, connB.count(), "a targeted snapshot must not reach other players")
}

func TestBroadcastAll_SkipsDisconnected(t *testing.T) {
	g := riggedGame(t)
	connA := &fakeConn{}
	require.NoError(t, g.SetConnection(g.order[0], connA))

	// B and C have no connection; their views are simply discarded.
	g.BroadcastAll()
	assert.Equal(t, 1, connA.count())
}
