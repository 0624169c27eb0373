package crazyeights

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"crazy-eights-server/internal/game"
)

type MoveType string

const (
	MovePlay      MoveType = "play"
	MovePlayWild  MoveType = "play_wild"
	MoveReverse   MoveType = "reverse"
	MoveSkip      MoveType = "skip"
	MoveStackDraw MoveType = "stack_draw"
	MoveDraw      MoveType = "draw"
)

// Move is one concrete legal action, stored behind an action token. The
// card is addressed by its index in the player's sorted hand; hands only
// mutate together with a broadcast, and a broadcast expires every older
// token, so an index can never go stale while its token is live.
type Move struct {
	PlayerID     int
	Type         MoveType
	CardIndex    int       // ignored for MoveDraw
	DeclaredSuit game.Suit // MovePlayWild only
}

// apply executes a move atomically: every precondition is checked before
// the first mutation, so a failed move leaves the game untouched.
// Caller must hold g.mu.
func (g *Game) apply(m Move) error {
	if g.order[0] != m.PlayerID {
		return fmt.Errorf("%w: player %d, current %d", ErrNotYourTurn, m.PlayerID, g.order[0])
	}
	p := g.players[m.PlayerID]

	if m.Type == MoveDraw {
		count := 1
		if g.drawRequired > 0 {
			count = g.drawRequired
		}
		g.log.WithFields(logrus.Fields{"player": p.Name, "count": count}).Info("drawing")
		p.cards = append(p.cards, g.deck.Draw(count)...)
		g.drawRequired = 0
		p.sortCards()
		g.advance(1)
		return nil
	}

	if m.CardIndex < 0 || m.CardIndex >= len(p.cards) {
		return fmt.Errorf("%w: index %d, hand size %d", ErrCardNotInHand, m.CardIndex, len(p.cards))
	}
	card := p.cards[m.CardIndex]

	switch m.Type {
	case MovePlay:
		if !card.Matches(g.topCard) {
			return fmt.Errorf("%w: %s does not match %s", ErrIllegalMove, card, g.topCard)
		}
		g.log.WithFields(logrus.Fields{"player": p.Name, "card": card.String()}).Info("playing card")
		g.playCard(p, m.CardIndex, card)
		g.advance(1)

	case MovePlayWild:
		if !card.IsWild() {
			return fmt.Errorf("%w: %s is not wild", ErrIllegalMove, card)
		}
		g.log.WithFields(logrus.Fields{
			"player": p.Name,
			"card":   card.String(),
			"suit":   string(m.DeclaredSuit),
		}).Info("playing wild card")
		g.playCard(p, m.CardIndex, card.As(m.DeclaredSuit))
		g.advance(1)

	case MoveReverse:
		if !card.IsReverse() || !card.Matches(g.topCard) {
			return fmt.Errorf("%w: cannot reverse with %s on %s", ErrIllegalMove, card, g.topCard)
		}
		g.log.WithFields(logrus.Fields{"player": p.Name, "card": card.String()}).Info("reversing play order")
		g.playCard(p, m.CardIndex, card)
		g.reverse()

	case MoveSkip:
		if !card.IsSkip() || !card.Matches(g.topCard) {
			return fmt.Errorf("%w: cannot skip with %s on %s", ErrIllegalMove, card, g.topCard)
		}
		g.log.WithFields(logrus.Fields{"player": p.Name, "card": card.String()}).Info("skipping next player")
		g.playCard(p, m.CardIndex, card)
		g.advance(2)

	case MoveStackDraw:
		if !card.IsDraw2() || !card.Matches(g.topCard) {
			return fmt.Errorf("%w: cannot stack draw with %s on %s", ErrIllegalMove, card, g.topCard)
		}
		g.log.WithFields(logrus.Fields{
			"player": p.Name,
			"card":   card.String(),
			"owed":   g.drawRequired + 2,
		}).Info("stacking draw penalty")
		g.playCard(p, m.CardIndex, card)
		g.drawRequired += 2
		g.advance(1)

	default:
		return fmt.Errorf("%w: unknown move type %q", ErrIllegalMove, m.Type)
	}
	return nil
}

// playCard removes the hand card at index and makes newTop the face-up
// top card. The previous top card goes to the discard pile; if it was a
// wild played with a declared suit, the declaration is stripped first so
// the physical wild card returns to the deck.
func (g *Game) playCard(p *Player, index int, newTop game.Card) {
	p.cards = append(p.cards[:index], p.cards[index+1:]...)

	old := g.topCard
	if old.IsWild() {
		old = old.As(game.WildMarker)
	}
	g.deck.Discard(old)
	g.topCard = newTop
}

// candidate is one possible button for a card: a label, the move it
// stands for, and whether the move is currently legal to invoke.
// Disabled candidates still render so the player can see the option.
type candidate struct {
	label   string
	move    Move
	enabled bool
}

// cardCandidates computes the buttons for one card in p's hand, per the
// house rules:
//   - a wild gets one declare button per suit, playable regardless of the
//     top card but not while a draw penalty is unpaid,
//   - a reverse only reverses with more than 2 seats (otherwise it is a
//     plain play), and needs a match and no pending penalty,
//   - a skip needs a match and no pending penalty,
//   - a draw-two needs only a match: stacking onto a pending penalty is
//     allowed,
//   - anything else is a plain play needing a match and no penalty.
func (g *Game) cardCandidates(p *Player, index int) []candidate {
	card := p.cards[index]
	penalty := g.drawRequired > 0

	switch {
	case card.IsWild():
		candidates := make([]candidate, 0, len(game.NormalSuits))
		for _, suit := range game.NormalSuits {
			candidates = append(candidates, candidate{
				label:   string(suit),
				move:    Move{PlayerID: p.ID, Type: MovePlayWild, CardIndex: index, DeclaredSuit: suit},
				enabled: !penalty,
			})
		}
		return candidates

	case card.IsReverse() && len(g.players) > 2:
		reverseTo := g.playerBefore(p)
		return []candidate{{
			label:   fmt.Sprintf("Reverse to %s", reverseTo.Name),
			move:    Move{PlayerID: p.ID, Type: MoveReverse, CardIndex: index},
			enabled: !penalty && card.Matches(g.topCard),
		}}

	case card.IsSkip():
		skipOver := g.playerAfter(p)
		return []candidate{{
			label:   fmt.Sprintf("Skip %s", skipOver.Name),
			move:    Move{PlayerID: p.ID, Type: MoveSkip, CardIndex: index},
			enabled: !penalty && card.Matches(g.topCard),
		}}

	case card.IsDraw2():
		victim := g.playerAfter(p)
		return []candidate{{
			label:   fmt.Sprintf("Make %s draw %d", victim.Name, g.drawRequired+2),
			move:    Move{PlayerID: p.ID, Type: MoveStackDraw, CardIndex: index},
			enabled: card.Matches(g.topCard),
		}}

	default:
		return []candidate{{
			label:   "Play",
			move:    Move{PlayerID: p.ID, Type: MovePlay, CardIndex: index},
			enabled: !penalty && card.Matches(g.topCard),
		}}
	}
}

// drawCandidate computes the draw button for p. Drawing is always legal
// on your own turn; it pays off the whole pending penalty at once, or
// takes a single card when nothing is owed.
func (g *Game) drawCandidate(p *Player, isTurn bool) candidate {
	label := "Draw"
	if isTurn && g.drawRequired > 0 {
		label = fmt.Sprintf("Draw %d", g.drawRequired)
	}
	return candidate{
		label:   label,
		move:    Move{PlayerID: p.ID, Type: MoveDraw},
		enabled: true,
	}
}
