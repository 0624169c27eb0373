package crazyeights

import (
	"time"

	"crazy-eights-server/internal/game"
)

// Button is the wire shape of one pressable control: [label] when
// disabled, [label, token] when the player may invoke it.
type Button []string

func disabledButton(label string) Button {
	return Button{label}
}

func enabledButton(label, token string) Button {
	return Button{label, token}
}

// Label returns the button's display text.
func (b Button) Label() string {
	if len(b) == 0 {
		return ""
	}
	return b[0]
}

// Token returns the action token and whether the button carries one.
func (b Button) Token() (string, bool) {
	if len(b) < 2 {
		return "", false
	}
	return b[1], true
}

// PlayerSummary is the public view of one seat.
type PlayerSummary struct {
	Name  string `json:"name"`
	ID    int    `json:"id"`
	Cards int    `json:"cards"`
	Score int    `json:"score"`
	// LastSeen is "Connected", "Never", or the disconnect time.
	LastSeen string `json:"lastSeen"`
}

// ButtonStatus pairs one hand card with its buttons.
type ButtonStatus struct {
	Card    game.Card `json:"card"`
	Buttons []Button  `json:"buttons"`
}

// CardStatus is the private, per-player part of a snapshot: the full
// hand with controls, plus the draw control.
type CardStatus struct {
	Cards      []ButtonStatus `json:"cards"`
	DrawButton Button         `json:"drawButton"`
}

// GameStatus is the personalized snapshot pushed to one connection after
// every state change. All fields are optional on the wire, but a full
// snapshot always carries all three.
type GameStatus struct {
	TopCard        *game.Card      `json:"topCard,omitempty"`
	PlayersInOrder []PlayerSummary `json:"playersInOrder,omitempty"`
	CardStatus     *CardStatus     `json:"cardStatus,omitempty"`
}

// buildStatusLocked computes the personalized snapshot for one seat.
// Tokens are minted only for enabled moves of the player whose turn it
// is; every other seat sees the same labels with no token, which renders
// as an inherently disabled control. Caller must hold g.mu.
func (g *Game) buildStatusLocked(p *Player) GameStatus {
	topCard := g.topCard
	isTurn := g.order[0] == p.ID

	summaries := make([]PlayerSummary, 0, len(g.order))
	for _, id := range g.order {
		seat := g.players[id]
		summaries = append(summaries, PlayerSummary{
			Name:     seat.Name,
			ID:       seat.ID,
			Cards:    len(seat.cards),
			Score:    seat.Score,
			LastSeen: seat.lastSeenLabel(),
		})
	}

	makeButton := func(c candidate) Button {
		if isTurn && c.enabled {
			return enabledButton(c.label, g.actions.mint(c.move))
		}
		return disabledButton(c.label)
	}

	cards := make([]ButtonStatus, 0, len(p.cards))
	for i, card := range p.cards {
		candidates := g.cardCandidates(p, i)
		buttons := make([]Button, 0, len(candidates))
		for _, c := range candidates {
			buttons = append(buttons, makeButton(c))
		}
		cards = append(cards, ButtonStatus{Card: card, Buttons: buttons})
	}

	return GameStatus{
		TopCard:        &topCard,
		PlayersInOrder: summaries,
		CardStatus: &CardStatus{
			Cards:      cards,
			DrawButton: makeButton(g.drawCandidate(p, isTurn)),
		},
	}
}

func (p *Player) lastSeenLabel() string {
	switch {
	case p.conn != nil:
		return "Connected"
	case p.lastSeen.IsZero():
		return "Never"
	default:
		return p.lastSeen.Format(time.RFC3339)
	}
}
