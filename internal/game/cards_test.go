package game_test

import (
	"fmt"
	"testing"

	"crazy-eights-server/internal/game"
)

func TestPointValues(t *testing.T) {
	var tests = []struct {
		card game.Card
		want int
	}{
		{game.Card{Face: game.Ace, Suit: game.Spades}, 1},
		{game.Card{Face: game.Two, Suit: game.Hearts}, 2},
		{game.Card{Face: game.Seven, Suit: game.Clubs}, 7},
		{game.Card{Face: game.Eight, Suit: game.WildMarker}, 50},
		{game.Card{Face: game.Ten, Suit: game.Diamonds}, 10},
		{game.Card{Face: game.Jack, Suit: game.Diamonds}, 10},
		{game.Card{Face: game.Queen, Suit: game.Spades}, 10},
		{game.Card{Face: game.King, Suit: game.Hearts}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.card.String(), func(t *testing.T) {
			if got := tt.card.Points(); got != tt.want {
				t.Errorf("Card valued at %d, %d expected.", got, tt.want)
			}
		})
	}
}

func TestRuleTable(t *testing.T) {
	// Exactly one face is wild, and the effect faces are A/2/Q.
	wilds := 0
	for _, face := range game.Faces {
		if game.Rules(face).IsWild {
			wilds++
		}
	}
	if wilds != 1 {
		t.Errorf("Rule table should have exactly 1 wild face, got %d", wilds)
	}

	if !game.Rules(game.Ace).IsReverse {
		t.Error("Ace should be the reverse face")
	}
	if !game.Rules(game.Two).IsDraw2 {
		t.Error("Two should be the draw-two face")
	}
	if !game.Rules(game.Eight).IsWild {
		t.Error("Eight should be the wild face")
	}
	if !game.Rules(game.Queen).IsSkip {
		t.Error("Queen should be the skip face")
	}
}

func TestCardColor(t *testing.T) {
	var tests = []struct {
		suit  game.Suit
		red   bool
		black bool
	}{
		{game.Hearts, true, false},
		{game.Diamonds, true, false},
		{game.Spades, false, true},
		{game.Clubs, false, true},
		{game.WildMarker, false, false},
	}

	for _, tt := range tests {
		card := game.Card{Face: game.Five, Suit: tt.suit}
		if card.IsRed() != tt.red {
			t.Errorf("%s IsRed() = %v, want %v", card, card.IsRed(), tt.red)
		}
		if card.IsBlack() != tt.black {
			t.Errorf("%s IsBlack() = %v, want %v", card, card.IsBlack(), tt.black)
		}
	}
}

func TestMatches(t *testing.T) {
	topCard := game.Card{Face: game.Five, Suit: game.Spades}

	var tests = []struct {
		card game.Card
		want bool
	}{
		{game.Card{Face: game.Nine, Suit: game.Spades}, true},   // suit match
		{game.Card{Face: game.Five, Suit: game.Hearts}, true},   // face match
		{game.Card{Face: game.Eight, Suit: game.WildMarker}, true}, // wild matches anything
		{game.Card{Face: game.Nine, Suit: game.Hearts}, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s on %s", tt.card, topCard), func(t *testing.T) {
			if got := tt.card.Matches(topCard); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWildAsDeclaredSuit(t *testing.T) {
	wild := game.Card{Face: game.Eight, Suit: game.WildMarker, SortOrder: 3}
	declared := wild.As(game.Hearts)

	if declared.Face != game.Eight || declared.Suit != game.Hearts {
		t.Errorf("As(Hearts) = %s, want 8%s", declared, game.Hearts)
	}
	if declared.SortOrder != wild.SortOrder {
		t.Error("declaring a suit must not change the card's sort order")
	}

	// A play now matches the declared suit.
	follow := game.Card{Face: game.Four, Suit: game.Hearts}
	if !follow.Matches(declared) {
		t.Errorf("%s should match the declared suit of %s", follow, declared)
	}
}
