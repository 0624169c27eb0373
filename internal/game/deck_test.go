package game_test

import (
	"math/rand"
	"testing"

	"crazy-eights-server/internal/game"
)

func TestCreateCards(t *testing.T) {
	cards := game.CreateCards(1)

	if len(cards) != 52 {
		t.Fatalf("Deck should be 52 cards, %d given.", len(cards))
	}

	wilds := 0
	seen := make(map[int]bool)
	for _, card := range cards {
		if seen[card.SortOrder] {
			t.Errorf("Duplicate sort order %d", card.SortOrder)
		}
		seen[card.SortOrder] = true

		if card.IsWild() {
			wilds++
			if card.Suit != game.WildMarker {
				t.Errorf("Wild card dealt with suit %s, want the wild marker", card.Suit)
			}
		} else if card.Suit == game.WildMarker {
			t.Errorf("Normal card %s dealt with the wild marker suit", card)
		}
	}

	if wilds != 4 {
		t.Errorf("Deck should hold 4 wild cards, got %d", wilds)
	}
}

func TestDrawFromTopOfStock(t *testing.T) {
	stock := []game.Card{
		{Face: game.Three, Suit: game.Clubs, SortOrder: 1},
		{Face: game.Four, Suit: game.Hearts, SortOrder: 2},
		{Face: game.Five, Suit: game.Spades, SortOrder: 3},
	}
	deck := game.DeckFromCards(stock)

	drawn := deck.Draw(2)
	if len(drawn) != 2 {
		t.Fatalf("Draw(2) returned %d cards", len(drawn))
	}
	if drawn[0].Face != game.Five || drawn[1].Face != game.Four {
		t.Errorf("Expected to draw 5%s then 4%s, got %s then %s",
			game.Spades, game.Hearts, drawn[0], drawn[1])
	}
	if deck.Count() != 1 {
		t.Errorf("Deck should have 1 card left, %d given", deck.Count())
	}
}

func TestDrawRestocksFromDiscard(t *testing.T) {
	deck := game.DeckFromCards([]game.Card{
		{Face: game.Three, Suit: game.Clubs, SortOrder: 1},
	})
	deck.Discard(game.Card{Face: game.Four, Suit: game.Hearts, SortOrder: 2})
	deck.Discard(game.Card{Face: game.Five, Suit: game.Spades, SortOrder: 3})

	drawn := deck.Draw(3)
	if len(drawn) != 3 {
		t.Fatalf("Draw(3) should reshuffle the discard pile in, got %d cards", len(drawn))
	}
	if deck.Count() != 0 || deck.DiscardCount() != 0 {
		t.Errorf("Stock and discard should both be empty, got %d/%d",
			deck.Count(), deck.DiscardCount())
	}

	// Every card in hands or face up: nothing left to draw.
	if extra := deck.Draw(1); len(extra) != 0 {
		t.Errorf("Drawing from an exhausted deck yielded %d cards", len(extra))
	}
}

func TestRevealStartNeverWild(t *testing.T) {
	// Why many seeds: the wild reinsertion path only triggers when the
	// shuffle happens to leave a wild on top.
	for seed := int64(0); seed < 25; seed++ {
		deck := game.NewDeckWithRand(rand.New(rand.NewSource(seed)))
		start, err := deck.RevealStart()
		if err != nil {
			t.Fatalf("seed %d: RevealStart failed: %v", seed, err)
		}
		if start.IsWild() {
			t.Errorf("seed %d: starting top card %s is wild", seed, start)
		}
		if deck.Count() != 51 {
			t.Errorf("seed %d: deck should hold 51 cards after the reveal, got %d", seed, deck.Count())
		}
	}
}

func TestRevealStartAllWild(t *testing.T) {
	deck := game.DeckFromCards([]game.Card{
		{Face: game.Eight, Suit: game.WildMarker, SortOrder: 1},
		{Face: game.Eight, Suit: game.WildMarker, SortOrder: 2},
	})

	if _, err := deck.RevealStart(); err == nil {
		t.Error("RevealStart should fail when only wild cards remain")
	}
}
