package game

import (
	"errors"
	"math/rand"
	"time"
)

// ErrNoStartCard is returned when a starting top card is requested but no
// non-wild card is left anywhere in the stock.
var ErrNoStartCard = errors.New("deck contains no non-wild card to start from")

// Deck is a finite draw stock plus a discard pile. Draws come off the top
// of the stock; when the stock runs dry the discard pile is reshuffled
// back in. Cards currently held in hands or sitting face up as the top
// card are outside the deck entirely.
type Deck struct {
	rng     *rand.Rand
	stock   []Card
	discard []Card
}

// CreateCards builds the unshuffled cards for count copies of the deck:
// four wild eights per copy, then every non-wild face in every normal
// suit. SortOrder is assigned sequentially so every physical card gets a
// distinct, deterministic value.
func CreateCards(count int) []Card {
	cards := make([]Card, 0, count*52)
	sortOrder := 1
	for i := 0; i < 4*count; i++ {
		cards = append(cards, Card{Face: Eight, Suit: WildMarker, SortOrder: sortOrder})
		sortOrder++
	}
	for _, suit := range NormalSuits {
		for _, face := range Faces {
			if Rules(face).IsWild {
				continue
			}
			for i := 0; i < count; i++ {
				cards = append(cards, Card{Face: face, Suit: suit, SortOrder: sortOrder})
				sortOrder++
			}
		}
	}
	return cards
}

// NewDeck returns a single shuffled 52-card deck.
func NewDeck() *Deck {
	return NewDeckWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewDeckWithRand is NewDeck with an explicit randomness source, for
// deterministic shuffles in tests.
func NewDeckWithRand(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng, stock: CreateCards(1)}
	d.Shuffle()
	return d
}

// DeckFromCards builds a deck whose stock is exactly cards, unshuffled.
// The last element is the top of the stock.
func DeckFromCards(cards []Card) *Deck {
	stock := make([]Card, len(cards))
	copy(stock, cards)
	return &Deck{rng: rand.New(rand.NewSource(0)), stock: stock}
}

func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.stock), func(i, j int) {
		d.stock[i], d.stock[j] = d.stock[j], d.stock[i]
	})
}

// Count returns the number of cards left in the stock.
func (d *Deck) Count() int {
	return len(d.stock)
}

// DiscardCount returns the number of cards in the discard pile.
func (d *Deck) DiscardCount() int {
	return len(d.discard)
}

// Discard puts a card that has been played over onto the discard pile.
func (d *Deck) Discard(c Card) {
	d.discard = append(d.discard, c)
}

// Draw removes up to n cards from the top of the stock, reshuffling the
// discard pile into the stock as needed. If stock and discard are both
// exhausted the result is shorter than n: every other card is in a hand
// or face up on the table, so there is nothing left to draw.
func (d *Deck) Draw(n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.drawOne()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

func (d *Deck) drawOne() (Card, bool) {
	if len(d.stock) == 0 {
		d.restock()
	}
	if len(d.stock) == 0 {
		return Card{}, false
	}
	card := d.stock[len(d.stock)-1]
	d.stock = d.stock[:len(d.stock)-1]
	return card, true
}

// restock moves the entire discard pile back into the stock and shuffles.
// The face-up top card was never discarded, so it stays on the table.
func (d *Deck) restock() {
	if len(d.discard) == 0 {
		return
	}
	d.stock = append(d.stock, d.discard...)
	d.discard = d.discard[:0]
	d.Shuffle()
}

// RevealStart draws the starting top card. Wild cards are not allowed to
// start the game; any wild drawn is reinserted at a uniformly random
// position in the remaining stock and the draw repeats.
func (d *Deck) RevealStart() (Card, error) {
	for {
		card, ok := d.drawOne()
		if !ok {
			return Card{}, ErrNoStartCard
		}
		if !card.IsWild() {
			return card, nil
		}
		i := d.rng.Intn(len(d.stock) + 1)
		d.stock = append(d.stock, Card{})
		copy(d.stock[i+1:], d.stock[i:])
		d.stock[i] = card
		// Bail out rather than loop forever once only wilds remain.
		if allWild(d.stock) {
			d.restock()
			if allWild(d.stock) {
				return Card{}, ErrNoStartCard
			}
		}
	}
}

func allWild(cards []Card) bool {
	for _, c := range cards {
		if !c.IsWild() {
			return false
		}
	}
	return true
}
