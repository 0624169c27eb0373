package game

// Suit is a playing card suit. The wild marker suit only ever appears on
// wild cards; it is never dealt on a normal rank.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"

	// WildMarker is the suit printed on a wild card before a suit has
	// been declared for it.
	WildMarker Suit = "●"
)

// NormalSuits lists the four real suits, in deck-construction order.
var NormalSuits = [4]Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) IsBlack() bool {
	return s == Spades || s == Clubs
}

type Face string

const (
	Ace   Face = "A"
	Two   Face = "2"
	Three Face = "3"
	Four  Face = "4"
	Five  Face = "5"
	Six   Face = "6"
	Seven Face = "7"
	Eight Face = "8"
	Nine  Face = "9"
	Ten   Face = "10"
	Jack  Face = "J"
	Queen Face = "Q"
	King  Face = "K"
)

// Faces lists every rank in deck-construction order.
var Faces = [13]Face{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// FaceInfo is one row of the static rule table.
type FaceInfo struct {
	IsWild    bool
	IsReverse bool
	IsDraw2   bool
	IsSkip    bool
	Points    int
}

// faceRules maps every rank to its gameplay effect and point value.
// Exactly one rank (the eight) is wild. Immutable for the process lifetime.
var faceRules = map[Face]FaceInfo{
	Ace:   {Points: 1, IsReverse: true},
	Two:   {Points: 2, IsDraw2: true},
	Three: {Points: 3},
	Four:  {Points: 4},
	Five:  {Points: 5},
	Six:   {Points: 6},
	Seven: {Points: 7},
	Eight: {Points: 50, IsWild: true},
	Nine:  {Points: 9},
	Ten:   {Points: 10},
	Jack:  {Points: 10},
	Queen: {Points: 10, IsSkip: true},
	King:  {Points: 10},
}

// Rules returns the rule-table row for a face.
func Rules(f Face) FaceInfo {
	return faceRules[f]
}

// Card is an immutable playing card. SortOrder is the card's position in
// the unshuffled deck; it is used for stable hand display only, never for
// gameplay, and uniquely identifies a physical card within one deck.
type Card struct {
	Face      Face `json:"face"`
	Suit      Suit `json:"suit"`
	SortOrder int  `json:"sortOrder"`
}

func (c Card) String() string {
	return string(c.Face) + string(c.Suit)
}

func (c Card) IsWild() bool {
	return faceRules[c.Face].IsWild
}

func (c Card) IsReverse() bool {
	return faceRules[c.Face].IsReverse
}

func (c Card) IsDraw2() bool {
	return faceRules[c.Face].IsDraw2
}

func (c Card) IsSkip() bool {
	return faceRules[c.Face].IsSkip
}

func (c Card) Points() int {
	return faceRules[c.Face].Points
}

func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

func (c Card) IsBlack() bool {
	return c.Suit.IsBlack()
}

// As returns a copy of a wild card tagged with a declared suit, so the
// next play matches against the declared suit instead of the wild marker.
func (c Card) As(suit Suit) Card {
	return Card{Face: c.Face, Suit: suit, SortOrder: c.SortOrder}
}

// Matches reports whether playing c on top of topCard is a legal match.
// Wild cards match anything; otherwise suit or face must agree.
func (c Card) Matches(topCard Card) bool {
	return c.IsWild() || c.Suit == topCard.Suit || c.Face == topCard.Face
}
