package game

import (
	"math/rand"
	"unicode/utf8"
)

// Card is a rank+suit token like "A♠" or "10♦". The suit is always the
// last rune so multi-character ranks slice cleanly.
type Card string

const (
	SuitSpade   = "♠"
	SuitHeart   = "♥"
	SuitDiamond = "♦"
	SuitClub    = "♣"
)

var suits = []string{SuitSpade, SuitHeart, SuitDiamond, SuitClub}

var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

func (c Card) Suit() string {
	r, _ := utf8.DecodeLastRuneInString(string(c))
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

func (c Card) Rank() string {
	_, size := utf8.DecodeLastRuneInString(string(c))
	return string(c)[:len(c)-size]
}

func (c Card) IsJack() bool {
	return c.Rank() == "J"
}

// Two-eyed jacks are wild: they place a chip on any open non-corner cell.
func (c Card) IsTwoEyedJack() bool {
	return c == "J"+SuitHeart || c == "J"+SuitDiamond
}

// One-eyed jacks remove an opponent chip that is not locked in a sequence.
func (c Card) IsOneEyedJack() bool {
	return c == "J"+SuitSpade || c == "J"+SuitClub
}

// DeckSize is two merged standard 52-card decks.
const DeckSize = 104

// Deck is the draw pile plus the discard pile of consumed cards.
type Deck struct {
	cards   []Card
	discard []Card
}

// NewDeck builds and shuffles two merged 52-card decks. The RNG is
// injected so games can be replayed deterministically in tests.
func NewDeck(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, DeckSize)
	for i := 0; i < 2; i++ {
		for _, s := range suits {
			for _, r := range ranks {
				cards = append(cards, Card(r+s))
			}
		}
	}

	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return &Deck{cards: cards}
}

// Draw removes the top card. There is no discard recycling: once the
// draw pile runs out, replenishment stops and hands shrink.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return "", false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

func (d *Deck) Discard(c Card) {
	d.discard = append(d.discard, c)
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}

func (d *Deck) Discarded() int {
	return len(d.discard)
}
