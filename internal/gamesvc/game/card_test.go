package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCardRankAndSuit(t *testing.T) {
	tests := []struct {
		card Card
		rank string
		suit string
	}{
		{card: "A♠", rank: "A", suit: "♠"},
		{card: "10♦", rank: "10", suit: "♦"},
		{card: "2♣", rank: "2", suit: "♣"},
		{card: "K♥", rank: "K", suit: "♥"},
	}

	for _, tt := range tests {
		t.Run(string(tt.card), func(t *testing.T) {
			if got := tt.card.Rank(); got != tt.rank {
				t.Fatalf("Rank() = %q, want %q", got, tt.rank)
			}
			if got := tt.card.Suit(); got != tt.suit {
				t.Fatalf("Suit() = %q, want %q", got, tt.suit)
			}
		})
	}
}

func TestJackClasses(t *testing.T) {
	twoEyed := []Card{"J♥", "J♦"}
	oneEyed := []Card{"J♠", "J♣"}

	for _, c := range twoEyed {
		require.True(t, c.IsJack(), "%s should be a jack", c)
		require.True(t, c.IsTwoEyedJack(), "%s should be two-eyed", c)
		require.False(t, c.IsOneEyedJack(), "%s should not be one-eyed", c)
	}
	for _, c := range oneEyed {
		require.True(t, c.IsJack(), "%s should be a jack", c)
		require.True(t, c.IsOneEyedJack(), "%s should be one-eyed", c)
		require.False(t, c.IsTwoEyedJack(), "%s should not be two-eyed", c)
	}

	require.False(t, Card("10♠").IsJack())
}

func TestNewDeckComposition(t *testing.T) {
	d := NewDeck(rand.New(rand.NewSource(1)))
	require.Equal(t, DeckSize, d.Remaining())

	counts := make(map[Card]int)
	jacks := 0
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		counts[c]++
		if c.IsJack() {
			jacks++
		}
	}

	// Two merged decks: every distinct card exactly twice.
	require.Len(t, counts, 52)
	for c, n := range counts {
		require.Equalf(t, 2, n, "card %s appears %d times", c, n)
	}
	require.Equal(t, 8, jacks)
}

func TestDeckShuffleIsSeeded(t *testing.T) {
	drain := func(seed int64) []Card {
		d := NewDeck(rand.New(rand.NewSource(seed)))
		out := make([]Card, 0, DeckSize)
		for {
			c, ok := d.Draw()
			if !ok {
				return out
			}
			out = append(out, c)
		}
	}

	require.Equal(t, drain(42), drain(42), "same seed must give same order")
	require.NotEqual(t, drain(1), drain(2), "different seeds should differ")
}

func TestDrawExhausted(t *testing.T) {
	d := NewDeck(rand.New(rand.NewSource(1)))
	for i := 0; i < DeckSize; i++ {
		if _, ok := d.Draw(); !ok {
			t.Fatalf("deck ran out after %d draws", i)
		}
	}

	if _, ok := d.Draw(); ok {
		t.Fatal("expected exhausted deck to refuse a draw")
	}
}
