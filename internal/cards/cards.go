package cards

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Card is the contract's card byte: suit<<4 | rank, where:
// - suit = id >> 4   (0..3)
// - rank = id & 0x0f (1..13, ace encoded low: 1=A .. 13=K)
//
// This matches the on-chain representation byte for byte so cards survive the
// query and log boundaries unchanged.
type Card uint8

// Suit order is part of the protocol: the contract logs last-hand cards as
// plaintext strings, so backend and frontend must agree on it.
var suitSymbols = [4]string{"♣", "♦", "♥", "♠"}

var rankSymbols = [13]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

func New(suit, rank uint8) (Card, error) {
	if suit > 3 {
		return 0, fmt.Errorf("invalid suit %d", suit)
	}
	if rank < 1 || rank > 13 {
		return 0, fmt.Errorf("invalid rank %d", rank)
	}
	return Card(suit<<4 | rank), nil
}

func (c Card) Suit() uint8 { // 0..3
	return uint8(c >> 4)
}

func (c Card) Rank() uint8 { // 1..13, ace low
	return uint8(c & 0x0f)
}

// HighRank returns the ace-high evaluation rank (2..14).
func (c Card) HighRank() uint8 {
	r := c.Rank()
	if r == 1 {
		return 14
	}
	return r
}

func (c Card) Valid() bool {
	return c.Suit() <= 3 && c.Rank() >= 1 && c.Rank() <= 13
}

func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("card(%d)", uint8(c))
	}
	return suitSymbols[c.Suit()] + rankSymbols[c.Rank()-1]
}

// Parse reverses String. Used when reading the contract's plaintext last-hand
// log, which carries cards as suit symbol + rank.
func Parse(s string) (Card, error) {
	for si, sym := range suitSymbols {
		if !strings.HasPrefix(s, sym) {
			continue
		}
		rest := s[len(sym):]
		for ri, rsym := range rankSymbols {
			if rest == rsym {
				return New(uint8(si), uint8(ri+1))
			}
		}
		return 0, fmt.Errorf("invalid card rank %q", rest)
	}
	return 0, fmt.Errorf("invalid card %q", s)
}

// Cards cross the wire as plain JSON numbers (the contract's byte encoding).
// Card implements json.Marshaler so []Card is an array, not a base64 blob.

func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card byte %d", uint8(c))
	}
	return json.Marshal(uint8(c))
}

func (c *Card) UnmarshalJSON(b []byte) error {
	var v uint8
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid card byte: %w", err)
	}
	card := Card(v)
	if !card.Valid() {
		return fmt.Errorf("invalid card byte %d", v)
	}
	*c = card
	return nil
}
