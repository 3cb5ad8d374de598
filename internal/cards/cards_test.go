package cards

import (
	"encoding/json"
	"testing"
)

func TestNewRejectsOutOfRange(t *testing.T) {
	if _, err := New(4, 1); err == nil {
		t.Fatalf("expected error for suit 4")
	}
	if _, err := New(0, 0); err == nil {
		t.Fatalf("expected error for rank 0")
	}
	if _, err := New(0, 14); err == nil {
		t.Fatalf("expected error for rank 14")
	}
}

func TestStringMatchesContractFormat(t *testing.T) {
	cases := []struct {
		suit uint8
		rank uint8
		want string
	}{
		{0, 1, "♣A"},
		{1, 10, "♦10"},
		{2, 11, "♥J"},
		{3, 13, "♠K"},
	}
	for _, tc := range cases {
		c, err := New(tc.suit, tc.rank)
		if err != nil {
			t.Fatalf("New(%d,%d): %v", tc.suit, tc.rank, err)
		}
		if got := c.String(); got != tc.want {
			t.Fatalf("String(%d,%d)=%q want %q", tc.suit, tc.rank, got, tc.want)
		}
	}
}

func TestParseRoundTripsFullDeck(t *testing.T) {
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(1); rank <= 13; rank++ {
			c, err := New(suit, rank)
			if err != nil {
				t.Fatalf("New(%d,%d): %v", suit, rank, err)
			}
			back, err := Parse(c.String())
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.String(), err)
			}
			if back != c {
				t.Fatalf("Parse(%q)=%d want %d", c.String(), back, c)
			}
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "A♣", "♣", "♣0", "♣11", "XA", "♠14"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("Parse(%q): expected error", s)
		}
	}
}

func TestJSONIsNumberArray(t *testing.T) {
	ace, _ := New(0, 1)
	king, _ := New(3, 13)
	b, err := json.Marshal([]Card{ace, king})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[1,61]" {
		t.Fatalf("got %s want [1,61]", b)
	}

	var back []Card
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0] != ace || back[1] != king {
		t.Fatalf("round trip mismatch: %v", back)
	}
}

func TestJSONRejectsInvalidByte(t *testing.T) {
	var c Card
	for _, raw := range []string{"0", "14", "62", "255", "\"♣A\""} {
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			t.Fatalf("unmarshal %s: expected error", raw)
		}
	}
}

func TestHighRankMapsAceHigh(t *testing.T) {
	ace, _ := New(2, 1)
	if ace.HighRank() != 14 {
		t.Fatalf("ace HighRank=%d want 14", ace.HighRank())
	}
	ten, _ := New(2, 10)
	if ten.HighRank() != 10 {
		t.Fatalf("ten HighRank=%d want 10", ten.HighRank())
	}
}
