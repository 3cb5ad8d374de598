package holdem

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
)

// RankedPlayer is one showdown entrant's evaluated hand.
type RankedPlayer struct {
	PlayerID uuid.UUID
	Hole     [2]cards.Card
	Rank     HandRank
}

// Rankings evaluates each player's best hand over the 5-card board and
// orders the result strongest first. Ties keep contiguous positions, ordered
// by player id for determinism.
func Rankings(board []cards.Card, holes map[uuid.UUID][2]cards.Card) ([]RankedPlayer, error) {
	if len(board) != 5 {
		return nil, fmt.Errorf("rankings expected 5 board cards, got %d", len(board))
	}
	if err := assertDistinct(board, "board"); err != nil {
		return nil, err
	}
	if len(holes) == 0 {
		return nil, errors.New("no hands to rank")
	}

	entries := make([]RankedPlayer, 0, len(holes))
	for id, hole := range holes {
		entries = append(entries, RankedPlayer{PlayerID: id, Hole: hole})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PlayerID.String() < entries[j].PlayerID.String()
	})

	for i := range entries {
		e := &entries[i]
		cards7 := []cards.Card{board[0], board[1], board[2], board[3], board[4], e.Hole[0], e.Hole[1]}
		if err := assertDistinct(cards7, fmt.Sprintf("player %s cards", e.PlayerID)); err != nil {
			return nil, err
		}
		r, err := Evaluate7(cards7)
		if err != nil {
			return nil, err
		}
		e.Rank = r
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return CompareHandRank(entries[i].Rank, entries[j].Rank) == 1
	})
	return entries, nil
}

// Winners returns the best-ranked player ids, sorted.
func Winners(board []cards.Card, holes map[uuid.UUID][2]cards.Card) ([]uuid.UUID, error) {
	ranked, err := Rankings(board, holes)
	if err != nil {
		return nil, err
	}
	out := []uuid.UUID{ranked[0].PlayerID}
	for _, e := range ranked[1:] {
		if CompareHandRank(e.Rank, ranked[0].Rank) != 0 {
			break
		}
		out = append(out, e.PlayerID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}
