package game

import (
	"context"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
	"github.com/FoundationOfBabylone/secret-poker/internal/compute"
	"github.com/FoundationOfBabylone/secret-poker/internal/holdem"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// ShowdownHand is one revealed seat in the resolved hand.
type ShowdownHand struct {
	PlayerID uuid.UUID
	Username string
	Hole     [2]cards.Card
	Rank     holdem.HandRank
}

// ShowdownResult is the resolved hand: the full board, every revealed hand
// ranked strongest first, and the winners. The contract proves which cards
// players held; the ordering is derived here.
type ShowdownResult struct {
	TableID uint32
	HandRef uint32
	Board   []cards.Card
	Hands   []ShowdownHand
	Winners []uuid.UUID
	Source  RevealSource
}

// ResolveShowdown resolves the hand. It requires an explicitly submitted
// hand secret from every participant; anything less is an
// IncompleteShowdownError naming the absent ids. With allIn the hand may
// resolve before the river, going straight to the execute path so the
// contract can complete the unreached board.
func (c *Controller) ResolveShowdown(ctx context.Context, allIn bool) (*ShowdownResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ledger == nil {
		return nil, ErrNoHand
	}
	if c.phase == PhaseResolved {
		return nil, ErrHandResolved
	}
	if c.phase != PhaseShowdown && !allIn {
		return nil, errorsmod.Wrapf(ErrPhaseOrder,
			"hand is waiting for %s; showdown needs the river revealed unless all-in", c.phase)
	}

	ordered := c.ledger.Participants()
	absent := []uuid.UUID{}
	for _, id := range ordered {
		if _, ok := c.handSecrets[id]; !ok {
			absent = append(absent, id)
		}
	}
	if len(absent) > 0 {
		return nil, &IncompleteShowdownError{Absent: absent}
	}

	playerSecrets := make([]wire.Uint64, 0, len(ordered))
	for _, id := range ordered {
		playerSecrets = append(playerSecrets, wire.Uint64(c.handSecrets[id]))
	}
	secretOf := func(state wire.GameState) *wire.Uint64 {
		if s, ok := c.phaseSecrets[state]; ok {
			v := wire.Uint64(s)
			return &v
		}
		return nil
	}

	var resp *wire.ShowdownResponse
	source := SourceQuery
	if c.phase == PhaseShowdown {
		r, err := c.client.Showdown(ctx, wire.ShowdownQuery{
			TableID:        c.tableID,
			FlopSecret:     secretOf(wire.StateFlop),
			TurnSecret:     secretOf(wire.StateTurn),
			RiverSecret:    secretOf(wire.StateRiver),
			PlayersSecrets: playerSecrets,
		})
		switch {
		case err == nil:
			resp = r
		case !fallbackEligible(err):
			return nil, err
		case c.showdownFellBack:
			return nil, errorsmod.Wrapf(ErrFallbackExhausted, "showdown: %v", err)
		default:
			c.showdownFellBack = true
			c.logger.Warn("showdown falling back to execute", "reason", err)
		}
	}
	if resp == nil {
		source = SourceExecute
		r, err := c.client.ExecuteShowdown(ctx, wire.ShowdownMsg{
			TableID:        c.tableID,
			PlayersSecrets: playerSecrets,
			FlopSecret:     secretOf(wire.StateFlop),
			TurnSecret:     secretOf(wire.StateTurn),
			RiverSecret:    secretOf(wire.StateRiver),
			ShowCards:      ordered,
			AllInShowdown:  c.phase != PhaseShowdown,
		})
		if err != nil {
			return nil, err
		}
		resp = r
	}

	result, err := c.buildResult(resp, source)
	if err != nil {
		return nil, err
	}
	c.result = result
	c.lastShowCards = ordered
	c.phase = PhaseResolved
	c.logger.Info("hand resolved",
		"hand", c.handRef, "winners", len(result.Winners), "source", source)
	return result, nil
}

func (c *Controller) buildResult(resp *wire.ShowdownResponse, source RevealSource) (*ShowdownResult, error) {
	if resp.TableID != c.tableID || resp.HandRef != c.handRef {
		return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
			"showdown answered for table %d hand %d", resp.TableID, resp.HandRef)
	}

	board, err := c.assembleBoard(resp.CommunityCards)
	if err != nil {
		return nil, err
	}

	holes := make(map[uuid.UUID][2]cards.Card, len(resp.PlayersCards))
	for _, pc := range resp.PlayersCards {
		if _, ok := c.byID[pc.PlayerID]; !ok {
			return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
				"showdown revealed cards for unknown player %s", pc.PlayerID)
		}
		if _, dup := holes[pc.PlayerID]; dup {
			return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
				"showdown revealed player %s twice", pc.PlayerID)
		}
		if len(pc.Cards) != 2 {
			return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
				"player %s revealed %d cards, want 2", pc.PlayerID, len(pc.Cards))
		}
		holes[pc.PlayerID] = [2]cards.Card{pc.Cards[0], pc.Cards[1]}
	}
	if len(holes) == 0 {
		return nil, errorsmod.Wrap(compute.ErrMalformedResponse, "showdown revealed no hands")
	}

	ranked, err := holdem.Rankings(board, holes)
	if err != nil {
		return nil, errorsmod.Wrap(compute.ErrMalformedResponse, err.Error())
	}
	hands := make([]ShowdownHand, 0, len(ranked))
	for _, r := range ranked {
		hands = append(hands, ShowdownHand{
			PlayerID: r.PlayerID,
			Username: c.byID[r.PlayerID].Username,
			Hole:     r.Hole,
			Rank:     r.Rank,
		})
	}
	winners := []uuid.UUID{ranked[0].PlayerID}
	for _, r := range ranked[1:] {
		if holdem.CompareHandRank(r.Rank, ranked[0].Rank) != 0 {
			break
		}
		winners = append(winners, r.PlayerID)
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].String() < winners[j].String() })

	return &ShowdownResult{
		TableID: c.tableID,
		HandRef: c.handRef,
		Board:   board,
		Hands:   hands,
		Winners: winners,
		Source:  source,
	}, nil
}

// assembleBoard builds the 5-card board from the streets revealed during the
// hand plus the showdown response's card list. The response lists cards for
// exactly the streets whose secrets the request supplied, in street order,
// plus any streets the all-in execute path completed; cards for streets we
// already hold are skipped as duplicates.
func (c *Controller) assembleBoard(extra []cards.Card) ([]cards.Card, error) {
	board := make([]cards.Card, 0, 5)
	rest := extra
	for _, state := range wire.CommunityStates() {
		n := state.RevealCount()
		if cc, ok := c.phaseCards[state]; ok {
			board = append(board, cc...)
			if _, supplied := c.phaseSecrets[state]; supplied && len(rest) >= n {
				rest = rest[n:]
			}
			continue
		}
		if len(rest) < n {
			return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
				"board incomplete: %s missing and showdown supplied %d cards", state, len(extra))
		}
		board = append(board, rest[:n]...)
		rest = rest[n:]
	}
	return board, nil
}
