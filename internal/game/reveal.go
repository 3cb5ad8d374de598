package game

import (
	"context"
	"errors"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
	"github.com/FoundationOfBabylone/secret-poker/internal/compute"
	"github.com/FoundationOfBabylone/secret-poker/internal/shares"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// RevealSource says which contract path served a street.
type RevealSource string

const (
	SourceQuery   RevealSource = "query"
	SourceExecute RevealSource = "execute"
)

// PhaseReport describes how one street went. When the execute fallback was
// needed and also failed, Err carries the failure and Cards is empty; the
// hand still advances so later streets are not blocked behind a lost one.
type PhaseReport struct {
	State  wire.GameState
	Cards  []cards.Card
	Secret *uint64
	Source RevealSource
	Err    error
}

// Reveal serves the given street: gather missing shares, reconstruct the
// phase secret, read the cards off the query path, and fall back to a single
// execute when the query path is unusable. state must be the street the hand
// is waiting for.
func (c *Controller) Reveal(ctx context.Context, state wire.GameState) (*PhaseReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revealLocked(ctx, state)
}

// RevealNext serves whatever street the hand is waiting for.
func (c *Controller) RevealNext(ctx context.Context) (*PhaseReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.phase.GameState()
	if !ok {
		switch c.phase {
		case PhaseInit:
			return nil, ErrNoHand
		case PhaseResolved:
			return nil, ErrHandResolved
		default:
			return nil, errorsmod.Wrapf(ErrPhaseOrder, "hand is waiting for %s", c.phase)
		}
	}
	return c.revealLocked(ctx, state)
}

func (c *Controller) revealLocked(ctx context.Context, state wire.GameState) (*PhaseReport, error) {
	if c.ledger == nil {
		return nil, ErrNoHand
	}
	if c.phase == PhaseResolved {
		return nil, ErrHandResolved
	}
	want, ok := c.phase.GameState()
	if !ok {
		return nil, errorsmod.Wrapf(ErrPhaseOrder, "hand is waiting for %s, not a board reveal", c.phase)
	}
	if state != want {
		return nil, errorsmod.Wrapf(ErrPhaseOrder, "next street is %s, not %s", want, state)
	}

	c.gatherShares(ctx, state)

	var queryErr error
	var secretPtr *uint64
	secret, err := c.ledger.Reconstruct(state)
	var missing *shares.MissingSharesError
	switch {
	case err == nil:
		secretPtr = &secret
		resp, qerr := c.client.CommunityCards(ctx, c.tableID, state, secret)
		if qerr == nil {
			return c.acceptStreet(state, resp, secretPtr, SourceQuery)
		}
		if !fallbackEligible(qerr) {
			return nil, qerr
		}
		queryErr = qerr
	case errors.As(err, &missing):
		queryErr = err
	default:
		return nil, err
	}

	// Query path confirmed unusable for this street; execute exactly once.
	if c.fallbackUsed[state] {
		return nil, errorsmod.Wrapf(ErrFallbackExhausted, "%s: %v", state, queryErr)
	}
	c.fallbackUsed[state] = true
	c.logger.Warn("street falling back to execute", "state", state, "reason", queryErr)

	resp, execErr := c.client.ExecuteCommunityCards(ctx, c.tableID, state)
	if execErr != nil {
		// The street's cards are lost for now, but a reconstructed secret is
		// kept: the showdown query can still prove this street later.
		rep := PhaseReport{State: state, Source: SourceExecute, Err: execErr}
		if secretPtr != nil {
			c.phaseSecrets[state] = *secretPtr
			s := *secretPtr
			rep.Secret = &s
		}
		c.reports = append(c.reports, rep)
		c.phase = c.phase.next()
		c.logger.Error("street lost", "state", state, "err", execErr)
		return &rep, nil
	}
	return c.acceptStreet(state, resp, secretPtr, SourceExecute)
}

// fallbackEligible reports whether a query failure licenses the execute
// fallback. Authorization and data errors do not: resending the same request
// through a costlier path cannot fix either.
func fallbackEligible(err error) bool {
	return errors.Is(err, compute.ErrUnavailable) || errors.Is(err, compute.ErrTimeout)
}

func (c *Controller) acceptStreet(state wire.GameState, resp *wire.CommunityCardsResponse, secret *uint64, src RevealSource) (*PhaseReport, error) {
	if resp.TableID != c.tableID || resp.HandRef != c.handRef {
		return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
			"street %s answered for table %d hand %d", state, resp.TableID, resp.HandRef)
	}
	if resp.GameState != state {
		return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
			"asked for %s, contract answered %s", state, resp.GameState)
	}
	if len(resp.CommunityCards) != state.RevealCount() {
		return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
			"%s revealed %d cards, want %d", state, len(resp.CommunityCards), state.RevealCount())
	}
	for _, card := range resp.CommunityCards {
		if !card.Valid() {
			return nil, errorsmod.Wrapf(compute.ErrMalformedResponse,
				"%s revealed invalid card byte %d", state, uint8(card))
		}
	}

	cc := append([]cards.Card(nil), resp.CommunityCards...)
	c.phaseCards[state] = cc
	c.board = append(c.board, cc...)
	rep := PhaseReport{State: state, Cards: cc, Source: src}
	if secret != nil {
		c.phaseSecrets[state] = *secret
		s := *secret
		rep.Secret = &s
	}
	c.reports = append(c.reports, rep)
	c.phase = c.phase.next()
	c.logger.Info("street revealed", "state", state, "source", src, "cards", len(cc))
	return &rep, nil
}

// gatherShares pulls the missing shares for state through each absent
// participant's permit query. Failures leave the share missing; the caller
// decides what a still-incomplete ledger means.
func (c *Controller) gatherShares(ctx context.Context, state wire.GameState) {
	missing := c.ledger.Missing(state)
	if len(missing) == 0 {
		return
	}
	type gathered struct {
		id   uuid.UUID
		data *wire.PlayerData
		err  error
	}
	ch := make(chan gathered, len(missing))
	for _, id := range missing {
		p := c.byID[id]
		go func(p Participant) {
			d, err := c.client.PlayerPrivateData(ctx, p.Permit, c.tableID)
			ch <- gathered{id: p.ID, data: d, err: err}
		}(p)
	}
	for range missing {
		r := <-ch
		if r.err != nil {
			c.logger.Warn("share gather failed", "player", r.id, "state", state, "err", r.err)
			continue
		}
		c.stageShares(r.id, r.data)
	}
}

// stageShares records the phase shares from a private data response. The
// response's hand secret is deliberately ignored; only SubmitHandSecret can
// commit a player to showing cards.
func (c *Controller) stageShares(id uuid.UUID, d *wire.PlayerData) {
	if d.TableID != c.tableID || d.HandRef != c.handRef {
		c.logger.Warn("private data for wrong hand",
			"player", id, "table", d.TableID, "hand", d.HandRef)
		return
	}
	put := func(state wire.GameState, share wire.Uint64) {
		if err := c.ledger.Put(state, id, uint64(share)); err != nil {
			c.logger.Warn("share rejected", "player", id, "state", state, "err", err)
		}
	}
	put(wire.StateFlop, d.FlopSecretShare)
	put(wire.StateTurn, d.TurnSecretShare)
	put(wire.StateRiver, d.RiverSecretShare)
}
