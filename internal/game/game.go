// Package game drives one table's hand through its reveal phases: flop, turn
// and river off reconstructed phase secrets, then a showdown resolved from
// explicitly submitted hand secrets. Each street is served by the contract's
// query path when possible and by a single execute fallback when not.
package game

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
	"github.com/FoundationOfBabylone/secret-poker/internal/compute"
	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
	"github.com/FoundationOfBabylone/secret-poker/internal/shares"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// Phase is what the hand is currently waiting for.
type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	case PhaseShowdown:
		return "showdown"
	case PhaseResolved:
		return "resolved"
	}
	return "unknown"
}

// GameState maps a board phase to its wire state; false for the others.
func (p Phase) GameState() (wire.GameState, bool) {
	switch p {
	case PhaseFlop:
		return wire.StateFlop, true
	case PhaseTurn:
		return wire.StateTurn, true
	case PhaseRiver:
		return wire.StateRiver, true
	}
	return "", false
}

func (p Phase) next() Phase {
	switch p {
	case PhaseFlop:
		return PhaseTurn
	case PhaseTurn:
		return PhaseRiver
	case PhaseRiver:
		return PhaseShowdown
	case PhaseShowdown:
		return PhaseResolved
	}
	return p
}

// Participant is one seat at the table: the id the contract deals to and the
// permit this operator holds for reading that seat's phase shares.
type Participant struct {
	ID       uuid.UUID
	Username string
	Permit   permit.Permit
}

// ContractClient is the contract surface the controller drives.
// *compute.Client satisfies it.
type ContractClient interface {
	StartGame(ctx context.Context, msg wire.StartGameMsg) (*compute.StartHandResult, error)
	PlayerPrivateData(ctx context.Context, p permit.Permit, tableID uint32) (*wire.PlayerData, error)
	CommunityCards(ctx context.Context, tableID uint32, state wire.GameState, secret uint64) (*wire.CommunityCardsResponse, error)
	Showdown(ctx context.Context, q wire.ShowdownQuery) (*wire.ShowdownResponse, error)
	ExecuteCommunityCards(ctx context.Context, tableID uint32, state wire.GameState) (*wire.CommunityCardsResponse, error)
	ExecuteShowdown(ctx context.Context, msg wire.ShowdownMsg) (*wire.ShowdownResponse, error)
}

// Controller runs one table. Operations serialize on c.mu; the contract is
// the source of truth and the controller never invents card data.
type Controller struct {
	client  ContractClient
	logger  log.Logger
	tableID uint32

	mu           sync.Mutex
	phase        Phase
	handRef      uint32
	participants []Participant
	byID         map[uuid.UUID]Participant
	ledger       *shares.Ledger

	board        []cards.Card
	phaseCards   map[wire.GameState][]cards.Card
	phaseSecrets map[wire.GameState]uint64
	fallbackUsed map[wire.GameState]bool
	reports      []PhaseReport

	handSecrets      map[uuid.UUID]uint64
	showdownFellBack bool
	lastShowCards    []uuid.UUID

	prevHand *wire.LastHandLog
	result   *ShowdownResult
}

func NewController(client ContractClient, tableID uint32, logger log.Logger) *Controller {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Controller{
		client:  client,
		logger:  logger.With("module", ModuleName, "table", tableID),
		tableID: tableID,
		phase:   PhaseInit,
	}
}

// HandInfo describes a freshly started hand.
type HandInfo struct {
	TableID  uint32
	HandRef  uint32
	Players  []string
	PrevHand *wire.LastHandLog
}

// StartHand deals a new hand for the given participants. Legal from a fresh
// controller or a resolved hand. prevShowdown names the players that showed
// cards last hand; nil means whoever showed in the hand this controller just
// resolved.
func (c *Controller) StartHand(ctx context.Context, participants []Participant, prevShowdown []uuid.UUID) (*HandInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseInit && c.phase != PhaseResolved {
		return nil, errorsmod.Wrapf(ErrPhaseOrder, "cannot start a hand during %s", c.phase)
	}
	if len(participants) < wire.MinPlayers || len(participants) > wire.MaxPlayers {
		return nil, errorsmod.Wrapf(ErrBadParticipants, "%d participants outside %d..%d",
			len(participants), wire.MinPlayers, wire.MaxPlayers)
	}
	byID := make(map[uuid.UUID]Participant, len(participants))
	for _, p := range participants {
		if p.ID == uuid.Nil {
			return nil, errorsmod.Wrap(ErrBadParticipants, "nil participant id")
		}
		if p.Username == "" {
			return nil, errorsmod.Wrapf(ErrBadParticipants, "participant %s has no username", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, errorsmod.Wrapf(ErrBadParticipants, "duplicate participant %s", p.ID)
		}
		if err := permit.Verify(p.Permit); err != nil {
			return nil, errorsmod.Wrapf(ErrBadParticipants, "participant %s permit: %v", p.ID, err)
		}
		byID[p.ID] = p
	}

	if prevShowdown == nil {
		prevShowdown = c.lastShowCards
	}
	msg := wire.StartGameMsg{
		TableID:                 c.tableID,
		HandRef:                 c.handRef + 1,
		PrevHandShowdownPlayers: prevShowdown,
	}
	for _, p := range participants {
		msg.Players = append(msg.Players, wire.StartGamePlayer{
			Username:  p.Username,
			PlayerID:  p.ID,
			PublicKey: base64.StdEncoding.EncodeToString(p.Permit.Signature.PubKey.Value),
		})
	}

	res, err := c.client.StartGame(ctx, msg)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	ledger, err := shares.NewLedger(c.tableID, res.StartGame.HandRef, ids)
	if err != nil {
		return nil, err
	}

	c.phase = PhaseFlop
	c.handRef = res.StartGame.HandRef
	c.participants = append([]Participant(nil), participants...)
	c.byID = byID
	c.ledger = ledger
	c.board = nil
	c.phaseCards = map[wire.GameState][]cards.Card{}
	c.phaseSecrets = map[wire.GameState]uint64{}
	c.fallbackUsed = map[wire.GameState]bool{}
	c.reports = nil
	c.handSecrets = map[uuid.UUID]uint64{}
	c.showdownFellBack = false
	c.prevHand = res.PrevHand
	c.result = nil

	c.logger.Info("hand started", "hand", c.handRef, "players", len(participants))
	return &HandInfo{
		TableID:  c.tableID,
		HandRef:  c.handRef,
		Players:  res.StartGame.Players,
		PrevHand: res.PrevHand,
	}, nil
}

func (c *Controller) TableID() uint32 { return c.tableID }

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) HandRef() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handRef
}

// Board returns the community cards revealed so far, in deal order.
func (c *Controller) Board() []cards.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]cards.Card(nil), c.board...)
}

// PrevHandLog returns the previous hand's plaintext summary, if the start of
// this hand produced one.
func (c *Controller) PrevHandLog() *wire.LastHandLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prevHand
}

// Reports returns the per-street reveal reports so far.
func (c *Controller) Reports() []PhaseReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PhaseReport(nil), c.reports...)
}

// Result returns the showdown outcome once the hand is resolved.
func (c *Controller) Result() *ShowdownResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// MissingShares lists participants whose share for state has not arrived.
func (c *Controller) MissingShares(state wire.GameState) ([]uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return nil, ErrNoHand
	}
	return c.ledger.Missing(state), nil
}

// SubmitShare records a participant's phase share received out of band, e.g.
// pushed by the player's own client instead of pulled through a permit query.
func (c *Controller) SubmitShare(playerID uuid.UUID, state wire.GameState, share uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return ErrNoHand
	}
	return c.ledger.Put(state, playerID, share)
}

// SubmitHandSecret stages a participant's hand secret for the showdown.
// Secrets seen in private-data responses are never staged; revealing hole
// cards is each player's explicit choice, made by calling this.
func (c *Controller) SubmitHandSecret(playerID uuid.UUID, secret uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return ErrNoHand
	}
	if c.phase == PhaseResolved {
		return ErrHandResolved
	}
	if _, ok := c.byID[playerID]; !ok {
		return errorsmod.Wrap(ErrUnknownParticipant, playerID.String())
	}
	if prev, ok := c.handSecrets[playerID]; ok && prev != secret {
		return fmt.Errorf("conflicting hand secret for %s", playerID)
	}
	c.handSecrets[playerID] = secret
	return nil
}
