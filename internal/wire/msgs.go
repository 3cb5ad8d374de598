package wire

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
)

// Table size limits enforced by the contract; checked here so a bad request
// fails before it is signed and broadcast.
const (
	MinPlayers = 2
	MaxPlayers = 9
)

// ExecuteMsg is a state-changing contract message. Variants marshal
// externally tagged: {"start_game": {...}}.
type ExecuteMsg interface {
	MsgName() string
	Validate() error
}

// QueryMsg is a read-only contract message, tagged the same way.
type QueryMsg interface {
	QueryName() string
	Validate() error
}

func marshalTagged(name string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return json.Marshal(map[string]json.RawMessage{name: body})
}

// MarshalExecuteMsg validates and encodes m in the contract's tagged form.
func MarshalExecuteMsg(m ExecuteMsg) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", m.MsgName(), err)
	}
	return marshalTagged(m.MsgName(), m)
}

// MarshalQueryMsg validates and encodes q in the contract's tagged form.
func MarshalQueryMsg(q QueryMsg) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", q.QueryName(), err)
	}
	return marshalTagged(q.QueryName(), q)
}

// ---- Execute ----

type StartGamePlayer struct {
	Username  string    `json:"username"`
	PlayerID  uuid.UUID `json:"player_id"`
	PublicKey string    `json:"public_key"`
}

type StartGameMsg struct {
	TableID uint32            `json:"table_id"`
	HandRef uint32            `json:"hand_ref"`
	Players []StartGamePlayer `json:"players"`

	// Player ids that showed cards in the table's previous hand; drives the
	// plaintext last-hand audit log in the response.
	PrevHandShowdownPlayers []uuid.UUID `json:"prev_hand_showdown_players"`
}

func (m StartGameMsg) MsgName() string { return "start_game" }

func (m StartGameMsg) Validate() error {
	if len(m.Players) < MinPlayers || len(m.Players) > MaxPlayers {
		return fmt.Errorf("player count %d outside %d..%d", len(m.Players), MinPlayers, MaxPlayers)
	}
	keys := make(map[string]bool, len(m.Players))
	ids := make(map[uuid.UUID]bool, len(m.Players))
	for i, p := range m.Players {
		if p.Username == "" {
			return fmt.Errorf("player %d: missing username", i)
		}
		if p.PublicKey == "" {
			return fmt.Errorf("player %d: missing public key", i)
		}
		if p.PlayerID == uuid.Nil {
			return fmt.Errorf("player %d: missing player id", i)
		}
		if keys[p.PublicKey] {
			return fmt.Errorf("duplicate public key %q", p.PublicKey)
		}
		if ids[p.PlayerID] {
			return fmt.Errorf("duplicate player id %s", p.PlayerID)
		}
		keys[p.PublicKey] = true
		ids[p.PlayerID] = true
	}
	return nil
}

// MarshalJSON normalizes nil slices: the contract expects arrays, never null.
func (m StartGameMsg) MarshalJSON() ([]byte, error) {
	type alias StartGameMsg
	a := alias(m)
	if a.Players == nil {
		a.Players = []StartGamePlayer{}
	}
	if a.PrevHandShowdownPlayers == nil {
		a.PrevHandShowdownPlayers = []uuid.UUID{}
	}
	return json.Marshal(a)
}

// CommunityCardsMsg advances the hand to a board-revealing state on-chain.
// It is the execution fallback for a reveal the query path could not serve.
type CommunityCardsMsg struct {
	TableID   uint32    `json:"table_id"`
	GameState GameState `json:"game_state"`
}

func (m CommunityCardsMsg) MsgName() string { return "community_cards" }

func (m CommunityCardsMsg) Validate() error {
	if !m.GameState.CommunityState() {
		return fmt.Errorf("game state %q reveals no community cards", m.GameState)
	}
	return nil
}

// ShowdownMsg resolves the hand on-chain from explicitly submitted secrets.
// Phase secrets are optional: a hand may end before reaching them, or a
// reveal may have gone through the execute path without reconstruction.
type ShowdownMsg struct {
	TableID        uint32      `json:"table_id"`
	PlayersSecrets []Uint64    `json:"players_secrets"`
	FlopSecret     *Uint64     `json:"flop_secret,omitempty"`
	TurnSecret     *Uint64     `json:"turn_secret,omitempty"`
	RiverSecret    *Uint64     `json:"river_secret,omitempty"`
	ShowCards      []uuid.UUID `json:"show_cards,omitempty"`
	AllInShowdown  bool        `json:"all_in_showdown"`
}

func (m ShowdownMsg) MsgName() string { return "showdown" }

func (m ShowdownMsg) Validate() error {
	if len(m.PlayersSecrets) == 0 {
		return fmt.Errorf("no player secrets")
	}
	return nil
}

func (m ShowdownMsg) MarshalJSON() ([]byte, error) {
	type alias ShowdownMsg
	a := alias(m)
	if a.PlayersSecrets == nil {
		a.PlayersSecrets = []Uint64{}
	}
	return json.Marshal(a)
}

// ---- Query ----

// PlayerPrivateDataQuery reads the signer's hole cards, hand secret and
// phase shares. Wrapped in a WithPermitQuery; never sent bare.
type PlayerPrivateDataQuery struct {
	TableID uint32 `json:"table_id"`
}

// WithPermitQuery authenticates an inner query with an offline-signed permit.
type WithPermitQuery struct {
	Permit permit.Permit   `json:"permit"`
	Query  permitQueryBody `json:"query"`
}

type permitQueryBody struct {
	PlayerPrivateData *PlayerPrivateDataQuery `json:"player_private_data,omitempty"`
}

// NewPrivateDataQuery wraps q under p.
func NewPrivateDataQuery(p permit.Permit, q PlayerPrivateDataQuery) WithPermitQuery {
	return WithPermitQuery{Permit: p, Query: permitQueryBody{PlayerPrivateData: &q}}
}

func (q WithPermitQuery) QueryName() string { return "with_permit" }

func (q WithPermitQuery) Validate() error {
	if q.Query.PlayerPrivateData == nil {
		return fmt.Errorf("missing inner query")
	}
	return permit.Verify(q.Permit)
}

// CommunityCardsQuery reveals a board state's cards to anyone holding the
// reconstructed phase secret. No permit: possession is the proof.
type CommunityCardsQuery struct {
	TableID   uint32    `json:"table_id"`
	GameState GameState `json:"game_state"`
	SecretKey Uint64    `json:"secret_key"`
}

func (q CommunityCardsQuery) QueryName() string { return "community_cards" }

func (q CommunityCardsQuery) Validate() error {
	if !q.GameState.CommunityState() {
		return fmt.Errorf("game state %q reveals no community cards", q.GameState)
	}
	return nil
}

// ShowdownQuery reveals showdown hands to holders of the participants' hand
// secrets plus whichever phase secrets were reached and reconstructed.
type ShowdownQuery struct {
	TableID        uint32   `json:"table_id"`
	FlopSecret     *Uint64  `json:"flop_secret,omitempty"`
	TurnSecret     *Uint64  `json:"turn_secret,omitempty"`
	RiverSecret    *Uint64  `json:"river_secret,omitempty"`
	PlayersSecrets []Uint64 `json:"players_secrets"`
}

func (q ShowdownQuery) QueryName() string { return "showdown" }

func (q ShowdownQuery) Validate() error {
	if len(q.PlayersSecrets) == 0 {
		return fmt.Errorf("no player secrets")
	}
	return nil
}

func (q ShowdownQuery) MarshalJSON() ([]byte, error) {
	type alias ShowdownQuery
	a := alias(q)
	if a.PlayersSecrets == nil {
		a.PlayersSecrets = []Uint64{}
	}
	return json.Marshal(a)
}
