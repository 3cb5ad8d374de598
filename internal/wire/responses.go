package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
)

type ResponseType string

const (
	ResponseStartGame      ResponseType = "start_game"
	ResponseLastHand       ResponseType = "last_hand"
	ResponseCommunityCards ResponseType = "community_cards"
	ResponseShowdown       ResponseType = "showdown"
)

// PlayerData answers a permit-authenticated private data query: the signer's
// hole cards, hand secret, and one additive share of each phase secret.
type PlayerData struct {
	TableID          uint32       `json:"table_id"`
	HandRef          uint32       `json:"hand_ref"`
	Hand             []cards.Card `json:"hand"`
	HandSecret       Uint64       `json:"hand_secret"`
	FlopSecretShare  Uint64       `json:"flop_secret_share"`
	TurnSecretShare  Uint64       `json:"turn_secret_share"`
	RiverSecretShare Uint64       `json:"river_secret_share"`
}

// PhaseShare picks the share for one board state; false for non-board states.
func (d *PlayerData) PhaseShare(state GameState) (Uint64, bool) {
	switch state {
	case StateFlop:
		return d.FlopSecretShare, true
	case StateTurn:
		return d.TurnSecretShare, true
	case StateRiver:
		return d.RiverSecretShare, true
	}
	return 0, false
}

type StartGameResponse struct {
	TableID uint32   `json:"table_id"`
	HandRef uint32   `json:"hand_ref"`
	Players []string `json:"players"`
}

type CommunityCardsResponse struct {
	TableID        uint32       `json:"table_id"`
	HandRef        uint32       `json:"hand_ref"`
	GameState      GameState    `json:"game_state"`
	CommunityCards []cards.Card `json:"community_cards"`
}

// PlayerCards pairs a player with their revealed hole cards. On the wire it
// is a two-element tuple: [player_id, [card, card]].
type PlayerCards struct {
	PlayerID uuid.UUID
	Cards    []cards.Card
}

func (p PlayerCards) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.PlayerID, p.Cards})
}

func (p *PlayerCards) UnmarshalJSON(b []byte) error {
	var tup []json.RawMessage
	if err := json.Unmarshal(b, &tup); err != nil {
		return fmt.Errorf("players_cards entry: %w", err)
	}
	if len(tup) != 2 {
		return fmt.Errorf("players_cards entry: want 2 elements, got %d", len(tup))
	}
	if err := json.Unmarshal(tup[0], &p.PlayerID); err != nil {
		return fmt.Errorf("players_cards player id: %w", err)
	}
	if err := json.Unmarshal(tup[1], &p.Cards); err != nil {
		return fmt.Errorf("players_cards cards: %w", err)
	}
	return nil
}

type ShowdownResponse struct {
	TableID      uint32        `json:"table_id"`
	HandRef      uint32        `json:"hand_ref"`
	PlayersCards []PlayerCards `json:"players_cards"`

	// Board cards for exactly the states whose secrets the request supplied,
	// concatenated in state order: flop(3), turn(1), river(1). The all-in
	// execute path may also complete an unreached board here.
	CommunityCards []cards.Card `json:"community_cards,omitempty"`
}

// ShowdownPlayer is a last-hand log entry: cards as display strings, the
// form the contract logs for audits.
type ShowdownPlayer struct {
	Username string   `json:"username"`
	Hand     []string `json:"hand"`
}

// LastHandLog is the plaintext audit record of a table's previous hand.
// Retrieved-at stamps are nanosecond timestamps, string-encoded like every
// u64 on this wire; nil means the phase was never retrieved.
type LastHandLog struct {
	ShowdownPlayers     []ShowdownPlayer `json:"showdown_players"`
	CommunityCards      []string         `json:"community_cards"`
	FlopRetrievedAt     *Uint64          `json:"flop_retrieved_at"`
	TurnRetrievedAt     *Uint64          `json:"turn_retrieved_at"`
	RiverRetrievedAt    *Uint64          `json:"river_retrieved_at"`
	ShowdownRetrievedAt *Uint64          `json:"showdown_retrieved_at"`
}

// ResponsePayload is the tagged union the contract logs under the response
// attribute. Exactly one variant is set, matching Type.
type ResponsePayload struct {
	Type           ResponseType
	StartGame      *StartGameResponse
	LastHand       *LastHandLog
	CommunityCards *CommunityCardsResponse
	Showdown       *ShowdownResponse
}

// DecodeResponsePayload parses the internally tagged form
// {"type": "...", ...fields}.
func DecodeResponsePayload(b []byte) (ResponsePayload, error) {
	var tag struct {
		Type ResponseType `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return ResponsePayload{}, fmt.Errorf("invalid response payload: %w", err)
	}
	out := ResponsePayload{Type: tag.Type}
	switch tag.Type {
	case ResponseStartGame:
		out.StartGame = &StartGameResponse{}
		if err := json.Unmarshal(b, out.StartGame); err != nil {
			return ResponsePayload{}, fmt.Errorf("invalid start_game payload: %w", err)
		}
	case ResponseLastHand:
		out.LastHand = &LastHandLog{}
		if err := json.Unmarshal(b, out.LastHand); err != nil {
			return ResponsePayload{}, fmt.Errorf("invalid last_hand payload: %w", err)
		}
	case ResponseCommunityCards:
		out.CommunityCards = &CommunityCardsResponse{}
		if err := json.Unmarshal(b, out.CommunityCards); err != nil {
			return ResponsePayload{}, fmt.Errorf("invalid community_cards payload: %w", err)
		}
	case ResponseShowdown:
		out.Showdown = &ShowdownResponse{}
		if err := json.Unmarshal(b, out.Showdown); err != nil {
			return ResponsePayload{}, fmt.Errorf("invalid showdown payload: %w", err)
		}
	default:
		return ResponsePayload{}, fmt.Errorf("unknown response type %q", tag.Type)
	}
	return out, nil
}

// EncodeResponsePayload produces the internally tagged form. The fake
// contract in tests and the log tooling share this with DecodeResponsePayload.
func EncodeResponsePayload(p ResponsePayload) ([]byte, error) {
	var inner any
	switch p.Type {
	case ResponseStartGame:
		inner = p.StartGame
	case ResponseLastHand:
		inner = p.LastHand
	case ResponseCommunityCards:
		inner = p.CommunityCards
	case ResponseShowdown:
		inner = p.Showdown
	default:
		return nil, fmt.Errorf("unknown response type %q", p.Type)
	}
	if inner == nil || isNilPtr(inner) {
		return nil, fmt.Errorf("response type %q has no payload", p.Type)
	}
	body, err := json.Marshal(inner)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Type, err)
	}
	tag, err := json.Marshal(struct {
		Type ResponseType `json:"type"`
	}{p.Type})
	if err != nil {
		return nil, err
	}
	if bytes.Equal(body, []byte("{}")) {
		return tag, nil
	}
	// Splice the tag object and the body object together.
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag[:len(tag)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

func isNilPtr(v any) bool {
	switch t := v.(type) {
	case *StartGameResponse:
		return t == nil
	case *LastHandLog:
		return t == nil
	case *CommunityCardsResponse:
		return t == nil
	case *ShowdownResponse:
		return t == nil
	}
	return false
}
