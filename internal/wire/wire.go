// Package wire defines the poker contract's JSON protocol: execute and query
// message variants, the tagged response payload union logged by the contract,
// and the string-encoded integers the protocol uses for secrets.
//
// Shapes here must match the deployed contract byte for byte; change nothing
// without a coordinated contract migration.
package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Uint64 is a u64 that crosses JSON boundaries as a decimal string.
//
// Secrets and shares are sent as strings because not every caller can
// represent the full 64-bit range natively. Decoding is exact: quoted decimal
// digits only, never a float path.
type Uint64 uint64

func (u Uint64) String() string {
	return strconv.FormatUint(uint64(u), 10)
}

func (u Uint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("u64 field must be a decimal string: %w", err)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid u64 string %q: %w", s, err)
	}
	*u = Uint64(n)
	return nil
}

// ParseUint64 decodes a bare decimal string (no JSON quoting).
func ParseUint64(s string) (Uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid u64 string %q: %w", s, err)
	}
	return Uint64(n), nil
}

// OptUint64 is a convenience for the protocol's optional secret fields.
func OptUint64(v uint64) *Uint64 {
	u := Uint64(v)
	return &u
}

// GameState is the contract's hand state. Only Flop/Turn/River reveal
// community cards; PreFlop exists on the wire but is never a reveal target.
type GameState string

const (
	StatePreFlop GameState = "pre_flop"
	StateFlop    GameState = "flop"
	StateTurn    GameState = "turn"
	StateRiver   GameState = "river"
)

func (s GameState) Valid() bool {
	switch s {
	case StatePreFlop, StateFlop, StateTurn, StateRiver:
		return true
	}
	return false
}

// CommunityState reports whether s is a board-revealing state.
func (s GameState) CommunityState() bool {
	switch s {
	case StateFlop, StateTurn, StateRiver:
		return true
	}
	return false
}

// Next returns the state that follows s in hand order, or false at River.
func (s GameState) Next() (GameState, bool) {
	switch s {
	case StatePreFlop:
		return StateFlop, true
	case StateFlop:
		return StateTurn, true
	case StateTurn:
		return StateRiver, true
	}
	return "", false
}

// RevealCount is the number of board cards s reveals: 3 for the flop, 1 for
// turn and river, 0 otherwise.
func (s GameState) RevealCount() int {
	switch s {
	case StateFlop:
		return 3
	case StateTurn, StateRiver:
		return 1
	}
	return 0
}

// CommunityStates lists the board-revealing states in deal order.
func CommunityStates() []GameState {
	return []GameState{StateFlop, StateTurn, StateRiver}
}
