package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
	"github.com/FoundationOfBabylone/secret-poker/internal/game"
	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// participantEntry is one row of a players file: the id the contract deals
// to and the permit the player handed this operator.
type participantEntry struct {
	PlayerID uuid.UUID     `json:"player_id"`
	Username string        `json:"username"`
	Permit   permit.Permit `json:"permit"`
}

func loadParticipants(path string) ([]game.Participant, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read players file: %w", err)
	}
	var entries []participantEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode players file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("players file %s is empty", path)
	}
	out := make([]game.Participant, 0, len(entries))
	for _, e := range entries {
		out = append(out, game.Participant{ID: e.PlayerID, Username: e.Username, Permit: e.Permit})
	}
	return out, nil
}

func parseUUIDs(vals []string) ([]uuid.UUID, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(vals))
	for _, v := range vals {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid player id %q: %w", v, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// parseSecret reads a secret the way the wire carries it: a decimal u64
// string, no float detour.
func parseSecret(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid secret %q: %w", s, err)
	}
	return v, nil
}

func optionalSecret(s string) (*wire.Uint64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := parseSecret(s)
	if err != nil {
		return nil, err
	}
	u := wire.Uint64(v)
	return &u, nil
}

func cardStrings(cc []cards.Card) []string {
	out := make([]string, 0, len(cc))
	for _, c := range cc {
		out = append(out, c.String())
	}
	return out
}

func secretString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseState(arg string) (wire.GameState, error) {
	state := wire.GameState(arg)
	switch state {
	case wire.StateFlop, wire.StateTurn, wire.StateRiver:
		return state, nil
	}
	return "", fmt.Errorf("unknown street %q, want flop, turn or river", arg)
}
