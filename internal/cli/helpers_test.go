package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

func TestParseSecret(t *testing.T) {
	v, err := parseSecret("18446744073709551615")
	require.NoError(t, err)
	require.Equal(t, uint64(18446744073709551615), v)

	for _, bad := range []string{"", "12.5", "1e3", "-1", "0x10", "18446744073709551616"} {
		_, err := parseSecret(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestOptionalSecret(t *testing.T) {
	p, err := optionalSecret("")
	require.NoError(t, err)
	require.Nil(t, p)

	p, err = optionalSecret("42")
	require.NoError(t, err)
	require.Equal(t, wire.Uint64(42), *p)

	_, err = optionalSecret("nope")
	require.Error(t, err)
}

func TestParseUUIDs(t *testing.T) {
	ids, err := parseUUIDs(nil)
	require.NoError(t, err)
	require.Nil(t, ids)

	a := uuid.New()
	b := uuid.New()
	ids, err = parseUUIDs([]string{a.String(), b.String()})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = parseUUIDs([]string{"not-a-uuid"})
	require.ErrorContains(t, err, "not-a-uuid")
}

func TestParseState(t *testing.T) {
	for _, ok := range []string{"flop", "turn", "river"} {
		state, err := parseState(ok)
		require.NoError(t, err)
		require.Equal(t, wire.GameState(ok), state)
	}
	for _, bad := range []string{"", "preflop", "showdown", "Flop"} {
		_, err := parseState(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestCardStrings(t *testing.T) {
	club, err := cards.Parse("♣A")
	require.NoError(t, err)
	diamond, err := cards.Parse("♦7")
	require.NoError(t, err)
	require.Equal(t, []string{"♣A", "♦7"}, cardStrings([]cards.Card{club, diamond}))
	require.Empty(t, cardStrings(nil))
}

func TestLoadParticipants(t *testing.T) {
	signer, err := permit.GenerateSigner("secret1operator")
	require.NoError(t, err)
	pmt, err := permit.Builder{ChainID: "secretdev-1"}.Build(signer, "cards", []string{"secret1cardtable"}, []string{permit.PermissionOwner})
	require.NoError(t, err)

	entries := []participantEntry{
		{PlayerID: uuid.New(), Username: "alice", Permit: pmt},
		{PlayerID: uuid.New(), Username: "bob", Permit: pmt},
	}
	b, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "players.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))

	got, err := loadParticipants(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, entries[0].PlayerID, got[0].ID)
	require.Equal(t, "alice", got[0].Username)
	require.Equal(t, "bob", got[1].Username)
	require.NoError(t, permit.Verify(got[1].Permit))

	_, err = loadParticipants(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o600))
	_, err = loadParticipants(empty)
	require.ErrorContains(t, err, "empty")
}

func TestLoadHandSecrets(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	body := `{"` + a.String() + `": "101", "` + b.String() + `": "18446744073709551615"}`
	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	got, err := loadHandSecrets(path)
	require.NoError(t, err)
	require.Equal(t, wire.Uint64(101), got[a])
	require.Equal(t, wire.Uint64(18446744073709551615), got[b])

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o600))
	_, err = loadHandSecrets(empty)
	require.ErrorContains(t, err, "empty")
}
