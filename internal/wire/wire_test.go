package wire

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
)

func TestUint64RoundTrip(t *testing.T) {
	cases := []struct {
		v    Uint64
		want string
	}{
		{0, `"0"`},
		{16, `"16"`},
		{^Uint64(0), `"18446744073709551615"`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.v)
		if err != nil {
			t.Fatalf("marshal %d: %v", tc.v, err)
		}
		if string(b) != tc.want {
			t.Fatalf("marshal %d: got %s want %s", tc.v, b, tc.want)
		}
		var back Uint64
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != tc.v {
			t.Fatalf("round trip %d: got %d", tc.v, back)
		}
	}
}

func TestUint64RejectsInexactForms(t *testing.T) {
	for _, raw := range []string{`123`, `1.5`, `"1.5"`, `"-1"`, `"abc"`, `""`, `"18446744073709551616"`, `null`, `"1e3"`} {
		var u Uint64
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			t.Fatalf("unmarshal %s: expected error, got %d", raw, u)
		}
	}
}

func TestGameStateOrder(t *testing.T) {
	s := StatePreFlop
	var seen []GameState
	for {
		next, ok := s.Next()
		if !ok {
			break
		}
		seen = append(seen, next)
		s = next
	}
	if len(seen) != 3 || seen[0] != StateFlop || seen[1] != StateTurn || seen[2] != StateRiver {
		t.Fatalf("unexpected state order: %v", seen)
	}
	if StatePreFlop.CommunityState() {
		t.Fatalf("pre_flop must not be a community state")
	}
	for _, cs := range []GameState{StateFlop, StateTurn, StateRiver} {
		if !cs.CommunityState() {
			t.Fatalf("%s should be a community state", cs)
		}
	}
}

func TestMarshalStartGameGolden(t *testing.T) {
	msg := StartGameMsg{
		TableID: 42,
		HandRef: 7,
		Players: []StartGamePlayer{
			{Username: "alice", PlayerID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), PublicKey: "pkA"},
			{Username: "bob", PlayerID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), PublicKey: "pkB"},
		},
	}
	b, err := MarshalExecuteMsg(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"start_game":{"table_id":42,"hand_ref":7,"players":[` +
		`{"username":"alice","player_id":"11111111-1111-1111-1111-111111111111","public_key":"pkA"},` +
		`{"username":"bob","player_id":"22222222-2222-2222-2222-222222222222","public_key":"pkB"}],` +
		`"prev_hand_showdown_players":[]}}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
}

func TestStartGameValidation(t *testing.T) {
	mk := func(n int) []StartGamePlayer {
		ps := make([]StartGamePlayer, n)
		for i := range ps {
			ps[i] = StartGamePlayer{Username: "p", PlayerID: uuid.New(), PublicKey: string(rune('a' + i))}
		}
		return ps
	}

	if err := (StartGameMsg{Players: mk(1)}).Validate(); err == nil {
		t.Fatalf("expected error for 1 player")
	}
	if err := (StartGameMsg{Players: mk(10)}).Validate(); err == nil {
		t.Fatalf("expected error for 10 players")
	}
	if err := (StartGameMsg{Players: mk(2)}).Validate(); err != nil {
		t.Fatalf("2 players should validate: %v", err)
	}
	if err := (StartGameMsg{Players: mk(9)}).Validate(); err != nil {
		t.Fatalf("9 players should validate: %v", err)
	}

	dup := mk(2)
	dup[1].PublicKey = dup[0].PublicKey
	if err := (StartGameMsg{Players: dup}).Validate(); err == nil || !strings.Contains(err.Error(), "duplicate public key") {
		t.Fatalf("expected duplicate public key error, got %v", err)
	}

	dupID := mk(2)
	dupID[1].PlayerID = dupID[0].PlayerID
	if err := (StartGameMsg{Players: dupID}).Validate(); err == nil || !strings.Contains(err.Error(), "duplicate player id") {
		t.Fatalf("expected duplicate player id error, got %v", err)
	}

	missing := mk(2)
	missing[0].PlayerID = uuid.Nil
	if err := (StartGameMsg{Players: missing}).Validate(); err == nil {
		t.Fatalf("expected error for nil player id")
	}
}

func TestCommunityCardsMsgRejectsNonCommunityStates(t *testing.T) {
	if err := (CommunityCardsMsg{TableID: 1, GameState: StatePreFlop}).Validate(); err == nil {
		t.Fatalf("expected error for pre_flop")
	}
	if err := (CommunityCardsMsg{TableID: 1, GameState: "bogus"}).Validate(); err == nil {
		t.Fatalf("expected error for bogus state")
	}
	if _, err := MarshalExecuteMsg(CommunityCardsMsg{TableID: 1, GameState: StateTurn}); err != nil {
		t.Fatalf("turn should marshal: %v", err)
	}
}

func TestMarshalShowdownOmitsAbsentSecrets(t *testing.T) {
	b, err := MarshalExecuteMsg(ShowdownMsg{
		TableID:        7,
		PlayersSecrets: []Uint64{1, 2},
		FlopSecret:     OptUint64(3),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"showdown":{"table_id":7,"players_secrets":["1","2"],"flop_secret":"3","all_in_showdown":false}}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}

	if _, err := MarshalExecuteMsg(ShowdownMsg{TableID: 7}); err == nil {
		t.Fatalf("expected error for empty players_secrets")
	}
}

func TestMarshalShowdownQueryShape(t *testing.T) {
	b, err := MarshalQueryMsg(ShowdownQuery{
		TableID:        3,
		FlopSecret:     OptUint64(10),
		RiverSecret:    OptUint64(30),
		PlayersSecrets: []Uint64{5},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"showdown":{"table_id":3,"flop_secret":"10","river_secret":"30","players_secrets":["5"]}}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
}

func TestMarshalPermitQueryShape(t *testing.T) {
	signer, err := permit.GenerateSigner("secret1player")
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}
	p, err := permit.Builder{ChainID: "secret-4"}.Build(signer, "poker", []string{"secret1contract"}, []string{permit.PermissionOwner})
	if err != nil {
		t.Fatalf("build permit: %v", err)
	}

	b, err := MarshalQueryMsg(NewPrivateDataQuery(p, PlayerPrivateDataQuery{TableID: 5}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		WithPermit struct {
			Permit permit.Permit `json:"permit"`
			Query  struct {
				PlayerPrivateData struct {
					TableID uint32 `json:"table_id"`
				} `json:"player_private_data"`
			} `json:"query"`
		} `json:"with_permit"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.WithPermit.Query.PlayerPrivateData.TableID != 5 {
		t.Fatalf("table_id=%d want 5", got.WithPermit.Query.PlayerPrivateData.TableID)
	}
	if got.WithPermit.Permit.Params.PermitName != "poker" {
		t.Fatalf("permit name %q", got.WithPermit.Permit.Params.PermitName)
	}

	// A tampered permit must not marshal.
	bad := p
	bad.Params.PermitName = "tampered"
	if _, err := MarshalQueryMsg(NewPrivateDataQuery(bad, PlayerPrivateDataQuery{TableID: 5})); err == nil {
		t.Fatalf("expected error for tampered permit")
	}
}

func TestDecodeResponsePayloadVariants(t *testing.T) {
	raw := `{"type":"start_game","table_id":1,"hand_ref":2,"players":["alice","bob"]}`
	p, err := DecodeResponsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("decode start_game: %v", err)
	}
	if p.Type != ResponseStartGame || p.StartGame == nil || len(p.StartGame.Players) != 2 {
		t.Fatalf("bad start_game decode: %+v", p)
	}

	raw = `{"type":"community_cards","table_id":1,"hand_ref":2,"game_state":"flop","community_cards":[17,33,49]}`
	p, err = DecodeResponsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("decode community_cards: %v", err)
	}
	if p.CommunityCards == nil || p.CommunityCards.GameState != StateFlop || len(p.CommunityCards.CommunityCards) != 3 {
		t.Fatalf("bad community_cards decode: %+v", p.CommunityCards)
	}

	raw = `{"type":"showdown","table_id":1,"hand_ref":2,"players_cards":[["11111111-1111-1111-1111-111111111111",[1,2]]],"community_cards":[3,4,5,6,7]}`
	p, err = DecodeResponsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("decode showdown: %v", err)
	}
	if p.Showdown == nil || len(p.Showdown.PlayersCards) != 1 {
		t.Fatalf("bad showdown decode: %+v", p.Showdown)
	}
	if p.Showdown.PlayersCards[0].PlayerID != uuid.MustParse("11111111-1111-1111-1111-111111111111") {
		t.Fatalf("bad players_cards tuple: %+v", p.Showdown.PlayersCards[0])
	}

	raw = `{"type":"last_hand","showdown_players":[{"username":"alice","hand":["♣A","♠K"]}],"community_cards":["♦2","♦3","♦4","♥5","♥6"],"flop_retrieved_at":"1700000000000000000","turn_retrieved_at":null,"river_retrieved_at":null,"showdown_retrieved_at":null}`
	p, err = DecodeResponsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("decode last_hand: %v", err)
	}
	if p.LastHand == nil || p.LastHand.FlopRetrievedAt == nil || uint64(*p.LastHand.FlopRetrievedAt) != 1700000000000000000 {
		t.Fatalf("bad last_hand decode: %+v", p.LastHand)
	}
	if p.LastHand.TurnRetrievedAt != nil {
		t.Fatalf("null retrieved_at should decode to nil")
	}

	if _, err := DecodeResponsePayload([]byte(`{"type":"mystery"}`)); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, err := DecodeResponsePayload([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestEncodeDecodeResponsePayloadSymmetry(t *testing.T) {
	in := ResponsePayload{
		Type: ResponseCommunityCards,
		CommunityCards: &CommunityCardsResponse{
			TableID:   9,
			HandRef:   4,
			GameState: StateRiver,
		},
	}
	b, err := EncodeResponsePayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"type":"community_cards",`) {
		t.Fatalf("tag not inlined: %s", b)
	}
	out, err := DecodeResponsePayload(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.CommunityCards == nil {
		t.Fatalf("missing community_cards payload")
	}
	if out.CommunityCards.TableID != 9 || out.CommunityCards.HandRef != 4 || out.CommunityCards.GameState != StateRiver {
		t.Fatalf("round trip mismatch: %+v", out.CommunityCards)
	}

	if _, err := EncodeResponsePayload(ResponsePayload{Type: ResponseShowdown}); err == nil {
		t.Fatalf("expected error for missing payload")
	}
}

func TestTxSignBytesDomainSeparation(t *testing.T) {
	a := TxSignBytes(TxTypeExecute, []byte(`{"x":1}`), "1", "operator")
	b := TxSignBytes(TxTypeExecute, []byte(`{"x":1}`), "2", "operator")
	if string(a) == string(b) {
		t.Fatalf("nonce must change sign bytes")
	}
	c := TxSignBytes(TxTypeExecute, []byte(`{"x":2}`), "1", "operator")
	if string(a) == string(c) {
		t.Fatalf("value must change sign bytes")
	}
	if string(a) != string(TxSignBytes(TxTypeExecute, []byte(`{"x":1}`), "1", "operator")) {
		t.Fatalf("sign bytes must be deterministic")
	}
}

func TestDecodeTxEnvelope(t *testing.T) {
	env, err := DecodeTxEnvelope([]byte(`{"type":"compute/execute","value":{"sender":"s"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != TxTypeExecute {
		t.Fatalf("type=%q", env.Type)
	}
	if _, err := DecodeTxEnvelope([]byte(`{"value":{}}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := DecodeTxEnvelope([]byte(`garbage`)); err == nil {
		t.Fatalf("expected error for garbage")
	}
}
