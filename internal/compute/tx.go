package compute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	cmttypes "github.com/cometbft/cometbft/types"

	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// ExecResult is a committed execute transaction's outcome. The contract's
// answer is not in the tx result body; it is logged as plaintext event
// attributes.
type ExecResult struct {
	Height int64
	TxHash string
	Events []abci.Event
}

// Execute signs, broadcasts and waits for commitment of a contract call.
// A non-zero contract code maps to the matching sentinel error.
func (c *Client) Execute(ctx context.Context, msg wire.ExecuteMsg) (*ExecResult, error) {
	if c.signer == nil {
		return nil, errors.New("execute requires a signer")
	}
	inner, err := wire.MarshalExecuteMsg(msg)
	if err != nil {
		return nil, err
	}
	value, err := json.Marshal(wire.ExecuteTx{
		Sender:   c.signer.Address(),
		Contract: c.contract,
		CodeHash: c.codeHash,
		Msg:      inner,
	})
	if err != nil {
		return nil, err
	}
	nonce := strconv.FormatUint(c.nextNonce(), 10)
	sig, err := c.signer.Sign(wire.TxSignBytes(wire.TxTypeExecute, value, nonce, c.signer.Address()))
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	tx, err := json.Marshal(wire.TxEnvelope{
		Type:   wire.TxTypeExecute,
		Value:  value,
		Nonce:  nonce,
		Signer: c.signer.Address(),
		Sig:    sig,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("broadcasting execute tx", "msg", msg.MsgName(), "nonce", nonce)
	bctx, cancel := context.WithTimeout(ctx, c.execTimeout)
	defer cancel()
	res, err := c.rpc.BroadcastTxCommit(bctx, cmttypes.Tx(tx))
	if err != nil {
		return nil, c.transportErr("broadcast "+msg.MsgName(), err)
	}
	if res.CheckTx.Code != 0 {
		return nil, errorsmod.Wrapf(ErrTxFailed, "check tx: %s", res.CheckTx.Log)
	}
	if res.TxResult.Code != 0 {
		return nil, contractErr(res.TxResult.Code, res.TxResult.Log)
	}
	c.logger.Info("execute tx committed",
		"msg", msg.MsgName(), "height", res.Height, "hash", res.Hash.String())
	return &ExecResult{Height: res.Height, TxHash: res.Hash.String(), Events: res.TxResult.Events}, nil
}

// EventAttr returns the first attribute value for key under events of the
// given type.
func EventAttr(events []abci.Event, typ, key string) (string, bool) {
	for _, ev := range events {
		if ev.Type != typ {
			continue
		}
		for _, attr := range ev.Attributes {
			if attr.Key == key {
				return attr.Value, true
			}
		}
	}
	return "", false
}

// ResponsePayload extracts and decodes the contract's logged answer.
func (r *ExecResult) ResponsePayload() (wire.ResponsePayload, error) {
	raw, ok := EventAttr(r.Events, wire.EventTypeWasm, wire.AttrKeyResponse)
	if !ok {
		return wire.ResponsePayload{}, errorsmod.Wrapf(ErrMalformedResponse,
			"no %s.%s attribute in %d events", wire.EventTypeWasm, wire.AttrKeyResponse, len(r.Events))
	}
	p, err := wire.DecodeResponsePayload([]byte(raw))
	if err != nil {
		return wire.ResponsePayload{}, errorsmod.Wrap(ErrMalformedResponse, err.Error())
	}
	return p, nil
}

// PreviousHandLog decodes the prior hand's summary when the contract logged
// one alongside the response. Absence is not an error; most calls emit none.
func (r *ExecResult) PreviousHandLog() (*wire.LastHandLog, error) {
	raw, ok := EventAttr(r.Events, wire.EventTypeWasm, wire.AttrKeyPreviousHandLog)
	if !ok {
		return nil, nil
	}
	p, err := wire.DecodeResponsePayload([]byte(raw))
	if err != nil {
		return nil, errorsmod.Wrap(ErrMalformedResponse, err.Error())
	}
	if p.Type != wire.ResponseLastHand || p.LastHand == nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "previous hand log has type %q", p.Type)
	}
	return p.LastHand, nil
}

// StartHandResult pairs the new hand's confirmation with the previous hand's
// log when one was emitted.
type StartHandResult struct {
	StartGame *wire.StartGameResponse
	PrevHand  *wire.LastHandLog
	Height    int64
	TxHash    string
}

// StartGame deals a new hand on-chain.
func (c *Client) StartGame(ctx context.Context, msg wire.StartGameMsg) (*StartHandResult, error) {
	res, err := c.Execute(ctx, msg)
	if err != nil {
		return nil, err
	}
	p, err := res.ResponsePayload()
	if err != nil {
		return nil, err
	}
	if p.Type != wire.ResponseStartGame || p.StartGame == nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "start_game answered with %q", p.Type)
	}
	prev, err := res.PreviousHandLog()
	if err != nil {
		return nil, err
	}
	return &StartHandResult{StartGame: p.StartGame, PrevHand: prev, Height: res.Height, TxHash: res.TxHash}, nil
}

// ExecuteCommunityCards reveals a board state through the execute path. Used
// when the query path could not serve the reveal.
func (c *Client) ExecuteCommunityCards(ctx context.Context, tableID uint32, state wire.GameState) (*wire.CommunityCardsResponse, error) {
	res, err := c.Execute(ctx, wire.CommunityCardsMsg{TableID: tableID, GameState: state})
	if err != nil {
		return nil, err
	}
	p, err := res.ResponsePayload()
	if err != nil {
		return nil, err
	}
	if p.Type != wire.ResponseCommunityCards || p.CommunityCards == nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "community_cards answered with %q", p.Type)
	}
	return p.CommunityCards, nil
}

// ExecuteShowdown resolves the hand through the execute path.
func (c *Client) ExecuteShowdown(ctx context.Context, msg wire.ShowdownMsg) (*wire.ShowdownResponse, error) {
	res, err := c.Execute(ctx, msg)
	if err != nil {
		return nil, err
	}
	p, err := res.ResponsePayload()
	if err != nil {
		return nil, err
	}
	if p.Type != wire.ResponseShowdown || p.Showdown == nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "showdown answered with %q", p.Type)
	}
	return p.Showdown, nil
}
