// Package compute talks to the card contract through a CometBFT node. Reads
// go over ABCI query with a permit or a reconstructed secret as proof;
// state-changing requests go over signed execute transactions whose logged
// events carry the contract's answer.
package compute

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	rpcclient "github.com/cometbft/cometbft/rpc/client"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"

	"github.com/FoundationOfBabylone/secret-poker/internal/deploy"
	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

const (
	DefaultQueryTimeout = 5 * time.Second
	DefaultExecTimeout  = 30 * time.Second
)

// RPCClient is the slice of the CometBFT RPC surface the client uses.
// *rpchttp.HTTP satisfies it.
type RPCClient interface {
	ABCIQueryWithOptions(ctx context.Context, path string, data cmtbytes.HexBytes, opts rpcclient.ABCIQueryOptions) (*coretypes.ResultABCIQuery, error)
	BroadcastTxCommit(ctx context.Context, tx cmttypes.Tx) (*coretypes.ResultBroadcastTxCommit, error)
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
}

type Client struct {
	rpc    RPCClient
	logger log.Logger

	contract string
	codeHash string
	signer   permit.Signer

	queryTimeout time.Duration
	execTimeout  time.Duration

	mu    sync.Mutex
	nonce uint64
}

// New wires a client against an already-connected node. The signer may be nil
// for read-only use; Execute then refuses to run.
func New(rpc RPCClient, art *deploy.Artifact, signer permit.Signer, logger log.Logger) (*Client, error) {
	if rpc == nil {
		return nil, errors.New("nil rpc client")
	}
	if err := art.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Client{
		rpc:          rpc,
		logger:       logger.With("module", ModuleName),
		contract:     art.ContractAddress,
		codeHash:     deploy.NormalizeCodeHash(art.CodeHash),
		signer:       signer,
		queryTimeout: DefaultQueryTimeout,
		execTimeout:  DefaultExecTimeout,
	}, nil
}

// Dial connects to a node's RPC endpoint, e.g. "http://localhost:26657".
func Dial(remote string, art *deploy.Artifact, signer permit.Signer, logger log.Logger) (*Client, error) {
	rpc, err := rpchttp.New(remote)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrUnavailable, "dial %s: %v", remote, err)
	}
	return New(rpc, art, signer, logger)
}

func (c *Client) SetTimeouts(query, exec time.Duration) {
	if query > 0 {
		c.queryTimeout = query
	}
	if exec > 0 {
		c.execTimeout = exec
	}
}

func (c *Client) Contract() string { return c.contract }

// NodeStatus reports the connected node's identity and sync state.
func (c *Client) NodeStatus(ctx context.Context) (*coretypes.ResultStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	st, err := c.rpc.Status(ctx)
	if err != nil {
		return nil, c.transportErr("status", err)
	}
	return st, nil
}

// SetNonce seeds replay protection, e.g. from a persisted value. Unset, the
// first execute seeds it from the wall clock.
func (c *Client) SetNonce(n uint64) {
	c.mu.Lock()
	c.nonce = n
	c.mu.Unlock()
}

func (c *Client) nextNonce() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nonce == 0 {
		c.nonce = uint64(time.Now().UnixNano())
	}
	c.nonce++
	return c.nonce
}

func (c *Client) abciQuery(ctx context.Context, q wire.QueryMsg) ([]byte, error) {
	msg, err := wire.MarshalQueryMsg(q)
	if err != nil {
		return nil, err
	}
	env, err := json.Marshal(wire.QueryEnvelope{CodeHash: c.codeHash, Msg: msg})
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	path := wire.QueryPath(c.contract)
	res, err := c.rpc.ABCIQueryWithOptions(qctx, path, cmtbytes.HexBytes(env), rpcclient.ABCIQueryOptions{})
	if err != nil {
		return nil, c.transportErr("query "+q.QueryName(), err)
	}
	if res.Response.Code != 0 {
		return nil, contractErr(res.Response.Code, res.Response.Log)
	}
	return res.Response.Value, nil
}

// PlayerPrivateData fetches the permit holder's hole cards, hand secret and
// phase shares. An unauthorized result is terminal: a rejected permit will
// not pass on retry, and the execute path cannot serve private data.
func (c *Client) PlayerPrivateData(ctx context.Context, p permit.Permit, tableID uint32) (*wire.PlayerData, error) {
	raw, err := c.abciQuery(ctx, wire.NewPrivateDataQuery(p, wire.PlayerPrivateDataQuery{TableID: tableID}))
	if err != nil {
		return nil, err
	}
	var out wire.PlayerData
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "player private data: %v", err)
	}
	return &out, nil
}

// CommunityCards reveals a board state's cards, proving possession of the
// reconstructed phase secret.
func (c *Client) CommunityCards(ctx context.Context, tableID uint32, state wire.GameState, secret uint64) (*wire.CommunityCardsResponse, error) {
	q := wire.CommunityCardsQuery{TableID: tableID, GameState: state, SecretKey: wire.Uint64(secret)}
	raw, err := c.abciQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	var out wire.CommunityCardsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "community cards: %v", err)
	}
	return &out, nil
}

// Showdown reveals the showdown hands and the board cards for whichever
// phase secrets the query carries.
func (c *Client) Showdown(ctx context.Context, q wire.ShowdownQuery) (*wire.ShowdownResponse, error) {
	raw, err := c.abciQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	var out wire.ShowdownResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errorsmod.Wrapf(ErrMalformedResponse, "showdown: %v", err)
	}
	return &out, nil
}

func (c *Client) transportErr(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("rpc deadline exceeded", "op", op)
		return errorsmod.Wrap(ErrTimeout, op)
	}
	c.logger.Warn("rpc unavailable", "op", op, "err", err)
	return errorsmod.Wrapf(ErrUnavailable, "%s: %v", op, err)
}

func contractErr(code uint32, logMsg string) error {
	switch code {
	case wire.CodeNotFound:
		return errorsmod.Wrap(ErrNotFound, logMsg)
	case wire.CodeUnauthorized:
		return errorsmod.Wrap(ErrUnauthorized, logMsg)
	case wire.CodeInvalidSecret:
		return errorsmod.Wrap(ErrInvalidSecret, logMsg)
	case wire.CodeAlreadyRetrieved:
		return errorsmod.Wrap(ErrAlreadyRetrieved, logMsg)
	case wire.CodeInvalidGameState:
		return errorsmod.Wrap(ErrInvalidGameState, logMsg)
	default:
		return errorsmod.Wrapf(ErrContract, "code %d: %s", code, logMsg)
	}
}
