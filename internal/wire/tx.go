package wire

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// TxEnvelope is the chain's JSON transaction container. Transactions are
// opaque bytes to the chain; the envelope routes them to the compute module
// and authenticates the sender.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Nonce is included in the signed message for replay protection and must
	// increase per signer.
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// TxTypeExecute routes a contract execution.
const TxTypeExecute = "compute/execute"

// QueryPathPrefix is the ABCI query route for contract reads. The contract
// address is appended to it.
const QueryPathPrefix = "/compute/query/"

func QueryPath(contract string) string {
	return QueryPathPrefix + contract
}

// ExecuteTx is the envelope value for TxTypeExecute. CodeHash pins the
// request to the deployed contract build.
type ExecuteTx struct {
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	CodeHash string          `json:"code_hash"`
	Msg      json.RawMessage `json:"msg"`
}

// QueryEnvelope wraps a query msg with the code hash for the same pinning on
// the read path.
type QueryEnvelope struct {
	CodeHash string          `json:"code_hash"`
	Msg      json.RawMessage `json:"msg"`
}

const txAuthDomain = "spoker/tx/v1"

// TxSignBytes builds the signed message for an envelope:
// DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
func TxSignBytes(typ string, value []byte, nonce string, signer string) []byte {
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomain)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomain)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}
