// Package permit builds and verifies the offline-signed permits that
// authenticate private contract queries.
//
// A permit is a one-time wallet signature over a canonical document naming
// the permit, the contract addresses it may query, and the granted
// permissions. It carries no funds and no ordering: the document's fee and
// sequence fields are pinned to zero, and Build refuses to produce anything
// else.
package permit

import (
	"crypto/ed25519"
	"encoding/json"
	"sort"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// PermissionOwner grants access to the signer's own private data.
const PermissionOwner = "owner"

const signDocMsgType = "query_permit"

type Params struct {
	PermitName     string   `json:"permit_name"`
	ChainID        string   `json:"chain_id"`
	AllowedTargets []string `json:"allowed_targets"`
	Permissions    []string `json:"permissions"`
}

type PubKey struct {
	Type  string `json:"type"`
	Value []byte `json:"value"` // base64 in JSON
}

type Signature struct {
	PubKey    PubKey `json:"pub_key"`
	Signature []byte `json:"signature"` // base64 in JSON
}

// Permit is the packaged credential sent alongside authenticated queries.
type Permit struct {
	Params    Params    `json:"params"`
	Signature Signature `json:"signature"`
}

// AllowsTarget reports whether the permit names addr as a query target.
func (p Permit) AllowsTarget(addr string) bool {
	for _, t := range p.Params.AllowedTargets {
		if t == addr {
			return true
		}
	}
	return false
}

// The canonical signing document is a cosmos StdSignDoc: compact JSON with
// alphabetically ordered keys. Struct field order below IS the canonical
// order; do not reorder.

type signDoc struct {
	AccountNumber string       `json:"account_number"`
	ChainID       string       `json:"chain_id"`
	Fee           signDocFee   `json:"fee"`
	Memo          string       `json:"memo"`
	Msgs          []signDocMsg `json:"msgs"`
	Sequence      string       `json:"sequence"`
}

type signDocFee struct {
	Amount []signDocCoin `json:"amount"`
	Gas    string        `json:"gas"`
}

type signDocCoin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

type signDocMsg struct {
	Type  string        `json:"type"`
	Value signDocParams `json:"value"`
}

type signDocParams struct {
	AllowedTargets []string `json:"allowed_targets"`
	PermitName     string   `json:"permit_name"`
	Permissions    []string `json:"permissions"`
}

// Builder assembles canonical permit documents for one chain.
//
// The exported override fields exist for wallet-compatibility plumbing only.
// Their zero values are the protocol; Build fails fast on anything non-zero
// rather than sign a document that could double as a spend.
type Builder struct {
	ChainID string

	// Leave these zero. FeeDenom defaults to "uscrt", Gas to the
	// conventional "1".
	AccountNumber string
	Sequence      string
	FeeAmount     string
	FeeDenom      string
	Gas           string
}

func requireZeroInt(sentinel *errorsmod.Error, field, v string) error {
	if v == "" {
		return nil
	}
	n, ok := sdkmath.NewIntFromString(v)
	if !ok {
		return errorsmod.Wrapf(ErrInvalidPermit, "%s: not an integer: %q", field, v)
	}
	if !n.IsZero() {
		return errorsmod.Wrapf(sentinel, "%s = %q", field, v)
	}
	return nil
}

func (b Builder) validate() error {
	if b.ChainID == "" {
		return errorsmod.Wrap(ErrInvalidPermit, "missing chain id")
	}
	if err := requireZeroInt(ErrNonZeroSequence, "account_number", b.AccountNumber); err != nil {
		return err
	}
	if err := requireZeroInt(ErrNonZeroSequence, "sequence", b.Sequence); err != nil {
		return err
	}
	if err := requireZeroInt(ErrNonZeroFee, "fee amount", b.FeeAmount); err != nil {
		return err
	}
	if b.Gas != "" && b.Gas != "1" {
		return errorsmod.Wrapf(ErrInvalidPermit, "gas must be \"1\", got %q", b.Gas)
	}
	return nil
}

// SignDocBytes returns the canonical document for (name, targets,
// permissions). Target and permission sets are sorted; a permit is valid only
// for the exact signed pair.
func (b Builder) SignDocBytes(name string, allowedTargets, permissions []string) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errorsmod.Wrap(ErrInvalidPermit, "missing permit name")
	}
	if len(allowedTargets) == 0 {
		return nil, errorsmod.Wrap(ErrInvalidPermit, "no allowed targets")
	}
	if len(permissions) == 0 {
		return nil, errorsmod.Wrap(ErrInvalidPermit, "no permissions")
	}
	for _, t := range allowedTargets {
		if t == "" {
			return nil, errorsmod.Wrap(ErrInvalidPermit, "empty allowed target")
		}
	}

	targets := append([]string(nil), allowedTargets...)
	perms := append([]string(nil), permissions...)
	sort.Strings(targets)
	sort.Strings(perms)

	denom := b.FeeDenom
	if denom == "" {
		denom = "uscrt"
	}
	doc := signDoc{
		AccountNumber: "0",
		ChainID:       b.ChainID,
		Fee: signDocFee{
			Amount: []signDocCoin{{Amount: "0", Denom: denom}},
			Gas:    "1",
		},
		Memo: "",
		Msgs: []signDocMsg{{
			Type: signDocMsgType,
			Value: signDocParams{
				AllowedTargets: targets,
				PermitName:     name,
				Permissions:    perms,
			},
		}},
		Sequence: "0",
	}
	bz, err := json.Marshal(doc)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidPermit, err.Error())
	}
	return bz, nil
}

// Build signs the canonical document and packages the permit. The packaged
// params carry the sorted sets actually signed.
func (b Builder) Build(signer Signer, name string, allowedTargets, permissions []string) (Permit, error) {
	doc, err := b.SignDocBytes(name, allowedTargets, permissions)
	if err != nil {
		return Permit{}, err
	}
	sig, err := signer.Sign(doc)
	if err != nil {
		return Permit{}, errorsmod.Wrapf(ErrInvalidPermit, "sign: %v", err)
	}

	targets := append([]string(nil), allowedTargets...)
	perms := append([]string(nil), permissions...)
	sort.Strings(targets)
	sort.Strings(perms)

	return Permit{
		Params: Params{
			PermitName:     name,
			ChainID:        b.ChainID,
			AllowedTargets: targets,
			Permissions:    perms,
		},
		Signature: Signature{
			PubKey: PubKey{
				Type:  pubKeyTypeEd25519,
				Value: signer.PubKey(),
			},
			Signature: sig,
		},
	}, nil
}

// Verify checks p's signature against the canonical document rebuilt from its
// params. Useful before shipping a permit on a query that will otherwise fail
// remotely.
func Verify(p Permit) error {
	if p.Signature.PubKey.Type != pubKeyTypeEd25519 {
		return errorsmod.Wrapf(ErrBadSignature, "unsupported pub key type %q", p.Signature.PubKey.Type)
	}
	if len(p.Signature.PubKey.Value) != ed25519.PublicKeySize {
		return errorsmod.Wrapf(ErrBadSignature, "pub key must be %d bytes", ed25519.PublicKeySize)
	}
	if len(p.Signature.Signature) != ed25519.SignatureSize {
		return errorsmod.Wrapf(ErrBadSignature, "signature must be %d bytes", ed25519.SignatureSize)
	}
	doc, err := Builder{ChainID: p.Params.ChainID}.SignDocBytes(p.Params.PermitName, p.Params.AllowedTargets, p.Params.Permissions)
	if err != nil {
		return err
	}
	if !ed25519.Verify(ed25519.PublicKey(p.Signature.PubKey.Value), doc, p.Signature.Signature) {
		return ErrBadSignature
	}
	return nil
}
