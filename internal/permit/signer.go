package permit

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
)

const pubKeyTypeEd25519 = "tendermint/PubKeyEd25519"

// Signer produces signatures over canonical documents. Implementations hold
// a participant's query-signing key; nothing reachable through this
// interface can authorize a transfer.
type Signer interface {
	Address() string
	PubKey() []byte
	Sign(doc []byte) ([]byte, error)
}

type Ed25519Signer struct {
	addr string
	priv ed25519.PrivateKey
}

func NewEd25519Signer(addr string, priv ed25519.PrivateKey) (*Ed25519Signer, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing signer address")
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	return &Ed25519Signer{addr: addr, priv: priv}, nil
}

// GenerateSigner creates a fresh keypair for addr.
func GenerateSigner(addr string) (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return NewEd25519Signer(addr, priv)
}

func (s *Ed25519Signer) Address() string {
	return s.addr
}

func (s *Ed25519Signer) PubKey() []byte {
	return []byte(s.priv.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) Sign(doc []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, doc), nil
}

// ---- Keyfile ----

type keyFile struct {
	Address string `json:"address"`
	PrivKey []byte `json:"privKey"` // base64 (64 bytes)
}

func LoadKeyFile(path string) (*Ed25519Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(b, &kf); err != nil {
		return nil, fmt.Errorf("decode key file: %w", err)
	}
	return NewEd25519Signer(kf.Address, ed25519.PrivateKey(kf.PrivKey))
}

func (s *Ed25519Signer) SaveKeyFile(path string) error {
	b, err := json.MarshalIndent(keyFile{Address: s.addr, PrivKey: []byte(s.priv)}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key file: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}
