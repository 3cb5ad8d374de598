// Package deploy records where the card contract lives. The client reads the
// artifact produced at upload time instead of guessing addresses.
package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ArtifactFile = "contract.json"

// Artifact pins the deployed contract instance. CodeHash is required on every
// compute call, so a stale hash here means every query fails closed.
type Artifact struct {
	CodeID          uint64 `json:"codeId,omitempty"`
	ContractAddress string `json:"contractAddress"`
	CodeHash        string `json:"codeHash"`
	Label           string `json:"label,omitempty"`
}

func (a *Artifact) Validate() error {
	if a == nil {
		return fmt.Errorf("artifact is nil")
	}
	if strings.TrimSpace(a.ContractAddress) == "" {
		return fmt.Errorf("artifact missing contract address")
	}
	hash := NormalizeCodeHash(a.CodeHash)
	if len(hash) != 64 {
		return fmt.Errorf("code hash must be 64 hex chars, got %d", len(hash))
	}
	for _, r := range hash {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isHex {
			return fmt.Errorf("code hash has non-hex char %q", r)
		}
	}
	return nil
}

// NormalizeCodeHash lowercases and strips an optional 0x prefix so hashes
// copied from explorers compare equal to ours.
func NormalizeCodeHash(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "0x")
	return strings.ToLower(h)
}

func Load(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	a.CodeHash = NormalizeCodeHash(a.CodeHash)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir artifact dir: %w", err)
		}
	}
	cp := *a
	cp.CodeHash = NormalizeCodeHash(cp.CodeHash)
	b, err := json.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
