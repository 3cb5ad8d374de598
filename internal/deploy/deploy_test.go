package deploy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testHash = "e1b2c3d4e5f6a7b8e1b2c3d4e5f6a7b8e1b2c3d4e5f6a7b8e1b2c3d4e5f6a7b8"

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ArtifactFile)

	in := &Artifact{
		CodeID:          7,
		ContractAddress: "secret1h0ldem9contract",
		CodeHash:        "0x" + strings.ToUpper(testHash),
		Label:           "cards-v1",
	}
	if err := in.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.CodeID != 7 || out.ContractAddress != in.ContractAddress || out.Label != "cards-v1" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.CodeHash != testHash {
		t.Fatalf("code hash not normalized: %q", out.CodeHash)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected error for missing artifact")
	}
	if !os.IsNotExist(errUnwrapAll(err)) {
		t.Fatalf("want not-exist cause, got %v", err)
	}
}

func errUnwrapAll(err error) error {
	for {
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		a    Artifact
		ok   bool
	}{
		{"valid", Artifact{ContractAddress: "secret1abc", CodeHash: testHash}, true},
		{"no address", Artifact{CodeHash: testHash}, false},
		{"short hash", Artifact{ContractAddress: "secret1abc", CodeHash: "deadbeef"}, false},
		{"non-hex hash", Artifact{ContractAddress: "secret1abc", CodeHash: strings.Repeat("g", 64)}, false},
		{"uppercase ok", Artifact{ContractAddress: "secret1abc", CodeHash: strings.ToUpper(testHash)}, true},
	}
	for _, tc := range cases {
		err := tc.a.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadRejectsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ArtifactFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
