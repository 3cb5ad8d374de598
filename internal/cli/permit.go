package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
)

// NewPermitCommand creates the permit command.
func NewPermitCommand() *cobra.Command {
	var (
		name    string
		keyPath string
		outPath string
		targets []string
	)

	cmd := &cobra.Command{
		Use:   "permit",
		Short: "Build a signed query permit",
		Long: `Build and sign an offline query permit for the table contract.

The permit authorizes private data queries for the signing key's seat. Fee
and sequence fields are fixed to zero; the signature never authorizes a
transfer. Without --target the permit is scoped to the deployed contract
from the artifact file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			if keyPath == "" {
				keyPath = rt.cfg.KeyFile
			}
			signer, err := permit.LoadKeyFile(keyPath)
			if err != nil {
				return fmt.Errorf("load key %s: %w", keyPath, err)
			}
			if len(targets) == 0 {
				art, err := rt.artifact()
				if err != nil {
					return err
				}
				targets = []string{art.ContractAddress}
			}

			b := permit.Builder{ChainID: rt.cfg.ChainID}
			p, err := b.Build(signer, name, targets, []string{permit.PermissionOwner})
			if err != nil {
				return err
			}

			if outPath == "" {
				return printJSON(cmd, p)
			}
			raw, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, raw, 0o600); err != nil {
				return fmt.Errorf("write permit: %w", err)
			}
			green := color.New(color.FgGreen, color.Bold)
			green.Fprintf(cmd.OutOrStdout(), "✓ permit %q for %s written to %s\n", name, signer.Address(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "permit name, echoed back by the contract on rejection")
	cmd.Flags().StringVar(&keyPath, "key", "", "signing key file (default key_file from config)")
	cmd.Flags().StringSliceVar(&targets, "target", nil, "allowed contract addresses (default the deployed contract)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the permit to a file instead of stdout")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
