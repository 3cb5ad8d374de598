package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
)

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand() *cobra.Command {
	var (
		address string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the operator signing key",
		Long: `Generate a fresh ed25519 keypair for signing permits and transactions.

The key is written with 0600 permissions. An existing file is never
overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = rt.cfg.KeyFile
			}
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite a key", outPath)
			}

			signer, err := permit.GenerateSigner(address)
			if err != nil {
				return err
			}
			if err := signer.SaveKeyFile(outPath); err != nil {
				return err
			}

			green := color.New(color.FgGreen, color.Bold)
			green.Fprintf(cmd.OutOrStdout(), "✓ key for %s written to %s\n", address, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "account address the key signs for")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (default key_file from config)")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}
