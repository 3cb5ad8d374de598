package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
)

// NewPrivateDataCommand creates the private-data command.
func NewPrivateDataCommand() *cobra.Command {
	var (
		table      uint32
		permitPath string
	)

	cmd := &cobra.Command{
		Use:   "private-data",
		Short: "Query a seat's hole cards and secret shares",
		Long: `Query the contract for the permit holder's private hand data: hole
cards, the hand secret, and one share of each phase secret. Only the key
that signed the permit can read this.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(permitPath)
			if err != nil {
				return fmt.Errorf("read permit: %w", err)
			}
			var p permit.Permit
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("decode permit %s: %w", permitPath, err)
			}
			client, err := rt.client(false)
			if err != nil {
				return err
			}

			data, err := client.PlayerPrivateData(cmd.Context(), p, table)
			if err != nil {
				return err
			}

			return printJSON(cmd, struct {
				TableID          uint32   `json:"table_id"`
				HandRef          uint32   `json:"hand_ref"`
				Hand             []string `json:"hand"`
				HandSecret       string   `json:"hand_secret"`
				FlopSecretShare  string   `json:"flop_secret_share"`
				TurnSecretShare  string   `json:"turn_secret_share"`
				RiverSecretShare string   `json:"river_secret_share"`
			}{
				TableID:          data.TableID,
				HandRef:          data.HandRef,
				Hand:             cardStrings(data.Hand),
				HandSecret:       secretString(uint64(data.HandSecret)),
				FlopSecretShare:  secretString(uint64(data.FlopSecretShare)),
				TurnSecretShare:  secretString(uint64(data.TurnSecretShare)),
				RiverSecretShare: secretString(uint64(data.RiverSecretShare)),
			})
		},
	}

	cmd.Flags().Uint32Var(&table, flagTable, 0, "table id")
	cmd.Flags().StringVar(&permitPath, "permit", "", "permit file (json)")
	_ = cmd.MarkFlagRequired(flagTable)
	_ = cmd.MarkFlagRequired("permit")
	return cmd
}
