package cli

import (
	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/game"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// NewStartHandCommand creates the start-hand command.
func NewStartHandCommand() *cobra.Command {
	var (
		table        uint32
		playersPath  string
		prevShowdown []string
	)

	cmd := &cobra.Command{
		Use:   "start-hand",
		Short: "Deal a new hand for the table's players",
		Long: `Submit a start-game transaction dealing a new hand.

The players file lists each seat's id, username and query permit. Player
public keys ride along so the contract can verify later permits.
--prev-showdown names the players whose cards were shown last hand; the
contract echoes their hole cards back in the plaintext last-hand log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			participants, err := loadParticipants(playersPath)
			if err != nil {
				return err
			}
			prev, err := parseUUIDs(prevShowdown)
			if err != nil {
				return err
			}
			client, err := rt.client(true)
			if err != nil {
				return err
			}

			ctrl := game.NewController(client, table, rt.logger)
			info, err := ctrl.StartHand(cmd.Context(), participants, prev)
			if err != nil {
				return err
			}

			return printJSON(cmd, struct {
				TableID  uint32            `json:"table_id"`
				HandRef  uint32            `json:"hand_ref"`
				Players  []string          `json:"players"`
				PrevHand *wire.LastHandLog `json:"prev_hand,omitempty"`
			}{info.TableID, info.HandRef, info.Players, info.PrevHand})
		},
	}

	cmd.Flags().Uint32Var(&table, flagTable, 0, "table id")
	cmd.Flags().StringVar(&playersPath, flagPlayers, "", "players file (json)")
	cmd.Flags().StringSliceVar(&prevShowdown, "prev-showdown", nil, "player ids that showed cards last hand")
	_ = cmd.MarkFlagRequired(flagTable)
	_ = cmd.MarkFlagRequired(flagPlayers)
	return cmd
}
