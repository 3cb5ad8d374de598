package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/shares"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// NewRevealCommand creates the reveal command.
func NewRevealCommand() *cobra.Command {
	var (
		table       uint32
		playersPath string
		execute     bool
	)

	cmd := &cobra.Command{
		Use:   "reveal <flop|turn|river>",
		Short: "Reveal one street's community cards",
		Args:  cobra.ExactArgs(1),
		Long: `Reveal a street: pull every player's share of the street's secret
through their permits, combine the shares, and query the community cards
with the reconstructed secret.

--execute broadcasts the state-changing request instead and reads the cards
off the transaction's logged events. Use it when the query path is down; a
street can only be executed once per hand.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseState(args[0])
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			client, err := rt.client(execute)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var resp *wire.CommunityCardsResponse
			if execute {
				resp, err = client.ExecuteCommunityCards(ctx, table, state)
				if err != nil {
					return err
				}
			} else {
				if playersPath == "" {
					return fmt.Errorf("--%s is required to gather shares for the query path", flagPlayers)
				}
				participants, err := loadParticipants(playersPath)
				if err != nil {
					return err
				}
				parts := make([]uint64, 0, len(participants))
				for _, p := range participants {
					data, err := client.PlayerPrivateData(ctx, p.Permit, table)
					if err != nil {
						return fmt.Errorf("share from %s: %w", p.Username, err)
					}
					share, ok := data.PhaseShare(state)
					if !ok {
						return fmt.Errorf("no %s share in private data", state)
					}
					parts = append(parts, uint64(share))
				}
				secret := shares.Combine(parts)
				resp, err = client.CommunityCards(ctx, table, state, secret)
				if err != nil {
					return err
				}
				rt.logger.Info("street revealed", "state", state, "secret", secretString(secret))
			}

			return printJSON(cmd, struct {
				TableID        uint32   `json:"table_id"`
				HandRef        uint32   `json:"hand_ref"`
				GameState      string   `json:"game_state"`
				CommunityCards []string `json:"community_cards"`
			}{resp.TableID, resp.HandRef, string(resp.GameState), cardStrings(resp.CommunityCards)})
		},
	}

	cmd.Flags().Uint32Var(&table, flagTable, 0, "table id")
	cmd.Flags().StringVar(&playersPath, flagPlayers, "", "players file (json), needed for the query path")
	cmd.Flags().BoolVar(&execute, "execute", false, "use the state-changing path instead of the query")
	_ = cmd.MarkFlagRequired(flagTable)
	return cmd
}
