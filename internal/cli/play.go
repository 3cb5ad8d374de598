package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/game"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// NewPlayCommand creates the play command.
func NewPlayCommand() *cobra.Command {
	var (
		table        uint32
		playersPath  string
		secretsPath  string
		allInAfter   string
		prevShowdown []string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drive a full hand: deal, reveal each street, resolve the showdown",
		Long: `Deal a hand and walk it street by street. Each street is revealed over
the query path, falling back to a single execute when the node cannot serve
the query.

The secrets file maps player ids to the hand secrets players agreed to
reveal; without it the hand stops after the river and the report lists what
was revealed. --all-in-after cuts the reveals short after the named street
and resolves early through the contract.`,
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
			var stopAfter wire.GameState
			if allInAfter != "" {
				stopAfter, err = parseState(allInAfter)
				if err != nil {
					return err
				}
			}
			client, err := rt.client(true)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			ctrl := game.NewController(client, table, rt.logger)
			info, err := ctrl.StartHand(ctx, participants, prev)
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen, color.Bold)
			green.Fprintf(cmd.OutOrStdout(), "✓ hand %d dealt for %d players\n", info.HandRef, len(participants))

			for {
				state, ok := ctrl.Phase().GameState()
				if !ok {
					break
				}
				rep, err := ctrl.RevealNext(ctx)
				if err != nil {
					return fmt.Errorf("reveal %s: %w", state, err)
				}
				if rep.Err != nil {
					color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(),
						"  %s lost (%v), recoverable at showdown\n", rep.State, rep.Err)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s)\n",
						rep.State, strings.Join(cardStrings(rep.Cards), " "), rep.Source)
				}
				if allInAfter != "" && state == stopAfter {
					break
				}
			}

			if secretsPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no hand secrets file, stopping before showdown")
				return printJSON(cmd, playReport(ctrl, nil))
			}

			secrets, err := loadHandSecrets(secretsPath)
			if err != nil {
				return err
			}
			for id, v := range secrets {
				if err := ctrl.SubmitHandSecret(id, uint64(v)); err != nil {
					return fmt.Errorf("hand secret for %s: %w", id, err)
				}
			}
			res, err := ctrl.ResolveShowdown(ctx, ctrl.Phase() != game.PhaseShowdown)
			if err != nil {
				return err
			}
			green.Fprintf(cmd.OutOrStdout(), "✓ hand %d resolved, %d winner(s)\n", res.HandRef, len(res.Winners))
			return printJSON(cmd, playReport(ctrl, res))
		},
	}

	cmd.Flags().Uint32Var(&table, flagTable, 0, "table id")
	cmd.Flags().StringVar(&playersPath, flagPlayers, "", "players file (json)")
	cmd.Flags().StringVar(&secretsPath, "secrets", "", "hand secrets file (json map of player id to decimal secret)")
	cmd.Flags().StringVar(&allInAfter, "all-in-after", "", "resolve all-in after this street (flop, turn or river)")
	cmd.Flags().StringSliceVar(&prevShowdown, "prev-showdown", nil, "player ids that showed cards last hand")
	_ = cmd.MarkFlagRequired(flagTable)
	_ = cmd.MarkFlagRequired(flagPlayers)
	return cmd
}

// loadHandSecrets reads the player id to hand secret map, secrets as decimal
// strings like everywhere else on this wire.
func loadHandSecrets(path string) (map[uuid.UUID]wire.Uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file: %w", err)
	}
	var m map[uuid.UUID]wire.Uint64
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode secrets file %s: %w", path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("secrets file %s is empty", path)
	}
	return m, nil
}

type streetOut struct {
	State  string   `json:"state"`
	Cards  []string `json:"cards,omitempty"`
	Source string   `json:"source"`
	Secret string   `json:"secret,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type handOut struct {
	PlayerID uuid.UUID `json:"player_id"`
	Username string    `json:"username"`
	Hand     []string  `json:"hand"`
	Category string    `json:"category"`
}

func playReport(ctrl *game.Controller, res *game.ShowdownResult) any {
	out := struct {
		TableID uint32      `json:"table_id"`
		HandRef uint32      `json:"hand_ref"`
		Phase   string      `json:"phase"`
		Board   []string    `json:"board"`
		Streets []streetOut `json:"streets"`
		Hands   []handOut   `json:"hands,omitempty"`
		Winners []uuid.UUID `json:"winners,omitempty"`
	}{
		TableID: ctrl.TableID(),
		HandRef: ctrl.HandRef(),
		Phase:   ctrl.Phase().String(),
		Board:   cardStrings(ctrl.Board()),
	}
	for _, rep := range ctrl.Reports() {
		s := streetOut{
			State:  string(rep.State),
			Cards:  cardStrings(rep.Cards),
			Source: string(rep.Source),
		}
		if rep.Secret != nil {
			s.Secret = secretString(*rep.Secret)
		}
		if rep.Err != nil {
			s.Error = rep.Err.Error()
		}
		out.Streets = append(out.Streets, s)
	}
	if res != nil {
		out.Board = cardStrings(res.Board)
		for _, h := range res.Hands {
			out.Hands = append(out.Hands, handOut{
				PlayerID: h.PlayerID,
				Username: h.Username,
				Hand:     cardStrings(h.Hole[:]),
				Category: h.Rank.Category.String(),
			})
		}
		out.Winners = res.Winners
	}
	return out
}
