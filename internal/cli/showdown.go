package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/cards"
	"github.com/FoundationOfBabylone/secret-poker/internal/holdem"
	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// NewShowdownCommand creates the showdown command.
func NewShowdownCommand() *cobra.Command {
	var (
		table          uint32
		playerSecrets  []string
		flopSecretStr  string
		turnSecretStr  string
		riverSecretStr string
		execute        bool
		allIn          bool
		showFlags      []string
	)

	cmd := &cobra.Command{
		Use:   "showdown",
		Short: "Resolve the showdown from submitted hand secrets",
		Long: `Prove possession of every player's hand secret and read back their hole
cards, then rank the revealed hands against the board.

Street secrets passed along are proved too; the response repeats those
streets' cards so a street lost earlier can be recovered here. --execute
broadcasts the state-changing request instead; --all-in implies it and has
the contract complete the undealt streets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			secrets := make([]wire.Uint64, 0, len(playerSecrets))
			for _, s := range playerSecrets {
				v, err := parseSecret(s)
				if err != nil {
					return err
				}
				secrets = append(secrets, wire.Uint64(v))
			}
			flopSecret, err := optionalSecret(flopSecretStr)
			if err != nil {
				return err
			}
			turnSecret, err := optionalSecret(turnSecretStr)
			if err != nil {
				return err
			}
			riverSecret, err := optionalSecret(riverSecretStr)
			if err != nil {
				return err
			}

			useExecute := execute || allIn
			client, err := rt.client(useExecute)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var resp *wire.ShowdownResponse
			if useExecute {
				show, err := parseUUIDs(showFlags)
				if err != nil {
					return err
				}
				resp, err = client.ExecuteShowdown(ctx, wire.ShowdownMsg{
					TableID:        table,
					PlayersSecrets: secrets,
					FlopSecret:     flopSecret,
					TurnSecret:     turnSecret,
					RiverSecret:    riverSecret,
					ShowCards:      show,
					AllInShowdown:  allIn,
				})
				if err != nil {
					return err
				}
			} else {
				resp, err = client.Showdown(ctx, wire.ShowdownQuery{
					TableID:        table,
					FlopSecret:     flopSecret,
					TurnSecret:     turnSecret,
					RiverSecret:    riverSecret,
					PlayersSecrets: secrets,
				})
				if err != nil {
					return err
				}
			}

			return printJSON(cmd, showdownOutput(resp))
		},
	}

	cmd.Flags().Uint32Var(&table, flagTable, 0, "table id")
	cmd.Flags().StringSliceVar(&playerSecrets, "players-secrets", nil, "every player's hand secret, decimal")
	cmd.Flags().StringVar(&flopSecretStr, "flop-secret", "", "reconstructed flop secret, decimal")
	cmd.Flags().StringVar(&turnSecretStr, "turn-secret", "", "reconstructed turn secret, decimal")
	cmd.Flags().StringVar(&riverSecretStr, "river-secret", "", "reconstructed river secret, decimal")
	cmd.Flags().BoolVar(&execute, "execute", false, "use the state-changing path instead of the query")
	cmd.Flags().BoolVar(&allIn, "all-in", false, "resolve before the river; implies --execute")
	cmd.Flags().StringSliceVar(&showFlags, "show", nil, "player ids committing to show cards (execute path)")
	_ = cmd.MarkFlagRequired(flagTable)
	_ = cmd.MarkFlagRequired("players-secrets")
	return cmd
}

// showdownOutput renders the contract's answer plus a client-side ranking
// when a full board came back.
func showdownOutput(resp *wire.ShowdownResponse) any {
	type playerOut struct {
		PlayerID uuid.UUID `json:"player_id"`
		Hand     []string  `json:"hand"`
		Ranking  string    `json:"ranking,omitempty"`
	}
	out := struct {
		TableID        uint32      `json:"table_id"`
		HandRef        uint32      `json:"hand_ref"`
		CommunityCards []string    `json:"community_cards"`
		Players        []playerOut `json:"players"`
		Winners        []uuid.UUID `json:"winners,omitempty"`
		RankingError   string      `json:"ranking_error,omitempty"`
	}{
		TableID:        resp.TableID,
		HandRef:        resp.HandRef,
		CommunityCards: cardStrings(resp.CommunityCards),
	}

	holes := map[uuid.UUID][2]cards.Card{}
	categories := map[uuid.UUID]string{}
	for _, pc := range resp.PlayersCards {
		if len(pc.Cards) == 2 {
			holes[pc.PlayerID] = [2]cards.Card{pc.Cards[0], pc.Cards[1]}
		}
	}
	if len(resp.CommunityCards) == 5 && len(holes) == len(resp.PlayersCards) {
		ranked, err := holdem.Rankings(resp.CommunityCards, holes)
		if err != nil {
			out.RankingError = err.Error()
		} else {
			for _, r := range ranked {
				categories[r.PlayerID] = r.Rank.Category.String()
			}
			winners, _ := holdem.Winners(resp.CommunityCards, holes)
			out.Winners = winners
		}
	} else if len(resp.CommunityCards) != 5 {
		out.RankingError = fmt.Sprintf("board has %d cards, ranking needs 5", len(resp.CommunityCards))
	}

	for _, pc := range resp.PlayersCards {
		out.Players = append(out.Players, playerOut{
			PlayerID: pc.PlayerID,
			Hand:     cardStrings(pc.Cards),
			Ranking:  categories[pc.PlayerID],
		})
	}
	return out
}
