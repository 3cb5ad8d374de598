// Package cli implements the spokerd subcommands, one file per command.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/FoundationOfBabylone/secret-poker/internal/compute"
	"github.com/FoundationOfBabylone/secret-poker/internal/config"
	"github.com/FoundationOfBabylone/secret-poker/internal/deploy"
	"github.com/FoundationOfBabylone/secret-poker/internal/permit"
)

const (
	flagConfig  = "config"
	flagVerbose = "verbose"
	flagTable   = "table"
	flagPlayers = "players"
)

// NewRootCommand assembles the spokerd command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spokerd",
		Short:         "table operator client for the private card distribution contract",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(flagConfig, "", "config file (default spoker.toml in . or $HOME/.spoker)")
	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "debug logging")

	rootCmd.AddCommand(
		NewKeygenCommand(),
		NewPermitCommand(),
		NewStartHandCommand(),
		NewPrivateDataCommand(),
		NewRevealCommand(),
		NewShowdownCommand(),
		NewPlayCommand(),
		NewStatusCommand(),
	)
	return rootCmd
}

// runtime is what every subcommand starts from: loaded config and a logger.
type runtime struct {
	cfg    *config.Config
	logger log.Logger
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	configPath, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	verbose, err := cmd.Flags().GetBool(flagVerbose)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return &runtime{
		cfg:    cfg,
		logger: log.NewLogger(os.Stderr, log.LevelOption(level)),
	}, nil
}

func (r *runtime) artifact() (*deploy.Artifact, error) {
	art, err := deploy.Load(r.cfg.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("load contract artifact: %w", err)
	}
	return art, nil
}

// client dials the configured node. withSigner loads the operator key so the
// client can broadcast; without it the client is query-only.
func (r *runtime) client(withSigner bool) (*compute.Client, error) {
	art, err := r.artifact()
	if err != nil {
		return nil, err
	}
	var signer permit.Signer
	if withSigner {
		s, err := permit.LoadKeyFile(r.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load operator key %s: %w", r.cfg.KeyFile, err)
		}
		signer = s
	}
	c, err := compute.Dial(r.cfg.RPCAddr, art, signer, r.logger)
	if err != nil {
		return nil, err
	}
	c.SetTimeouts(r.cfg.QueryTimeout, r.cfg.ExecTimeout)
	return c, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
