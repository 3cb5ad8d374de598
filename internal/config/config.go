// Package config loads operator settings: built-in defaults, then an
// optional config file, then SPOKER_-prefixed environment variables, later
// sources winning.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. SPOKER_RPC_ADDR.
const EnvPrefix = "SPOKER"

const (
	DefaultChainID      = "secretdev-1"
	DefaultRPCAddr      = "tcp://localhost:26657"
	DefaultArtifactPath = "contract.json"
	DefaultKeyFile      = "operator.key"
	DefaultQueryTimeout = 5 * time.Second
	DefaultExecTimeout  = 30 * time.Second
)

// Config is everything the operator binary needs to reach one table
// contract: where the chain is, which contract to talk to, and which key
// signs permits and transactions.
type Config struct {
	ChainID      string        `mapstructure:"chain_id"`
	RPCAddr      string        `mapstructure:"rpc_addr"`
	ArtifactPath string        `mapstructure:"artifact_path"`
	KeyFile      string        `mapstructure:"key_file"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	ExecTimeout  time.Duration `mapstructure:"exec_timeout"`
}

func (c Config) Validate() error {
	if c.ChainID == "" {
		return fmt.Errorf("missing chain_id")
	}
	if c.RPCAddr == "" {
		return fmt.Errorf("missing rpc_addr")
	}
	if c.ArtifactPath == "" {
		return fmt.Errorf("missing artifact_path")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be positive, got %s", c.QueryTimeout)
	}
	if c.ExecTimeout <= 0 {
		return fmt.Errorf("exec_timeout must be positive, got %s", c.ExecTimeout)
	}
	return nil
}

// Load reads the configuration. path names an explicit config file and must
// exist; with path empty a spoker.toml in the working directory or
// $HOME/.spoker is picked up when present, and absence is fine.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("chain_id", DefaultChainID)
	v.SetDefault("rpc_addr", DefaultRPCAddr)
	v.SetDefault("artifact_path", DefaultArtifactPath)
	v.SetDefault("key_file", DefaultKeyFile)
	v.SetDefault("query_timeout", DefaultQueryTimeout)
	v.SetDefault("exec_timeout", DefaultExecTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("spoker")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.spoker")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
