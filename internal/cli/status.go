package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show node and contract wiring",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			art, err := rt.artifact()
			if err != nil {
				return err
			}
			client, err := rt.client(false)
			if err != nil {
				return err
			}

			st, err := client.NodeStatus(cmd.Context())
			if err != nil {
				return err
			}
			if st.NodeInfo.Network != rt.cfg.ChainID {
				rt.logger.Warn("node network differs from configured chain id",
					"node", st.NodeInfo.Network, "config", rt.cfg.ChainID)
			}

			return printJSON(cmd, struct {
				RPCAddr      string `json:"rpc_addr"`
				Network      string `json:"network"`
				LatestHeight int64  `json:"latest_height"`
				CatchingUp   bool   `json:"catching_up"`
				Contract     string `json:"contract"`
				CodeHash     string `json:"code_hash"`
			}{
				RPCAddr:      rt.cfg.RPCAddr,
				Network:      st.NodeInfo.Network,
				LatestHeight: st.SyncInfo.LatestBlockHeight,
				CatchingUp:   st.SyncInfo.CatchingUp,
				Contract:     art.ContractAddress,
				CodeHash:     art.CodeHash,
			})
		},
	}
	return cmd
}
