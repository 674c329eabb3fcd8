package cli

import (
	"github.com/spf13/cobra"

	"github.com/ammankit/amman-go/internal/supervisor"
)

func newShutdownCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Kill any validator on this machine, regardless of who started it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.relayClient(cmd)
			if err != nil {
				return err
			}
			pid, running := supervisor.PidOf(cmd.Context(), client)
			if err := supervisor.ShutdownWith(cmd.Context(), client); err != nil {
				return err
			}
			if running {
				ctx.emitEvent(cmd, "shutdown", "Validator shut down", pid)
			} else {
				ctx.emitEvent(cmd, "shutdown", "No validator running", 0)
			}
			return nil
		},
	}
	return cmd
}
