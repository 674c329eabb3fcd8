package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStopCmd(ctx *context) *cobra.Command {
	var external bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Kill the running validator",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, err := ctx.supervisor(cmd)
			if err != nil {
				return err
			}
			pid := sup.Pid()
			if err := sup.Kill(cmd.Context(), external); err != nil {
				return err
			}
			// Kill declines externally known validators without --external
			// rather than failing; don't report those as stopped.
			if sup.Started() {
				ctx.emitEvent(cmd, "refused", fmt.Sprintf("Validator not stopped (external pid %d); rerun with --external to kill it", pid), pid)
				return nil
			}
			ctx.emitEvent(cmd, "stopped", "Validator stopped", pid)
			return nil
		},
	}

	cmd.Flags().BoolVar(&external, "external", false, "Also kill a validator this process did not spawn")

	return cmd
}
