package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ammankit/amman-go/internal/tui"
)

func newWatchCmd(ctx *context) *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live view of the validator's pid and ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := ctx.relayClient(cmd)
			if err != nil {
				return err
			}
			ui := tui.New(client, ctx.prober(), cfg.Ports, tui.WithRefreshInterval(refresh))
			return ui.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", time.Second, "How often to re-probe the validator")

	return cmd
}
