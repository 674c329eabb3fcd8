package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ammankit/amman-go/internal/supervisor"
)

type statusReport struct {
	Pid           int  `json:"pid,omitempty"`
	Running       bool `json:"running"`
	ValidatorPort int  `json:"validatorPort"`
	RPCPort       int  `json:"rpcPort"`
	ValidatorOpen bool `json:"validatorOpen"`
	RPCOpen       bool `json:"rpcOpen"`
}

func newStatusCmd(ctx *context) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a validator is running and reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := ctx.relayClient(cmd)
			if err != nil {
				return err
			}
			prober := ctx.prober()

			report := statusReport{
				ValidatorPort: cfg.Ports.Validator,
				RPCPort:       cfg.Ports.RPC,
			}
			if pid, ok := supervisor.PidOf(cmd.Context(), client); ok {
				report.Pid = pid
				report.Running = true
			}
			report.ValidatorOpen = prober.Scan(cmd.Context(), cfg.Ports.Validator)
			report.RPCOpen = prober.Scan(cmd.Context(), cfg.Ports.RPC)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if report.Running {
				fmt.Fprintf(out, "Validator pid: %d\n", report.Pid)
			} else {
				fmt.Fprintln(out, "Validator pid: unknown")
			}
			fmt.Fprintf(out, "Port %d: %s\n", report.ValidatorPort, openLabel(report.ValidatorOpen))
			fmt.Fprintf(out, "Port %d: %s\n", report.RPCPort, openLabel(report.RPCOpen))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the status as JSON")

	return cmd
}

func openLabel(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}
