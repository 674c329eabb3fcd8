package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ammankit/amman-go/internal/config"
)

func newStartCmd(ctx *context) *cobra.Command {
	var validatorConfig string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Spawn the validator and wait until it is ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, err := ctx.supervisor(cmd)
			if err != nil {
				return err
			}

			if validatorConfig == "" {
				if err := sup.EnsureStarted(cmd.Context()); err != nil {
					return err
				}
				ctx.emitEvent(cmd, "started", fmt.Sprintf("Validator running (%s, pid %d)", sup.State(), sup.Pid()), sup.Pid())
				return nil
			}

			vcfg, err := config.LoadValidatorConfig(validatorConfig)
			if err != nil {
				return err
			}
			if err := sup.StartWith(cmd.Context(), vcfg); err != nil {
				return err
			}
			ctx.emitEvent(cmd, "started", fmt.Sprintf("Validator started (pid %d)", sup.Pid()), sup.Pid())
			return nil
		},
	}

	cmd.Flags().StringVarP(&validatorConfig, "config", "c", "", "Validator config to start with")

	return cmd
}
