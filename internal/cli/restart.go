package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ammankit/amman-go/internal/config"
)

func newRestartCmd(ctx *context) *cobra.Command {
	var validatorConfig string

	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Stop the validator if running, then start it fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, err := ctx.supervisor(cmd)
			if err != nil {
				return err
			}

			vcfg := &config.ValidatorConfig{ResetLedger: true}
			if validatorConfig != "" {
				vcfg, err = config.LoadValidatorConfig(validatorConfig)
				if err != nil {
					return err
				}
			}

			if err := sup.Restart(cmd.Context(), vcfg); err != nil {
				return err
			}
			ctx.emitEvent(cmd, "restarted", fmt.Sprintf("Validator restarted (pid %d)", sup.Pid()), sup.Pid())
			return nil
		},
	}

	cmd.Flags().StringVarP(&validatorConfig, "config", "c", "", "Validator config to restart with")

	return cmd
}
