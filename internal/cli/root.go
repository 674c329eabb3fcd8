package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ammankit/amman-go/internal/config"
	"github.com/ammankit/amman-go/internal/netprobe"
	"github.com/ammankit/amman-go/internal/relay"
	"github.com/ammankit/amman-go/internal/supervisor"
)

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	var configFile string
	var logJSON bool

	root := &cobra.Command{
		Use:   "ammanctl",
		Short: "Supervise a local amman validator",
	}

	root.PersistentFlags().
		StringVarP(&configFile, "file", "f", "amman.yaml", "Path to supervisor configuration")
	root.PersistentFlags().
		BoolVar(&logJSON, "log-json", false, "Emit lifecycle events as JSON records")

	ctx := &context{configFile: &configFile, logJSON: &logJSON}
	root.AddCommand(newStartCmd(ctx))
	root.AddCommand(newStopCmd(ctx))
	root.AddCommand(newRestartCmd(ctx))
	root.AddCommand(newStatusCmd(ctx))
	root.AddCommand(newShutdownCmd(ctx))
	root.AddCommand(newWatchCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type context struct {
	configFile *string
	logJSON    *bool
}

// loadConfig reads the configured file, falling back to defaults when the
// default file simply does not exist. A missing file named explicitly on the
// command line is still an error.
func (c *context) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := *c.configFile
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Root().PersistentFlags().Changed("file") {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *context) supervisor(cmd *cobra.Command) (*supervisor.Supervisor, *config.Config, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	sup, err := supervisor.NewFromConfig(cmd.Context(), cfg, supervisor.WithStderr(cmd.ErrOrStderr()))
	if err != nil {
		return nil, nil, err
	}
	return sup, cfg, nil
}

func (c *context) relayClient(cmd *cobra.Command) (relay.Client, *config.Config, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return relay.NewHTTPClient(cfg.RelayURL), cfg, nil
}

func (c *context) prober() *netprobe.Prober {
	return netprobe.New()
}
