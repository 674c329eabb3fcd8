package supervisor

import (
	"context"
	"fmt"

	"github.com/ammankit/amman-go/internal/relay"
)

// Shutdown terminates any validator running on this machine, independent of
// every supervisor instance. It builds a disposable relay client, asks it to
// kill, and blocks until the relay no longer reports a pid. Intended for
// end-of-suite teardown.
func Shutdown(ctx context.Context) error {
	return ShutdownWith(ctx, relay.NewHTTPClient(""))
}

// ShutdownWith is Shutdown against a specific relay client.
func ShutdownWith(ctx context.Context, client relay.Client) error {
	if _, ok := PidOf(ctx, client); !ok {
		return nil
	}
	if err := client.RequestKill(ctx); err != nil {
		return fmt.Errorf("request validator kill: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := PidOf(ctx, client); !ok {
			return nil
		}
	}
}
