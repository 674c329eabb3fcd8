// Package tui renders a live view of the validator's liveness signals: the
// pid the relay reports and the open/closed state of the well-known ports.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ammankit/amman-go/internal/config"
	"github.com/ammankit/amman-go/internal/netprobe"
	"github.com/ammankit/amman-go/internal/relay"
)

const defaultRefresh = time.Second

// Option configures UI behaviour.
type Option func(*UI)

// WithRefreshInterval overrides how often the view re-probes the validator.
func WithRefreshInterval(d time.Duration) Option {
	return func(u *UI) {
		if d > 0 {
			u.refresh = d
		}
	}
}

// UI is the interactive status view backed by tview.
type UI struct {
	app  *tview.Application
	view *tview.TextView

	client  relay.Client
	prober  *netprobe.Prober
	ports   config.Ports
	refresh time.Duration
}

// New constructs a UI polling the given relay and ports.
func New(client relay.Client, prober *netprobe.Prober, ports config.Ports, opts ...Option) *UI {
	app := tview.NewApplication()

	view := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	view.SetBorder(true).SetTitle("amman validator")

	ui := &UI{
		app:     app,
		view:    view,
		client:  client,
		prober:  prober,
		ports:   ports,
		refresh: defaultRefresh,
	}
	for _, opt := range opts {
		opt(ui)
	}

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape, event.Key() == tcell.KeyCtrlC:
			app.Stop()
			return nil
		case event.Rune() == 'q':
			app.Stop()
			return nil
		}
		return event
	})

	return ui
}

type snapshot struct {
	At            time.Time
	Pid           int
	PidKnown      bool
	ValidatorOpen bool
	RPCOpen       bool
}

func (u *UI) observe(ctx context.Context) snapshot {
	snap := snapshot{At: time.Now()}
	if pid, err := u.client.RequestValidatorPid(ctx); err == nil && pid > 0 {
		snap.Pid = pid
		snap.PidKnown = true
	}
	snap.ValidatorOpen = u.prober.Scan(ctx, u.ports.Validator)
	snap.RPCOpen = u.prober.Scan(ctx, u.ports.RPC)
	return snap
}

func render(snap snapshot, ports config.Ports) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Updated %s\n\n", snap.At.Format(time.TimeOnly))
	if snap.PidKnown {
		fmt.Fprintf(&b, "Relay pid:       [green]%d[-]\n", snap.Pid)
	} else {
		fmt.Fprint(&b, "Relay pid:       [red]unknown[-]\n")
	}
	fmt.Fprintf(&b, "Validator %5d: %s\n", ports.Validator, portLabel(snap.ValidatorOpen))
	fmt.Fprintf(&b, "RPC       %5d: %s\n", ports.RPC, portLabel(snap.RPCOpen))
	fmt.Fprint(&b, "\nPress q to quit")
	return b.String()
}

func portLabel(open bool) string {
	if open {
		return "[green]open[-]"
	}
	return "[red]closed[-]"
}

// Run drives the view until the user quits or the context ends.
func (u *UI) Run(ctx context.Context) error {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(u.refresh)
		defer ticker.Stop()
		for {
			snap := u.observe(pollCtx)
			u.app.QueueUpdateDraw(func() {
				u.view.SetText(render(snap, u.ports))
			})
			select {
			case <-pollCtx.Done():
				u.app.Stop()
				return
			case <-ticker.C:
			}
		}
	}()

	return u.app.SetRoot(u.view, true).Run()
}
