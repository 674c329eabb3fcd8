// Package supervisor owns the lifecycle of the local amman validator used by
// test suites. It reconciles three views of "is it running": a locally owned
// process handle, a pid discovered through the relay, and the open/closed
// state of the validator's two well-known ports.
//
// A Supervisor is synchronous and caller-driven: every operation runs to
// completion on the caller's goroutine, and readiness is awaited by polling.
// Concurrent calls against one instance are out of contract.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ammankit/amman-go/internal/config"
	"github.com/ammankit/amman-go/internal/launcher"
	"github.com/ammankit/amman-go/internal/metrics"
	"github.com/ammankit/amman-go/internal/netprobe"
	"github.com/ammankit/amman-go/internal/relay"
)

// State is the supervisor's tagged liveness view. Deriving it from the two
// underlying signals keeps inconsistent combinations detectable instead of
// silently ambiguous.
type State int

const (
	// StateNone means no validator is known to this supervisor.
	StateNone State = iota
	// StateOwned means this supervisor spawned the validator and holds the
	// only handle that can terminate and reap it directly.
	StateOwned
	// StateExternal means a validator is known only through the relay; the
	// out-of-band stop mechanism is the only kill path available.
	StateExternal
)

func (s State) String() string {
	switch s {
	case StateOwned:
		return "owned"
	case StateExternal:
		return "external"
	default:
		return "none"
	}
}

// Supervisor starts, detects, restarts and kills the local validator.
type Supervisor struct {
	client relay.Client
	handle launcher.Handle
	pid    int

	launcher    launcher.Launcher
	prober      *netprobe.Prober
	ports       config.Ports
	fixtures    string
	assetsDir   string
	waitTimeout time.Duration
	lockPath    string
	stderr      io.Writer
}

// Option customizes a Supervisor at construction time.
type Option func(*Supervisor)

// WithLauncher selects the launch backend. Defaults to the local process
// launcher.
func WithLauncher(l launcher.Launcher) Option {
	return func(s *Supervisor) { s.launcher = l }
}

// WithProber overrides the port prober.
func WithProber(p *netprobe.Prober) Option {
	return func(s *Supervisor) { s.prober = p }
}

// WithPorts overrides the well-known validator ports.
func WithPorts(ports config.Ports) Option {
	return func(s *Supervisor) { s.ports = ports }
}

// WithFixtures sets the fixtures root the validator is launched from.
func WithFixtures(dir string) Option {
	return func(s *Supervisor) { s.fixtures = dir }
}

// WithAssetsDir overrides the assets directory injected into validator
// configs. Defaults to <fixtures>/assets.
func WithAssetsDir(dir string) Option {
	return func(s *Supervisor) { s.assetsDir = dir }
}

// WithWaitTimeout bounds every readiness and shutdown wait; when it expires
// the operation fails with ErrWaitTimeout. Zero keeps waits unbounded, which
// is the default: an unresponsive validator then hangs the caller rather
// than failing the suite early.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Supervisor) { s.waitTimeout = d }
}

// WithLockPath overrides the file lock that serializes spawns across test
// processes on the same machine.
func WithLockPath(path string) Option {
	return func(s *Supervisor) { s.lockPath = path }
}

// WithStderr redirects the supervisor's advisory output.
func WithStderr(w io.Writer) Option {
	return func(s *Supervisor) { s.stderr = w }
}

// New constructs a Supervisor around a shared relay client. Any validator
// already running on the machine is adopted eagerly as an external pid.
func New(ctx context.Context, client relay.Client, opts ...Option) (*Supervisor, error) {
	s := &Supervisor{
		client:   client,
		launcher: launcher.NewProcess(),
		prober:   netprobe.New(),
		ports:    config.Ports{Validator: config.DefaultValidatorPort, RPC: config.DefaultRPCPort},
		fixtures: "./tests/fixtures",
		lockPath: filepath.Join(os.TempDir(), "amman-spawn.lock"),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	fixtures, err := filepath.Abs(s.fixtures)
	if err != nil {
		return nil, fmt.Errorf("resolve fixtures dir: %w", err)
	}
	s.fixtures = fixtures
	if s.assetsDir == "" {
		s.assetsDir = filepath.Join(fixtures, "assets")
	} else {
		// A relative assets dir would be re-anchored at the validator's
		// working directory; resolve it here, once, like the fixtures root.
		assets, err := filepath.Abs(s.assetsDir)
		if err != nil {
			return nil, fmt.Errorf("resolve assets dir: %w", err)
		}
		s.assetsDir = assets
	}

	if pid, ok := PidOf(ctx, client); ok {
		s.pid = pid
	}
	return s, nil
}

// NewFromConfig constructs a Supervisor from a harness config, wiring the
// relay client and launch backend the config names.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Supervisor, error) {
	var l launcher.Launcher
	switch cfg.Launcher {
	case "docker":
		l = launcher.NewDocker(cfg.Image)
	default:
		l = launcher.NewProcess()
	}

	base := []Option{
		WithLauncher(l),
		WithPorts(cfg.Ports),
		WithFixtures(cfg.Fixtures),
		WithAssetsDir(cfg.Assets),
		WithWaitTimeout(cfg.WaitTimeout.Duration),
	}
	return New(ctx, relay.NewHTTPClient(cfg.RelayURL), append(base, opts...)...)
}

// PidOf queries the relay for the pid of any validator running on this
// machine. Every request failure maps to "no pid known": the resolver never
// distinguishes "not running" from "could not determine", which is the
// conservative default for a liveness probe that must not double-spawn.
func PidOf(ctx context.Context, client relay.Client) (int, bool) {
	pid, err := client.RequestValidatorPid(ctx)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// Started reports whether this supervisor considers a validator running:
// either it holds an owned handle or it knows an external pid. No I/O.
func (s *Supervisor) Started() bool {
	return s.handle != nil || s.pid != 0
}

// State returns the tagged liveness state. When both a handle and a pid are
// present the handle wins: the pid is then merely the relay's view of our
// own child.
func (s *Supervisor) State() State {
	switch {
	case s.handle != nil:
		return StateOwned
	case s.pid != 0:
		return StateExternal
	default:
		return StateNone
	}
}

// Pid returns the pid of the validator this supervisor knows about, or 0.
func (s *Supervisor) Pid() int {
	if s.handle != nil {
		return s.handle.Pid()
	}
	return s.pid
}

// Clone duplicates the supervisor without duplicating process ownership: the
// owned handle is never copied, only the external pid, the shared relay
// client and the filesystem locations. The clone can observe and externally
// kill the validator but cannot reap a handle it never owned.
func (s *Supervisor) Clone() *Supervisor {
	dup := *s
	dup.handle = nil
	return &dup
}

// EnsureStarted makes sure a validator is reachable, preferring detection
// over spawning: it is a no-op when a handle is held, adopts a relay-known
// pid when one resolves, and only then starts a fresh validator.
func (s *Supervisor) EnsureStarted(ctx context.Context) error {
	if s.handle != nil {
		return nil
	}
	if pid, ok := PidOf(ctx, s.client); ok {
		s.pid = pid
		return nil
	}
	return s.start(ctx, nil)
}

// Start spawns a validator with no startup configuration.
func (s *Supervisor) Start(ctx context.Context) error {
	return s.start(ctx, nil)
}

// StartWith spawns a validator with the given startup configuration. When
// the config names no assets folder the supervisor injects its own before
// serialization.
func (s *Supervisor) StartWith(ctx context.Context, vcfg *config.ValidatorConfig) error {
	return s.start(ctx, vcfg)
}

func (s *Supervisor) start(ctx context.Context, vcfg *config.ValidatorConfig) error {
	if s.handle != nil {
		return ErrAlreadyStarted
	}

	// Serialize the pid check and spawn across test processes sharing this
	// machine; two suites racing past the relay check would double-spawn.
	lock := flock.New(s.lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire spawn lock: %w", err)
	}
	defer lock.Unlock()

	if pid, ok := PidOf(ctx, s.client); ok {
		return &AlreadyRunningError{Pid: pid}
	}

	var configPath string
	if vcfg != nil {
		if vcfg.AssetsFolder == "" {
			vcfg.AssetsFolder = s.assetsDir
		}
		path, tmp, err := config.WriteValidatorConfig(vcfg)
		if err != nil {
			return err
		}
		// The validator reads the file at startup; the backing storage must
		// stay valid until the spawn call has returned.
		defer tmp.Release()
		configPath = path
	}

	handle, err := s.launcher.Start(ctx, launcher.StartSpec{
		Dir:        s.fixtures,
		ConfigPath: configPath,
		Ports:      []int{s.ports.Validator, s.ports.RPC},
	})
	if err != nil {
		return fmt.Errorf("spawn validator: %w", err)
	}

	began := time.Now()
	waitCtx, cancel := s.waitContext(ctx)
	defer cancel()

	if err := s.awaitReady(waitCtx); err != nil {
		// Don't leave an unreachable validator behind on a failed start.
		_ = handle.Kill(context.Background())
		return err
	}

	metrics.ObserveReadinessWait(time.Since(began))
	metrics.IncValidatorStarts()
	metrics.SetValidatorUp(true)
	s.handle = handle
	return nil
}

// awaitReady blocks until the relay can name the validator's pid and both
// well-known ports accept connections. Discoverability through the relay is
// the only confirmation that the validator is far enough along to be
// controlled; the ports are the readiness proxy after that.
func (s *Supervisor) awaitReady(ctx context.Context) error {
	fmt.Fprint(s.stderr, "Waiting for validator pid")
	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(s.stderr)
			return s.waitErr(err)
		}
		if pid, ok := PidOf(ctx, s.client); ok {
			fmt.Fprintf(s.stderr, ": %d\n", pid)
			break
		}
	}

	fmt.Fprint(s.stderr, "Waiting for validator to be ready")
	if err := s.prober.WaitOpen(ctx, s.ports.Validator); err != nil {
		fmt.Fprintln(s.stderr)
		return s.waitErr(err)
	}
	if err := s.prober.WaitOpen(ctx, s.ports.RPC); err != nil {
		fmt.Fprintln(s.stderr)
		return s.waitErr(err)
	}
	fmt.Fprintln(s.stderr, ": ok")
	return nil
}

// Restart kills any running validator, then starts fresh with the given
// configuration. The two steps are not atomic: a kill that succeeds followed
// by a start that fails leaves the supervisor not started.
func (s *Supervisor) Restart(ctx context.Context, vcfg *config.ValidatorConfig) error {
	if s.Started() {
		if err := s.Kill(ctx, true); err != nil {
			return err
		}
	}
	return s.start(ctx, vcfg)
}

// Kill terminates the validator.
//
// For an owned validator the relay is asked to kill first; the relay
// affirmatively failing that request violates the design's assumption that
// the control channel is authoritative, and panics. The owned handle is then
// terminated and reaped directly, which is the completion signal for this
// path.
//
// For an externally known validator, killExternal must be true; otherwise
// the supervisor only logs an advisory, since the process was not spawned
// here. The external path confirms completion by waiting for both well-known
// ports to close, as no local wait handle exists.
func (s *Supervisor) Kill(ctx context.Context, killExternal bool) error {
	if !s.Started() {
		return ErrNotRunning
	}

	if s.handle != nil {
		if err := s.client.RequestKill(ctx); err != nil {
			panic(fmt.Sprintf("relay refused to kill validator: %v", err))
		}
		if err := s.handle.Kill(ctx); err != nil {
			return &KillError{Err: err}
		}
		s.handle = nil
		s.pid = 0
		metrics.IncValidatorKills("owned")
		metrics.SetValidatorUp(false)
		return nil
	}

	if !killExternal {
		fmt.Fprintf(s.stderr, "Refusing to kill validator that was not created by this supervisor (pid %d). Please kill via `%s stop`\n", s.pid, launcher.Executable())
		return nil
	}

	if err := s.launcher.StopExternal(ctx); err != nil {
		return &KillError{Err: err}
	}

	waitCtx, cancel := s.waitContext(ctx)
	defer cancel()

	fmt.Fprintln(s.stderr, "Waiting for validator to shut down")
	if err := s.prober.WaitClosed(waitCtx, s.ports.Validator); err != nil {
		return s.waitErr(err)
	}
	if err := s.prober.WaitClosed(waitCtx, s.ports.RPC); err != nil {
		return s.waitErr(err)
	}
	s.pid = 0
	metrics.IncValidatorKills("external")
	metrics.SetValidatorUp(false)
	return nil
}

func (s *Supervisor) waitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.waitTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.waitTimeout)
}

func (s *Supervisor) waitErr(err error) error {
	// Only a deadline this supervisor imposed maps to ErrWaitTimeout; a
	// deadline on the caller's own context passes through untouched.
	if s.waitTimeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrWaitTimeout, s.waitTimeout)
	}
	return err
}
