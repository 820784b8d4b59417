package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultTorStartupTimeout is how long Start waits for Tor to bootstrap.
const DefaultTorStartupTimeout = 3 * time.Minute

// EmbeddedTor manages a Tor daemon launched through tornago. Its SOCKS
// address is passed to WithProxy so lookups leave the machine over Tor and
// the lookup service never sees the caller's address.
//
// No Tor installation is needed: tornago starts the daemon itself, binds the
// SOCKS and control ports to free local ports and stops it again on Stop.
//
// Note: a cold start takes one to three minutes while Tor:
//   - downloads directory information from the network
//   - builds its first circuits
//   - opens the SOCKS and control listeners
//
// An EmbeddedTor is not safe for concurrent Start/Stop calls.
type EmbeddedTor struct {
	// process is the running daemon, or nil when stopped.
	process *tornago.TorProcess

	// socksAddr is the daemon's SOCKS5 "host:port".
	socksAddr string

	// startupTimeout bounds how long Start waits for bootstrap.
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates a manager. Call Start to launch the daemon.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: DefaultTorStartupTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon on OS-assigned ports and blocks until it has
// bootstrapped or the startup timeout expires.
//
// If ctx is cancelled while Tor bootstraps, the daemon is stopped again and
// ctx.Err() is returned.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // Best effort cleanup
		return err
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts the daemon down. Call it before the program exits so the Tor
// process does not outlive it.
//
// Calling Stop on a stopped or never-started instance is a no-op.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	return err
}

// IsRunning reports whether the daemon has been started and not stopped.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// SocksAddr returns the daemon's SOCKS5 address, or "" when not running.
//
// The format is "host:port" (e.g. "127.0.0.1:42715").
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// ProxyOption returns WithProxy for the running daemon.
func (e *EmbeddedTor) ProxyOption() (Option, error) {
	if !e.IsRunning() {
		return nil, ErrTorNotRunning
	}
	return WithProxy(e.socksAddr), nil
}
