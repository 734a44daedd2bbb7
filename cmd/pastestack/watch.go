package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastestack/internal/capture"
	"go.klb.dev/pastestack/internal/config"
	"go.klb.dev/pastestack/internal/ipc"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Capture clipboard changes into the history",
		Long: `Polls the system clipboard and records every new copy into the history
database. Copies already in the history are not stored twice; the oldest
events are pruned once more than --max-retained are kept.

While running, the daemon listens on a local IPC socket so that
"pastestack restore" and "pastestack status" are served by this process.

Config file search order:
  /etc/pastestack/pastestack.toml
  $HOME/.config/pastestack/pastestack.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → PASTESTACK_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.Duration("interval", capture.DefaultInterval, "clipboard poll interval (0 = default)")
	f.Bool("exit-on-error", false, "exit on a storage fault instead of restarting the capture loop")
	f.Bool("no-ipc", false, "do not listen on the IPC socket")
	addBackendFlag(cmd)
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runWatch(ctx context.Context, v *viper.Viper) error {
	logs, err := setupLogging(v)
	if err != nil {
		return err
	}
	defer logs.Close()

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	backend := newBackend(cfg)
	defer backend.Close()

	slog.Info("pastestack watch starting",
		"version", Version,
		"backend", backend.Name(),
		"db", cfg.DB,
		"driver", st.Driver(),
		"interval", cfg.Interval,
		"max_retained", st.MaxRetained(),
	)

	// The capacity may have shrunk since the last run.
	if n, err := st.Prune(ctx); err != nil {
		slog.Warn("startup prune failed", "err", err)
	} else if n > 0 {
		slog.Info("history pruned to capacity", "removed", n)
	}

	rec := capture.NewRecorder(st)

	if !v.GetBool("no-ipc") {
		ln, err := ipc.Listen()
		if err != nil {
			slog.Warn("IPC socket unavailable", "err", err)
		} else {
			slog.Info("IPC socket listening", "path", ipc.SocketPath())
			d := newDaemon(cfg, st, backend, rec)
			go ipc.Serve(ctx, ln, d.handle)
			defer ln.Close()
		}
	}

	return superviseCapture(ctx, capture.NewPoller(backend, cfg.Interval), rec, cfg)
}

// superviseCapture runs the poll loop, restarting it after a storage fault
// unless cfg.ExitOnError is set. It returns nil on shutdown.
func superviseCapture(ctx context.Context, p *capture.Poller, rec *capture.Recorder, cfg config.Config) error {
	for {
		err := p.Run(ctx, rec.Handle)
		if ctx.Err() != nil {
			slog.Info("pastestack watch stopping")
			return nil
		}
		if err == nil {
			return nil
		}
		if cfg.ExitOnError {
			return fmt.Errorf("capture: %w", err)
		}

		slog.Error("capture loop failed, restarting", "err", err, "after", p.Interval())
		t := time.NewTimer(p.Interval())
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}
