package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastestack/internal/ipc"
	"go.klb.dev/pastestack/internal/message"
	"go.klb.dev/pastestack/internal/restore"
)

func newRestoreCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Put a stored event back on the clipboard",
		Long: `Replaces the clipboard contents with a stored event, one clipboard item per
stored item, each payload under its original type.

If a watch daemon is running the request is sent over the IPC socket and the
daemon performs the write. On X11 the clipboard is owned by the writing
process, so without a daemon the restored contents may disappear when this
command exits. Pass --direct to skip the daemon.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			logs, err := setupLogging(v)
			if err != nil {
				return err
			}
			defer logs.Close()

			var info message.EventInfo
			if !v.GetBool("direct") && ipc.IsRunning() {
				info, err = restoreViaIPC(id)
			} else {
				info, err = restoreDirect(cmd, v, id)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored event %d: %s\n", info.ID, info.Summary)
			return nil
		},
	}

	cmd.Flags().Bool("direct", false, "write the clipboard from this process even if a daemon is running")
	addBackendFlag(cmd)
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func restoreViaIPC(id int64) (message.EventInfo, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return message.EventInfo{}, fmt.Errorf("dial daemon: %w", err)
	}
	slog.Debug("restoring via daemon", "id", id, "socket", ipc.SocketPath())

	resp, err := ipc.Request(conn, &message.Message{Type: message.TypeRestore, ID: id})
	if err != nil {
		return message.EventInfo{}, err
	}
	if err := responseError(resp); err != nil {
		return message.EventInfo{}, err
	}
	if resp.Type != message.TypeOK || resp.Event == nil {
		return message.EventInfo{}, fmt.Errorf("unexpected daemon response %q", resp.Type)
	}
	return *resp.Event, nil
}

func restoreDirect(cmd *cobra.Command, v *viper.Viper, id int64) (message.EventInfo, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return message.EventInfo{}, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return message.EventInfo{}, err
	}
	defer st.Close()

	backend := newBackend(cfg)
	defer backend.Close()

	ev, err := restore.New(st, backend).Restore(ctxOf(cmd), id)
	if err != nil {
		return message.EventInfo{}, err
	}
	return eventInfo(ev), nil
}
