package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastestack/internal/ipc"
	"go.klb.dev/pastestack/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and history status",
		Long: `Reports whether a watch daemon is running and how much history is retained.

If a daemon is running the request is sent via the IPC socket; otherwise the
history database is opened directly.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := setupLogging(v)
			if err != nil {
				return err
			}
			defer logs.Close()

			var (
				st        *message.StatusInfo
				transport string
			)
			if ipc.IsRunning() {
				st, err = statusViaIPC()
				transport = fmt.Sprintf("ipc (%s)", ipc.SocketPath())
			} else {
				st, err = statusDirect(cmd, v)
				transport = "direct"
			}
			if err != nil {
				return err
			}

			if v.GetBool("yaml") {
				return renderYAML(cmd.OutOrStdout(), st)
			}
			if v.GetBool("json") {
				enc, _ := json.MarshalIndent(st, "", "  ")
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(enc))
				return nil
			}
			return renderStatus(cmd.OutOrStdout(), st, transport)
		},
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	cmd.Flags().Bool("yaml", false, "output YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func statusViaIPC() (*message.StatusInfo, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	resp, err := ipc.Request(conn, &message.Message{Type: message.TypeStatus})
	if err != nil {
		return nil, err
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("unexpected daemon response %q", resp.Type)
	}
	return resp.Status, nil
}

func statusDirect(cmd *cobra.Command, v *viper.Viper) (*message.StatusInfo, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	n, err := st.Count(ctxOf(cmd))
	if err != nil {
		return nil, err
	}
	return &message.StatusInfo{
		DB:          cfg.DB,
		Driver:      st.Driver(),
		MaxRetained: st.MaxRetained(),
		Retained:    n,
	}, nil
}
