package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the most recent clipboard events",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := setupLogging(v)
			if err != nil {
				return err
			}
			defer logs.Close()
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			events, err := st.Recent(ctxOf(cmd), v.GetInt("limit"))
			if err != nil {
				return err
			}
			if v.GetBool("yaml") {
				return renderYAML(cmd.OutOrStdout(), eventInfos(events))
			}
			return renderList(cmd.OutOrStdout(), events, v.GetBool("json"))
		},
	}

	f := cmd.Flags()
	f.IntP("limit", "n", 20, "number of events to show")
	f.Bool("json", false, "output JSON")
	f.Bool("yaml", false, "output YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func newShowCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "show <id>",
		Short:   "Show every item and payload of one event",
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
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ev, err := st.Get(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			return renderEvent(cmd.OutOrStdout(), ev)
		},
	}

	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", s)
	}
	return id, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
