// pastestack: clipboard history capture and restore.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pastestack",
		Short: "Clipboard history",
		Long: `pastestack records every clipboard copy into a bounded, deduplicated
history that can be listed and restored later.

Run "pastestack watch" to capture. Use "pastestack list/show/restore/status"
to browse and replay the history.

Config file search order (first found wins):
  /etc/pastestack/pastestack.toml
  $HOME/.config/pastestack/pastestack.toml
  path supplied via --config

All flags can be set via PASTESTACK_<FLAG> env vars or config-file keys.
See "pastestack watch --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newWatchCmd(),
		newListCmd(),
		newShowCmd(),
		newRestoreCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pastestack %s\n", Version)
		},
	}
}
