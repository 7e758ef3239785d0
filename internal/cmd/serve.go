package cmd

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts HTTP handler for the session gateway",
	Long: `Starts HTTP handler for the session gateway.

Joins are rejected with "not launched" unless launcher.launched (LAUNCHER_LAUNCHED env)
is set to true. It is false by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startServer()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
