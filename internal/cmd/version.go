package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ely.by/authlib/internal/security"
	"ely.by/authlib/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the gateway build and API compatibility information",
	Run: func(cmd *cobra.Command, args []string) {
		writeVersionInfo(os.Stdout)
	},
}

func writeVersionInfo(out io.Writer) {
	commit := version.Commit()
	if commit == "" {
		commit = "<unknown>"
	}

	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(w, "Version:\t%s\n", version.Version())
	_, _ = fmt.Fprintf(w, "Commit:\t%s\n", commit)
	// Tokens are accepted only when issued by the same major version
	_, _ = fmt.Fprintf(w, "Token version:\t%d\n", version.MajorVersion)
	_, _ = fmt.Fprintf(w, "Token scopes:\t%s\n", strings.Join([]string{
		string(security.SessionScope),
		string(security.ProfilesScope),
	}, ", "))
	_, _ = fmt.Fprintf(w, "Go:\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	_ = w.Flush()
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
