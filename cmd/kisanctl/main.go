// Command kisanctl answers advisory questions from the command line, checks
// content files before they are deployed and manages officer roles.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kisanctl",
		Short:         "KisanSense administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("content", "", "content file (default: CONTENT_FILE or the embedded content)")

	root.AddCommand(newAskCmd(), newValidateCmd(), newLanguagesCmd(), newOfficerCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
