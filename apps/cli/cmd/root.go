package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ultralite",
		Short: "HTTP convenience for the terminal.",
		Long: `ultralite issues GET and HEAD requests with default headers, query
parameters and an optional cookie store, and can chain follow-up requests
through the same session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRequestCmd("GET"))
	root.AddCommand(newRequestCmd("HEAD"))
	root.AddCommand(newStubCmd("POST"))
	root.AddCommand(newStubCmd("PUT"))
	root.AddCommand(newStubCmd("DELETE"))
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
