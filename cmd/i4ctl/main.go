package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "i4ctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i4ctl",
		Short: "I3 notation codec and router client",
		Long: `i4ctl speaks the Intermud-3 wire format.

It converts between I3 notation, mudmode frames and JSON, manages the
router identity file and runs the upstream connection with its admin API.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newConfigCmd(), newServeCmd())
	return root
}
