// cmd/bocsubmit/main.go
package main

import (
	"errors"
	"os"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// cli carries what the commands share. httpClient is nil outside tests.
type cli struct {
	httpClient toncenter.HTTPDoer
}

func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "bocsubmit",
		Short: "Submit serialized TON messages (BOCs) to a toncenter JSON-RPC endpoint",
		Long: `bocsubmit sends an already-serialized BOC to a toncenter-compatible
JSON-RPC endpoint using the sendBoc method.

The payload is given as hex (--hex) or as a file (--file) holding either
hex text or raw bytes. The endpoint is always explicit: --endpoint or the
TON_RPC_ENDPOINT environment variable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSendCmd(app),
		newEncodeCmd(),
		newStatusCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (app *cli) submitter() *toncenter.Submitter {
	return toncenter.NewSubmitter(toncenter.WithHTTPClient(app.httpClient))
}

var errNoPayload = errors.New("exactly one of --hex or --file is required")
