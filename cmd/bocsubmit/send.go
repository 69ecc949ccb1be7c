// cmd/bocsubmit/send.go
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const endpointEnv = "TON_RPC_ENDPOINT"

func newSendCmd(app *cli) *cobra.Command {
	var (
		payload  payloadFlags
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a BOC with sendBoc and print the result",
		Long: `Send a BOC with sendBoc and print the result.

The request is sent once; nothing is retried.

Examples:
  # Send a hex payload to testnet
  bocsubmit send --hex b5ee9c72... --endpoint https://testnet.toncenter.com/api/v2/jsonRPC

  # Send a payload stored in a file
  TON_RPC_ENDPOINT=https://testnet.toncenter.com/api/v2/jsonRPC bocsubmit send --file msg.boc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := payload.load()
			if err != nil {
				return err
			}
			if endpoint == "" {
				endpoint = os.Getenv(endpointEnv)
			}

			cfg := toncenter.EndpointConfig{Endpoint: endpoint, Timeout: timeout}
			res, err := app.submitter().Submit(cmd.Context(), p.Bytes(), cfg)
			out := cmd.OutOrStdout()
			if err != nil {
				printFailure(out, err)
				return err
			}

			color.New(color.FgGreen).Fprintln(out, "BOC accepted")
			fmt.Fprintln(out, indentJSON(res.Result))
			return nil
		},
	}

	payload.register(cmd)
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "JSON-RPC endpoint URL (defaults to $"+endpointEnv+")")
	cmd.Flags().DurationVar(&timeout, "timeout", toncenter.DefaultTimeout, "request timeout")
	return cmd
}

func printFailure(w io.Writer, err error) {
	var e *toncenter.Error
	if !errors.As(err, &e) {
		color.New(color.FgRed).Fprintln(w, "Submission failed")
		return
	}

	color.New(color.FgRed).Fprintf(w, "Submission failed: %s\n", e.Kind)
	if e.Kind == toncenter.KindRPC {
		fmt.Fprintf(w, "  Code:    %d\n", e.Code)
		fmt.Fprintf(w, "  Message: %s\n", e.Message)
	} else {
		fmt.Fprintf(w, "  Detail:  %s\n", e.Detail)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(w, "  HTTP:    %d\n", e.StatusCode)
	}
	if len(e.Raw) > 0 {
		fmt.Fprintln(w, "Server response:")
		fmt.Fprintln(w, string(e.Raw))
	}
}

func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
