// cmd/bocsubmit/encode.go
package main

import (
	"fmt"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		payload  payloadFlags
		envelope bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the base64 form of a BOC without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := payload.load()
			if err != nil {
				return err
			}
			if p.Len() == 0 {
				return toncenter.ErrInvalidPayload
			}

			if !envelope {
				fmt.Fprintln(cmd.OutOrStdout(), toncenter.EncodeBoc(p.Bytes()))
				return nil
			}
			body, err := toncenter.NewSendBocRequest(p.Bytes()).Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	payload.register(cmd)
	cmd.Flags().BoolVar(&envelope, "envelope", false, "print the full sendBoc JSON-RPC request body")
	return cmd
}
