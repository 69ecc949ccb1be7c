// cmd/bocsubmit/status.go
package main

import (
	"fmt"

	gRPC "github.com/desync-labs/tx-manager/boc-submitter/internal/grpc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
)

func newStatusCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "status <submission-id>",
		Short: "Look up a submission recorded by the submitter service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := grpc.NewClient(server, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("failed to create gRPC connection: %w", err)
			}
			defer conn.Close()

			sub, err := gRPC.NewSubmitterClient(conn).GetSubmission(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(sub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "localhost:50051", "submitter service gRPC address")
	return cmd
}
