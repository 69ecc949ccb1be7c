// cmd/bocsubmit/payload.go
package main

import (
	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	"github.com/spf13/cobra"
)

type payloadFlags struct {
	hex  string
	file string
}

func (f *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hex, "hex", "", "payload as hex (0x prefix optional)")
	cmd.Flags().StringVar(&f.file, "file", "", "path to a file holding the payload as hex text or raw bytes")
	cmd.MarkFlagsMutuallyExclusive("hex", "file")
}

func (f *payloadFlags) load() (domain.Payload, error) {
	switch {
	case f.hex != "" && f.file == "":
		return domain.DecodeHexPayload(f.hex)
	case f.file != "" && f.hex == "":
		return domain.ReadPayloadFile(f.file)
	default:
		return domain.Payload{}, errNoPayload
	}
}
