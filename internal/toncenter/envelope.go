package toncenter

import (
	"encoding/base64"
	"encoding/json"
)

const (
	jsonRPCVersion = "2.0"
	methodSendBoc  = "sendBoc"
)

// Request is the JSON-RPC envelope for sendBoc. Field order is fixed by
// the struct so encoded bodies are byte-for-byte reproducible.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  SendBocParams `json:"params"`
}

type SendBocParams struct {
	Boc string `json:"boc"`
}

// EncodeBoc returns the standard, padded base64 form of a serialized BOC.
func EncodeBoc(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// NewSendBocRequest builds the sendBoc envelope for payload.
func NewSendBocRequest(payload []byte) Request {
	return Request{
		JSONRPC: jsonRPCVersion,
		Method:  methodSendBoc,
		Params:  SendBocParams{Boc: EncodeBoc(payload)},
	}
}

// Marshal encodes the envelope compactly, without a trailing newline.
func (r Request) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
