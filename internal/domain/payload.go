package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Payload is an opaque serialized transaction (a BOC). It is never
// modified after construction.
type Payload struct {
	b []byte
}

// NewPayload copies b into a new Payload.
func NewPayload(b []byte) Payload {
	return Payload{b: bytes.Clone(b)}
}

// DecodeHexPayload parses hex text, with or without a 0x prefix.
// Surrounding whitespace is ignored and either case is accepted.
func DecodeHexPayload(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return Payload{}, ErrPayloadRequired
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Payload{}, fmt.Errorf("decode hex payload: %w", err)
	}
	return Payload{b: b}, nil
}

// ReadPayloadFile loads a payload from disk. Files holding only hex text
// are decoded; anything else is taken as raw bytes.
func ReadPayloadFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("read payload file: %w", err)
	}
	if len(data) == 0 {
		return Payload{}, ErrPayloadRequired
	}
	if isHexText(data) {
		return DecodeHexPayload(string(data))
	}
	return Payload{b: data}, nil
}

func isHexText(data []byte) bool {
	s := strings.TrimSpace(string(data))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// Bytes returns a copy of the payload bytes.
func (p Payload) Bytes() []byte {
	return bytes.Clone(p.b)
}

func (p Payload) Len() int {
	return len(p.b)
}

func (p Payload) Hex() string {
	return hex.EncodeToString(p.b)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Hex())
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*p = Payload{}
		return nil
	}
	decoded, err := DecodeHexPayload(s)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
