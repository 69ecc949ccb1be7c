package toncenter

import (
	"errors"
	"fmt"
)

// Kind classifies why a submission failed.
type Kind string

const (
	KindInvalidPayload    Kind = "InvalidPayload"
	KindInvalidConfig     Kind = "InvalidConfig"
	KindTransport         Kind = "TransportError"
	KindMalformedResponse Kind = "MalformedResponse"
	KindRPC               Kind = "RpcError"
)

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrInvalidConfig     = errors.New("invalid endpoint config")
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrRPC               = errors.New("rpc error")
)

var kindSentinels = map[Kind]error{
	KindInvalidPayload:    ErrInvalidPayload,
	KindInvalidConfig:     ErrInvalidConfig,
	KindTransport:         ErrTransport,
	KindMalformedResponse: ErrMalformedResponse,
	KindRPC:               ErrRPC,
}

// Error is returned by Submit for every failure.
//
// Code and Message are set for KindRPC. Raw holds the server response body
// whenever one was received, so diagnostics never lose what the node said.
type Error struct {
	Kind       Kind
	Detail     string
	Code       int64
	Message    string
	StatusCode int
	Raw        []byte
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindRPC {
		return fmt.Sprintf("sendBoc %s: code=%d message=%q", e.Kind, e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("sendBoc %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("sendBoc %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of a submission error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}
