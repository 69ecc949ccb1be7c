// Package toncenter submits serialized TON messages (BOCs) to a
// toncenter-compatible JSON-RPC endpoint through the sendBoc method.
//
// A Submitter holds no mutable state and may be shared between goroutines.
// It performs exactly one HTTP request per Submit call and never retries;
// callers that want retries wrap Submit with their own policy.
package toncenter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPDoer is the transport used by Submitter. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is a successful sendBoc response.
type Result struct {
	// Result is the raw JSON of the response "result" field.
	Result json.RawMessage
	// Raw is the complete response body.
	Raw        []byte
	StatusCode int
}

type Submitter struct {
	httpClient HTTPDoer
}

type Option func(*Submitter)

// WithHTTPClient replaces the default transport, e.g. with a pooled
// client owned by the caller.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(s *Submitter) {
		if doer != nil {
			s.httpClient = doer
		}
	}
}

func NewSubmitter(opts ...Option) *Submitter {
	s := &Submitter{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends payload to cfg.Endpoint and classifies the response.
// Every failure is a *Error; see Kind for the taxonomy.
func (s *Submitter) Submit(ctx context.Context, payload []byte, cfg EndpointConfig) (*Result, error) {
	if len(payload) == 0 {
		return nil, newError(KindInvalidPayload, "payload is empty", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	body, err := NewSendBocRequest(payload).Marshal()
	if err != nil {
		return nil, newError(KindInvalidPayload, "marshal request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindInvalidConfig, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, fmt.Sprintf("POST %s", cfg.Endpoint), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		e := newError(KindTransport, "read response body", err)
		e.StatusCode = resp.StatusCode
		return nil, e
	}
	if len(raw) > maxResponseBytes {
		e := newError(KindMalformedResponse, fmt.Sprintf("response exceeds %d MiB", maxResponseBytes>>20), nil)
		e.StatusCode = resp.StatusCode
		e.Raw = raw[:maxResponseBytes]
		return nil, e
	}

	return classify(raw, resp.StatusCode)
}

// classify maps a response body onto Result or *Error. The HTTP status is
// recorded but not interpreted: toncenter answers failed sendBoc calls with
// a non-2xx status and a JSON body describing the failure.
func classify(raw []byte, statusCode int) (*Result, error) {
	fail := func(kind Kind, detail string) *Error {
		e := newError(kind, detail, nil)
		e.StatusCode = statusCode
		e.Raw = raw
		return e
	}

	if !gjson.ValidBytes(raw) {
		return nil, fail(KindMalformedResponse, fmt.Sprintf("response is not valid JSON (HTTP %d)", statusCode))
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fail(KindMalformedResponse, fmt.Sprintf("response is not a JSON object (HTTP %d)", statusCode))
	}

	if rpcErr := root.Get("error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		e := fail(KindRPC, "server returned an error")
		if rpcErr.IsObject() {
			// JSON-RPC 2.0 error object
			e.Code = rpcErr.Get("code").Int()
			e.Message = rpcErr.Get("message").String()
		} else {
			// toncenter: {"ok":false,"error":"...","code":N}
			e.Code = root.Get("code").Int()
			e.Message = rpcErr.String()
		}
		return nil, e
	}

	if ok := root.Get("ok"); ok.Exists() && ok.Type == gjson.False {
		e := fail(KindRPC, "server returned ok=false without an error")
		e.Code = root.Get("code").Int()
		e.Message = "ok=false"
		return nil, e
	}

	result := root.Get("result")
	if !result.Exists() {
		return nil, fail(KindMalformedResponse, "response has neither result nor error")
	}

	return &Result{
		Result:     json.RawMessage(result.Raw),
		Raw:        raw,
		StatusCode: statusCode,
	}, nil
}
