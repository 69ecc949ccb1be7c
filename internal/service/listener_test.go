package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	messageBroker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/store"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/stretchr/testify/require"
)

const queuedBoc = `{"app_name":"wallet","boc_hex":"b5ee9c72"}`

// blockingSender holds every submission until release is closed or the
// submission context ends.
type blockingSender struct {
	started  chan struct{}
	release  chan struct{}
	calls    atomic.Int32
	canceled atomic.Int32
}

func newBlockingSender() *blockingSender {
	return &blockingSender{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (s *blockingSender) Submit(ctx context.Context, _ []byte, _ toncenter.EndpointConfig) (*toncenter.Result, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	select {
	case <-s.release:
		return &toncenter.Result{Result: json.RawMessage(`{}`)}, nil
	case <-ctx.Done():
		s.canceled.Add(1)
		return nil, &toncenter.Error{Kind: toncenter.KindTransport, Detail: "POST", Err: ctx.Err()}
	}
}

func TestListener_ProcessesQueuedSubmission(t *testing.T) {
	sender := &fakeSender{res: &toncenter.Result{Result: json.RawMessage(`{"hash":"abc"}`)}}
	mb := newFakeBroker()
	svc := NewSubmitterService(sender, testEndpoint, store.NewMemoryStore(), mb)

	l := NewListenerService(svc, mb, []int{1, 2, 3}, context.Background(), 2, time.Second)
	require.NoError(t, l.SetupSubmissionListener())
	defer l.Shutdown()

	require.NoError(t, mb.deliver(t, messageBroker.SubmitExchange, 2, queuedBoc))

	select {
	case p := <-mb.publishCh:
		require.Equal(t, messageBroker.ResultExchange, p.exchange)
		require.Equal(t, 2, p.priority)

		var sub domain.Submission
		require.NoError(t, json.Unmarshal(p.body, &sub))
		require.Equal(t, "wallet-1", sub.Id)
		require.Equal(t, domain.StatusAccepted, sub.Status)
		require.Equal(t, []byte{0xb5, 0xee, 0x9c, 0x72}, sub.Payload.Bytes())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result publication")
	}
}

func TestListener_DropsInvalidMessages(t *testing.T) {
	sender := &fakeSender{res: &toncenter.Result{Result: json.RawMessage(`{}`)}}
	mb := newFakeBroker()
	svc := NewSubmitterService(sender, testEndpoint, store.NewMemoryStore(), mb)

	l := NewListenerService(svc, mb, []int{1}, context.Background(), 1, 0)
	require.NoError(t, l.SetupSubmissionListener())

	require.NoError(t, mb.deliver(t, messageBroker.SubmitExchange, 1, `not json`))
	require.NoError(t, mb.deliver(t, messageBroker.SubmitExchange, 1, `{"app_name":"wallet","boc_hex":"zz"}`))
	require.NoError(t, mb.deliver(t, messageBroker.SubmitExchange, 1, `{"app_name":"wallet","boc_hex":""}`))

	l.Shutdown()
	require.Zero(t, sender.calls())
}

func TestListener_ShutdownFinishesInFlightSubmission(t *testing.T) {
	sender := newBlockingSender()
	mb := newFakeBroker()
	st := store.NewMemoryStore()
	svc := NewSubmitterService(sender, testEndpoint, st, mb)

	l := NewListenerService(svc, mb, []int{1}, context.Background(), 1, time.Second)
	require.NoError(t, l.SetupSubmissionListener())

	first := make(chan error, 1)
	go func() { first <- mb.deliver(t, messageBroker.SubmitExchange, 1, queuedBoc) }()

	select {
	case <-sender.started:
	case <-time.After(5 * time.Second):
		t.Fatal("submission never started")
	}
	require.NoError(t, <-first)

	// The only worker is busy, so this delivery waits for a handoff.
	second := make(chan error, 1)
	go func() { second <- mb.deliver(t, messageBroker.SubmitExchange, 1, queuedBoc) }()

	stopped := make(chan struct{})
	go func() {
		l.Shutdown()
		close(stopped)
	}()

	select {
	case err := <-second:
		require.ErrorIs(t, err, ErrListenerStopped)
	case <-time.After(5 * time.Second):
		t.Fatal("pending delivery was not handed back")
	}

	select {
	case <-stopped:
		t.Fatal("shutdown returned before the in-flight submission finished")
	default:
	}

	close(sender.release)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	require.Equal(t, int32(1), sender.calls.Load())
	require.Zero(t, sender.canceled.Load())

	select {
	case p := <-mb.publishCh:
		var sub domain.Submission
		require.NoError(t, json.Unmarshal(p.body, &sub))
		require.Equal(t, domain.StatusAccepted, sub.Status)
	default:
		t.Fatal("result of the in-flight submission was not published")
	}

	stored, err := st.Get(context.Background(), "wallet-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, stored.Status)
}

func TestListener_RefusesDeliveriesAfterShutdown(t *testing.T) {
	sender := &fakeSender{res: &toncenter.Result{Result: json.RawMessage(`{}`)}}
	mb := newFakeBroker()
	svc := NewSubmitterService(sender, testEndpoint, store.NewMemoryStore(), mb)

	l := NewListenerService(svc, mb, []int{1}, context.Background(), 2, time.Second)
	require.NoError(t, l.SetupSubmissionListener())
	l.Shutdown()

	err := mb.deliver(t, messageBroker.SubmitExchange, 1, queuedBoc)
	require.ErrorIs(t, err, ErrListenerStopped)
	require.Zero(t, sender.calls())
}

func TestListener_ShutdownIsIdempotent(t *testing.T) {
	mb := newFakeBroker()
	svc := NewSubmitterService(&fakeSender{}, testEndpoint, store.NewMemoryStore(), mb)

	l := NewListenerService(svc, mb, []int{1}, context.Background(), 3, 0)
	require.NoError(t, l.SetupSubmissionListener())
	l.Shutdown()
	l.Shutdown()
}
