package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	messageBroker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker"
	broker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker/interface"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
)

// ErrListenerStopped is returned to the broker for messages that arrive
// after Shutdown, so they are requeued instead of acknowledged.
var ErrListenerStopped = errors.New("listener is shutting down")

// storeGrace is added to the send timeout to cover the final Save and the
// result publication of a queued submission.
const storeGrace = 5 * time.Second

// QueuedSubmission is the message body expected on the submit exchange.
type QueuedSubmission struct {
	AppName  string `json:"app_name"`
	Priority int    `json:"priority"`
	BocHex   string `json:"boc_hex"`
}

// ListenerService feeds queued submissions from the message broker into a
// bounded pool of workers. A message is only acknowledged once a worker
// has taken it.
type ListenerService struct {
	submitter      SubmitterServiceInterface
	messageBroker  broker.MessageBrokerInterface
	priorities     []int
	ctx            context.Context
	cancel         context.CancelFunc
	workerPoolSize int
	timeout        time.Duration
	taskQueue      chan SubmitRequest
	wg             sync.WaitGroup
	once           sync.Once
}

// NewListenerService creates the listener. timeout bounds a single queued
// submission from send to publish, plus storeGrace; zero means
// toncenter.DefaultTimeout.
func NewListenerService(submitter SubmitterServiceInterface, messageBroker broker.MessageBrokerInterface, priorities []int, ctx context.Context, workerPoolSize int, timeout time.Duration) *ListenerService {
	if workerPoolSize < 1 {
		workerPoolSize = 1
	}
	if timeout <= 0 {
		timeout = toncenter.DefaultTimeout
	}
	ctxListener, cancel := context.WithCancel(ctx)
	return &ListenerService{
		submitter:      submitter,
		messageBroker:  messageBroker,
		priorities:     priorities,
		ctx:            ctxListener,
		cancel:         cancel,
		workerPoolSize: workerPoolSize,
		timeout:        timeout,
		// Unbuffered: a delivery is handed straight to a free worker.
		taskQueue: make(chan SubmitRequest),
	}
}

func (l *ListenerService) SetupSubmissionListener() error {
	slog.Info("Setting up submission listener", "workers", l.workerPoolSize)

	for i := 0; i < l.workerPoolSize; i++ {
		l.wg.Add(1)
		go l.worker(i + 1)
	}

	for _, p := range l.priorities {
		priority := p
		err := l.messageBroker.ListenForMessages(messageBroker.SubmitExchange, priority, func(body []byte, ctx context.Context) error {
			return l.enqueue(priority, body)
		})
		if err != nil {
			l.Shutdown()
			return err
		}
		slog.Info("Listening for new submissions", "priority", priority)
	}

	return nil
}

// enqueue decodes one message and blocks until a worker takes it. Messages
// that cannot be decoded are dropped. ErrListenerStopped is returned when
// the listener shuts down first.
func (l *ListenerService) enqueue(priority int, body []byte) error {
	var msg QueuedSubmission
	if err := json.Unmarshal(body, &msg); err != nil {
		slog.Error("Failed to unmarshal message", "priority", priority, "error", err)
		return nil
	}

	payload, err := domain.DecodeHexPayload(msg.BocHex)
	if err != nil {
		slog.Error("Dropping message with invalid payload", "app", msg.AppName, "error", err)
		return nil
	}

	if msg.Priority == 0 {
		msg.Priority = priority
	}

	select {
	case l.taskQueue <- SubmitRequest{AppName: msg.AppName, Priority: msg.Priority, Payload: payload}:
		return nil
	case <-l.ctx.Done():
		return ErrListenerStopped
	}
}

// Shutdown stops taking new messages and waits for workers to finish the
// submissions they already hold.
func (l *ListenerService) Shutdown() {
	l.once.Do(func() {
		slog.Info("Closing listener service")
		l.cancel()
		l.wg.Wait()
		slog.Info("Listener service shut down gracefully")
	})
}

func (l *ListenerService) worker(id int) {
	defer l.wg.Done()
	slog.Debug("Worker started", "worker_id", id)
	for {
		// Shutdown wins over a pending handoff.
		select {
		case <-l.ctx.Done():
			slog.Debug("Worker received shutdown signal", "worker_id", id)
			return
		default:
		}

		select {
		case req := <-l.taskQueue:
			l.process(id, req)
		case <-l.ctx.Done():
			slog.Debug("Worker received shutdown signal", "worker_id", id)
			return
		}
	}
}

// process runs one submission on a context that Shutdown does not cancel,
// so a BOC already on its way to the node gets its outcome recorded.
func (l *ListenerService) process(id int, req SubmitRequest) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), l.timeout+storeGrace)
	defer cancel()

	sub, err := l.submitter.SubmitTransaction(ctx, req)
	if err != nil {
		slog.Error("Failed to process queued submission", "worker_id", id, "app", req.AppName, "error", err)
		return
	}
	slog.Debug("Processed queued submission", "worker_id", id, "id", sub.Id, "status", sub.Status)
}
