package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	messageBroker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker"
	broker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker/interface"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/store"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
)

type SubmitterServiceInterface interface {
	SubmitTransaction(ctx context.Context, req SubmitRequest) (*domain.Submission, error)
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
}

// BocSender sends one serialized message to the network.
// *toncenter.Submitter implements it.
type BocSender interface {
	Submit(ctx context.Context, payload []byte, cfg toncenter.EndpointConfig) (*toncenter.Result, error)
}

type SubmitRequest struct {
	AppName  string
	Priority int
	Payload  domain.Payload
}

// SubmitterService is the service for the submitter
type SubmitterService struct {
	sender        BocSender
	endpoint      toncenter.EndpointConfig
	store         store.SubmissionStore
	messageBroker broker.MessageBrokerInterface
}

// NewSubmitterService wires the service. messageBroker may be nil, in
// which case results are only stored.
func NewSubmitterService(sender BocSender, endpoint toncenter.EndpointConfig, submissionStore store.SubmissionStore, messageBroker broker.MessageBrokerInterface) *SubmitterService {
	return &SubmitterService{
		sender:        sender,
		endpoint:      endpoint,
		store:         submissionStore,
		messageBroker: messageBroker,
	}
}

// SubmitTransaction validates req, sends the payload once and records the
// outcome. Validation problems are returned as errors and nothing is
// stored. Once an ID is assigned, the network outcome lives in the
// returned record (ACCEPTED, REJECTED or FAILED) and err is nil unless the
// record could not be stored or published.
func (s *SubmitterService) SubmitTransaction(ctx context.Context, req SubmitRequest) (*domain.Submission, error) {
	sub, err := domain.NewSubmission(req.AppName, req.Priority, req.Payload)
	if err != nil {
		slog.Error("Failed to create submission", "app", req.AppName, "error", err)
		return nil, err
	}

	if err := s.endpoint.Validate(); err != nil {
		return nil, err
	}

	id, err := s.store.NextID(ctx, sub.AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate submission ID: %w", err)
	}
	sub.Id = id

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}

	slog.Info("Submitting BOC", "id", sub.Id, "priority", sub.Priority, "bytes", sub.Payload.Len())

	res, err := s.sender.Submit(ctx, sub.Payload.Bytes(), s.endpoint)
	applyOutcome(sub, res, err)

	if err != nil {
		slog.Warn("BOC submission did not succeed", "id", sub.Id, "status", sub.Status, "error", err)
	} else {
		slog.Info("BOC accepted", "id", sub.Id)
	}

	if err := s.store.Save(ctx, sub); err != nil {
		return sub, err
	}

	if s.messageBroker != nil {
		if err := s.messageBroker.PublishObject(messageBroker.ResultExchange, sub, sub.Priority, ctx); err != nil {
			return sub, fmt.Errorf("failed to publish submission result: %w", err)
		}
	}

	return sub, nil
}

func (s *SubmitterService) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.Done() {
		slog.Debug("Submission still in progress", "id", id, "status", sub.Status)
	}
	return sub, nil
}

func applyOutcome(sub *domain.Submission, res *toncenter.Result, err error) {
	sub.CompletedAt = time.Now().UTC()

	if err == nil {
		sub.Status = domain.StatusAccepted
		sub.Result = res.Result
		sub.RawResponse = string(res.Raw)
		return
	}

	var e *toncenter.Error
	if !errors.As(err, &e) {
		sub.Status = domain.StatusFailed
		sub.ErrorMsg = err.Error()
		return
	}

	sub.ErrorKind = string(e.Kind)
	sub.RawResponse = string(e.Raw)
	if e.Kind == toncenter.KindRPC {
		sub.Status = domain.StatusRejected
		sub.ErrorCode = e.Code
		sub.ErrorMsg = e.Message
		return
	}
	sub.Status = domain.StatusFailed
	sub.ErrorMsg = e.Error()
}
