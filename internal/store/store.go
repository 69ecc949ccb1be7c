// Package store persists submission records and hands out submission IDs.
package store

import (
	"context"
	"errors"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
)

var ErrNotFound = errors.New("submission not found")

type SubmissionStore interface {
	// NextID returns a new unique submission ID for appName.
	NextID(ctx context.Context, appName string) (string, error)
	Save(ctx context.Context, s *domain.Submission) error
	Get(ctx context.Context, id string) (*domain.Submission, error)
}
