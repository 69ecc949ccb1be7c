package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
)

var _ SubmissionStore = (*MemoryStore)(nil)

// MemoryStore is a process-local SubmissionStore. Records are stored
// serialized so callers never share a *domain.Submission with the store.
type MemoryStore struct {
	mu      sync.Mutex
	counter int64
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) NextID(_ context.Context, appName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return formatID(appName, m.counter), nil
}

func (m *MemoryStore) Save(_ context.Context, sub *domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to serialize submission %s: %w", sub.Id, err)
	}
	m.mu.Lock()
	m.records[sub.Id] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Submission, error) {
	m.mu.Lock()
	data, ok := m.records[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sub := &domain.Submission{}
	if err := json.Unmarshal(data, sub); err != nil {
		return nil, fmt.Errorf("failed to decode submission %s: %w", id, err)
	}
	return sub, nil
}
