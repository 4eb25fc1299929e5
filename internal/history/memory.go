package history

import (
	"context"
	"sync"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// MemRemoteHead is an in-memory RemoteHead, used by tests and by `leaky`
// commands run against a local-only repository.
type MemRemoteHead struct {
	mu   sync.Mutex
	head dag.CID
}

// NewMemRemoteHead returns a remote head with no history yet.
func NewMemRemoteHead() *MemRemoteHead {
	return &MemRemoteHead{head: dag.Undef}
}

func (r *MemRemoteHead) Head(_ context.Context) (dag.CID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.head, nil
}

func (r *MemRemoteHead) CompareAndSwap(_ context.Context, expect, next dag.CID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head != expect {
		return &leakyerr.HeadAdvanced{Actual: dag.EncodeCID(r.head)}
	}
	r.head = next
	return nil
}
