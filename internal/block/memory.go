package block

import (
	"context"
	"sync"

	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// MemClient is an in-memory Client, used by tests and by `leaky` commands
// when block_store.type is "memory".
type MemClient struct {
	mu     sync.RWMutex
	blocks map[string][]byte
	pins   map[string]bool
}

// NewMemClient returns an empty in-memory block store.
func NewMemClient() *MemClient {
	return &MemClient{
		blocks: make(map[string][]byte),
		pins:   make(map[string]bool),
	}
}

func (m *MemClient) Put(_ context.Context, codec uint64, data []byte) (gocid.Cid, error) {
	c, err := dag.ComputeCID(codec, data)
	if err != nil {
		return dag.Undef, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[c.KeyString()] = append([]byte(nil), data...)
	return c, nil
}

func (m *MemClient) Get(_ context.Context, c gocid.Cid) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blocks[c.KeyString()]
	if !ok {
		return nil, &leakyerr.NotFound{What: c.String()}
	}
	return append([]byte(nil), data...), nil
}

func (m *MemClient) Has(_ context.Context, c gocid.Cid) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocks[c.KeyString()]
	return ok, nil
}

func (m *MemClient) Pin(_ context.Context, c gocid.Cid, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[c.KeyString()] = true
	return nil
}

func (m *MemClient) Unpin(_ context.Context, c gocid.Cid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pins, c.KeyString())
	return nil
}

// Pinned reports whether a CID is currently pinned. Test helper.
func (m *MemClient) Pinned(c gocid.Cid) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pins[c.KeyString()]
}

// Len reports the number of distinct blocks stored. Test helper.
func (m *MemClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}
