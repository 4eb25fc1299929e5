// Package mount implements the in-memory mutable tree that mirrors a
// committed IPLD DAG: lazy loading of child nodes, dirty tracking, per-path
// schema validation, and re-serialization back into blocks on commit.
package mount

import (
	"context"
	"fmt"
	"time"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// State is the lifecycle state of a Mount instance.
type State int

const (
	StateClosed State = iota
	StateClean
	StateDirty
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// childSlot is one entry in a loadedNode's children cache: either a loaded
// directory, a loaded file object, or still-unloaded (cid set, dir/file nil).
type childSlot struct {
	kind  dag.LinkKind
	cid   dag.CID // last known encoded CID; dag.Undef if never yet encoded
	dir   *loadedNode
	file  *dag.Object
	dirty bool // true once file metadata has diverged from cid
}

// loadedNode is a directory materialized in memory: the decoded Node plus a
// lazily-populated cache of its children. Entries not yet in children are
// still represented purely by the Node's own Links map.
type loadedNode struct {
	node     *dag.Node
	children map[string]*childSlot
	dirty    bool

	// schemaRawCache holds the raw JSON of this node's local schema
	// (node.Schema() tracks its CID) so validation doesn't have to re-fetch
	// and re-decode the schema block on every Add/Tag/SetSchema call; nil
	// when the local schema is unset.
	schemaRawCache []byte
}

func newLoadedNode(node *dag.Node) *loadedNode {
	return &loadedNode{node: node, children: make(map[string]*childSlot)}
}

// Mount is the mutable tree rooted at a directory Node.
type Mount struct {
	client block.Client
	root   *loadedNode
	rootCID dag.CID // dag.Undef for a never-committed (genesis) mount
	state  State
}

// Open loads the root Node from root (or starts an empty genesis tree when
// root is nil) and marks the mount Clean.
func Open(ctx context.Context, client block.Client, root *dag.CID) (*Mount, error) {
	if root == nil {
		return &Mount{client: client, root: newLoadedNode(dag.NewNode()), rootCID: dag.Undef, state: StateClean}, nil
	}
	node, err := fetchNode(ctx, client, *root)
	if err != nil {
		return nil, err
	}
	return &Mount{client: client, root: newLoadedNode(node), rootCID: *root, state: StateClean}, nil
}

// Close releases the mount. A dirty mount must be committed first; closing
// a dirty mount discards uncommitted edits.
func (m *Mount) Close() {
	m.state = StateClosed
}

// State reports the current lifecycle state.
func (m *Mount) State() State {
	return m.state
}

// RootCID returns the mount's last-committed (or opened) root CID. Undef
// for a genesis mount that has never been committed.
func (m *Mount) RootCID() dag.CID {
	return m.rootCID
}

func fetchNode(ctx context.Context, client block.Client, c dag.CID) (*dag.Node, error) {
	data, err := client.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	node, err := dag.DecodeNode(data)
	if err != nil {
		return nil, &leakyerr.Decode{What: fmt.Sprintf("node %s", c), Err: err}
	}
	return node, nil
}

func fetchObject(ctx context.Context, client block.Client, c dag.CID) (*dag.Object, error) {
	data, err := client.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	obj, err := dag.DecodeObject(data)
	if err != nil {
		return nil, &leakyerr.Decode{What: fmt.Sprintf("object %s", c), Err: err}
	}
	return obj, nil
}

func fetchSchema(ctx context.Context, client block.Client, c dag.CID) (*dag.Schema, error) {
	data, err := client.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	s, err := dag.DecodeSchema(data)
	if err != nil {
		return nil, &leakyerr.Decode{What: fmt.Sprintf("schema %s", c), Err: err}
	}
	return s, nil
}

// slotFor returns the child slot for name under ln, creating an unloaded
// stub from the Node's link map the first time it is touched.
func slotFor(ln *loadedNode, name string) (*childSlot, bool) {
	if s, ok := ln.children[name]; ok {
		return s, true
	}
	link, ok := ln.node.GetLink(name)
	if !ok {
		return nil, false
	}
	s := &childSlot{kind: link.Kind, cid: link.CID}
	ln.children[name] = s
	return s, true
}

// loadDir materializes the directory behind a slot, fetching it if unloaded.
// path is used only to annotate a type mismatch error.
func (m *Mount) loadDir(ctx context.Context, s *childSlot, path string) (*loadedNode, error) {
	if s.kind != dag.LinkDir {
		return nil, &leakyerr.NotADirectory{Path: path}
	}
	if s.dir != nil {
		return s.dir, nil
	}
	node, err := fetchNode(ctx, m.client, s.cid)
	if err != nil {
		return nil, err
	}
	s.dir = newLoadedNode(node)
	return s.dir, nil
}

// loadFile materializes the Object behind a slot, fetching it if unloaded.
// path is used only to annotate a type mismatch error.
func (m *Mount) loadFile(ctx context.Context, s *childSlot, path string) (*dag.Object, error) {
	if s.kind != dag.LinkFile {
		return nil, &leakyerr.NotAFile{Path: path}
	}
	if s.file != nil {
		return s.file, nil
	}
	obj, err := fetchObject(ctx, m.client, s.cid)
	if err != nil {
		return nil, err
	}
	s.file = obj
	return s.file, nil
}

// now is the single clock reference for created_at/updated_at stamping,
// isolated here so tests can observe it indirectly through ordering rather
// than exact values.
func now() time.Time {
	return time.Now().UTC()
}
