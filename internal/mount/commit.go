package mount

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// Commit serializes every dirty node bottom-up, puts each resulting block,
// pins the new root, and returns it. Calling Commit on a Clean mount is a
// no-op that returns the current root CID.
func (m *Mount) Commit(ctx context.Context) (dag.CID, error) {
	if m.state != StateDirty {
		return m.rootCID, nil
	}

	root, err := m.commitNode(ctx, m.root)
	if err != nil {
		return dag.Undef, err
	}
	if err := m.client.Pin(ctx, root, true); err != nil {
		return dag.Undef, &leakyerr.Transport{Op: "pin", Err: err}
	}

	m.rootCID = root
	m.state = StateClean
	return root, nil
}

type commitResult struct {
	name string
	cid  dag.CID
}

// commitNode re-encodes ln bottom-up: dirty file slots and dirty child
// subtrees are flushed in parallel (independent block Puts have no ordering
// requirement), then the node's own link map is rewritten with the fresh
// CIDs before ln itself is encoded and put.
func (m *Mount) commitNode(ctx context.Context, ln *loadedNode) (dag.CID, error) {
	names := ln.node.SortedNames()
	results := make([]commitResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		slot, _ := slotFor(ln, name)
		link, _ := ln.node.GetLink(name)

		needsWork := (slot.kind == dag.LinkFile && slot.dirty) ||
			(slot.kind == dag.LinkDir && slot.dir != nil && slot.dir.dirty)
		if !needsWork {
			results[i] = commitResult{name: name, cid: link.CID}
			continue
		}

		i, name, slot := i, name, slot
		g.Go(func() error {
			switch slot.kind {
			case dag.LinkFile:
				c, data, err := slot.file.Encode()
				if err != nil {
					return fmt.Errorf("encode object %s: %w", name, err)
				}
				if _, err := m.client.Put(gctx, dag.DagCBORCodec, data); err != nil {
					return err
				}
				slot.cid = c
				slot.dirty = false
				results[i] = commitResult{name: name, cid: c}
			case dag.LinkDir:
				c, err := m.commitNode(gctx, slot.dir)
				if err != nil {
					return err
				}
				slot.cid = c
				results[i] = commitResult{name: name, cid: c}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dag.Undef, err
	}

	for _, r := range results {
		link, _ := ln.node.GetLink(r.name)
		ln.node.PutLink(r.name, dag.Link{Kind: link.Kind, CID: r.cid})
	}

	c, data, err := ln.node.Encode()
	if err != nil {
		return dag.Undef, fmt.Errorf("encode node: %w", err)
	}
	if _, err := m.client.Put(ctx, dag.DagCBORCodec, data); err != nil {
		return dag.Undef, err
	}

	ln.dirty = false
	return c, nil
}
