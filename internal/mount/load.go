package mount

import (
	"context"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// resolveDir walks from the root following segs, requiring a directory link
// at every step. ancestors always includes the root first and the returned
// dir last (ancestors[len-1] == dir). When create is true, missing
// intermediate segments become new empty directories, silently, and the
// directories they're created in are marked dirty; when false, a missing
// segment is *NotFound* and a non-directory link along the way is
// *NotADirectory*.
func (m *Mount) resolveDir(ctx context.Context, segs []string, create bool) (ancestors []*loadedNode, dir *loadedNode, err error) {
	cur := m.root
	ancestors = []*loadedNode{cur}

	for i, name := range segs {
		walked := joinSegs(segs[:i+1])
		slot, ok := slotFor(cur, name)
		if !ok {
			if !create {
				return nil, nil, &leakyerr.NotFound{What: walked}
			}
			newDir := newLoadedNode(dag.NewNode())
			newDir.dirty = true
			cur.node.PutLink(name, dag.Link{Kind: dag.LinkDir, CID: dag.Undef})
			cur.children[name] = &childSlot{kind: dag.LinkDir, dir: newDir}
			cur.dirty = true
			cur = newDir
			ancestors = append(ancestors, cur)
			continue
		}
		if slot.kind != dag.LinkDir {
			return nil, nil, &leakyerr.NotADirectory{Path: walked}
		}
		next, err := m.loadDir(ctx, slot, walked)
		if err != nil {
			return nil, nil, err
		}
		cur = next
		ancestors = append(ancestors, cur)
	}
	return ancestors, cur, nil
}

// markDirtyChain flags every ancestor in the chain, so commit's post-order
// walk knows it must re-encode them even if only a descendant truly changed.
func markDirtyChain(ancestors []*loadedNode) {
	for _, a := range ancestors {
		a.dirty = true
	}
}
