package mount

import (
	"context"
	"sort"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// StatFile reports whether path exists as a file and, if so, the data CID
// its current Object points at. A missing path reports ok=false with a nil
// error rather than *leakyerr.NotFound, since "is this staged yet" is an
// expected outcome for callers like the sync stager.
func (m *Mount) StatFile(ctx context.Context, path string) (dag.CID, bool, error) {
	segs, err := splitPath(path)
	if err != nil {
		return dag.Undef, false, err
	}
	if len(segs) == 0 {
		return dag.Undef, false, &leakyerr.InvalidPath{Path: path, Reason: "root is not a file"}
	}
	parentSegs, name := segs[:len(segs)-1], segs[len(segs)-1]

	_, parent, err := m.resolveDir(ctx, parentSegs, false)
	if err != nil {
		if _, ok := err.(*leakyerr.NotFound); ok {
			return dag.Undef, false, nil
		}
		return dag.Undef, false, err
	}

	slot, ok := slotFor(parent, name)
	if !ok {
		return dag.Undef, false, nil
	}
	if slot.kind != dag.LinkFile {
		return dag.Undef, false, &leakyerr.NotAFile{Path: path}
	}
	obj, err := m.loadFile(ctx, slot, path)
	if err != nil {
		return dag.Undef, false, err
	}
	return obj.DataCID, true, nil
}

// WalkFiles returns every file path currently reachable in the tree,
// loading directories lazily as needed.
func (m *Mount) WalkFiles(ctx context.Context) ([]string, error) {
	var out []string
	if err := m.walkDir(ctx, m.root, "", &out); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (m *Mount) walkDir(ctx context.Context, dir *loadedNode, path string, out *[]string) error {
	for _, name := range dir.node.SortedNames() {
		slot, _ := slotFor(dir, name)
		childPath := path + "/" + name
		switch slot.kind {
		case dag.LinkFile:
			*out = append(*out, childPath)
		case dag.LinkDir:
			child, err := m.loadDir(ctx, slot, childPath)
			if err != nil {
				return err
			}
			if err := m.walkDir(ctx, child, childPath, out); err != nil {
				return err
			}
		}
	}
	return nil
}
