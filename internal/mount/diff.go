package mount

import (
	"context"
	"sort"

	"github.com/systemshift/leaky/internal/dag"
)

// DiffResult is the set of paths that differ between the mount's current
// working state and a prior committed root.
type DiffResult struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Diff compares the mount's current tree (including any uncommitted edits)
// against a previously committed root and reports added, removed, and
// modified file paths.
func (m *Mount) Diff(ctx context.Context, against dag.CID) (*DiffResult, error) {
	otherRoot, err := fetchNode(ctx, m.client, against)
	if err != nil {
		return nil, err
	}
	res := &DiffResult{}
	if err := m.diffNode(ctx, "", m.root, otherRoot, res); err != nil {
		return nil, err
	}
	sort.Strings(res.Added)
	sort.Strings(res.Removed)
	sort.Strings(res.Modified)
	return res, nil
}

func (m *Mount) diffNode(ctx context.Context, path string, live *loadedNode, other *dag.Node, res *DiffResult) error {
	for _, name := range unionNames(live.node, other) {
		childPath := path + "/" + name
		liveLink, liveOK := live.node.GetLink(name)
		otherLink, otherOK := other.GetLink(name)

		switch {
		case liveOK && !otherOK:
			if err := m.collectAllLive(ctx, live, name, childPath, &res.Added); err != nil {
				return err
			}
		case !liveOK && otherOK:
			if err := m.collectAllOther(ctx, otherLink, childPath, &res.Removed); err != nil {
				return err
			}
		default:
			if liveLink.Kind != otherLink.Kind {
				res.Modified = append(res.Modified, childPath)
				continue
			}
			slot, _ := slotFor(live, name)
			switch liveLink.Kind {
			case dag.LinkFile:
				if slot.dirty || slot.cid != otherLink.CID {
					res.Modified = append(res.Modified, childPath)
				}
			case dag.LinkDir:
				changed := (slot.dir != nil && slot.dir.dirty) || slot.cid != otherLink.CID
				if !changed {
					continue
				}
				otherChild, err := fetchNode(ctx, m.client, otherLink.CID)
				if err != nil {
					return err
				}
				childLive, err := m.loadDir(ctx, slot, childPath)
				if err != nil {
					return err
				}
				if err := m.diffNode(ctx, childPath, childLive, otherChild, res); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// collectAllLive appends every file path reachable under name in the live
// tree (name itself if it's a file) to out.
func (m *Mount) collectAllLive(ctx context.Context, parent *loadedNode, name, path string, out *[]string) error {
	slot, _ := slotFor(parent, name)
	if slot.kind == dag.LinkFile {
		*out = append(*out, path)
		return nil
	}
	dir, err := m.loadDir(ctx, slot, path)
	if err != nil {
		return err
	}
	for _, childName := range dir.node.SortedNames() {
		if err := m.collectAllLive(ctx, dir, childName, path+"/"+childName, out); err != nil {
			return err
		}
	}
	return nil
}

// collectAllOther appends every file path reachable under a link in a
// fetched (non-live) subtree to out.
func (m *Mount) collectAllOther(ctx context.Context, link dag.Link, path string, out *[]string) error {
	if link.Kind == dag.LinkFile {
		*out = append(*out, path)
		return nil
	}
	node, err := fetchNode(ctx, m.client, link.CID)
	if err != nil {
		return err
	}
	for _, name := range node.SortedNames() {
		childLink, _ := node.GetLink(name)
		if err := m.collectAllOther(ctx, childLink, path+"/"+name, out); err != nil {
			return err
		}
	}
	return nil
}

func unionNames(a, b *dag.Node) []string {
	seen := make(map[string]struct{})
	for _, n := range a.SortedNames() {
		seen[n] = struct{}{}
	}
	for _, n := range b.SortedNames() {
		seen[n] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
