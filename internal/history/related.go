package history

import (
	"context"
	"sort"
	"time"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
)

// changeEvent is one manifest transition's changed file paths, used for
// temporal windowing.
type changeEvent struct {
	ts      time.Time
	changed []string
}

// Relatedness derives "files that tend to change together" signals from the
// manifest chain, the way commit co-change analysis does over a commit log:
// manifests whose data roots differ within the same time window contribute
// every pair of their changed paths to a co-occurrence count.
type Relatedness struct {
	pairs  map[string]map[string]int
	window time.Duration
}

// BuildRelatedness walks up to limit manifests (newest first) starting at
// head, diffs each against its predecessor's data_root tree, and groups the
// resulting changed-path sets into window-wide buckets.
func BuildRelatedness(ctx context.Context, client block.Client, head dag.CID, limit int, window time.Duration) (*Relatedness, error) {
	r := &Relatedness{pairs: make(map[string]map[string]int), window: window}

	manifests, err := Walk(ctx, client, head, limit)
	if err != nil && len(manifests) < 2 {
		return r, err
	}
	if len(manifests) < 2 {
		return r, nil
	}

	var events []changeEvent
	for i := 0; i < len(manifests)-1; i++ {
		child := manifests[i]
		parent := manifests[i+1]
		changed, err := diffDataRoots(ctx, client, parent.DataRoot, child.DataRoot)
		if err != nil {
			return r, err
		}
		if len(changed) > 0 {
			events = append(events, changeEvent{ts: child.CreatedAt, changed: changed})
		}
	}

	first := manifests[len(manifests)-1]
	if first.Previous == nil {
		paths, err := listAllPaths(ctx, client, first.DataRoot)
		if err != nil {
			return r, err
		}
		if len(paths) > 0 {
			events = append(events, changeEvent{ts: first.CreatedAt, changed: paths})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].ts.Before(events[j].ts) })

	var windowEvents []changeEvent
	var windowStart time.Time
	for _, evt := range events {
		if !windowStart.IsZero() && evt.ts.Sub(windowStart) > window {
			r.flushWindow(windowEvents)
			windowEvents = nil
			windowStart = evt.ts
		}
		if windowStart.IsZero() {
			windowStart = evt.ts
		}
		windowEvents = append(windowEvents, evt)
	}
	r.flushWindow(windowEvents)

	return r, nil
}

func (r *Relatedness) flushWindow(events []changeEvent) {
	unique := make(map[string]bool)
	for _, evt := range events {
		for _, p := range evt.changed {
			unique[p] = true
		}
	}
	paths := make([]string, 0, len(unique))
	for p := range unique {
		paths = append(paths, p)
	}
	if len(paths) < 2 {
		return
	}
	sort.Strings(paths)
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			a, b := paths[i], paths[j]
			if r.pairs[a] == nil {
				r.pairs[a] = make(map[string]int)
			}
			if r.pairs[b] == nil {
				r.pairs[b] = make(map[string]int)
			}
			r.pairs[a][b]++
			r.pairs[b][a]++
		}
	}
}

// Related returns the top co-changed paths for path, most-frequent first,
// ties broken lexicographically.
func (r *Relatedness) Related(path string, limit int) []string {
	peers := r.pairs[path]
	if len(peers) == 0 {
		return nil
	}
	type scored struct {
		path  string
		count int
	}
	results := make([]scored, 0, len(peers))
	for p, count := range peers {
		results = append(results, scored{p, count})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].count != results[j].count {
			return results[i].count > results[j].count
		}
		return results[i].path < results[j].path
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.path
	}
	return out
}

// diffDataRoots returns every file path whose Object CID differs (added,
// removed, or modified) between two data-root trees.
func diffDataRoots(ctx context.Context, client block.Client, from, to dag.CID) ([]string, error) {
	fromNode, err := fetchNodeForHistory(ctx, client, from)
	if err != nil {
		return nil, err
	}
	toNode, err := fetchNodeForHistory(ctx, client, to)
	if err != nil {
		return nil, err
	}
	var changed []string
	if err := diffTrees(ctx, client, "", fromNode, toNode, &changed); err != nil {
		return nil, err
	}
	return changed, nil
}

func diffTrees(ctx context.Context, client block.Client, path string, from, to *dag.Node, out *[]string) error {
	seen := make(map[string]struct{})
	for _, n := range from.SortedNames() {
		seen[n] = struct{}{}
	}
	for _, n := range to.SortedNames() {
		seen[n] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		childPath := path + "/" + name
		fromLink, fromOK := from.GetLink(name)
		toLink, toOK := to.GetLink(name)

		switch {
		case fromOK && !toOK:
			paths, err := listLinkPaths(ctx, client, fromLink, childPath)
			if err != nil {
				return err
			}
			*out = append(*out, paths...)
		case !fromOK && toOK:
			paths, err := listLinkPaths(ctx, client, toLink, childPath)
			if err != nil {
				return err
			}
			*out = append(*out, paths...)
		default:
			if fromLink.Kind != toLink.Kind {
				*out = append(*out, childPath)
				continue
			}
			if fromLink.CID == toLink.CID {
				continue
			}
			if fromLink.Kind == dag.LinkFile {
				*out = append(*out, childPath)
				continue
			}
			fromChild, err := fetchNodeForHistory(ctx, client, fromLink.CID)
			if err != nil {
				return err
			}
			toChild, err := fetchNodeForHistory(ctx, client, toLink.CID)
			if err != nil {
				return err
			}
			if err := diffTrees(ctx, client, childPath, fromChild, toChild, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func listLinkPaths(ctx context.Context, client block.Client, link dag.Link, path string) ([]string, error) {
	if link.Kind == dag.LinkFile {
		return []string{path}, nil
	}
	return listAllPaths(ctx, client, link.CID)
}

func listAllPaths(ctx context.Context, client block.Client, root dag.CID) ([]string, error) {
	node, err := fetchNodeForHistory(ctx, client, root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range node.SortedNames() {
		link, _ := node.GetLink(name)
		paths, err := listLinkPaths(ctx, client, link, "/"+name)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}

func fetchNodeForHistory(ctx context.Context, client block.Client, c dag.CID) (*dag.Node, error) {
	data, err := client.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	return dag.DecodeNode(data)
}
