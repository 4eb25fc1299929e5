package sync

import (
	"context"
	"time"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/history"
	"github.com/systemshift/leaky/internal/mount"
)

func now() time.Time { return time.Now().UTC() }

// Session ties a block store, a remote head, and a working directory's
// sync baseline together into the pull/stage/push cycle.
type Session struct {
	Client  block.Client
	Remote  history.RemoteHead
	WorkDir string
}

// StageResult is what Stage produced: the ops it applied to the mount, for
// reporting to the caller (e.g. a CLI printing a diff).
type StageResult struct {
	Ops []Op
}

// Pull fetches the remote's current head manifest and returns the head
// manifest CID and the data root it names. It persists both as the new
// sync baseline for WorkDir; the caller is expected to Open a mount at the
// returned data root afterward.
func (s *Session) Pull(ctx context.Context) (headCID dag.CID, dataRoot dag.CID, err error) {
	head, err := s.Remote.Head(ctx)
	if err != nil {
		return dag.Undef, dag.Undef, err
	}

	b := &Baseline{}
	if head == dag.Undef {
		// No history yet: nothing to pull, baseline stays empty.
		if err := b.Save(s.WorkDir); err != nil {
			return dag.Undef, dag.Undef, err
		}
		return dag.Undef, dag.Undef, nil
	}

	manifest, err := history.Fetch(ctx, s.Client, head)
	if err != nil {
		return dag.Undef, dag.Undef, err
	}

	b.HeadManifest = &head
	root := manifest.DataRoot
	b.DataRoot = &root
	if err := b.Save(s.WorkDir); err != nil {
		return dag.Undef, dag.Undef, err
	}

	return head, manifest.DataRoot, nil
}

// Stage walks WorkDir, puts every file into the block store, diffs the
// result against m's current state, applies the diff to m (without
// committing), and returns the ops applied. ignore is a list of additional
// path globs to skip; ".leaky" is always skipped regardless.
func (s *Session) Stage(ctx context.Context, m *mount.Mount, ignore []string) (*StageResult, error) {
	ops, err := Stage(ctx, s.Client, m, s.WorkDir, ignore)
	if err != nil {
		return nil, err
	}
	if err := Apply(ctx, m, ops); err != nil {
		return nil, err
	}
	return &StageResult{Ops: ops}, nil
}

// Push commits m, appends a manifest linking it to the current baseline
// head, and compare-and-swaps the remote head from that baseline to the new
// manifest. On success the baseline is updated to the new manifest and data
// root. If the committed root is already the data root of the baseline head
// manifest, nothing is appended or swapped and that head is returned
// unchanged. On a conflict (the remote moved since the last pull) the mount is
// left committed locally but the baseline is NOT updated, and the
// *leakyerr.HeadAdvanced error is returned unmodified so the caller can
// pull and retry.
func (s *Session) Push(ctx context.Context, m *mount.Mount) (dag.CID, error) {
	root, err := m.Commit(ctx)
	if err != nil {
		return dag.Undef, err
	}

	baseline, err := LoadBaseline(s.WorkDir)
	if err != nil {
		return dag.Undef, err
	}

	var expectHead dag.CID
	if baseline.HeadManifest != nil {
		expectHead = *baseline.HeadManifest
		headManifest, err := history.Fetch(ctx, s.Client, expectHead)
		if err != nil {
			return dag.Undef, err
		}
		if headManifest.DataRoot == root {
			return expectHead, nil
		}
	}

	candidateCID, _, err := history.Append(ctx, s.Client, baseline.HeadManifest, root, now())
	if err != nil {
		return dag.Undef, err
	}

	if err := s.Remote.CompareAndSwap(ctx, expectHead, candidateCID); err != nil {
		return dag.Undef, err
	}

	baseline.HeadManifest = &candidateCID
	baseline.DataRoot = &root
	if err := baseline.Save(s.WorkDir); err != nil {
		return dag.Undef, err
	}

	return candidateCID, nil
}
