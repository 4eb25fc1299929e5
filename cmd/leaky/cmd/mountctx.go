package cmd

import (
	"context"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/mount"
	"github.com/systemshift/leaky/internal/sync"
)

// openMount opens the mount at the locally tracked data root (dag.Undef /
// nil for a never-committed repository), read from the sync baseline.
func (a *app) openMount(ctx context.Context) (*mount.Mount, error) {
	baseline, err := sync.LoadBaseline(workDir)
	if err != nil {
		return nil, err
	}
	return mount.Open(ctx, a.client, baseline.DataRoot)
}

// commitAndSave commits m and persists the resulting root as the new local
// baseline data root, leaving the head manifest (remote sync state)
// untouched — that only advances on push.
func (a *app) commitAndSave(ctx context.Context, m *mount.Mount) (dag.CID, error) {
	root, err := m.Commit(ctx)
	if err != nil {
		return dag.Undef, err
	}
	baseline, err := sync.LoadBaseline(workDir)
	if err != nil {
		return dag.Undef, err
	}
	baseline.DataRoot = &root
	if err := baseline.Save(workDir); err != nil {
		return dag.Undef, err
	}
	return root, nil
}
