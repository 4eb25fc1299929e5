package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/history"
	"github.com/systemshift/leaky/internal/mount"
)

func newSession(t *testing.T) (*Session, block.Client, history.RemoteHead) {
	t.Helper()
	client := block.NewMemClient()
	remote := history.NewMemRemoteHead()
	workDir := t.TempDir()
	return &Session{Client: client, Remote: remote, WorkDir: workDir}, client, remote
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScenario_PullEmptyRemoteIsNoOp(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSession(t)

	head, root, err := s.Pull(ctx)
	require.NoError(t, err)
	require.Equal(t, head, root) // both dag.Undef

	b, err := LoadBaseline(s.WorkDir)
	require.NoError(t, err)
	require.Nil(t, b.HeadManifest)
	require.Nil(t, b.DataRoot)
}

func TestScenario_StageAddModifyRemove(t *testing.T) {
	ctx := context.Background()
	s, client, _ := newSession(t)

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)

	writeFile(t, s.WorkDir, "a.txt", "hello")
	writeFile(t, s.WorkDir, "dir/b.txt", "world")

	res, err := s.Stage(ctx, m, nil)
	require.NoError(t, err)
	require.Len(t, res.Ops, 2)

	entries, err := m.Ls(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// modify a.txt, remove dir/b.txt
	writeFile(t, s.WorkDir, "a.txt", "hello again")
	require.NoError(t, os.Remove(filepath.Join(s.WorkDir, "dir", "b.txt")))

	res2, err := s.Stage(ctx, m, nil)
	require.NoError(t, err)

	var sawModify, sawRemove bool
	for _, op := range res2.Ops {
		switch op.Kind {
		case OpModify:
			sawModify = true
			require.Equal(t, "/a.txt", op.Path)
		case OpRemove:
			sawRemove = true
			require.Equal(t, "/dir/b.txt", op.Path)
		}
	}
	require.True(t, sawModify)
	require.True(t, sawRemove)
}

func TestScenario_PushThenIdempotentRepush(t *testing.T) {
	ctx := context.Background()
	s, client, _ := newSession(t)

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)

	writeFile(t, s.WorkDir, "a.txt", "hello")
	_, err = s.Stage(ctx, m, nil)
	require.NoError(t, err)

	head1, err := s.Push(ctx, m)
	require.NoError(t, err)

	// Re-pushing with no staged changes still succeeds: the mount's Commit
	// is a no-op so the data root is unchanged, and since the baseline head
	// already names that root, no new manifest is appended and the head
	// does not advance.
	head2, err := s.Push(ctx, m)
	require.NoError(t, err)
	require.Equal(t, head1, head2)
}

func TestScenario_PushConflictOnStaleBaseline(t *testing.T) {
	ctx := context.Background()
	s, client, remote := newSession(t)

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)
	writeFile(t, s.WorkDir, "a.txt", "hello")
	_, err = s.Stage(ctx, m, nil)
	require.NoError(t, err)

	_, err = s.Push(ctx, m)
	require.NoError(t, err)

	// A second, independent pusher races ahead without s's baseline knowing.
	other := &Session{Client: client, Remote: remote, WorkDir: t.TempDir()}
	_, otherRoot, err := other.Pull(ctx)
	require.NoError(t, err)
	om, err := mount.Open(ctx, client, &otherRoot)
	require.NoError(t, err)
	writeFile(t, other.WorkDir, "b.txt", "other")
	_, err = other.Stage(ctx, om, nil)
	require.NoError(t, err)
	_, err = other.Push(ctx, om)
	require.NoError(t, err)

	// s tries to push again using its now-stale baseline.
	writeFile(t, s.WorkDir, "c.txt", "stale push")
	_, err = s.Stage(ctx, m, nil)
	require.NoError(t, err)

	_, err = s.Push(ctx, m)
	require.Error(t, err)
}

func TestScenario_PullStageApplyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, client, _ := newSession(t)

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)
	writeFile(t, s.WorkDir, "a.txt", "hello")
	_, err = s.Stage(ctx, m, nil)
	require.NoError(t, err)
	_, err = s.Push(ctx, m)
	require.NoError(t, err)

	// a fresh clone pulls and opens at the published data root.
	clone := &Session{Client: client, Remote: s.Remote, WorkDir: t.TempDir()}
	_, root, err := clone.Pull(ctx)
	require.NoError(t, err)

	cm, err := mount.Open(ctx, client, &root)
	require.NoError(t, err)
	entries, err := cm.Ls(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a.txt", entries[0].Name)
}
