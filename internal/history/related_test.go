package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/mount"
)

func commitRoot(t *testing.T, ctx context.Context, client block.Client, m *mount.Mount) dag.CID {
	t.Helper()
	root, err := m.Commit(ctx)
	require.NoError(t, err)
	return root
}

func TestBuildRelatedness_CoChangedFilesWithinWindow(t *testing.T) {
	ctx := context.Background()
	client := block.NewMemClient()

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)

	dataA, err := client.Put(ctx, dag.RawCodec, []byte("a"))
	require.NoError(t, err)
	require.NoError(t, m.Add(ctx, "/a.txt", dataA, nil))
	r1 := commitRoot(t, ctx, client, m)
	c1, _, err := Append(ctx, client, nil, r1, time.Unix(0, 0))
	require.NoError(t, err)

	dataB, err := client.Put(ctx, dag.RawCodec, []byte("b"))
	require.NoError(t, err)
	require.NoError(t, m.Add(ctx, "/b.txt", dataB, nil))
	dataA2, err := client.Put(ctx, dag.RawCodec, []byte("a v2"))
	require.NoError(t, err)
	require.NoError(t, m.Add(ctx, "/a.txt", dataA2, nil))
	r2 := commitRoot(t, ctx, client, m)
	c2, _, err := Append(ctx, client, &c1, r2, time.Unix(5, 0))
	require.NoError(t, err)

	rel, err := BuildRelatedness(ctx, client, c2, 0, time.Hour)
	require.NoError(t, err)

	require.Equal(t, []string{"/b.txt"}, rel.Related("/a.txt", 0))
	require.Equal(t, []string{"/a.txt"}, rel.Related("/b.txt", 0))
}

func TestBuildRelatedness_SeparateWindowsDoNotCoOccur(t *testing.T) {
	ctx := context.Background()
	client := block.NewMemClient()

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)

	dataA, err := client.Put(ctx, dag.RawCodec, []byte("a"))
	require.NoError(t, err)
	require.NoError(t, m.Add(ctx, "/a.txt", dataA, nil))
	r1 := commitRoot(t, ctx, client, m)
	c1, _, err := Append(ctx, client, nil, r1, time.Unix(0, 0))
	require.NoError(t, err)

	dataB, err := client.Put(ctx, dag.RawCodec, []byte("b"))
	require.NoError(t, err)
	require.NoError(t, m.Add(ctx, "/b.txt", dataB, nil))
	r2 := commitRoot(t, ctx, client, m)
	c2, _, err := Append(ctx, client, &c1, r2, time.Unix(100, 0))
	require.NoError(t, err)

	// one-second window, far longer gap between changes: no co-occurrence.
	rel, err := BuildRelatedness(ctx, client, c2, 0, time.Second)
	require.NoError(t, err)

	require.Empty(t, rel.Related("/a.txt", 0))
	require.Empty(t, rel.Related("/b.txt", 0))
}

func TestBuildRelatedness_RelatedRespectsLimit(t *testing.T) {
	ctx := context.Background()
	client := block.NewMemClient()

	m, err := mount.Open(ctx, client, nil)
	require.NoError(t, err)

	data, err := client.Put(ctx, dag.RawCodec, []byte("seed"))
	require.NoError(t, err)
	require.NoError(t, m.Add(ctx, "/a.txt", data, nil))
	r1 := commitRoot(t, ctx, client, m)
	c1, _, err := Append(ctx, client, nil, r1, time.Unix(0, 0))
	require.NoError(t, err)

	for _, name := range []string{"/b.txt", "/c.txt", "/d.txt"} {
		require.NoError(t, m.Add(ctx, name, data, nil))
	}
	r2 := commitRoot(t, ctx, client, m)
	c2, _, err := Append(ctx, client, &c1, r2, time.Unix(1, 0))
	require.NoError(t, err)

	rel, err := BuildRelatedness(ctx, client, c2, 0, time.Hour)
	require.NoError(t, err)

	require.Len(t, rel.Related("/b.txt", 2), 2)
	require.Len(t, rel.Related("/b.txt", 0), 3)
}
