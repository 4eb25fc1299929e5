package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
)

func rootCID(t *testing.T, client block.Client, content string) dag.CID {
	t.Helper()
	c, err := client.Put(context.Background(), dag.RawCodec, []byte(content))
	require.NoError(t, err)
	return c
}

func TestAppendAndWalk(t *testing.T) {
	ctx := context.Background()
	client := block.NewMemClient()

	r1 := rootCID(t, client, "root1")
	c1, _, err := Append(ctx, client, nil, r1, time.Unix(0, 0))
	require.NoError(t, err)

	r2 := rootCID(t, client, "root2")
	c2, _, err := Append(ctx, client, &c1, r2, time.Unix(10, 0))
	require.NoError(t, err)

	manifests, err := Walk(ctx, client, c2, 0)
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	require.Equal(t, r2, manifests[0].DataRoot)
	require.Equal(t, r1, manifests[1].DataRoot)
	require.Nil(t, manifests[1].Previous)
}

func TestRemoteHead_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	remote := NewMemRemoteHead()

	head, err := remote.Head(ctx)
	require.NoError(t, err)
	require.Equal(t, dag.Undef, head)

	client := block.NewMemClient()
	r1 := rootCID(t, client, "root1")
	c1, _, err := Append(ctx, client, nil, r1, time.Unix(0, 0))
	require.NoError(t, err)

	require.NoError(t, remote.CompareAndSwap(ctx, dag.Undef, c1))

	head, err = remote.Head(ctx)
	require.NoError(t, err)
	require.Equal(t, c1, head)
}

func TestRemoteHead_ConflictOnStaleExpect(t *testing.T) {
	ctx := context.Background()
	remote := NewMemRemoteHead()
	client := block.NewMemClient()

	r1 := rootCID(t, client, "root1")
	c1, _, err := Append(ctx, client, nil, r1, time.Unix(0, 0))
	require.NoError(t, err)
	require.NoError(t, remote.CompareAndSwap(ctx, dag.Undef, c1))

	r2 := rootCID(t, client, "root2")
	c2, _, err := Append(ctx, client, &c1, r2, time.Unix(10, 0))
	require.NoError(t, err)

	err = remote.CompareAndSwap(ctx, dag.Undef, c2)
	require.Error(t, err)
}
