package mount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

func newTestMount(t *testing.T) (*Mount, *block.MemClient) {
	t.Helper()
	client := block.NewMemClient()
	m, err := Open(context.Background(), client, nil)
	require.NoError(t, err)
	return m, client
}

func putData(t *testing.T, client *block.MemClient, content string) dag.CID {
	t.Helper()
	c, err := client.Put(context.Background(), dag.RawCodec, []byte(content))
	require.NoError(t, err)
	return c
}

func TestScenario_GenesisAddCommit(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	dataCID := putData(t, client, "hello")
	require.NoError(t, m.Add(ctx, "/a.txt", dataCID, map[string]interface{}{"title": "hi"}))

	r1, err := m.Commit(ctx)
	require.NoError(t, err)
	require.NotEqual(t, dag.Undef, r1)

	reopened, err := Open(ctx, client, &r1)
	require.NoError(t, err)

	entries, err := reopened.Ls(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a.txt", entries[0].Name)
	require.Equal(t, dag.LinkFile, entries[0].Kind)

	_, err = reopened.Ls(ctx, "/a.txt")
	require.Error(t, err)
	var notDir *leakyerr.NotADirectory
	require.ErrorAs(t, err, &notDir)
}

func TestScenario_NestedAddCreatesIntermediateDirsPersistently(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	dataCID := putData(t, client, "deep")
	require.NoError(t, m.Add(ctx, "/a/b/c.txt", dataCID, map[string]interface{}{}))

	entries, err := m.Ls(ctx, "/a/b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "c.txt", entries[0].Name)

	root, err := m.Commit(ctx)
	require.NoError(t, err)

	reopened, err := Open(ctx, client, &root)
	require.NoError(t, err)

	rootEntries, err := reopened.Ls(ctx, "/")
	require.NoError(t, err)
	require.Len(t, rootEntries, 1)
	require.Equal(t, "a", rootEntries[0].Name)
	require.Equal(t, dag.LinkDir, rootEntries[0].Kind)

	aEntries, err := reopened.Ls(ctx, "/a")
	require.NoError(t, err)
	require.Len(t, aEntries, 1)
	require.Equal(t, "b", aEntries[0].Name)
	require.Equal(t, dag.LinkDir, aEntries[0].Kind)

	bEntries, err := reopened.Ls(ctx, "/a/b")
	require.NoError(t, err)
	require.Len(t, bEntries, 1)
	require.Equal(t, "c.txt", bEntries[0].Name)
	require.Equal(t, dag.LinkFile, bEntries[0].Kind)
}

func TestScenario_SchemaRejection(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	require.NoError(t, m.SetSchema(ctx, "/", []byte(`{"type":"object","required":["title"],"properties":{"title":{"type":"string"}}}`)))

	priorRoot, err := m.Commit(ctx)
	require.NoError(t, err)

	dataCID := putData(t, client, "b")
	err = m.Add(ctx, "/b.txt", dataCID, map[string]interface{}{})
	require.Error(t, err)
	var violation *leakyerr.SchemaViolation
	require.ErrorAs(t, err, &violation)

	entries, err := m.Ls(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 0)

	afterFailedAdd, err := m.Commit(ctx)
	require.NoError(t, err)
	require.Equal(t, priorRoot, afterFailedAdd)
}

func TestScenario_NestedSchemaOverride(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	require.NoError(t, m.SetSchema(ctx, "/", []byte(`{"type":"object","required":["genre"]}`)))
	require.NoError(t, m.SetSchema(ctx, "/writing", []byte(`{"type":"object","required":["title"]}`)))

	zCID := putData(t, client, "z")
	require.NoError(t, m.Add(ctx, "/writing/p.md", zCID, map[string]interface{}{"title": "t"}))

	wCID := putData(t, client, "w")
	err := m.Add(ctx, "/audio.mp3", wCID, map[string]interface{}{"title": "t"})
	require.Error(t, err)
	var violation *leakyerr.SchemaViolation
	require.ErrorAs(t, err, &violation)
}

func TestScenario_RenameAsRemoveThenAdd(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	xCID := putData(t, client, "x")
	require.NoError(t, m.Add(ctx, "/old.txt", xCID, nil))
	r1, err := m.Commit(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Rm(ctx, "/old.txt", false))
	require.NoError(t, m.Add(ctx, "/new.txt", xCID, nil))
	r2, err := m.Commit(ctx)
	require.NoError(t, err)

	diff, err := m.Diff(ctx, r1)
	require.NoError(t, err)
	require.Equal(t, []string{"/new.txt"}, diff.Added)
	require.Equal(t, []string{"/old.txt"}, diff.Removed)
	require.Empty(t, diff.Modified)
	require.NotEqual(t, r1, r2)
}

func TestCommit_CleanIsNoOp(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	dataCID := putData(t, client, "a")
	require.NoError(t, m.Add(ctx, "/a.txt", dataCID, nil))
	r1, err := m.Commit(ctx)
	require.NoError(t, err)
	require.Equal(t, StateClean, m.State())

	r2, err := m.Commit(ctx)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestRm_NonEmptyDirRequiresRecursive(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	dataCID := putData(t, client, "x")
	require.NoError(t, m.Add(ctx, "/dir/file.txt", dataCID, nil))

	err := m.Rm(ctx, "/dir", false)
	require.Error(t, err)
	var notEmpty *leakyerr.NotEmpty
	require.ErrorAs(t, err, &notEmpty)

	require.NoError(t, m.Rm(ctx, "/dir", true))
}

func TestAdd_OverwritingDirectoryFails(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	dataCID := putData(t, client, "x")
	require.NoError(t, m.Add(ctx, "/dir/file.txt", dataCID, nil))

	err := m.Add(ctx, "/dir", dataCID, nil)
	require.Error(t, err)
	var notFile *leakyerr.NotAFile
	require.ErrorAs(t, err, &notFile)
}

func TestTag_BumpsUpdatedAtAndPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	m, client := newTestMount(t)

	dataCID := putData(t, client, "x")
	require.NoError(t, m.Add(ctx, "/a.txt", dataCID, map[string]interface{}{"title": "one"}))
	before := m.root.children["a.txt"].file
	require.NoError(t, m.Tag(ctx, "/a.txt", map[string]interface{}{"title": "two"}))
	after := m.root.children["a.txt"].file
	require.Equal(t, before.CreatedAt, after.CreatedAt)
	require.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	require.Equal(t, "two", after.Metadata["title"])

	r, err := m.Commit(ctx)
	require.NoError(t, err)

	reopened, err := Open(ctx, client, &r)
	require.NoError(t, err)
	entries, err := reopened.Ls(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
