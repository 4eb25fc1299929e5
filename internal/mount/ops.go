package mount

import (
	"context"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// Entry is one child reported by Ls.
type Entry struct {
	Name string
	Kind dag.LinkKind
}

// Ls lists the immediate children of the directory at path.
func (m *Mount) Ls(ctx context.Context, path string) ([]Entry, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	_, dir, err := m.resolveDir(ctx, segs, false)
	if err != nil {
		return nil, err
	}
	names := dir.node.SortedNames()
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		link, _ := dir.node.GetLink(name)
		entries = append(entries, Entry{Name: name, Kind: link.Kind})
	}
	return entries, nil
}

// Add creates or overwrites the file leaf at path, storing dataCID (already
// present in the block store) as its content reference and metadata as its
// Object. Intermediate directories are created silently. Metadata is
// validated against the nearest enclosing schema before anything mutates.
func (m *Mount) Add(ctx context.Context, path string, dataCID dag.CID, metadata map[string]interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return &leakyerr.InvalidPath{Path: path, Reason: "cannot add at root"}
	}
	parentSegs, name := segs[:len(segs)-1], segs[len(segs)-1]

	// Validate against the schema in scope at the deepest existing ancestor
	// before resolveDir creates any missing intermediate directories (which
	// carry no schema of their own).
	var known []*loadedNode
	for i := len(parentSegs); known == nil; i-- {
		known, _, err = m.resolveDir(ctx, parentSegs[:i], false)
		if _, missing := err.(*leakyerr.NotFound); err != nil && !missing {
			return err
		}
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	if err := m.validateMetadata(ctx, known, path, metadata); err != nil {
		return err
	}

	ancestors, parent, err := m.resolveDir(ctx, parentSegs, true)
	if err != nil {
		return err
	}

	if existing, ok := slotFor(parent, name); ok && existing.kind == dag.LinkDir {
		return &leakyerr.NotAFile{Path: path}
	}

	obj := dag.NewObject(dataCID, metadata, now())

	existing := parent.children[name]
	parent.node.PutLink(name, dag.Link{Kind: dag.LinkFile, CID: dag.Undef})
	slot := &childSlot{kind: dag.LinkFile, file: obj, dirty: true}
	if existing != nil {
		slot.cid = existing.cid
	}
	parent.children[name] = slot

	markDirtyChain(ancestors)
	parent.dirty = true
	m.state = StateDirty
	return nil
}

// Rm removes the entry at path. Removing a non-empty directory requires
// recursive=true.
func (m *Mount) Rm(ctx context.Context, path string, recursive bool) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return &leakyerr.InvalidPath{Path: path, Reason: "cannot remove root"}
	}
	parentSegs, name := segs[:len(segs)-1], segs[len(segs)-1]

	ancestors, parent, err := m.resolveDir(ctx, parentSegs, false)
	if err != nil {
		return err
	}

	slot, ok := slotFor(parent, name)
	if !ok {
		return &leakyerr.NotFound{What: path}
	}

	if slot.kind == dag.LinkDir && !recursive {
		child, err := m.loadDir(ctx, slot, path)
		if err != nil {
			return err
		}
		if child.node.Len() > 0 {
			return &leakyerr.NotEmpty{Path: path}
		}
	}

	parent.node.DelLink(name)
	delete(parent.children, name)
	markDirtyChain(ancestors)
	parent.dirty = true
	m.state = StateDirty
	return nil
}

// Tag replaces the metadata of the file at path, re-validates against the
// nearest enclosing schema, and bumps updated_at.
func (m *Mount) Tag(ctx context.Context, path string, metadata map[string]interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return &leakyerr.InvalidPath{Path: path, Reason: "cannot tag root"}
	}
	parentSegs, name := segs[:len(segs)-1], segs[len(segs)-1]

	ancestors, parent, err := m.resolveDir(ctx, parentSegs, false)
	if err != nil {
		return err
	}

	slot, ok := slotFor(parent, name)
	if !ok {
		return &leakyerr.NotFound{What: path}
	}
	if slot.kind != dag.LinkFile {
		return &leakyerr.NotAFile{Path: path}
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	if err := m.validateMetadata(ctx, ancestors, path, metadata); err != nil {
		return err
	}

	obj, err := m.loadFile(ctx, slot, path)
	if err != nil {
		return err
	}
	slot.file = obj.Touch(metadata, now())
	slot.dirty = true

	markDirtyChain(ancestors)
	m.state = StateDirty
	return nil
}

// SetSchema installs (schemaJSON non-nil) or clears (nil) the local schema
// at dirPath. The candidate new state is built and fully validated before
// anything is committed to the in-memory tree, so a failing set_schema
// leaves the mount exactly as it was.
func (m *Mount) SetSchema(ctx context.Context, dirPath string, schemaJSON []byte) error {
	segs, err := splitPath(dirPath)
	if err != nil {
		return err
	}
	var (
		effectiveRaw []byte
		newSchema    *dag.Schema
		newSchemaCID dag.CID
		newSchemaRaw []byte
	)

	if schemaJSON != nil {
		s, err := dag.NewSchema(schemaJSON)
		if err != nil {
			return err
		}
		c, data, err := s.Encode()
		if err != nil {
			return err
		}
		newSchema, newSchemaCID, newSchemaRaw = s, c, data
		effectiveRaw = s.Raw
	}

	ancestors, dir, err := m.resolveDir(ctx, segs, true)
	if err != nil {
		return err
	}

	if schemaJSON == nil {
		// Clearing: the dir's own schema no longer shadows; whatever is
		// enclosing above it (if anything) now governs.
		effectiveRaw, err = m.nearestSchemaJSON(ctx, ancestors[:len(ancestors)-1])
		if err != nil {
			return err
		}
	}

	var violations []leakyerr.PathViolation
	if err := m.validateSubtree(ctx, dir, dirPath, effectiveRaw, &violations); err != nil {
		return err
	}
	if len(violations) > 0 {
		return &leakyerr.SchemaViolation{Violations: violations}
	}

	if schemaJSON != nil {
		// Put synchronously, unlike file/node blocks: the schema's CID is
		// already recorded on the link below, so it must name real bytes in
		// the block store immediately, not just at the next Commit.
		if _, err := m.client.Put(ctx, dag.DagCBORCodec, newSchemaRaw); err != nil {
			return err
		}
		dir.node.SetSchema(&newSchemaCID)
		dir.schemaRawCache = append([]byte(nil), newSchema.Raw...)
	} else {
		dir.node.SetSchema(nil)
		dir.schemaRawCache = nil
	}

	markDirtyChain(ancestors)
	m.state = StateDirty
	return nil
}
