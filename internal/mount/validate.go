package mount

import (
	"context"
	"fmt"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
	"github.com/systemshift/leaky/internal/schema"
)

// nearestSchemaJSON walks ancestors from deepest to shallowest (ancestors is
// root-first, so this walks backward) and returns the raw JSON of the first
// local schema it finds. Returns nil, nil when no enclosing schema exists,
// meaning any metadata is valid.
func (m *Mount) nearestSchemaJSON(ctx context.Context, ancestors []*loadedNode) ([]byte, error) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		raw, err := m.loadSchemaRaw(ctx, ancestors[i])
		if err != nil {
			return nil, err
		}
		if raw != nil {
			return raw, nil
		}
	}
	return nil, nil
}

// loadSchemaRaw returns ln's own local schema as raw JSON, or nil if it has
// none. It prefers the in-memory cache populated by SetSchema over a fresh
// fetch, since that cache and node.Schema()'s CID are always kept in sync.
func (m *Mount) loadSchemaRaw(ctx context.Context, ln *loadedNode) ([]byte, error) {
	c := ln.node.Schema()
	if c == nil {
		return nil, nil
	}
	if ln.schemaRawCache != nil {
		return ln.schemaRawCache, nil
	}
	s, err := fetchSchema(ctx, m.client, *c)
	if err != nil {
		return nil, err
	}
	ln.schemaRawCache = s.Raw
	return s.Raw, nil
}

// validateMetadata applies the nearest enclosing schema to metadata and
// returns a *leakyerr.SchemaViolation wrapping exactly one path (path) if it
// fails, or nil if the metadata is valid (including the no-schema case).
func (m *Mount) validateMetadata(ctx context.Context, ancestors []*loadedNode, path string, metadata map[string]interface{}) error {
	raw, err := m.nearestSchemaJSON(ctx, ancestors)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	violations := schema.Validate(raw, metadata)
	if len(violations) == 0 {
		return nil
	}
	return &leakyerr.SchemaViolation{
		Violations: []leakyerr.PathViolation{{Path: path, Violations: violations}},
	}
}

// validateSubtree walks dir recursively, validating every file's metadata
// against effectiveRaw (nil meaning "always valid"), except that any
// descendant directory which itself installs a local schema shadows
// effectiveRaw for everything beneath it. Violations accumulate into out
// rather than aborting early, so set_schema can report every failing path
// in one error.
func (m *Mount) validateSubtree(ctx context.Context, dir *loadedNode, path string, effectiveRaw []byte, out *[]leakyerr.PathViolation) error {
	for _, name := range dir.node.SortedNames() {
		slot, ok := slotFor(dir, name)
		if !ok {
			continue
		}
		childPath := path + "/" + name

		switch slot.kind {
		case dag.LinkFile:
			obj, err := m.loadFile(ctx, slot, childPath)
			if err != nil {
				return err
			}
			if effectiveRaw == nil {
				continue
			}
			if v := schema.Validate(effectiveRaw, obj.Metadata); len(v) > 0 {
				*out = append(*out, leakyerr.PathViolation{Path: childPath, Violations: v})
			}
		case dag.LinkDir:
			child, err := m.loadDir(ctx, slot, childPath)
			if err != nil {
				return err
			}
			childEffective := effectiveRaw
			if raw, err := m.loadSchemaRaw(ctx, child); err != nil {
				return err
			} else if raw != nil {
				childEffective = raw
			}
			if err := m.validateSubtree(ctx, child, childPath, childEffective, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("mount: unknown link kind %q at %s", slot.kind, childPath)
		}
	}
	return nil
}
