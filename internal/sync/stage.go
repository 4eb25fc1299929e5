package sync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/mount"
)

// OpKind distinguishes the three structural staging outcomes.
type OpKind int

const (
	OpAdd OpKind = iota
	OpModify
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpModify:
		return "modify"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Op is one structural change discovered while staging a working directory
// against a mount.
type Op struct {
	Kind    OpKind
	Path    string
	DataCID dag.CID // unset (dag.Undef) for OpRemove
}

// ignoredDir is the one staging path every walk always excludes, regardless
// of any caller-supplied ignore list: the sync-state directory itself is
// local bookkeeping, never content.
const ignoredDir = ".leaky"

// Stage walks workDir, puts every file's bytes into the block store, and
// compares the result against m to produce the structural diff described in
// the sync protocol's stage step. It does not mutate the mount; the caller
// applies the returned ops afterward.
func Stage(ctx context.Context, client block.Client, m *mount.Mount, workDir string, ignore []string) ([]Op, error) {
	seen := make(map[string]bool)
	var ops []Op

	err := filepath.WalkDir(workDir, func(fsPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(workDir, fsPath)
		if err != nil {
			return fmt.Errorf("sync: relativize %s: %w", fsPath, err)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if isIgnored(rel, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		data, err := os.ReadFile(fsPath)
		if err != nil {
			return fmt.Errorf("sync: read %s: %w", fsPath, err)
		}
		dataCID, err := client.Put(ctx, dag.RawCodec, data)
		if err != nil {
			return err
		}

		path := "/" + rel
		seen[path] = true

		existing, ok, err := m.StatFile(ctx, path)
		if err != nil {
			return err
		}
		switch {
		case !ok:
			ops = append(ops, Op{Kind: OpAdd, Path: path, DataCID: dataCID})
		case existing != dataCID:
			ops = append(ops, Op{Kind: OpModify, Path: path, DataCID: dataCID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mountPaths, err := m.WalkFiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, path := range mountPaths {
		if !seen[path] {
			ops = append(ops, Op{Kind: OpRemove, Path: path})
		}
	}

	return ops, nil
}

func isIgnored(relPath string, ignore []string) bool {
	if relPath == ignoredDir || strings.HasPrefix(relPath, ignoredDir+"/") {
		return true
	}
	for _, pattern := range ignore {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
		if relPath == pattern || strings.HasPrefix(relPath, pattern+"/") {
			return true
		}
	}
	return false
}

// Apply applies structural ops to the mount, without committing. It applies
// no metadata (tag) edits: files it adds or modifies get empty metadata, and
// Baseline.PendingTags is not read by Apply or anywhere else in this package.
func Apply(ctx context.Context, m *mount.Mount, ops []Op) error {
	for _, op := range ops {
		switch op.Kind {
		case OpAdd, OpModify:
			if err := m.Add(ctx, op.Path, op.DataCID, nil); err != nil {
				return err
			}
		case OpRemove:
			if err := m.Rm(ctx, op.Path, true); err != nil {
				return err
			}
		}
	}
	return nil
}
