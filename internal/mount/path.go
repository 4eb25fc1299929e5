package mount

import (
	"strings"

	"github.com/systemshift/leaky/internal/leakyerr"
)

// splitPath normalizes a path into its segments: strips a leading slash,
// rejects empty segments and "."/"..". An empty (or "/") path normalizes to
// a zero-length segment slice, meaning the root.
func splitPath(path string) ([]string, error) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "":
			return nil, &leakyerr.InvalidPath{Path: path, Reason: "empty segment"}
		case ".", "..":
			return nil, &leakyerr.InvalidPath{Path: path, Reason: "relative segment not allowed"}
		}
		if strings.ContainsRune(p, '/') {
			return nil, &leakyerr.InvalidPath{Path: path, Reason: "segment contains slash"}
		}
		segs = append(segs, p)
	}
	return segs, nil
}

func joinSegs(segs []string) string {
	return "/" + strings.Join(segs, "/")
}
