// Package leakyerr defines the error-kind taxonomy shared by every core
// component: block client, node model, mount, history, and sync. Each kind
// is a distinct type so callers can branch on it with errors.As instead of
// string matching, but construction stays a one-liner the way the teacher
// wraps every failure with fmt.Errorf("verb noun: %w", err).
package leakyerr

import "fmt"

// Transport is a block-store or remote-head network failure. Retryable.
type Transport struct {
	Op  string
	Err error
}

func (e *Transport) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *Transport) Unwrap() error { return e.Err }

// NotFound means a CID or path lookup failed.
type NotFound struct {
	What string
}

func (e *NotFound) Error() string { return fmt.Sprintf("not found: %s", e.What) }

// Decode means a fetched block did not parse as the expected entity.
type Decode struct {
	What string
	Err  error
}

func (e *Decode) Error() string { return fmt.Sprintf("decode %s: %v", e.What, e.Err) }
func (e *Decode) Unwrap() error { return e.Err }

// InvalidPath means a path failed the shape contract (empty segment, `.`/`..`, etc).
type InvalidPath struct {
	Path   string
	Reason string
}

func (e *InvalidPath) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// NotADirectory means an operation expected a directory link and found a file.
type NotADirectory struct {
	Path string
}

func (e *NotADirectory) Error() string { return fmt.Sprintf("not a directory: %s", e.Path) }

// NotAFile means an operation expected a file link and found a directory.
type NotAFile struct {
	Path string
}

func (e *NotAFile) Error() string { return fmt.Sprintf("not a file: %s", e.Path) }

// NotEmpty means rm was asked to remove a non-empty directory without recursive=true.
type NotEmpty struct {
	Path string
}

func (e *NotEmpty) Error() string { return fmt.Sprintf("not empty: %s", e.Path) }

// Violation is a single schema validation failure.
type Violation struct {
	Path   string // JSON-pointer-ish path within the metadata value, e.g. "title"
	Reason string
}

// SchemaViolation aggregates every path that failed its enclosing schema.
// A single-object add/tag carries exactly one PathViolation whose Path is
// the file path;
// set_schema aggregates across every affected file path.
type SchemaViolation struct {
	Violations []PathViolation
}

// PathViolation pairs a file path with the violations found in its metadata.
type PathViolation struct {
	Path       string
	Violations []Violation
}

func (e *SchemaViolation) Error() string {
	if len(e.Violations) == 1 {
		pv := e.Violations[0]
		if len(pv.Violations) == 1 {
			return fmt.Sprintf("schema violation at %s: %s: %s", pv.Path, pv.Violations[0].Path, pv.Violations[0].Reason)
		}
		return fmt.Sprintf("schema violation at %s: %d violations", pv.Path, len(pv.Violations))
	}
	return fmt.Sprintf("schema violation across %d paths", len(e.Violations))
}

// HeadAdvanced means the CAS during push failed because the remote head moved.
type HeadAdvanced struct {
	Actual string // text-form CID of the actual remote head
}

func (e *HeadAdvanced) Error() string { return fmt.Sprintf("head advanced: actual=%s", e.Actual) }

// Integrity means a fetched block's hash did not match its CID. Never retried.
type Integrity struct {
	Expected string
	Actual   string
}

func (e *Integrity) Error() string {
	return fmt.Sprintf("integrity: expected %s, got %s", e.Expected, e.Actual)
}
