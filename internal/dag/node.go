package dag

import (
	"fmt"
	"sort"
)

// LinkKind distinguishes a child-directory link from a file link.
type LinkKind string

const (
	LinkDir  LinkKind = "dir"
	LinkFile LinkKind = "file"
)

// Link is a single entry in a Node's link map: either another Node CID
// (directory) or an Object CID (file).
type Link struct {
	Kind LinkKind `cbor:"kind"`
	CID  CID      `cbor:"cid"`
}

// nodeWire is the canonical CBOR shape of a Node. Links is a map so the
// cbor library's canonical mode sorts entries by key; Schema is omitted
// entirely (not encoded as null) when absent, matching the no-default-elision
// rule for any field that IS present but the absent-optional rule for Schema.
type nodeWire struct {
	Links  map[string]Link `cbor:"links"`
	Schema *CID            `cbor:"schema,omitempty"`
}

// Node is an ordered mapping from name to a typed link, plus an optional
// local schema link that scopes validation to this directory and its
// descendants (the nearest-enclosing-schema rule walks up through Nodes,
// not through individual links).
type Node struct {
	links  map[string]Link
	schema *CID
}

// NewNode returns an empty Node (the genesis directory).
func NewNode() *Node {
	return &Node{links: make(map[string]Link)}
}

// Links returns the node's name->link map. Callers must not mutate the
// returned map; use PutLink/Del.
func (n *Node) Links() map[string]Link {
	return n.links
}

// SortedNames returns link names in lexicographic order, the order ls/diff
// present them in.
func (n *Node) SortedNames() []string {
	names := make([]string, 0, len(n.links))
	for name := range n.links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLink looks up a single link by name.
func (n *Node) GetLink(name string) (Link, bool) {
	l, ok := n.links[name]
	return l, ok
}

// PutLink inserts or overwrites a link.
func (n *Node) PutLink(name string, link Link) {
	n.links[name] = link
}

// DelLink removes a link, reporting whether it existed.
func (n *Node) DelLink(name string) bool {
	if _, ok := n.links[name]; !ok {
		return false
	}
	delete(n.links, name)
	return true
}

// Len reports the number of links.
func (n *Node) Len() int {
	return len(n.links)
}

// Schema returns the node's local schema CID, if any.
func (n *Node) Schema() *CID {
	return n.schema
}

// SetSchema installs or clears (nil) the local schema link.
func (n *Node) SetSchema(c *CID) {
	n.schema = c
}

// Clone returns a deep-enough copy for copy-on-write edits: a new links map,
// shallow-copied Link values (which are immutable CIDs+kind).
func (n *Node) Clone() *Node {
	links := make(map[string]Link, len(n.links))
	for k, v := range n.links {
		links[k] = v
	}
	var schema *CID
	if n.schema != nil {
		s := *n.schema
		schema = &s
	}
	return &Node{links: links, schema: schema}
}

func (n *Node) wire() nodeWire {
	return nodeWire{Links: n.links, Schema: n.schema}
}

// Encode produces the canonical CBOR bytes and the CID they hash to.
func (n *Node) Encode() (CID, []byte, error) {
	return cidForBlock(DagCBORCodec, n.wire())
}

// DecodeNode parses canonical CBOR bytes into a Node.
func DecodeNode(data []byte) (*Node, error) {
	var w nodeWire
	if err := UnmarshalCanonical(data, &w); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	if w.Links == nil {
		w.Links = make(map[string]Link)
	}
	return &Node{links: w.Links, schema: w.Schema}, nil
}
