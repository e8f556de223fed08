package roster

import (
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// NodeKind distinguishes the two node shapes a roster can hold.
type NodeKind int

const (
	// Directory nodes carry an ordered mapping from component to child
	// node id and no content.
	Directory NodeKind = iota
	// File nodes carry a content hash and no children.
	File
)

// String renders the kind for diagnostics.
func (k NodeKind) String() string {
	switch k {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// AttrKey is an attribute name.
type AttrKey string

// AttrValue is the (live, value) pair stored for one attribute key on one
// node. A dormant (live == false) value must carry an empty Value string;
// this is the stricter of the two interpretations the source material
// leaves ambiguous, and it is enforced at every mutation boundary.
type AttrValue struct {
	Live  bool
	Value string
}

// Validate checks the dormant-attribute-has-empty-value invariant.
func (a AttrValue) Validate() error {
	if !a.Live && a.Value != "" {
		return errDormantAttrHasValue
	}
	return nil
}

// Node is a single entry in a roster: either a directory or a file, with a
// shared header of identity, parent linkage, name, and attributes.
//
// Nodes are owned exclusively by the Roster that holds them in its node
// map; callers obtain pointers via Roster accessors but must only mutate
// a node through Roster methods, which maintain the roster's invariants
// (in particular, a directory's Children map and its children's
// Parent/Name fields must always agree).
type Node struct {
	ID     NodeID
	Parent NodeID
	Name   rosterpath.Component
	Kind   NodeKind

	// Content is populated only for File nodes.
	Content hash.ContentHash

	// Children is populated only for Directory nodes, keyed by the child's
	// basename.
	Children map[rosterpath.Component]NodeID

	// Attrs holds every attribute key ever set on the node, live or
	// dormant. A key absent from this map has never been set.
	Attrs map[AttrKey]AttrValue
}

// LiveAttrs returns the keys, in sorted order, of attributes currently
// live on the node.
func (n *Node) LiveAttrs() []AttrKey {
	var keys []AttrKey
	for k, v := range n.Attrs {
		if v.Live {
			keys = append(keys, k)
		}
	}
	sortAttrKeys(keys)
	return keys
}

// AllAttrKeys returns every attribute key ever recorded on the node, live
// or dormant, in sorted order. This is the superset used by the roster
// serializer (manifest serialization uses LiveAttrs only).
func (n *Node) AllAttrKeys() []AttrKey {
	var keys []AttrKey
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sortAttrKeys(keys)
	return keys
}

func sortAttrKeys(keys []AttrKey) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// copy produces a node copy with freshly allocated Children/Attrs maps but
// identical scalar fields; the caller is responsible for rewriting
// Children values if the copy is part of a larger roster deep copy.
func (n *Node) copy() *Node {
	cp := &Node{
		ID:      n.ID,
		Parent:  n.Parent,
		Name:    n.Name,
		Kind:    n.Kind,
		Content: n.Content,
	}
	if n.Kind == Directory {
		cp.Children = make(map[rosterpath.Component]NodeID, len(n.Children))
		for name, id := range n.Children {
			cp.Children[name] = id
		}
	}
	cp.Attrs = make(map[AttrKey]AttrValue, len(n.Attrs))
	for k, v := range n.Attrs {
		cp.Attrs[k] = v
	}
	return cp
}
