// Package marking implements the provenance annotations ("marking map")
// that accompany a roster: for every node, a birth revision and, for each
// independently-tracked scalar (parent+name, file content, each
// attribute), the set of revisions that most recently authoritatively set
// it.
//
// The mark-new-node and mark-unmerged-node constructors in this package
// cover the non-merge (single-parent) path; the two-parent *-merge
// marking algorithm lives in the sibling merge package, which imports
// this one for the mark-set and Marking types themselves.
package marking

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// RevisionID identifies a revision in the history graph. Revisions share
// the same opaque 20-byte content-hash identity space as file versions and
// manifests (§6 of the specification).
type RevisionID = hash.ContentHash

// Set is the non-empty set of revisions that most recently authoritatively
// set a single scalar. It is represented as a map for O(1) membership
// tests, which is all that mark sets are ever used for (per the
// specification's note that adding ancestors of existing members never
// changes the answer to a membership query).
type Set map[RevisionID]struct{}

// NewSet builds a Set from the given revisions.
func NewSet(revs ...RevisionID) Set {
	s := make(Set, len(revs))
	for _, r := range revs {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether r is a member of s.
func (s Set) Contains(r RevisionID) bool {
	_, ok := s[r]
	return ok
}

// Union returns a new set containing every element of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for r := range s {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}

// Intersects reports whether s and other share at least one element.
func (s Set) Intersects(other Set) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for r := range small {
		if big.Contains(r) {
			return true
		}
	}
	return false
}

// Sorted returns the set's elements in ascending hex order, the order used
// by the roster serializer for path_mark/content_mark/attr_mark lines.
func (s Set) Sorted() []RevisionID {
	out := make([]RevisionID, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].String() > out[j].String(); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Equal reports whether s and other contain exactly the same revisions.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Contains(r) {
			return false
		}
	}
	return true
}

// Marking is the provenance record for a single node: its birth revision
// plus a mark set for each independently-tracked scalar.
type Marking struct {
	// Birth is the revision in which the node first appeared. Immutable
	// thereafter.
	Birth RevisionID

	// ParentName is the mark set for the node's (parent, name) scalar.
	ParentName Set

	// Content is the mark set for the node's file content. It must be
	// empty for directory nodes and non-empty for file nodes.
	Content Set

	// Attrs maps each attribute key the node has ever carried (live or
	// dormant, mirroring Node.AllAttrKeys) to its mark set.
	Attrs map[roster.AttrKey]Set
}

// NewMarking returns an empty marking with initialized (but empty) maps,
// ready to be populated by MarkNewNode or MarkUnmergedNode.
func NewMarking() Marking {
	return Marking{Attrs: make(map[roster.AttrKey]Set)}
}

// Map is a mapping from node id to marking. It must have exactly the same
// key set as the paired roster's node map.
type Map map[roster.NodeID]Marking

// Copy returns a deep-enough copy of m suitable for independent mutation:
// every Marking's Attrs map and every Set within it are duplicated.
func (m Map) Copy() Map {
	out := make(Map, len(m))
	for id, marking := range m {
		out[id] = marking.copy()
	}
	return out
}

func (mk Marking) copy() Marking {
	out := Marking{Birth: mk.Birth, ParentName: cloneSet(mk.ParentName), Content: cloneSet(mk.Content)}
	out.Attrs = make(map[roster.AttrKey]Set, len(mk.Attrs))
	for k, v := range mk.Attrs {
		out.Attrs[k] = cloneSet(v)
	}
	return out
}

func cloneSet(s Set) Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

// MarkNewNode produces the marking for a node freshly born in revision r:
// the birth is r, and every scalar present on n (parent+name, content if a
// file, and each attribute, live or dormant) gets the singleton mark set {r}.
func MarkNewNode(r RevisionID, n *roster.Node) Marking {
	mk := NewMarking()
	mk.Birth = r
	mk.ParentName = NewSet(r)
	if n.Kind == roster.File {
		mk.Content = NewSet(r)
	}
	for _, key := range n.AllAttrKeys() {
		mk.Attrs[key] = NewSet(r)
	}
	return mk
}

// ParentName is the comparable (parent, name) pair scalar tracked by every
// node's parent+name mark set.
type ParentName struct {
	Parent roster.NodeID
	Name   rosterpath.Component
}

// MarkUnmergedScalar implements the single-parent per-scalar rule shared by
// MarkUnmergedNode and, in the merge package, by attributes present on only
// one of a merge's two parents: if the child's value equals the parent's,
// the parent's mark set is copied through; otherwise it is replaced with
// the singleton {r}.
func MarkUnmergedScalar[T comparable](r RevisionID, newVal, parentVal T, parentMarks Set) Set {
	if newVal == parentVal {
		return cloneSet(parentMarks)
	}
	return NewSet(r)
}

// MarkUnmergedNode computes the marking for a node in a single-parent
// (non-merge) child construction, given the child node child (as it now
// exists in the new roster), the corresponding parent node parentNode, and
// the parent's existing marking parentMarking. For each scalar, if the
// child's value equals the parent's, the parent's mark set is copied
// through; otherwise the mark set is replaced with the singleton {r}. A
// node with no parent is handled by MarkNewNode instead; callers should
// not invoke this function for newly-born nodes.
func MarkUnmergedNode(r RevisionID, child, parentNode *roster.Node, parentMarking Marking) (Marking, error) {
	if parentNode == nil {
		return Marking{}, errors.New("marking: MarkUnmergedNode requires a parent node; use MarkNewNode for births")
	}
	if child.Kind != parentNode.Kind {
		return Marking{}, errors.New("marking: node kind changed between parent and child")
	}

	mk := NewMarking()
	mk.Birth = parentMarking.Birth

	mk.ParentName = MarkUnmergedScalar(r, ParentName{child.Parent, child.Name}, ParentName{parentNode.Parent, parentNode.Name}, parentMarking.ParentName)

	if child.Kind == roster.File {
		mk.Content = MarkUnmergedScalar(r, child.Content, parentNode.Content, parentMarking.Content)
	}

	for _, key := range child.AllAttrKeys() {
		childVal := child.Attrs[key]
		parentVal, hadParent := parentNode.Attrs[key]
		if !hadParent {
			mk.Attrs[key] = NewSet(r)
			continue
		}
		mk.Attrs[key] = MarkUnmergedScalar(r, childVal, parentVal, parentMarking.Attrs[key])
	}
	for key := range parentNode.Attrs {
		if _, stillPresent := child.Attrs[key]; !stillPresent {
			return Marking{}, errors.Errorf("marking: attribute %q disappeared from node without an explicit clear", key)
		}
	}

	return mk, nil
}

// CheckSaneAgainst verifies the pairing invariants between a roster and its
// marking map from the specification's testable-properties section:
// identical key sets, every node has a non-empty birth and non-empty
// parent+name mark set, file nodes have a non-empty content mark and
// non-file nodes have none, and attribute marks are present exactly for
// the node's attribute keys and are each non-empty.
func CheckSaneAgainst(r *roster.Roster, m Map) error {
	ids := r.NodeIDs()
	if len(ids) != len(m) {
		return errors.Errorf("marking: roster has %d node(s) but marking map has %d", len(ids), len(m))
	}
	for _, id := range ids {
		mk, ok := m[id]
		if !ok {
			return errors.Errorf("marking: node %d has no marking", id)
		}
		if mk.Birth.IsNull() {
			return errors.Errorf("marking: node %d has no birth revision", id)
		}
		if len(mk.ParentName) == 0 {
			return errors.Errorf("marking: node %d has an empty parent+name mark set", id)
		}
		node, err := r.GetNodeByID(id)
		if err != nil {
			return errors.Wrapf(err, "marking: node %d", id)
		}
		if node.Kind == roster.File {
			if len(mk.Content) == 0 {
				return errors.Errorf("marking: file node %d has an empty content mark set", id)
			}
		} else if len(mk.Content) != 0 {
			return errors.Errorf("marking: non-file node %d has a non-empty content mark set", id)
		}
		wantKeys := node.AllAttrKeys()
		if len(wantKeys) != len(mk.Attrs) {
			return errors.Errorf("marking: node %d has %d attribute(s) but %d attribute mark(s)", id, len(wantKeys), len(mk.Attrs))
		}
		for _, key := range wantKeys {
			set, ok := mk.Attrs[key]
			if !ok {
				return errors.Errorf("marking: node %d attribute %q has no mark set", id, key)
			}
			if len(set) == 0 {
				return errors.Errorf("marking: node %d attribute %q has an empty mark set", id, key)
			}
		}
	}
	return nil
}
