// Package rosterdelta implements the reversible binary delta between two
// (roster, marking) pairs (§4.6): a textual basic-IO wire format describing
// every node-level structural and provenance change between a parent and a
// child, together with in-place application and two partial-query helpers
// that answer a single node's content or marking without materializing the
// target roster.
//
// This is grounded on changeset's own diff/apply/io trio
// (pkg/changeset/{make,apply,io}.go), generalized from change-set's
// path-keyed operations to the node-id-keyed shape a delta needs: a node
// touched by a delta may not yet have a path (a newly added node's parent
// may itself be new within the same delta), so application resolves
// attachment order by dependency rather than by sorting path strings.
package rosterdelta

import (
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Location is the (parent, name) pair a node is attached under, as carried
// by an add_dir/add_file/rename stanza's location line.
type Location struct {
	Parent roster.NodeID
	Name   rosterpath.Component
}

// AttrChange is a single attribute set recorded against a node by an
// attr_changed stanza.
type AttrChange struct {
	Key   roster.AttrKey
	Value roster.AttrValue
}

// AddedFile is an add_file stanza's payload: where the new file is
// attached, and its initial content.
type AddedFile struct {
	Location Location
	Content  hash.ContentHash
}

// Delta is the full set of stanzas the wire grammar supports, keyed by
// node id. A node id may appear in at most one of Deleted, Renamed,
// AddedDirs, AddedFiles (structural stanzas are mutually exclusive per
// node), independently of whether it also appears in Deltas, AttrCleared,
// AttrChanged, or Markings.
type Delta struct {
	Deleted     map[roster.NodeID]struct{}
	Renamed     map[roster.NodeID]Location
	AddedDirs   map[roster.NodeID]Location
	AddedFiles  map[roster.NodeID]AddedFile
	Deltas      map[roster.NodeID]hash.ContentHash
	AttrCleared map[roster.NodeID][]roster.AttrKey
	AttrChanged map[roster.NodeID][]AttrChange
	Markings    map[roster.NodeID]marking.Marking
}

// New returns an empty, ready-to-populate delta.
func New() *Delta {
	return &Delta{
		Deleted:     make(map[roster.NodeID]struct{}),
		Renamed:     make(map[roster.NodeID]Location),
		AddedDirs:   make(map[roster.NodeID]Location),
		AddedFiles:  make(map[roster.NodeID]AddedFile),
		Deltas:      make(map[roster.NodeID]hash.ContentHash),
		AttrCleared: make(map[roster.NodeID][]roster.AttrKey),
		AttrChanged: make(map[roster.NodeID][]AttrChange),
		Markings:    make(map[roster.NodeID]marking.Marking),
	}
}

// IsEmpty reports whether the delta carries no stanzas at all.
func (d *Delta) IsEmpty() bool {
	return len(d.Deleted) == 0 && len(d.Renamed) == 0 && len(d.AddedDirs) == 0 &&
		len(d.AddedFiles) == 0 && len(d.Deltas) == 0 && len(d.AttrCleared) == 0 &&
		len(d.AttrChanged) == 0 && len(d.Markings) == 0
}
