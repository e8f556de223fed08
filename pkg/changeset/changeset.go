// Package changeset implements the declarative edit script ("change set")
// that describes the difference between two rosters, grounded on the
// teacher's Change/Diff/Apply trio (mutagen's
// pkg/synchronization/core/{change,diff,apply}.go) but generalized from
// mutagen's coarse whole-subtree replacement to the specification's
// scalar-level operations: delete, add-dir, add-file, rename, delta,
// attr-clear, attr-set.
package changeset

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/pariter"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Delta is the (old, new) content hash pair recorded for a single file
// whose content changed in place.
type Delta struct {
	Old, New hash.ContentHash
}

// AttrKey pairs a path with an attribute key, the key type for
// attrs_cleared.
type AttrKey struct {
	Path rosterpath.Path
	Key  roster.AttrKey
}

// ChangeSet is the six (plus one, per the data model's attrs split)
// disjoint collections of §3: nodes deleted, directories added, files
// added (with content), nodes renamed, file deltas applied, attributes
// cleared, and attributes set.
type ChangeSet struct {
	NodesDeleted  map[string]struct{}
	DirsAdded     map[string]struct{}
	FilesAdded    map[string]hash.ContentHash
	NodesRenamed  map[string]string
	DeltasApplied map[string]Delta
	AttrsCleared  map[AttrKey]struct{}
	AttrsSet      map[AttrKey]string
}

// New returns an empty, ready-to-populate change set.
func New() *ChangeSet {
	return &ChangeSet{
		NodesDeleted:  make(map[string]struct{}),
		DirsAdded:     make(map[string]struct{}),
		FilesAdded:    make(map[string]hash.ContentHash),
		NodesRenamed:  make(map[string]string),
		DeltasApplied: make(map[string]Delta),
		AttrsCleared:  make(map[AttrKey]struct{}),
		AttrsSet:      make(map[AttrKey]string),
	}
}

// IsEmpty reports whether the change set contains no operations at all.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.NodesDeleted) == 0 && len(c.DirsAdded) == 0 && len(c.FilesAdded) == 0 &&
		len(c.NodesRenamed) == 0 && len(c.DeltasApplied) == 0 &&
		len(c.AttrsCleared) == 0 && len(c.AttrsSet) == 0
}

// pathKey renders a path to the flat string key used internally by the
// change set's maps/sets (the external slash-joined form is already
// collision-free and totally ordered, so it doubles as a map key).
func pathKey(p rosterpath.Path) string {
	return p.String()
}

func pathFromKey(s string) rosterpath.Path {
	return rosterpath.Parse(s)
}
