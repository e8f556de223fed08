// Package workspace implements the "made_for: workspace|database"
// discriminator described in the specification's Design Notes §9 ("Fake"
// hashing for in-flight workspaces): while a revision is being built in a
// working copy but has not yet been committed, its new_manifest field
// holds a random 20-byte placeholder rather than a real content hash, and
// callers tag the revision with this discriminator so a sanity check can
// skip the "new_manifest matches new_roster" comparison for workspace
// revisions while still enforcing it for database ones.
//
// Grounded on the teacher's session-identifier generation (mutagen's
// pkg/session reaches for github.com/google/uuid wherever a random
// identifier crosses a persistence boundary, rather than hand-rolling one
// over math/rand); this package mirrors that choice for the placeholder
// hash.
package workspace

import (
	"github.com/google/uuid"

	"github.com/archivekeep/rosettavcs/pkg/hash"
)

// Discriminator tags a revision's new_manifest field with its provenance:
// a real content hash (Database) or a random placeholder (Workspace).
type Discriminator int

const (
	// Database marks a committed revision: new_manifest is a real content
	// hash of the new roster's manifest.
	Database Discriminator = iota
	// Workspace marks an in-progress, uncommitted revision: new_manifest is
	// a random placeholder, and sanity checks must not compare it against
	// the new roster's actual manifest hash.
	Workspace
)

// NewPlaceholderHash produces a random 20-byte value suitable for a
// workspace revision's new_manifest field, drawing its randomness from two
// concatenated, truncated UUIDs rather than a bare math/rand source.
func NewPlaceholderHash() hash.ContentHash {
	var h hash.ContentHash
	a := uuid.New()
	b := uuid.New()
	copy(h[:16], a[:])
	copy(h[16:], b[:hash.Size-16])
	return h
}
