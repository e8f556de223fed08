// Package roster implements the in-memory representation of a versioned
// filesystem tree: nodes (files and directories) addressed by a permanent
// or temporary integer id, linked into a tree by parent/name pairs, each
// carrying an ordered attribute map.
//
// This is grounded on mutagen's pkg/synchronization/core.Entry (entry.go),
// generalized from mutagen's reference-counted, name-keyed subtree model
// into an arena-of-nodes-by-id model per the design notes: the roster owns
// every Node in a flat map keyed by NodeID, and all parent/child
// relationships are NodeID values rather than pointers, which is what makes
// node identity survive independent of tree shape (required for the
// marking map and for unification during merge).
package roster
