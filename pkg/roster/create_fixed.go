package roster

import (
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// CreateDirNodeWithID creates a new, detached directory node under the
// exact id given, rather than drawing a fresh one from an IDSource.
// Ordinary construction always mints ids (CreateDirNode/CreateFileNode);
// this exists for roster-delta application (§4.6) and rosterio.Parse, which
// reconstruct a node under the exact id it was recorded with.
func (r *Roster) CreateDirNodeWithID(id NodeID) error {
	if _, exists := r.nodes[id]; exists {
		return invariantf("create-with-id: id %d is already in use", id)
	}
	r.nodes[id] = &Node{
		ID:       id,
		Kind:     Directory,
		Children: make(map[rosterpath.Component]NodeID),
		Attrs:    make(map[AttrKey]AttrValue),
	}
	r.detached[id] = true
	return nil
}

// CreateFileNodeWithID is CreateDirNodeWithID's file-node counterpart.
func (r *Roster) CreateFileNodeWithID(id NodeID, content hash.ContentHash) error {
	if _, exists := r.nodes[id]; exists {
		return invariantf("create-with-id: id %d is already in use", id)
	}
	r.nodes[id] = &Node{
		ID:      id,
		Kind:    File,
		Content: content,
		Attrs:   make(map[AttrKey]AttrValue),
	}
	r.detached[id] = true
	return nil
}
