package merge

import (
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// NewNodesAdapter is the "merge adapter" variant of the editable-tree
// capability described in §4.2: it performs only roster operations, like
// roster.BaseAdapter, but additionally records every id handed out by
// CreateDirNode/CreateFileNode into a NewNodes set. The roster builder's
// unification pass (§4.5) consumes that set to find the ids each side of a
// merge assigned independently.
type NewNodesAdapter struct {
	base     *roster.BaseAdapter
	NewNodes map[roster.NodeID]struct{}
}

// NewNewNodesAdapter constructs a NewNodesAdapter over r, drawing ids from
// ids.
func NewNewNodesAdapter(r *roster.Roster, ids roster.IDSource) *NewNodesAdapter {
	return &NewNodesAdapter{
		base:     roster.NewBaseAdapter(r, ids),
		NewNodes: make(map[roster.NodeID]struct{}),
	}
}

func (a *NewNodesAdapter) DetachNode(p rosterpath.Path) (roster.NodeID, error) {
	return a.base.DetachNode(p)
}

func (a *NewNodesAdapter) DropDetachedNode(id roster.NodeID) error {
	delete(a.NewNodes, id)
	return a.base.DropDetachedNode(id)
}

func (a *NewNodesAdapter) CreateDirNode() roster.NodeID {
	id := a.base.CreateDirNode()
	a.NewNodes[id] = struct{}{}
	return id
}

func (a *NewNodesAdapter) CreateFileNode(content hash.ContentHash) roster.NodeID {
	id := a.base.CreateFileNode(content)
	a.NewNodes[id] = struct{}{}
	return id
}

func (a *NewNodesAdapter) AttachNode(id roster.NodeID, p rosterpath.Path) error {
	return a.base.AttachNode(id, p)
}

func (a *NewNodesAdapter) ApplyDelta(p rosterpath.Path, oldContent, newContent hash.ContentHash) error {
	return a.base.ApplyDelta(p, oldContent, newContent)
}

func (a *NewNodesAdapter) SetAttr(p rosterpath.Path, key roster.AttrKey, value roster.AttrValue) error {
	return a.base.SetAttr(p, key, value)
}

func (a *NewNodesAdapter) ClearAttr(p rosterpath.Path, key roster.AttrKey) error {
	return a.base.ClearAttr(p, key)
}

// MarkedAdapter is the "marked adapter" variant: it performs roster
// operations and keeps a marking map in lockstep, per §4.2's description.
// Newly created nodes are marked via marking.MarkNewNode as soon as they
// are created (the mark does not depend on the node's eventual attached
// path, only on its revision of birth); every other mutating operation
// re-marks the scalar it touches with the singleton {Rev}, since the
// change-set normalization invariants (§3) guarantee a mutating operation
// is only ever emitted for an actual value change.
type MarkedAdapter struct {
	Roster  *roster.Roster
	IDs     roster.IDSource
	Marking marking.Map
	Rev     marking.RevisionID

	created map[roster.NodeID]struct{}
}

// NewMarkedAdapter constructs a MarkedAdapter over r, drawing ids from ids
// and recording marking updates into m for revision rev.
func NewMarkedAdapter(r *roster.Roster, ids roster.IDSource, m marking.Map, rev marking.RevisionID) *MarkedAdapter {
	return &MarkedAdapter{
		Roster:  r,
		IDs:     ids,
		Marking: m,
		Rev:     rev,
		created: make(map[roster.NodeID]struct{}),
	}
}

func (a *MarkedAdapter) DetachNode(p rosterpath.Path) (roster.NodeID, error) {
	return a.Roster.DetachNode(p)
}

func (a *MarkedAdapter) DropDetachedNode(id roster.NodeID) error {
	if err := a.Roster.DropDetachedNode(id); err != nil {
		return err
	}
	delete(a.Marking, id)
	delete(a.created, id)
	return nil
}

func (a *MarkedAdapter) CreateDirNode() roster.NodeID {
	id := a.Roster.CreateDirNode(a.IDs)
	a.markNew(id)
	return id
}

func (a *MarkedAdapter) CreateFileNode(content hash.ContentHash) roster.NodeID {
	id := a.Roster.CreateFileNode(content, a.IDs)
	a.markNew(id)
	return id
}

func (a *MarkedAdapter) markNew(id roster.NodeID) {
	node, err := a.Roster.GetNodeByID(id)
	if err != nil {
		panic("merge: just-created node not found in its own roster")
	}
	a.Marking[id] = marking.MarkNewNode(a.Rev, node)
	a.created[id] = struct{}{}
}

func (a *MarkedAdapter) AttachNode(id roster.NodeID, p rosterpath.Path) error {
	if err := a.Roster.AttachNode(id, p); err != nil {
		return err
	}
	if _, justCreated := a.created[id]; justCreated {
		return nil
	}
	mk := a.Marking[id]
	mk.ParentName = marking.NewSet(a.Rev)
	a.Marking[id] = mk
	return nil
}

func (a *MarkedAdapter) ApplyDelta(p rosterpath.Path, oldContent, newContent hash.ContentHash) error {
	node, err := a.Roster.GetNodeByPath(p)
	if err != nil {
		return err
	}
	id := node.ID
	if err := a.Roster.ApplyDelta(p, oldContent, newContent); err != nil {
		return err
	}
	mk := a.Marking[id]
	mk.Content = marking.NewSet(a.Rev)
	a.Marking[id] = mk
	return nil
}

func (a *MarkedAdapter) SetAttr(p rosterpath.Path, key roster.AttrKey, value roster.AttrValue) error {
	node, err := a.Roster.GetNodeByPath(p)
	if err != nil {
		return err
	}
	id := node.ID
	if err := a.Roster.SetAttr(p, key, value); err != nil {
		return err
	}
	a.markAttr(id, key)
	return nil
}

func (a *MarkedAdapter) ClearAttr(p rosterpath.Path, key roster.AttrKey) error {
	node, err := a.Roster.GetNodeByPath(p)
	if err != nil {
		return err
	}
	id := node.ID
	if err := a.Roster.ClearAttr(p, key); err != nil {
		return err
	}
	a.markAttr(id, key)
	return nil
}

func (a *MarkedAdapter) markAttr(id roster.NodeID, key roster.AttrKey) {
	mk := a.Marking[id]
	if mk.Attrs == nil {
		mk.Attrs = make(map[roster.AttrKey]marking.Set)
	}
	mk.Attrs[key] = marking.NewSet(a.Rev)
	a.Marking[id] = mk
}
