package roster

import (
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// EditableTree is the capability surface the change-set applier (and the
// roster delta applier) uses to mutate a roster, without needing to know
// whether it is editing a plain roster, a roster under construction during
// a merge (which must also track newly created ids for later
// unification), or a roster whose marking map must be kept in lockstep.
//
// The three concrete implementations are the "Base", "Merge", and
// "Marked" adapter variants described in the specification: BaseAdapter
// here performs only roster operations; the merge and marked variants live
// in the merge package, since they additionally depend on marking map
// types that would otherwise create an import cycle back into this
// package.
type EditableTree interface {
	DetachNode(p rosterpath.Path) (NodeID, error)
	DropDetachedNode(id NodeID) error
	CreateDirNode() NodeID
	CreateFileNode(content hash.ContentHash) NodeID
	AttachNode(id NodeID, p rosterpath.Path) error
	ApplyDelta(p rosterpath.Path, oldContent, newContent hash.ContentHash) error
	SetAttr(p rosterpath.Path, key AttrKey, value AttrValue) error
	ClearAttr(p rosterpath.Path, key AttrKey) error
}

// BaseAdapter is the plain EditableTree implementation: it performs only
// roster operations, drawing new node ids from an injected IDSource.
type BaseAdapter struct {
	Roster *Roster
	IDs    IDSource
}

// NewBaseAdapter constructs a BaseAdapter over r, drawing ids from ids.
func NewBaseAdapter(r *Roster, ids IDSource) *BaseAdapter {
	return &BaseAdapter{Roster: r, IDs: ids}
}

func (a *BaseAdapter) DetachNode(p rosterpath.Path) (NodeID, error) {
	return a.Roster.DetachNode(p)
}

func (a *BaseAdapter) DropDetachedNode(id NodeID) error {
	return a.Roster.DropDetachedNode(id)
}

func (a *BaseAdapter) CreateDirNode() NodeID {
	return a.Roster.CreateDirNode(a.IDs)
}

func (a *BaseAdapter) CreateFileNode(content hash.ContentHash) NodeID {
	return a.Roster.CreateFileNode(content, a.IDs)
}

func (a *BaseAdapter) AttachNode(id NodeID, p rosterpath.Path) error {
	return a.Roster.AttachNode(id, p)
}

func (a *BaseAdapter) ApplyDelta(p rosterpath.Path, oldContent, newContent hash.ContentHash) error {
	return a.Roster.ApplyDelta(p, oldContent, newContent)
}

func (a *BaseAdapter) SetAttr(p rosterpath.Path, key AttrKey, value AttrValue) error {
	return a.Roster.SetAttr(p, key, value)
}

func (a *BaseAdapter) ClearAttr(p rosterpath.Path, key AttrKey) error {
	return a.Roster.ClearAttr(p, key)
}
