package roster

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// location records where a node was attached before a detach, for the
// anti-reattach check described in the specification.
type location struct {
	parent NodeID
	name   rosterpath.Component
}

// Roster is a set of nodes forming a versioned filesystem tree, per the
// invariants in the specification's data model section: exactly one root,
// every other node's parent resolves to a directory in the same roster,
// children maps agree with children's parent/name fields, no cycles, no
// duplicate attribute entries, dormant attributes carry no value, and no
// two children of a directory share a basename (enforced structurally by
// using a map keyed on basename).
type Roster struct {
	nodes    map[NodeID]*Node
	rootID   NodeID
	detached map[NodeID]bool

	// oldLocations tracks, for nodes detached during the current editing
	// transaction, the (parent, name) they were detached from. It is
	// cleared in its entirety the next time any attach succeeds: the
	// restriction exists only to catch a no-op detach/reattach pair within
	// one transaction, not to track history across the transaction.
	oldLocations map[NodeID]location
}

// New returns an empty roster (no root, no nodes).
func New() *Roster {
	return &Roster{
		nodes:        make(map[NodeID]*Node),
		detached:     make(map[NodeID]bool),
		oldLocations: make(map[NodeID]location),
	}
}

// HasRoot reports whether the roster has a root node.
func (r *Roster) HasRoot() bool {
	return r.rootID != NoNodeID
}

// HasNodeByID reports whether id names a node in this roster.
func (r *Roster) HasNodeByID(id NodeID) bool {
	_, ok := r.nodes[id]
	return ok
}

// HasNodeByPath reports whether p resolves to a node in this roster.
func (r *Roster) HasNodeByPath(p rosterpath.Path) bool {
	_, err := r.GetNodeByPath(p)
	return err == nil
}

// GetNodeByID returns the node with the given id.
func (r *Roster) GetNodeByID(id NodeID) (*Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, ErrUnknownNode
	}
	return n, nil
}

// GetNodeByPath resolves a path to its node.
func (r *Roster) GetNodeByPath(p rosterpath.Path) (*Node, error) {
	if p.IsEmpty() {
		return nil, ErrPathNotFound
	}
	if !r.HasRoot() {
		return nil, ErrPathNotFound
	}
	current := r.nodes[r.rootID]
	for _, comp := range p.Components()[1:] {
		if current.Kind != Directory {
			return nil, ErrPathNotFound
		}
		childID, ok := current.Children[comp]
		if !ok {
			return nil, ErrPathNotFound
		}
		current = r.nodes[childID]
	}
	return current, nil
}

// GetPath returns the path at which id currently resides. It fails if the
// node is detached (it has no path) or unknown.
func (r *Roster) GetPath(id NodeID) (rosterpath.Path, error) {
	node, ok := r.nodes[id]
	if !ok {
		return rosterpath.Path{}, ErrUnknownNode
	}
	if r.detached[id] {
		return rosterpath.Path{}, ErrNodeDetached
	}
	if id == r.rootID {
		return rosterpath.Root(), nil
	}

	var components []rosterpath.Component
	for node.ID != r.rootID {
		components = append(components, node.Name)
		node = r.nodes[node.Parent]
	}
	// Build the path root-first.
	path := rosterpath.Root()
	for i := len(components) - 1; i >= 0; i-- {
		path = path.Child(components[i])
	}
	return path, nil
}

// CreateDirNode creates a new, detached directory node using src to draw
// its id.
func (r *Roster) CreateDirNode(src IDSource) NodeID {
	id := src.NewNodeID()
	r.nodes[id] = &Node{
		ID:       id,
		Kind:     Directory,
		Children: make(map[rosterpath.Component]NodeID),
		Attrs:    make(map[AttrKey]AttrValue),
	}
	r.detached[id] = true
	return id
}

// CreateFileNode creates a new, detached file node with the given content,
// using src to draw its id.
func (r *Roster) CreateFileNode(content hash.ContentHash, src IDSource) NodeID {
	id := src.NewNodeID()
	r.nodes[id] = &Node{
		ID:      id,
		Kind:    File,
		Content: content,
		Attrs:   make(map[AttrKey]AttrValue),
	}
	r.detached[id] = true
	return id
}

// AttachNode attaches a previously-created (and currently detached) node
// at the given path.
func (r *Roster) AttachNode(id NodeID, p rosterpath.Path) error {
	node, ok := r.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if !r.detached[id] {
		return ErrNodeNotDetached
	}

	if p.IsRoot() {
		if r.HasRoot() {
			return ErrRootAlreadyPresent
		}
		node.Parent = NoNodeID
		node.Name = ""
		delete(r.detached, id)
		r.rootID = id
		r.oldLocations = make(map[NodeID]location)
		return nil
	}

	parentPath := p.Parent()
	name := p.Base()
	if err := rosterpath.ValidateComponent(name); err != nil {
		return errors.Wrap(err, "invalid path component")
	}
	parentNode, err := r.GetNodeByPath(parentPath)
	if err != nil {
		return ErrParentMissing
	}
	if parentNode.Kind != Directory {
		return ErrParentNotDirectory
	}
	if _, exists := parentNode.Children[name]; exists {
		return ErrPathOccupied
	}
	if prior, wasDetached := r.oldLocations[id]; wasDetached && prior.parent == parentNode.ID && prior.name == name {
		return ErrRecentlyDetachedHere
	}

	node.Parent = parentNode.ID
	node.Name = name
	parentNode.Children[name] = id
	delete(r.detached, id)
	r.oldLocations = make(map[NodeID]location)
	return nil
}

// DetachNode detaches the node at p, returning its id.
func (r *Roster) DetachNode(p rosterpath.Path) (NodeID, error) {
	if p.IsRoot() {
		return NoNodeID, ErrCannotDetachRoot
	}
	node, err := r.GetNodeByPath(p)
	if err != nil {
		return NoNodeID, err
	}
	parentNode := r.nodes[node.Parent]
	delete(parentNode.Children, node.Name)
	r.oldLocations[node.ID] = location{parent: node.Parent, name: node.Name}
	node.Parent = NoNodeID
	node.Name = ""
	r.detached[node.ID] = true
	return node.ID, nil
}

// DropDetachedNode permanently removes a detached node from the roster.
func (r *Roster) DropDetachedNode(id NodeID) error {
	node, ok := r.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if !r.detached[id] {
		return ErrNodeStillAttached
	}
	if node.Kind == Directory && len(node.Children) > 0 {
		return ErrDirectoryNotEmpty
	}
	delete(r.nodes, id)
	delete(r.detached, id)
	delete(r.oldLocations, id)
	return nil
}

// ApplyDelta updates a file node's content, checking that its current
// content matches oldContent.
func (r *Roster) ApplyDelta(p rosterpath.Path, oldContent, newContent hash.ContentHash) error {
	node, err := r.GetNodeByPath(p)
	if err != nil {
		return err
	}
	if node.Kind != File {
		return ErrNotAFile
	}
	if node.Content != oldContent {
		return ErrContentMismatch
	}
	if oldContent == newContent {
		return ErrNoOpDelta
	}
	node.Content = newContent
	return nil
}

// SetAttr sets an attribute on the node at p.
func (r *Roster) SetAttr(p rosterpath.Path, key AttrKey, value AttrValue) error {
	if err := value.Validate(); err != nil {
		return err
	}
	node, err := r.GetNodeByPath(p)
	if err != nil {
		return err
	}
	node.Attrs[key] = value
	return nil
}

// ClearAttr marks an attribute dormant on the node at p.
func (r *Roster) ClearAttr(p rosterpath.Path, key AttrKey) error {
	node, err := r.GetNodeByPath(p)
	if err != nil {
		return err
	}
	if _, ok := node.Attrs[key]; !ok {
		return ErrNoSuchAttribute
	}
	node.Attrs[key] = AttrValue{Live: false, Value: ""}
	return nil
}

// NodeIDs returns every node id in the roster, sorted ascending.
func (r *Roster) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sortNodeIDs(ids)
	return ids
}

func sortNodeIDs(ids []NodeID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// IsDetached reports whether id currently names a detached node.
func (r *Roster) IsDetached(id NodeID) bool {
	return r.detached[id]
}

// RootID returns the id of the root node, or NoNodeID if the roster has no
// root yet.
func (r *Roster) RootID() NodeID {
	return r.rootID
}
