package roster

// RenumberNode rewrites every reference to old within the roster to new,
// including the node map key, the parent's children map entry, any
// children's Parent fields (for a directory node), the root id, the
// detached set, and old-locations bookkeeping. It is used only by the
// roster builder's unification pass (§4.5): the two independently-built
// sides of a merge assign temporary ids on their own, and unification
// rewrites them to a single shared id space.
//
// RenumberNode fails if old is unknown or new already names a node in this
// roster.
func (r *Roster) RenumberNode(old, new NodeID) error {
	if old == new {
		return nil
	}
	node, ok := r.nodes[old]
	if !ok {
		return ErrUnknownNode
	}
	if _, occupied := r.nodes[new]; occupied {
		return invariantf("renumber target id %d is already in use", new)
	}

	delete(r.nodes, old)
	node.ID = new
	r.nodes[new] = node

	if node.Parent != NoNodeID {
		if parent, ok := r.nodes[node.Parent]; ok {
			parent.Children[node.Name] = new
		}
	}
	if node.Kind == Directory {
		for _, childID := range node.Children {
			if child, ok := r.nodes[childID]; ok {
				child.Parent = new
			}
		}
	}

	if old == r.rootID {
		r.rootID = new
	}
	if r.detached[old] {
		delete(r.detached, old)
		r.detached[new] = true
	}
	if loc, ok := r.oldLocations[old]; ok {
		delete(r.oldLocations, old)
		r.oldLocations[new] = loc
	}

	return nil
}
