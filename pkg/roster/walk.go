package roster

import "github.com/archivekeep/rosettavcs/pkg/rosterpath"

// Visitor is called once per node during a depth-first walk.
type Visitor func(p rosterpath.Path, n *Node)

// Walk performs the canonical depth-first, sorted-children traversal used
// for serialization: the root first, then each child in sorted
// basename order, recursing depth-first. An empty roster (no root) visits
// nothing.
func (r *Roster) Walk(visit Visitor) {
	if !r.HasRoot() {
		return
	}
	r.walk(r.rootID, rosterpath.Root(), visit)
}

func (r *Roster) walk(id NodeID, p rosterpath.Path, visit Visitor) {
	node := r.nodes[id]
	visit(p, node)
	if node.Kind != Directory {
		return
	}
	for _, name := range sortedComponentKeys(node.Children) {
		r.walk(node.Children[name], p.Child(name), visit)
	}
}

func sortedComponentKeys(m map[rosterpath.Component]NodeID) []rosterpath.Component {
	keys := make([]rosterpath.Component, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// AllPaths returns every live path in the roster, in depth-first order.
// This supplements the distilled specification (grounded on the original
// roster's extract_path_set helper) and is used by the restriction
// component to validate include/exclude paths.
func (r *Roster) AllPaths() []rosterpath.Path {
	var paths []rosterpath.Path
	r.Walk(func(p rosterpath.Path, n *Node) {
		paths = append(paths, p)
	})
	return paths
}
