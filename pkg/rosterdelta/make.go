package rosterdelta

import (
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/pariter"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

func nodeIDLess(a, b roster.NodeID) bool { return a < b }

// Make computes the delta from (from, fromMarking) to (to, toMarking)
// (§4.6). When touched is nil, every structural difference between the two
// rosters is recorded ("simple mode": a parallel walk of the two node maps,
// the same shape as changeset.Make's). When touched is non-nil, structural
// stanzas are restricted to the given node ids ("merge-edge mode": the
// caller has already computed a one-sided change set and resolved its
// touched paths to node ids via TouchedNodeIDs, so the delta only restates
// that side's edits rather than the full roster diff).
//
// Marking stanzas are computed the same way regardless of mode: every node
// whose mark set actually differs between fromMarking and toMarking gets a
// marking stanza, whether or not it was structurally touched, since a
// node's provenance can change across a merge edge independent of any
// structural edit to that node.
func Make(from *roster.Roster, fromMarking marking.Map, to *roster.Roster, toMarking marking.Map, touched map[roster.NodeID]struct{}) *Delta {
	d := New()

	it := pariter.New(nodeMap(from), nodeMap(to), nodeIDLess)
	for it.State() != pariter.Done {
		switch it.State() {
		case pariter.InLeft:
			id := it.LeftKey()
			if wanted(touched, id) {
				d.Deleted[id] = struct{}{}
			}
		case pariter.InRight:
			id := it.RightKey()
			if wanted(touched, id) {
				recordAdd(d, id, it.RightValue())
			}
		case pariter.InBoth:
			id := it.LeftKey()
			if wanted(touched, id) {
				recordChange(d, id, it.LeftValue(), it.RightValue())
			}
		}
		it.Advance()
	}

	markIt := pariter.New(fromMarking, toMarking, nodeIDLess)
	for markIt.State() != pariter.Done {
		switch markIt.State() {
		case pariter.InRight:
			d.Markings[markIt.RightKey()] = markIt.RightValue()
		case pariter.InBoth:
			if !markingEqual(markIt.LeftValue(), markIt.RightValue()) {
				d.Markings[markIt.LeftKey()] = markIt.RightValue()
			}
		}
		markIt.Advance()
	}

	return d
}

func wanted(touched map[roster.NodeID]struct{}, id roster.NodeID) bool {
	if touched == nil {
		return true
	}
	_, ok := touched[id]
	return ok
}

func recordAdd(d *Delta, id roster.NodeID, node *roster.Node) {
	loc := Location{Parent: node.Parent, Name: node.Name}
	if node.Kind == roster.Directory {
		d.AddedDirs[id] = loc
	} else {
		d.AddedFiles[id] = AddedFile{Location: loc, Content: node.Content}
	}
	for _, key := range node.LiveAttrs() {
		d.AttrChanged[id] = append(d.AttrChanged[id], AttrChange{Key: key, Value: node.Attrs[key]})
	}
}

func recordChange(d *Delta, id roster.NodeID, oldNode, newNode *roster.Node) {
	if oldNode.Parent != newNode.Parent || oldNode.Name != newNode.Name {
		d.Renamed[id] = Location{Parent: newNode.Parent, Name: newNode.Name}
	}
	if oldNode.Kind == roster.File && newNode.Kind == roster.File && oldNode.Content != newNode.Content {
		d.Deltas[id] = newNode.Content
	}
	diffAttrs(d, id, oldNode, newNode)
}

func nodeMap(r *roster.Roster) map[roster.NodeID]*roster.Node {
	ids := r.NodeIDs()
	out := make(map[roster.NodeID]*roster.Node, len(ids))
	for _, id := range ids {
		n, _ := r.GetNodeByID(id)
		out[id] = n
	}
	return out
}

func attrKeyLess(a, b roster.AttrKey) bool { return a < b }

func diffAttrs(d *Delta, id roster.NodeID, oldNode, newNode *roster.Node) {
	it := pariter.New(oldNode.Attrs, newNode.Attrs, attrKeyLess)
	for it.State() != pariter.Done {
		switch it.State() {
		case pariter.InRight:
			key := it.RightKey()
			val := it.RightValue()
			if val.Live {
				d.AttrChanged[id] = append(d.AttrChanged[id], AttrChange{Key: key, Value: val})
			}
		case pariter.InBoth:
			key := it.LeftKey()
			oldVal := it.LeftValue()
			newVal := it.RightValue()
			if oldVal != newVal {
				if newVal.Live {
					d.AttrChanged[id] = append(d.AttrChanged[id], AttrChange{Key: key, Value: newVal})
				} else {
					d.AttrCleared[id] = append(d.AttrCleared[id], key)
				}
			}
		}
		it.Advance()
	}
}

func markingEqual(a, b marking.Marking) bool {
	if a.Birth != b.Birth {
		return false
	}
	if !a.ParentName.Equal(b.ParentName) || !a.Content.Equal(b.Content) {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for key, set := range a.Attrs {
		other, ok := b.Attrs[key]
		if !ok || !set.Equal(other) {
			return false
		}
	}
	return true
}
