package builder

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// Unify rewrites the independently-assigned temporary ids on each side of a
// merge into a single, shared set of permanent ids (§4.5). For every id a
// the left side created, it resolves a's path in the left roster and looks
// up the same path in the right roster to find its counterpart b: if b is
// also temporary, both a and b are renumbered to a freshly drawn permanent
// id; if b is already permanent, a is renumbered to b (the left side
// independently recreated a node the right side already held). A second,
// mirror pass handles right-side new ids left unresolved by the first pass
// — these correspond to paths the left side already held under a
// permanent id without having touched them in its own change set.
//
// leftNew and rightNew are consumed: entries are removed as they are
// resolved, and both must be empty on return.
func Unify(left *roster.Roster, leftNew map[roster.NodeID]struct{}, right *roster.Roster, rightNew map[roster.NodeID]struct{}, permanentIDs roster.IDSource) error {
	for a := range cloneIDSet(leftNew) {
		p, err := left.GetPath(a)
		if err != nil {
			return errors.Wrapf(err, "builder: unify: resolving left node %d's path", a)
		}
		rightNode, err := right.GetNodeByPath(p)
		if err != nil {
			return errors.Wrapf(err, "builder: unify: path %q new on the left has no counterpart on the right", p.String())
		}
		b := rightNode.ID

		if b.IsTemporary() {
			n := permanentIDs.NewNodeID()
			if err := left.RenumberNode(a, n); err != nil {
				return errors.Wrap(err, "builder: unify: renumbering left node to a fresh permanent id")
			}
			if err := right.RenumberNode(b, n); err != nil {
				return errors.Wrap(err, "builder: unify: renumbering right node to a fresh permanent id")
			}
			delete(rightNew, b)
		} else {
			if err := left.RenumberNode(a, b); err != nil {
				return errors.Wrap(err, "builder: unify: renumbering left node to the right's existing permanent id")
			}
		}
		delete(leftNew, a)
	}

	// Mirror scan: any right-side new id not consumed above must correspond
	// to a path the left side already holds under a permanent id.
	for b := range cloneIDSet(rightNew) {
		p, err := right.GetPath(b)
		if err != nil {
			return errors.Wrapf(err, "builder: unify: resolving right node %d's path", b)
		}
		leftNode, err := left.GetNodeByPath(p)
		if err != nil {
			return errors.Wrapf(err, "builder: unify: path %q new on the right has no counterpart on the left", p.String())
		}
		a := leftNode.ID
		if a.IsTemporary() {
			return errors.Errorf("builder: unify: right node %d at %q is still paired with a temporary left id after the first pass (logic error)", b, p.String())
		}
		if err := right.RenumberNode(b, a); err != nil {
			return errors.Wrap(err, "builder: unify: renumbering right node to the left's existing permanent id")
		}
		delete(rightNew, b)
	}

	if len(leftNew) != 0 || len(rightNew) != 0 {
		return errors.New("builder: unify: left over unresolved new ids after unification (logic error)")
	}

	return nil
}

func cloneIDSet(m map[roster.NodeID]struct{}) map[roster.NodeID]struct{} {
	out := make(map[roster.NodeID]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}
