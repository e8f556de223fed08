package merge

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// ErrDieDieDie is the sentinel domain-contract-violation error for the
// "die die die" rule (§4.4, §8 scenario 6): a node present in exactly one
// parent whose birth revision lies in the common ancestry must not
// reappear in the merge child, because that would mean one side kept a
// node the other side deliberately deleted with no conflicting edit to
// reconcile against.
var ErrDieDieDie = errors.New("merge: node present in only one parent was born in common ancestry and cannot be resurrected (die die die)")

// ErrKindChanged is the sentinel error for a node that is a file in one
// parent/child combination and a directory in another; the specification
// treats this as a hard error rather than a resolvable conflict.
var ErrKindChanged = errors.New("merge: node changed between file and directory")

// ErrBirthMismatch is the sentinel error for a node present in both
// parents with two different birth revisions, which should be impossible
// for a single node id under the specification's invariants.
var ErrBirthMismatch = errors.New("merge: node has different birth revisions in the two parents")

// ErrAttributeDisappeared mirrors the single-parent rule: an attribute
// present on a parent must not vanish from the child without an explicit
// clear (which leaves a dormant entry).
var ErrAttributeDisappeared = errors.New("merge: attribute present on a parent disappeared from the merged node")

// MarkMergedNode computes the marking for one node of the merge child,
// dispatching on how many of the two parents currently hold the node
// (§4.4, "Mark-merged-node" and the lifecycle-in-merge invariants):
//
//   - present in neither parent: the node was created fresh during this
//     merge's roster construction; MarkNewNode applies.
//   - present in exactly one parent: the "die die die" rule is checked,
//     then MarkUnmergedNode applies against that one parent.
//   - present in both parents: birth is copied through (and must agree),
//     parent+name and (for files) content are merged scalar-by-scalar via
//     MarkMergedScalar, and the union of both parents' attribute keys is
//     merged per-key via MarkMergedScalar (both present), MarkUnmergedScalar
//     (one present), or a fresh mark (neither present, new on the child).
func MarkMergedNode(
	newRev marking.RevisionID,
	newNode *roster.Node,
	leftNode *roster.Node, leftMarking marking.Marking, leftUncommon marking.Set,
	rightNode *roster.Node, rightMarking marking.Marking, rightUncommon marking.Set,
) (marking.Marking, error) {
	switch {
	case leftNode == nil && rightNode == nil:
		return marking.MarkNewNode(newRev, newNode), nil

	case leftNode != nil && rightNode == nil:
		if !leftUncommon.Contains(leftMarking.Birth) {
			return marking.Marking{}, errors.Wrapf(ErrDieDieDie, "node %d", newNode.ID)
		}
		if newNode.Kind != leftNode.Kind {
			return marking.Marking{}, errors.Wrapf(ErrKindChanged, "node %d", newNode.ID)
		}
		return marking.MarkUnmergedNode(newRev, newNode, leftNode, leftMarking)

	case rightNode != nil && leftNode == nil:
		if !rightUncommon.Contains(rightMarking.Birth) {
			return marking.Marking{}, errors.Wrapf(ErrDieDieDie, "node %d", newNode.ID)
		}
		if newNode.Kind != rightNode.Kind {
			return marking.Marking{}, errors.Wrapf(ErrKindChanged, "node %d", newNode.ID)
		}
		return marking.MarkUnmergedNode(newRev, newNode, rightNode, rightMarking)

	default:
		return markMergedBothPresent(newRev, newNode, leftNode, leftMarking, leftUncommon, rightNode, rightMarking, rightUncommon)
	}
}

func markMergedBothPresent(
	newRev marking.RevisionID,
	newNode, leftNode *roster.Node, leftMarking marking.Marking, leftUncommon marking.Set,
	rightNode *roster.Node, rightMarking marking.Marking, rightUncommon marking.Set,
) (marking.Marking, error) {
	if leftNode.Kind != rightNode.Kind || newNode.Kind != leftNode.Kind {
		return marking.Marking{}, errors.Wrapf(ErrKindChanged, "node %d", newNode.ID)
	}
	if leftMarking.Birth != rightMarking.Birth {
		return marking.Marking{}, errors.Wrapf(ErrBirthMismatch, "node %d", newNode.ID)
	}

	mk := marking.NewMarking()
	mk.Birth = leftMarking.Birth

	mk.ParentName = MarkMergedScalar(
		newRev,
		marking.ParentName{Parent: newNode.Parent, Name: newNode.Name},
		marking.ParentName{Parent: leftNode.Parent, Name: leftNode.Name}, leftMarking.ParentName, leftUncommon,
		marking.ParentName{Parent: rightNode.Parent, Name: rightNode.Name}, rightMarking.ParentName, rightUncommon,
	)

	if newNode.Kind == roster.File {
		mk.Content = MarkMergedScalar(
			newRev, newNode.Content,
			leftNode.Content, leftMarking.Content, leftUncommon,
			rightNode.Content, rightMarking.Content, rightUncommon,
		)
	}

	keys := unionAttrKeys(leftNode, rightNode)
	for _, key := range keys {
		leftVal, inLeft := leftNode.Attrs[key]
		rightVal, inRight := rightNode.Attrs[key]
		newVal, inNew := newNode.Attrs[key]
		if !inNew {
			return marking.Marking{}, errors.Wrapf(ErrAttributeDisappeared, "node %d attribute %q", newNode.ID, key)
		}

		switch {
		case inLeft && inRight:
			mk.Attrs[key] = MarkMergedScalar(newRev, newVal, leftVal, leftMarking.Attrs[key], leftUncommon, rightVal, rightMarking.Attrs[key], rightUncommon)
		case inLeft:
			mk.Attrs[key] = marking.MarkUnmergedScalar(newRev, newVal, leftVal, leftMarking.Attrs[key])
		case inRight:
			mk.Attrs[key] = marking.MarkUnmergedScalar(newRev, newVal, rightVal, rightMarking.Attrs[key])
		default:
			mk.Attrs[key] = marking.NewSet(newRev)
		}
	}

	return mk, nil
}

func unionAttrKeys(left, right *roster.Node) []roster.AttrKey {
	seen := make(map[roster.AttrKey]struct{})
	var out []roster.AttrKey
	for _, k := range left.AllAttrKeys() {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for _, k := range right.AllAttrKeys() {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
