// Package merge implements the per-scalar three-way merge ("*-merge")
// marker of §4.4: the rule that decides, for each independently-tracked
// scalar of a node present in both parents of a merge, whether the child's
// mark set is a propagated parent mark set, a union of both parents' mark
// sets, or a fresh singleton naming the new revision.
//
// This is grounded on the teacher's three-way reconciliation algorithm
// (mutagen's pkg/synchronization/core/reconcile.go), generalized from
// mutagen's whole-subtree, path-keyed reconciliation to this
// specification's per-scalar marking decision table; the recursive
// ancestor/alpha/beta walk in reconcile.go is the direct model for
// MarkMergeRoster's parallel walk over both parents' node and marking
// maps.
package merge

import (
	"github.com/archivekeep/rosettavcs/pkg/marking"
)

// MarkMergedScalar implements the two-parent *-merge rule of §4.4 for a
// single scalar of comparable type T:
//
//   - if the new value differs from both parents', the merge resolved the
//     scalar to a novel value and the mark becomes the singleton {newRev};
//   - if the new value equals exactly one parent's (a clean merge in that
//     parent's favor), the mark is a fresh singleton when the *losing*
//     parent's own mark set contains a revision its own uncommon-ancestor
//     set names (an element of rightMarks that lies in rightUncommon when
//     left wins, i.e. a mark right has not yet absorbed); otherwise the
//     loser's history is already fully absorbed into the winner and the
//     winning parent's mark set is propagated unchanged. The check runs
//     against the loser, since the winner's marks are what propagates;
//   - if the new value equals both parents' (and they therefore must be
//     equal to each other), the mark is the union of both parents' mark
//     sets, with no attempt to reduce it by ancestry.
func MarkMergedScalar[T comparable](
	newRev marking.RevisionID,
	newVal T,
	leftVal T, leftMarks, leftUncommon marking.Set,
	rightVal T, rightMarks, rightUncommon marking.Set,
) marking.Set {
	switch {
	case newVal != leftVal && newVal != rightVal:
		return marking.NewSet(newRev)
	case newVal == leftVal && newVal != rightVal:
		if rightMarks.Intersects(rightUncommon) {
			return marking.NewSet(newRev)
		}
		return cloneSet(leftMarks)
	case newVal == rightVal && newVal != leftVal:
		if leftMarks.Intersects(leftUncommon) {
			return marking.NewSet(newRev)
		}
		return cloneSet(rightMarks)
	default:
		return leftMarks.Union(rightMarks)
	}
}

func cloneSet(s marking.Set) marking.Set {
	out := make(marking.Set, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}
