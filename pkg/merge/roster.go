package merge

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// MarkMergeRoster computes the marking map for a newly unified roster that
// resulted from merging two parent revisions (§4.4, "Mark-merge-roster"):
// it iterates every node id of newRoster, looks it up in both parent
// rosters/markings (absent in a parent is represented by a nil node and a
// zero Marking), and delegates to MarkMergedNode for the per-node decision.
//
// leftUncommon and rightUncommon are the sets of revisions reachable from
// the respective parent but not the other (§6's revision_graph collaborator
// supplies these; this package only consumes the resulting sets).
func MarkMergeRoster(
	newRev marking.RevisionID,
	newRoster *roster.Roster,
	leftRoster *roster.Roster, leftMarking marking.Map, leftUncommon marking.Set,
	rightRoster *roster.Roster, rightMarking marking.Map, rightUncommon marking.Set,
) (marking.Map, error) {
	out := make(marking.Map, len(newRoster.NodeIDs()))

	for _, id := range newRoster.NodeIDs() {
		newNode, err := newRoster.GetNodeByID(id)
		if err != nil {
			return nil, errors.Wrapf(err, "merge: resolving node %d in merged roster", id)
		}

		var leftNode *roster.Node
		var lm marking.Marking
		if leftRoster.HasNodeByID(id) {
			leftNode, err = leftRoster.GetNodeByID(id)
			if err != nil {
				return nil, errors.Wrapf(err, "merge: resolving node %d in left parent", id)
			}
			lm = leftMarking[id]
		}

		var rightNode *roster.Node
		var rm marking.Marking
		if rightRoster.HasNodeByID(id) {
			rightNode, err = rightRoster.GetNodeByID(id)
			if err != nil {
				return nil, errors.Wrapf(err, "merge: resolving node %d in right parent", id)
			}
			rm = rightMarking[id]
		}

		mk, err := MarkMergedNode(newRev, newNode, leftNode, lm, leftUncommon, rightNode, rm, rightUncommon)
		if err != nil {
			return nil, err
		}
		out[id] = mk
	}

	return out, nil
}
