// Package builder implements the roster builder of §4.5: orchestrating
// change-set application for both the single-parent (non-merge) case and
// the two-parent merge case, including the unification pass that
// reconciles the temporary ids the two sides of a merge assign
// independently into one shared permanent-id space.
//
// This is grounded on the teacher's reconcile/apply pairing (mutagen's
// pkg/synchronization/core/{reconcile,apply}.go build a merged Entry tree
// directly from ancestor/alpha/beta), generalized into this specification's
// two-phase "apply independently, then unify ids" construction, since this
// system's node identity (unlike mutagen's path-keyed entries) must survive
// across a merge.
package builder

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/merge"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// BuildSingleParent applies cs to a copy of the parent (roster, marking)
// pair, producing the child pair for a non-merge revision (§4.5,
// "Non-merge case"). Only one id source is involved, since no unification
// across branches is needed; callers typically pass a
// roster.PermanentIDSource seeded from the revision graph's node-id
// counter.
func BuildSingleParent(
	parentRoster *roster.Roster, parentMarking marking.Map,
	cs *changeset.ChangeSet, rev marking.RevisionID, ids roster.IDSource,
) (*roster.Roster, marking.Map, error) {
	r := parentRoster.Copy()
	m := parentMarking.Copy()

	adapter := merge.NewMarkedAdapter(r, ids, m, rev)
	if err := cs.Apply(adapter); err != nil {
		return nil, nil, errors.Wrap(err, "builder: applying change set")
	}

	if err := r.CheckSane(); err != nil {
		return nil, nil, errors.Wrap(err, "builder: resulting roster failed sanity check")
	}
	if err := marking.CheckSaneAgainst(r, adapter.Marking); err != nil {
		return nil, nil, errors.Wrap(err, "builder: resulting marking failed sanity check")
	}

	return r, adapter.Marking, nil
}

// Side bundles one parent's half of a merge build: the parent roster the
// change set applies against, and the change set carrying that parent's
// edits forward to the merge child.
type Side struct {
	Roster    *roster.Roster
	ChangeSet *changeset.ChangeSet
}

// MergeSide extends Side with the marking and uncommon-ancestor set needed
// to compute the merge child's marking map once its roster has been unified
// (§4.4's Mark-merge-roster). Uncommon is the set of revisions reachable
// from this parent but not the other; it is supplied by the caller, since
// computing it is the revision_graph collaborator's job (§6), not this
// package's.
type MergeSide struct {
	Roster    *roster.Roster
	Marking   marking.Map
	ChangeSet *changeset.ChangeSet
	Uncommon  marking.Set
}

// BuildMerge applies each side's change set to a copy of its parent roster
// using independently-numbered temporary ids, then unifies the two
// resulting rosters into a single roster addressed by permanent ids drawn
// from permanentIDs (§4.5). It returns the unified roster only; computing
// the merged marking map additionally requires both parents' uncommon-
// ancestor sets, which come from the revision_graph collaborator this
// package does not depend on. BuildMergeMarked wraps this function with
// that marking step for callers that have those sets in hand.
func BuildMerge(left, right Side, permanentIDs roster.IDSource) (*roster.Roster, error) {
	leftRoster := left.Roster.Copy()
	leftAdapter := merge.NewNewNodesAdapter(leftRoster, roster.NewTemporaryIDSource())
	if err := left.ChangeSet.Apply(leftAdapter); err != nil {
		return nil, errors.Wrap(err, "builder: applying left change set")
	}

	rightRoster := right.Roster.Copy()
	rightAdapter := merge.NewNewNodesAdapter(rightRoster, roster.NewTemporaryIDSource())
	if err := right.ChangeSet.Apply(rightAdapter); err != nil {
		return nil, errors.Wrap(err, "builder: applying right change set")
	}

	if err := Unify(leftRoster, leftAdapter.NewNodes, rightRoster, rightAdapter.NewNodes, permanentIDs); err != nil {
		return nil, err
	}

	if !leftRoster.Equal(rightRoster) {
		return nil, errors.New("builder: unification did not produce identical rosters on both sides (logic error)")
	}

	if err := leftRoster.CheckSane(); err != nil {
		return nil, errors.Wrap(err, "builder: unified roster failed sanity check")
	}

	return leftRoster, nil
}

// BuildMergeMarked performs a full two-parent merge build (§2's "building
// the roster for a merge revision" control flow, steps 2-4): it unifies the
// two sides' independently change-set-applied rosters via BuildMerge, then
// computes the merge child's marking map by walking the unified roster
// against both parents with merge.MarkMergeRoster (§4.4). This is the
// merge-case counterpart to BuildSingleParent, which does the equivalent
// single-parent apply-and-mark in one step via the marked adapter.
func BuildMergeMarked(left, right MergeSide, rev marking.RevisionID, permanentIDs roster.IDSource) (*roster.Roster, marking.Map, error) {
	merged, err := BuildMerge(
		Side{Roster: left.Roster, ChangeSet: left.ChangeSet},
		Side{Roster: right.Roster, ChangeSet: right.ChangeSet},
		permanentIDs,
	)
	if err != nil {
		return nil, nil, err
	}

	mk, err := merge.MarkMergeRoster(
		rev, merged,
		left.Roster, left.Marking, left.Uncommon,
		right.Roster, right.Marking, right.Uncommon,
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "builder: computing merged marking")
	}

	if err := marking.CheckSaneAgainst(merged, mk); err != nil {
		return nil, nil, errors.Wrap(err, "builder: merged marking failed sanity check")
	}

	return merged, mk, nil
}
