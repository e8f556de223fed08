package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

func rev(b byte) marking.RevisionID {
	var r marking.RevisionID
	r[0] = b
	return r
}

func content(b byte) hash.ContentHash {
	var h hash.ContentHash
	h[0] = b
	return h
}

func newRootedRoster(t *testing.T) (*roster.Roster, marking.Map, *roster.PermanentIDSource) {
	t.Helper()
	ids := roster.NewPermanentIDSource(1)
	r := roster.New()
	rootID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(rootID, rosterpath.Root()))
	m := marking.Map{rootID: marking.MarkNewNode(rev(0xAA), mustNode(t, r, rootID))}
	return r, m, ids
}

func mustNode(t *testing.T, r *roster.Roster, id roster.NodeID) *roster.Node {
	t.Helper()
	n, err := r.GetNodeByID(id)
	require.NoError(t, err)
	return n
}

func TestBuildSingleParentAddsFile(t *testing.T) {
	parent, parentMarking, ids := newRootedRoster(t)

	cs := changeset.New()
	cs.FilesAdded["foo"] = content(0x01)

	child, childMarking, err := BuildSingleParent(parent, parentMarking, cs, rev(0xBB), ids)
	require.NoError(t, err)

	node, err := child.GetNodeByPath(rosterpath.Parse("foo"))
	require.NoError(t, err)
	require.Equal(t, roster.File, node.Kind)
	require.Equal(t, content(0x01), node.Content)

	mk := childMarking[node.ID]
	require.Equal(t, rev(0xBB), mk.Birth)
	require.True(t, mk.Content.Contains(rev(0xBB)))
}

func TestBuildMergeUnifiesIndependentAdds(t *testing.T) {
	base, _, ids := newRootedRoster(t)

	// Both sides independently add a directory "shared" containing a file
	// "x", from the same base roster. After unification the two resulting
	// rosters must describe the same node ids.
	leftCS := changeset.New()
	leftCS.DirsAdded["shared"] = struct{}{}
	leftCS.FilesAdded["shared/x"] = content(0x01)

	rightCS := changeset.New()
	rightCS.DirsAdded["shared"] = struct{}{}
	rightCS.FilesAdded["shared/x"] = content(0x01)

	merged, err := BuildMerge(
		Side{Roster: base, ChangeSet: leftCS},
		Side{Roster: base, ChangeSet: rightCS},
		ids,
	)
	require.NoError(t, err)

	dirNode, err := merged.GetNodeByPath(rosterpath.Parse("shared"))
	require.NoError(t, err)
	require.True(t, dirNode.ID.IsPermanent())

	fileNode, err := merged.GetNodeByPath(rosterpath.Parse("shared/x"))
	require.NoError(t, err)
	require.True(t, fileNode.ID.IsPermanent())
	require.Equal(t, content(0x01), fileNode.Content)

	require.NoError(t, merged.CheckSane())
}

// TestBuildMergeMarkedNewNodesBornInMergeRevision exercises the marking
// half of a merge build (merge.MarkMergeRoster via BuildMergeMarked): a
// node absent from both parents is freshly born in the merge revision
// itself, so its marking must come from the neither-parent-has-it branch
// of Mark-merged-node (birth == the merge revision, every scalar marked
// {newRev}), mirroring MarkNewNode's single-parent counterpart.
func TestBuildMergeMarkedNewNodesBornInMergeRevision(t *testing.T) {
	base, baseMarking, ids := newRootedRoster(t)

	leftCS := changeset.New()
	leftCS.DirsAdded["shared"] = struct{}{}
	leftCS.FilesAdded["shared/x"] = content(0x01)

	rightCS := changeset.New()
	rightCS.DirsAdded["shared"] = struct{}{}
	rightCS.FilesAdded["shared/x"] = content(0x01)

	mergeRev := rev(0xDD)
	merged, mergedMarking, err := BuildMergeMarked(
		MergeSide{Roster: base, Marking: baseMarking, ChangeSet: leftCS, Uncommon: marking.NewSet(mergeRev)},
		MergeSide{Roster: base, Marking: baseMarking, ChangeSet: rightCS, Uncommon: marking.NewSet(mergeRev)},
		mergeRev, ids,
	)
	require.NoError(t, err)

	dirNode, err := merged.GetNodeByPath(rosterpath.Parse("shared"))
	require.NoError(t, err)
	dirMarking := mergedMarking[dirNode.ID]
	require.Equal(t, mergeRev, dirMarking.Birth)
	require.True(t, dirMarking.ParentName.Contains(mergeRev))

	fileNode, err := merged.GetNodeByPath(rosterpath.Parse("shared/x"))
	require.NoError(t, err)
	fileMarking := mergedMarking[fileNode.ID]
	require.Equal(t, mergeRev, fileMarking.Birth)
	require.True(t, fileMarking.Content.Contains(mergeRev))

	// The root, present on both sides and unchanged, must keep its
	// original birth and have its marks propagated rather than replaced.
	rootMarking := mergedMarking[merged.RootID()]
	require.Equal(t, baseMarking[base.RootID()].Birth, rootMarking.Birth)
}

func TestBuildMergeLeftNewRightAlreadyPermanent(t *testing.T) {
	leftBase, _, ids := newRootedRoster(t)

	// The right parent already converged on this path under a permanent id
	// (e.g. from earlier history); the left side must independently arrive
	// there via its own change set and pick up the right's existing id
	// rather than minting a fresh one.
	rightCS := changeset.New()
	rightCS.FilesAdded["shared.txt"] = content(0x03)
	rightParent, _, err := BuildSingleParent(leftBase, marking.Map{leftBase.RootID(): marking.MarkNewNode(rev(0xAA), mustNode(t, leftBase, leftBase.RootID()))}, rightCS, rev(0xCC), ids)
	require.NoError(t, err)
	existing, err := rightParent.GetNodeByPath(rosterpath.Parse("shared.txt"))
	require.NoError(t, err)
	require.True(t, existing.ID.IsPermanent())

	leftCS := changeset.New()
	leftCS.FilesAdded["shared.txt"] = content(0x03)

	merged, err := BuildMerge(
		Side{Roster: leftBase, ChangeSet: leftCS},
		Side{Roster: rightParent, ChangeSet: changeset.New()},
		ids,
	)
	require.NoError(t, err)

	node, err := merged.GetNodeByPath(rosterpath.Parse("shared.txt"))
	require.NoError(t, err)
	require.Equal(t, existing.ID, node.ID)
}
