package rosterdelta

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/builder"
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
	root, err := r.GetNodeByID(rootID)
	require.NoError(t, err)
	m := marking.Map{rootID: marking.MarkNewNode(rev(0xAA), root)}
	return r, m, ids
}

func TestMakeSimpleModeRoundTrip(t *testing.T) {
	from, fromMarking, ids := newRootedRoster(t)

	cs := changeset.New()
	cs.DirsAdded["docs"] = struct{}{}
	cs.FilesAdded["docs/readme.txt"] = content(0x01)
	cs.AttrsSet[changeset.AttrKey{Path: rosterpath.Parse("docs/readme.txt"), Key: "executable"}] = "false"

	to, toMarking, err := builder.BuildSingleParent(from, fromMarking, cs, rev(0xBB), ids)
	require.NoError(t, err)

	delta := Make(from, fromMarking, to, toMarking, nil)
	require.False(t, delta.IsEmpty())

	serialized := delta.Serialize()
	parsed, err := Parse(serialized)
	require.NoError(t, err)
	if diff := cmp.Diff(delta, parsed); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	gotRoster := from.Copy()
	gotMarking := fromMarking.Copy()
	require.NoError(t, delta.Apply(gotRoster, gotMarking))

	require.True(t, gotRoster.Equal(to))
	require.NoError(t, gotRoster.CheckSane())

	docsNode, err := to.GetNodeByPath(rosterpath.Parse("docs"))
	require.NoError(t, err)
	fileNode, err := to.GetNodeByPath(rosterpath.Parse("docs/readme.txt"))
	require.NoError(t, err)

	require.Equal(t, toMarking[docsNode.ID], gotMarking[docsNode.ID])
	require.Equal(t, toMarking[fileNode.ID], gotMarking[fileNode.ID])
}

func TestTryGetContentAndMarking(t *testing.T) {
	from, fromMarking, ids := newRootedRoster(t)

	cs := changeset.New()
	cs.FilesAdded["a.txt"] = content(0x01)
	to, toMarking, err := builder.BuildSingleParent(from, fromMarking, cs, rev(0xBB), ids)
	require.NoError(t, err)

	addedNode, err := to.GetNodeByPath(rosterpath.Parse("a.txt"))
	require.NoError(t, err)

	delCS := changeset.New()
	delCS.NodesDeleted["a.txt"] = struct{}{}
	deleted, deletedMarking, err := builder.BuildSingleParent(to, toMarking, delCS, rev(0xCC), ids)
	require.NoError(t, err)

	addDelta := Make(from, fromMarking, to, toMarking, nil)
	gotContent, ok := addDelta.TryGetContent(addedNode.ID)
	require.True(t, ok)
	require.Equal(t, content(0x01), gotContent)

	gotMarking, ok := addDelta.TryGetMarking(addedNode.ID)
	require.True(t, ok)
	require.Equal(t, toMarking[addedNode.ID], gotMarking)

	_, ok = addDelta.TryGetContent(from.RootID())
	require.False(t, ok)

	delDelta := Make(to, toMarking, deleted, deletedMarking, nil)
	gotContent, ok = delDelta.TryGetContent(addedNode.ID)
	require.True(t, ok)
	require.True(t, gotContent.IsNull())

	_, ok = delDelta.TryGetMarking(addedNode.ID)
	require.False(t, ok)
}

func TestMakeMergeEdgeModeRestrictsStructuralStanzas(t *testing.T) {
	from, fromMarking, ids := newRootedRoster(t)

	cs := changeset.New()
	cs.FilesAdded["tracked.txt"] = content(0x01)
	cs.FilesAdded["untracked.txt"] = content(0x02)
	to, toMarking, err := builder.BuildSingleParent(from, fromMarking, cs, rev(0xBB), ids)
	require.NoError(t, err)

	onlyTracked := changeset.New()
	onlyTracked.FilesAdded["tracked.txt"] = content(0x01)
	touched, err := TouchedNodeIDs(onlyTracked, from, to)
	require.NoError(t, err)

	delta := Make(from, fromMarking, to, toMarking, touched)

	trackedNode, err := to.GetNodeByPath(rosterpath.Parse("tracked.txt"))
	require.NoError(t, err)
	untrackedNode, err := to.GetNodeByPath(rosterpath.Parse("untracked.txt"))
	require.NoError(t, err)

	_, trackedAdded := delta.AddedFiles[trackedNode.ID]
	require.True(t, trackedAdded)
	_, untrackedAdded := delta.AddedFiles[untrackedNode.ID]
	require.False(t, untrackedAdded)

	// Marking stanzas are unrestricted by touched: both new files' marks
	// differ from their (nonexistent) entry in fromMarking, so both appear.
	_, trackedMarked := delta.Markings[trackedNode.ID]
	require.True(t, trackedMarked)
	_, untrackedMarked := delta.Markings[untrackedNode.ID]
	require.True(t, untrackedMarked)
}
