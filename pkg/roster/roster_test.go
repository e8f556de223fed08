package roster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

func newRosterWithRoot(t *testing.T) (*Roster, *TemporaryIDSource) {
	t.Helper()
	r := New()
	ids := NewTemporaryIDSource()
	rootID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(rootID, rosterpath.Root()))
	return r, ids
}

func TestEmptyRosterIsSane(t *testing.T) {
	r := New()
	require.NoError(t, r.CheckSane())
	require.False(t, r.HasRoot())
}

func TestCreateAttachDetachDrop(t *testing.T) {
	r, ids := newRosterWithRoot(t)

	fileID := r.CreateFileNode(hash.Null, ids)
	require.True(t, r.IsDetached(fileID))

	p := rosterpath.Parse("a.txt")
	require.NoError(t, r.AttachNode(fileID, p))
	require.False(t, r.IsDetached(fileID))
	require.NoError(t, r.CheckSane())

	got, err := r.GetNodeByPath(p)
	require.NoError(t, err)
	require.Equal(t, fileID, got.ID)

	gotPath, err := r.GetPath(fileID)
	require.NoError(t, err)
	require.True(t, rosterpath.Equal(p, gotPath))

	detachedID, err := r.DetachNode(p)
	require.NoError(t, err)
	require.Equal(t, fileID, detachedID)
	require.True(t, r.IsDetached(fileID))

	_, err = r.GetPath(fileID)
	require.ErrorIs(t, err, ErrNodeDetached)

	require.NoError(t, r.DropDetachedNode(fileID))
	require.False(t, r.HasNodeByID(fileID))
	require.NoError(t, r.CheckSane())
}

func TestReattachToSameLocationRejected(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	fileID := r.CreateFileNode(hash.Null, ids)
	p := rosterpath.Parse("a.txt")
	require.NoError(t, r.AttachNode(fileID, p))

	_, err := r.DetachNode(p)
	require.NoError(t, err)

	err = r.AttachNode(fileID, p)
	require.ErrorIs(t, err, ErrRecentlyDetachedHere)

	// Attaching elsewhere is fine, and clears the restriction.
	other := rosterpath.Parse("b.txt")
	require.NoError(t, r.AttachNode(fileID, other))

	// Detaching again records the new location, so the same rule applies.
	_, err = r.DetachNode(other)
	require.NoError(t, err)
	require.ErrorIs(t, r.AttachNode(fileID, other), ErrRecentlyDetachedHere)
}

func TestAttachRejectsOccupiedPath(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	a := r.CreateFileNode(hash.Null, ids)
	b := r.CreateFileNode(hash.Null, ids)
	p := rosterpath.Parse("a.txt")
	require.NoError(t, r.AttachNode(a, p))
	err := r.AttachNode(b, p)
	require.ErrorIs(t, err, ErrPathOccupied)
}

func TestAttachRejectsMissingParent(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	f := r.CreateFileNode(hash.Null, ids)
	err := r.AttachNode(f, rosterpath.Parse("no/such/dir/a.txt"))
	require.ErrorIs(t, err, ErrParentMissing)
}

func TestAttachRejectsParentNotDirectory(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	f := r.CreateFileNode(hash.Null, ids)
	require.NoError(t, r.AttachNode(f, rosterpath.Parse("a.txt")))

	g := r.CreateFileNode(hash.Null, ids)
	err := r.AttachNode(g, rosterpath.Parse("a.txt/b.txt"))
	require.ErrorIs(t, err, ErrParentNotDirectory)
}

func TestDropNonEmptyDirectoryRejected(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	dirID := r.CreateDirNode(ids)
	dirPath := rosterpath.Parse("dir")
	require.NoError(t, r.AttachNode(dirID, dirPath))

	fileID := r.CreateFileNode(hash.Null, ids)
	require.NoError(t, r.AttachNode(fileID, dirPath.Child("f.txt")))

	detachedID, err := r.DetachNode(dirPath)
	require.NoError(t, err)
	err = r.DropDetachedNode(detachedID)
	require.ErrorIs(t, err, ErrDirectoryNotEmpty)
}

func TestCannotDetachRoot(t *testing.T) {
	r, _ := newRosterWithRoot(t)
	_, err := r.DetachNode(rosterpath.Root())
	require.ErrorIs(t, err, ErrCannotDetachRoot)
}

func TestApplyDelta(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	old := hash.AlgorithmBLAKE2b160.Sum([]byte("one"))
	fresh := hash.AlgorithmBLAKE2b160.Sum([]byte("two"))

	fileID := r.CreateFileNode(old, ids)
	p := rosterpath.Parse("a.txt")
	require.NoError(t, r.AttachNode(fileID, p))

	err := r.ApplyDelta(p, fresh, fresh)
	require.ErrorIs(t, err, ErrContentMismatch)

	err = r.ApplyDelta(p, old, old)
	require.ErrorIs(t, err, ErrNoOpDelta)

	require.NoError(t, r.ApplyDelta(p, old, fresh))
	node, err := r.GetNodeByPath(p)
	require.NoError(t, err)
	require.Equal(t, fresh, node.Content)
}

func TestApplyDeltaRejectsDirectory(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	dirID := r.CreateDirNode(ids)
	p := rosterpath.Parse("dir")
	require.NoError(t, r.AttachNode(dirID, p))

	err := r.ApplyDelta(p, hash.Null, hash.Null)
	require.ErrorIs(t, err, ErrNotAFile)
}

func TestSetAndClearAttr(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	fileID := r.CreateFileNode(hash.Null, ids)
	p := rosterpath.Parse("a.txt")
	require.NoError(t, r.AttachNode(fileID, p))

	err := r.SetAttr(p, "executable", AttrValue{Live: false, Value: "true"})
	require.ErrorIs(t, err, errDormantAttrHasValue)

	require.NoError(t, r.SetAttr(p, "executable", AttrValue{Live: true, Value: "true"}))
	node, err := r.GetNodeByPath(p)
	require.NoError(t, err)
	require.Equal(t, []AttrKey{"executable"}, node.LiveAttrs())

	require.NoError(t, r.ClearAttr(p, "executable"))
	node, err = r.GetNodeByPath(p)
	require.NoError(t, err)
	require.Empty(t, node.LiveAttrs())
	require.Equal(t, []AttrKey{"executable"}, node.AllAttrKeys())

	err = r.ClearAttr(p, "missing")
	require.ErrorIs(t, err, ErrNoSuchAttribute)
}

func TestCheckSaneDetectsOrphan(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	fileID := r.CreateFileNode(hash.Null, ids)
	require.NoError(t, r.AttachNode(fileID, rosterpath.Parse("a.txt")))

	// Manually corrupt the roster to simulate an orphan: remove the child
	// link from root without removing the node itself.
	root := r.nodes[r.rootID]
	delete(root.Children, "a.txt")

	err := r.CheckSane()
	require.Error(t, err)
	var invErr *InvariantError
	require.ErrorAs(t, err, &invErr)
}

func TestCheckSaneRejectsDetachedNodes(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	fileID := r.CreateFileNode(hash.Null, ids)
	require.NoError(t, r.AttachNode(fileID, rosterpath.Parse("a.txt")))
	_, err := r.DetachNode(rosterpath.Parse("a.txt"))
	require.NoError(t, err)

	err = r.CheckSane()
	require.Error(t, err)
}

func TestCopyIsIndependent(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	fileID := r.CreateFileNode(hash.Null, ids)
	p := rosterpath.Parse("a.txt")
	require.NoError(t, r.AttachNode(fileID, p))

	cp := r.Copy()
	require.True(t, r.Equal(cp))

	fresh := hash.AlgorithmBLAKE2b160.Sum([]byte("changed"))
	require.NoError(t, cp.ApplyDelta(p, hash.Null, fresh))
	require.False(t, r.Equal(cp))

	orig, err := r.GetNodeByPath(p)
	require.NoError(t, err)
	require.Equal(t, hash.Null, orig.Content)
}

func TestWalkOrdersChildrenByName(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		fileID := r.CreateFileNode(hash.Null, ids)
		require.NoError(t, r.AttachNode(fileID, rosterpath.Parse(name)))
	}

	var visited []string
	r.Walk(func(p rosterpath.Path, n *Node) {
		visited = append(visited, p.String())
	})
	require.Equal(t, []string{"", "a.txt", "b.txt", "c.txt"}, visited)
}

func TestAllPaths(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	dirID := r.CreateDirNode(ids)
	dirPath := rosterpath.Parse("dir")
	require.NoError(t, r.AttachNode(dirID, dirPath))
	fileID := r.CreateFileNode(hash.Null, ids)
	require.NoError(t, r.AttachNode(fileID, dirPath.Child("nested.txt")))

	paths := r.AllPaths()
	require.Len(t, paths, 3)
}

func TestBaseAdapterMatchesRoster(t *testing.T) {
	r, ids := newRosterWithRoot(t)
	adapter := NewBaseAdapter(r, ids)

	fileID := adapter.CreateFileNode(hash.Null)
	p := rosterpath.Parse("a.txt")
	require.NoError(t, adapter.AttachNode(fileID, p))
	require.True(t, r.HasNodeByPath(p))

	var tree EditableTree = adapter
	_, err := tree.DetachNode(p)
	require.NoError(t, err)
	require.True(t, r.IsDetached(fileID))
}
