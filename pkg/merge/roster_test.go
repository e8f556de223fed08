package merge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// buildRootedRoster builds a roster holding only a root directory under id
// 1, already attached.
func buildRootedRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r := roster.New()
	require.NoError(t, r.CreateDirNodeWithID(1))
	require.NoError(t, r.AttachNode(1, rosterpath.Root()))
	return r
}

// TestMarkMergeRosterCleanRename wires MarkMergedScalar/MarkMergedNode
// together through MarkMergeRoster for specification §8 scenario 4: left
// parent holds the file under "bar" (having renamed it from "foo" in its
// own history), right parent still holds it under "foo" untouched, and the
// merge's unified roster keeps "bar". The resulting marking must carry
// parent+name mark {left} (propagated, since right's unchanged mark {old}
// lies entirely in common history) and content mark {old} (content never
// changed on either side).
func TestMarkMergeRosterCleanRename(t *testing.T) {
	old := rev(0x01)
	left := rev(0x02)
	newRev := rev(0x03)

	var content hash.ContentHash
	content[0] = 0xAA

	leftRoster := buildRootedRoster(t)
	require.NoError(t, leftRoster.CreateFileNodeWithID(2, content))
	require.NoError(t, leftRoster.AttachNode(2, rosterpath.Root().Child("bar")))

	rightRoster := buildRootedRoster(t)
	require.NoError(t, rightRoster.CreateFileNodeWithID(2, content))
	require.NoError(t, rightRoster.AttachNode(2, rosterpath.Root().Child("foo")))

	newRoster := buildRootedRoster(t)
	require.NoError(t, newRoster.CreateFileNodeWithID(2, content))
	require.NoError(t, newRoster.AttachNode(2, rosterpath.Root().Child("bar")))

	rootMarking := marking.MarkNewNode(old, mustGetNode(t, leftRoster, 1))
	leftMarking := marking.Map{
		1: rootMarking,
		2: marking.Marking{
			Birth:      old,
			ParentName: marking.NewSet(left),
			Content:    marking.NewSet(old),
			Attrs:      map[roster.AttrKey]marking.Set{},
		},
	}
	rightMarking := marking.Map{
		1: rootMarking,
		2: marking.Marking{
			Birth:      old,
			ParentName: marking.NewSet(old),
			Content:    marking.NewSet(old),
			Attrs:      map[roster.AttrKey]marking.Set{},
		},
	}

	leftUncommon := marking.NewSet(left)
	rightUncommon := marking.NewSet()

	got, err := MarkMergeRoster(newRev, newRoster, leftRoster, leftMarking, leftUncommon, rightRoster, rightMarking, rightUncommon)
	require.NoError(t, err)

	mk := got[2]
	require.True(t, mk.ParentName.Equal(marking.NewSet(left)), "parent+name mark: got %v, want {left}", mk.ParentName)
	require.True(t, mk.Content.Equal(marking.NewSet(old)), "content mark: got %v, want {old}", mk.Content)
}

func mustGetNode(t *testing.T, r *roster.Roster, id roster.NodeID) *roster.Node {
	t.Helper()
	n, err := r.GetNodeByID(id)
	require.NoError(t, err)
	return n
}
