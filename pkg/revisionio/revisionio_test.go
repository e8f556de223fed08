package revisionio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/manifestio"
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

func newRootedRoster(t *testing.T) *roster.Roster {
	t.Helper()
	ids := roster.NewPermanentIDSource(1)
	r := roster.New()
	rootID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(rootID, rosterpath.Root()))
	return r
}

func TestSerializeParseSingleEdgeRoundTrip(t *testing.T) {
	cs := changeset.New()
	cs.FilesAdded["readme.txt"] = content(0x01)

	original := &Revision{
		NewManifest: content(0xEE),
		Edges: []Edge{
			{OldRevision: rev(0xAA), ChangeSet: cs},
		},
	}

	data, err := Serialize(original)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	if diff := cmp.Diff(original, parsed); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeParseMergeRoundTrip(t *testing.T) {
	leftCS := changeset.New()
	leftCS.FilesAdded["left.txt"] = content(0x01)

	rightCS := changeset.New()
	rightCS.FilesAdded["right.txt"] = content(0x02)

	original := &Revision{
		NewManifest: content(0xEE),
		Edges: []Edge{
			{OldRevision: rev(0xBB), ChangeSet: rightCS},
			{OldRevision: rev(0xAA), ChangeSet: leftCS},
		},
	}

	data, err := Serialize(original)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, parsed.Edges, 2)

	// Serialize sorts edges by old-revision hex, so re-serializing the
	// parsed result must be byte-identical regardless of input order.
	reserialized, err := Serialize(parsed)
	require.NoError(t, err)
	require.Equal(t, data, reserialized)
}

func TestSerializeRejectsWrongEdgeCount(t *testing.T) {
	_, err := Serialize(&Revision{NewManifest: content(0xEE)})
	require.ErrorIs(t, err, ErrWrongEdgeCount)

	_, err = Serialize(&Revision{
		NewManifest: content(0xEE),
		Edges: []Edge{
			{OldRevision: rev(0xAA), ChangeSet: changeset.New()},
			{OldRevision: rev(0xBB), ChangeSet: changeset.New()},
			{OldRevision: rev(0xCC), ChangeSet: changeset.New()},
		},
	})
	require.ErrorIs(t, err, ErrWrongEdgeCount)
}

func TestVerifyEdgesAcceptsMatchingManifest(t *testing.T) {
	base := newRootedRoster(t)

	cs := changeset.New()
	cs.FilesAdded["readme.txt"] = content(0x01)

	resolved := base.Copy()
	require.NoError(t, cs.Apply(roster.NewBaseAdapter(resolved, roster.NewTemporaryIDSource())))

	revision := &Revision{
		NewManifest: manifestio.Hash(resolved, hash.AlgorithmBLAKE2b160),
		Edges: []Edge{
			{OldRevision: rev(0xAA), ChangeSet: cs},
		},
	}

	err := VerifyEdges(revision, hash.AlgorithmBLAKE2b160, func(marking.RevisionID) (*roster.Roster, error) {
		return base.Copy(), nil
	})
	require.NoError(t, err)
}

func TestVerifyEdgesRejectsMismatchedManifest(t *testing.T) {
	base := newRootedRoster(t)

	cs := changeset.New()
	cs.FilesAdded["readme.txt"] = content(0x01)

	revision := &Revision{
		NewManifest: content(0xFF),
		Edges: []Edge{
			{OldRevision: rev(0xAA), ChangeSet: cs},
		},
	}

	err := VerifyEdges(revision, hash.AlgorithmBLAKE2b160, func(marking.RevisionID) (*roster.Roster, error) {
		return base.Copy(), nil
	})
	require.Error(t, err)
}
