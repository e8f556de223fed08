package rosterio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

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

func buildSample(t *testing.T) (*roster.Roster, marking.Map) {
	t.Helper()
	ids := roster.NewPermanentIDSource(1)
	r := roster.New()

	rootID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(rootID, rosterpath.Root()))
	root, err := r.GetNodeByID(rootID)
	require.NoError(t, err)

	dirID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(dirID, rosterpath.Parse("docs")))
	dirNode, err := r.GetNodeByID(dirID)
	require.NoError(t, err)

	fileID := r.CreateFileNode(content(0x01), ids)
	require.NoError(t, r.AttachNode(fileID, rosterpath.Parse("docs/readme.txt")))
	fileNode, err := r.GetNodeByID(fileID)
	require.NoError(t, err)
	require.NoError(t, r.SetAttr(rosterpath.Parse("docs/readme.txt"), "executable", roster.AttrValue{Live: true, Value: "false"}))
	require.NoError(t, r.ClearAttr(rosterpath.Parse("docs/readme.txt"), "mode"))
	fileNode, err = r.GetNodeByID(fileID)
	require.NoError(t, err)

	m := marking.Map{
		rootID: marking.MarkNewNode(rev(0xAA), root),
		dirID:  marking.MarkNewNode(rev(0xAA), dirNode),
		fileID: marking.MarkNewNode(rev(0xAA), fileNode),
	}
	return r, m
}

func TestSerializeParseRoundTrip(t *testing.T) {
	r, m := buildSample(t)

	serialized, err := Serialize(r, m)
	require.NoError(t, err)

	parsedRoster, parsedMarking, err := Parse(serialized)
	require.NoError(t, err)

	require.True(t, r.Equal(parsedRoster))
	if diff := cmp.Diff(m, parsedMarking); diff != "" {
		t.Fatalf("marking round trip mismatch (-want +got):\n%s", diff)
	}

	reserialized, err := Serialize(parsedRoster, parsedMarking)
	require.NoError(t, err)
	require.Equal(t, serialized, reserialized)
}

func TestParsePreservesNodeIdentity(t *testing.T) {
	r, m := buildSample(t)
	serialized, err := Serialize(r, m)
	require.NoError(t, err)

	parsedRoster, _, err := Parse(serialized)
	require.NoError(t, err)

	node, err := parsedRoster.GetNodeByPath(rosterpath.Parse("docs/readme.txt"))
	require.NoError(t, err)
	original, err := r.GetNodeByPath(rosterpath.Parse("docs/readme.txt"))
	require.NoError(t, err)
	require.Equal(t, original.ID, node.ID)
}

func TestSerializeFailsWithoutMarking(t *testing.T) {
	r, _ := buildSample(t)
	_, err := Serialize(r, marking.Map{})
	require.Error(t, err)
}
