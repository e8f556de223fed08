package manifestio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

func content(b byte) hash.ContentHash {
	var h hash.ContentHash
	h[0] = b
	return h
}

func buildSampleRoster(t *testing.T) *roster.Roster {
	t.Helper()
	ids := roster.NewPermanentIDSource(1)
	r := roster.New()

	rootID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(rootID, rosterpath.Root()))

	dirID := r.CreateDirNode(ids)
	require.NoError(t, r.AttachNode(dirID, rosterpath.Parse("docs")))

	fileID := r.CreateFileNode(content(0x01), ids)
	require.NoError(t, r.AttachNode(fileID, rosterpath.Parse("docs/readme.txt")))
	require.NoError(t, r.SetAttr(rosterpath.Parse("docs/readme.txt"), "executable", roster.AttrValue{Live: true, Value: "false"}))

	return r
}

func TestSerializeOmitsIdentAndMarking(t *testing.T) {
	r := buildSampleRoster(t)

	out := string(Serialize(r))
	require.NotContains(t, out, "ident")
	require.NotContains(t, out, "birth")
	require.NotContains(t, out, "path_mark")
}

func TestParseRoundTripsStructure(t *testing.T) {
	r := buildSampleRoster(t)
	serialized := Serialize(r)

	parsed, err := Parse(serialized, roster.NewPermanentIDSource(1))
	require.NoError(t, err)

	node, err := parsed.GetNodeByPath(rosterpath.Parse("docs/readme.txt"))
	require.NoError(t, err)
	require.Equal(t, roster.File, node.Kind)
	require.Equal(t, content(0x01), node.Content)
	require.Equal(t, "false", node.Attrs["executable"].Value)

	require.Equal(t, Serialize(parsed), serialized)
}

func TestHashIsStableAcrossEquivalentRosters(t *testing.T) {
	a := buildSampleRoster(t)
	b := buildSampleRoster(t)

	require.Equal(t, Hash(a, hash.AlgorithmBLAKE2b160), Hash(b, hash.AlgorithmBLAKE2b160))
}

func TestHashDiffersWhenContentDiffers(t *testing.T) {
	a := buildSampleRoster(t)

	ids := roster.NewPermanentIDSource(1)
	b := roster.New()
	rootID := b.CreateDirNode(ids)
	require.NoError(t, b.AttachNode(rootID, rosterpath.Root()))
	dirID := b.CreateDirNode(ids)
	require.NoError(t, b.AttachNode(dirID, rosterpath.Parse("docs")))
	fileID := b.CreateFileNode(content(0x02), ids)
	require.NoError(t, b.AttachNode(fileID, rosterpath.Parse("docs/readme.txt")))

	require.NotEqual(t, Hash(a, hash.AlgorithmBLAKE2b160), Hash(b, hash.AlgorithmBLAKE2b160))
}

func TestParseRejectsUnknownStanza(t *testing.T) {
	_, err := Parse([]byte("symlink \"oops\"\n"), roster.NewPermanentIDSource(1))
	require.Error(t, err)
}
