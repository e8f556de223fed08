package restriction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

func p(s string) rosterpath.Path {
	return rosterpath.Parse(s)
}

func content(b byte) hash.ContentHash {
	var h hash.ContentHash
	h[0] = b
	return h
}

func TestEmptyRestrictionMatchesEverything(t *testing.T) {
	r := Empty()
	require.True(t, r.Matches(p("a/b/c")))
	require.True(t, r.Matches(rosterpath.Root()))
}

func TestMatchesNearestIncludeAndExclude(t *testing.T) {
	r := New([]rosterpath.Path{p("docs")}, []rosterpath.Path{p("docs/private")}, -1)

	require.True(t, r.Matches(p("docs/readme.txt")))
	require.False(t, r.Matches(p("docs/private/secret.txt")))
	require.False(t, r.Matches(p("other")))
	require.True(t, r.Matches(rosterpath.Root()))
}

func TestMatchesRespectsDepthLimit(t *testing.T) {
	r := New([]rosterpath.Path{p("docs")}, nil, 1)

	require.True(t, r.Matches(p("docs/a")))
	require.False(t, r.Matches(p("docs/a/b")))
	require.False(t, r.Matches(p("docs/a/b/c")))
}

func TestImplicitlyIncludedAncestorsOfIncludes(t *testing.T) {
	r := New([]rosterpath.Path{p("a/b/c")}, nil, -1)

	require.True(t, r.ImplicitlyIncluded(p("a")))
	require.True(t, r.ImplicitlyIncluded(p("a/b")))
	require.False(t, r.Matches(p("a")))
	require.True(t, r.InSplit(p("a")))
	require.True(t, r.InSplit(p("a/b/c/d")))
}

func TestNewFromGlobsExpandsAndRejectsEmptyMatch(t *testing.T) {
	candidates := []rosterpath.Path{p("docs/a.txt"), p("docs/b.md"), p("src/main.go")}

	r, err := NewFromGlobs([]string{"docs/*.txt"}, nil, -1, candidates)
	require.NoError(t, err)
	require.True(t, r.Matches(p("docs/a.txt")))
	require.False(t, r.Matches(p("docs/b.md")))

	_, err = NewFromGlobs([]string{"nope/*"}, nil, -1, candidates)
	require.Error(t, err)
}

func TestCheckPathsExistFailsWithNoRosters(t *testing.T) {
	r := New([]rosterpath.Path{p("docs")}, nil, -1)
	err := r.CheckPathsExist()
	require.Error(t, err)
}

func TestSplitKeepsRenameGroupedWithDelta(t *testing.T) {
	cs := changeset.New()
	cs.NodesRenamed["docs/old.txt"] = "archive/new.txt"
	cs.DeltasApplied["archive/new.txt"] = changeset.Delta{Old: content(0x01), New: content(0x02)}
	cs.FilesAdded["other/unrelated.txt"] = content(0x03)

	r := New([]rosterpath.Path{p("archive")}, nil, -1)

	included, excluded, err := Split(cs, r, true)
	require.NoError(t, err)

	require.Equal(t, "archive/new.txt", included.NodesRenamed["docs/old.txt"])
	require.Contains(t, included.DeltasApplied, "archive/new.txt")
	require.NotContains(t, excluded.NodesRenamed, "docs/old.txt")

	require.Contains(t, excluded.FilesAdded, "other/unrelated.txt")
}

func TestSplitRejectsExclusionWithoutSingleParent(t *testing.T) {
	cs := changeset.New()
	cs.FilesAdded["secret.txt"] = content(0x01)

	r := New([]rosterpath.Path{p("public")}, nil, -1)

	_, _, err := Split(cs, r, false)
	require.ErrorIs(t, err, ErrExclusionRequiresSingleParent)
}

func TestSplitAllowsExclusionWithSingleParent(t *testing.T) {
	cs := changeset.New()
	cs.FilesAdded["secret.txt"] = content(0x01)
	cs.FilesAdded["public/readme.txt"] = content(0x02)

	r := New([]rosterpath.Path{p("public")}, nil, -1)

	included, excluded, err := Split(cs, r, true)
	require.NoError(t, err)
	require.Contains(t, included.FilesAdded, "public/readme.txt")
	require.Contains(t, excluded.FilesAdded, "secret.txt")
}
