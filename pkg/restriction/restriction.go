// Package restriction implements the Restriction component of
// specification §4.7: a path-set predicate built from an include list, an
// exclude list, and a depth limit, used to split a change set into
// included/excluded halves for partial commits (§4.3, "Restricted
// csets").
//
// Grounded on the teacher's gitignore-style pattern matcher
// (mutagen's pkg/synchronization/core/ignore.go and the core/ignore
// subpackage use github.com/bmatcuk/doublestar/v4 to expand glob patterns
// into path matches for inclusion/exclusion during a scan); this package
// keeps the specification's literal ancestor/depth semantics as the
// ground truth (Matches) and offers doublestar glob expansion only as
// construction-time sugar (NewFromGlobs) for building the literal
// include/exclude path lists, mirroring how the teacher's ignore patterns
// are expanded against a concrete directory listing rather than evaluated
// structurally against the tree.
package restriction

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Restriction is an include/exclude path-set predicate with an optional
// depth limit. The zero value (via Empty) matches every path.
type Restriction struct {
	includes []rosterpath.Path
	excludes []rosterpath.Path
	depth    int
}

// Empty returns the restriction that matches everything, the specified
// behavior for a restriction with no includes or excludes.
func Empty() *Restriction {
	return &Restriction{depth: -1}
}

// New builds a restriction from literal include/exclude paths and a depth
// limit (negative for unlimited). CheckPathsExist should be
// called separately against the relevant roster(s) unless the caller
// knows the paths are legitimately absent from both (e.g. restricting a
// working-copy-only path).
func New(includes, excludes []rosterpath.Path, depth int) *Restriction {
	return &Restriction{
		includes: append([]rosterpath.Path(nil), includes...),
		excludes: append([]rosterpath.Path(nil), excludes...),
		depth:    depth,
	}
}

// NewFromGlobs expands glob patterns (doublestar syntax: "**/*.txt")
// against candidates — typically the union of AllPaths() from the "from"
// and "to" rosters being restricted — and builds a Restriction from
// whichever candidate paths each pattern matches. An include/exclude
// pattern that matches nothing is an error, the glob-layer equivalent of
// the literal-path existence check New's callers perform by hand.
func NewFromGlobs(includeGlobs, excludeGlobs []string, depth int, candidates []rosterpath.Path) (*Restriction, error) {
	includes, err := expandGlobs(includeGlobs, candidates)
	if err != nil {
		return nil, errors.Wrap(err, "restriction: expanding include globs")
	}
	excludes, err := expandGlobs(excludeGlobs, candidates)
	if err != nil {
		return nil, errors.Wrap(err, "restriction: expanding exclude globs")
	}
	return New(includes, excludes, depth), nil
}

func expandGlobs(globs []string, candidates []rosterpath.Path) ([]rosterpath.Path, error) {
	var matched []rosterpath.Path
	for _, g := range globs {
		found := false
		for _, c := range candidates {
			ok, err := doublestar.Match(g, c.String())
			if err != nil {
				return nil, errors.Wrapf(err, "invalid glob pattern %q", g)
			}
			if ok {
				matched = append(matched, c)
				found = true
			}
		}
		if !found {
			return nil, errors.Errorf("glob pattern %q matched no path", g)
		}
	}
	return matched, nil
}

// IsEmpty reports whether r has no includes and no excludes, the "matches
// everything" case.
func (r *Restriction) IsEmpty() bool {
	return len(r.includes) == 0 && len(r.excludes) == 0
}

// Matches reports whether p is selected by the restriction (§4.7): an
// empty restriction matches everything; the root is always implicitly
// matched (Design Notes, "Restriction and the root"); otherwise p matches
// iff some include path is a non-strict ancestor of p, no exclude path
// that is a non-strict ancestor of p is nearer to p than the nearest
// matching include path, and p's depth below that nearest include does
// not exceed the depth limit (unlimited when the limit is negative).
func (r *Restriction) Matches(p rosterpath.Path) bool {
	if r.IsEmpty() || p.IsRoot() {
		return true
	}

	bestIncludeDepth := -1
	found := false
	for _, inc := range r.includes {
		if rosterpath.IsAncestor(inc, p) {
			d := inc.Depth()
			if !found || d > bestIncludeDepth {
				bestIncludeDepth = d
				found = true
			}
		}
	}
	if !found {
		return false
	}

	for _, exc := range r.excludes {
		if rosterpath.IsAncestor(exc, p) && exc.Depth() > bestIncludeDepth {
			return false
		}
	}

	if r.depth >= 0 && p.Depth()-bestIncludeDepth > r.depth {
		return false
	}
	return true
}

// ImplicitlyIncluded reports whether p must be treated as included solely
// because it is a (non-strict) ancestor of one of the restriction's own
// include paths — the "ancestors of included paths are implicitly
// included" rule (§4.7) that keeps a restricted change set applicable
// (every included node's parent directory must itself be reachable).
func (r *Restriction) ImplicitlyIncluded(p rosterpath.Path) bool {
	if r.IsEmpty() {
		return true
	}
	for _, inc := range r.includes {
		if rosterpath.IsAncestor(p, inc) {
			return true
		}
	}
	return false
}

// InSplit reports whether p belongs on the "included" side of a change-set
// split: either it is directly matched by the restriction, or it is an
// implicit ancestor of an include path.
func (r *Restriction) InSplit(p rosterpath.Path) bool {
	return r.Matches(p) || r.ImplicitlyIncluded(p)
}

// CheckPathsExist validates that every include and exclude path resolves
// to a real node in at least one of the given rosters (typically the
// "from" and "to" rosters of the restricted operation). Skipping this
// check (simply not calling it) is appropriate when a restriction is
// built over working-copy-only paths that never existed in either roster.
func (r *Restriction) CheckPathsExist(rosters ...*roster.Roster) error {
	all := append(append([]rosterpath.Path(nil), r.includes...), r.excludes...)
	sort.Slice(all, func(i, j int) bool { return rosterpath.Less(all[i], all[j]) })
	for _, p := range all {
		found := false
		for _, ro := range rosters {
			if ro != nil && ro.HasNodeByPath(p) {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("restriction: path %q does not exist in any provided roster", p.String())
		}
	}
	return nil
}
