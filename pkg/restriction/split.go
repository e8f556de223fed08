package restriction

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// ErrExclusionRequiresSingleParent signals that a restricted commit would
// produce a non-empty excluded half against a workspace with two parents
// (an in-progress merge): §4.3 mandates that restricted commits are
// single-parent only, since there would be no well-defined second parent
// for the excluded half's eventual follow-up commit.
var ErrExclusionRequiresSingleParent = errors.New("restriction: a non-empty exclusion requires a single-parent workspace")

// group is one node's worth of change-set operations, gathered under
// whichever path(s) identify it on the "from" and/or "to" side, so that a
// rename, its content delta, and its attribute edits are all placed on the
// same side of the split. The specification describes splitting "node-
// wise"; since a declarative change set has no node-id field of its own
// (paths are the only identity available outside a roster), this
// implementation resolves "node-wise" to "keyed by the (old path, new
// path) pair a single node occupies across the edit," which keeps a
// node's rename atomic with its other edits rather than letting, say, an
// attribute edit cross into the opposite half from the rename that
// relocated the node it sits on.
type group struct {
	oldPath, newPath rosterpath.Path
	hasOld, hasNew   bool
}

func (g group) included(r *Restriction) bool {
	if g.hasOld && r.InSplit(g.oldPath) {
		return true
	}
	if g.hasNew && r.InSplit(g.newPath) {
		return true
	}
	return false
}

// Split partitions cs into included and excluded halves per §4.3
// ("Restricted csets"): applying included to from yields an intermediate
// roster, and applying excluded to that intermediate roster yields the
// same roster cs.Apply(from) would. singleParent must be true whenever
// the excluded half turns out non-empty, per
// ErrExclusionRequiresSingleParent.
func Split(cs *changeset.ChangeSet, r *Restriction, singleParent bool) (included, excluded *changeset.ChangeSet, err error) {
	groups := make(map[string]*group)

	get := func(key string) *group {
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		return g
	}

	for p := range cs.NodesDeleted {
		g := get(p)
		g.hasOld, g.oldPath = true, pathKey(p)
	}
	for p := range cs.DirsAdded {
		g := get(p)
		g.hasNew, g.newPath = true, pathKey(p)
	}
	for p := range cs.FilesAdded {
		g := get(p)
		g.hasNew, g.newPath = true, pathKey(p)
	}
	for from, to := range cs.NodesRenamed {
		g := get(from)
		g.hasOld, g.oldPath = true, pathKey(from)
		g.hasNew, g.newPath = true, pathKey(to)
		groups[to] = g
	}
	for p := range cs.DeltasApplied {
		g := get(p)
		if !g.hasOld && !g.hasNew {
			g.hasOld, g.oldPath = true, pathKey(p)
			g.hasNew, g.newPath = true, pathKey(p)
		}
	}
	for k := range cs.AttrsCleared {
		p := k.Path.String()
		g := get(p)
		if !g.hasOld && !g.hasNew {
			g.hasOld, g.oldPath = true, k.Path
			g.hasNew, g.newPath = true, k.Path
		}
	}
	for k := range cs.AttrsSet {
		p := k.Path.String()
		g := get(p)
		if !g.hasOld && !g.hasNew {
			g.hasOld, g.oldPath = true, k.Path
			g.hasNew, g.newPath = true, k.Path
		}
	}

	// Resolve each distinct group to a single included/excluded decision,
	// keyed by whichever path string first identified it (renames register
	// under both their from- and to- keys pointing at the same *group, so
	// this naturally dedupes).
	decided := make(map[*group]bool)
	isIncluded := func(key string) bool {
		g := groups[key]
		if v, ok := decided[g]; ok {
			return v
		}
		v := g.included(r)
		decided[g] = v
		return v
	}

	included, excluded = changeset.New(), changeset.New()

	for p := range cs.NodesDeleted {
		if isIncluded(p) {
			included.NodesDeleted[p] = struct{}{}
		} else {
			excluded.NodesDeleted[p] = struct{}{}
		}
	}
	for p, content := range cs.FilesAdded {
		if isIncluded(p) {
			included.FilesAdded[p] = content
		} else {
			excluded.FilesAdded[p] = content
		}
	}
	for p := range cs.DirsAdded {
		if isIncluded(p) {
			included.DirsAdded[p] = struct{}{}
		} else {
			excluded.DirsAdded[p] = struct{}{}
		}
	}
	for from, to := range cs.NodesRenamed {
		if isIncluded(from) {
			included.NodesRenamed[from] = to
		} else {
			excluded.NodesRenamed[from] = to
		}
	}
	for p, d := range cs.DeltasApplied {
		if isIncluded(p) {
			included.DeltasApplied[p] = d
		} else {
			excluded.DeltasApplied[p] = d
		}
	}
	for k := range cs.AttrsCleared {
		if isIncluded(k.Path.String()) {
			included.AttrsCleared[k] = struct{}{}
		} else {
			excluded.AttrsCleared[k] = struct{}{}
		}
	}
	for k, v := range cs.AttrsSet {
		if isIncluded(k.Path.String()) {
			included.AttrsSet[k] = v
		} else {
			excluded.AttrsSet[k] = v
		}
	}

	if !excluded.IsEmpty() && !singleParent {
		return nil, nil, ErrExclusionRequiresSingleParent
	}

	return included, excluded, nil
}

func pathKey(s string) rosterpath.Path {
	return rosterpath.Parse(s)
}
