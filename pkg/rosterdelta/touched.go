package rosterdelta

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// TouchedNodeIDs resolves every path a change set names into the node id
// it corresponds to, for use as Make's touched argument in merge-edge mode
// (§4.6): a deleted path only resolves against the prior roster (it is
// already gone from the resulting one), while every other operation
// resolves against the resulting roster.
func TouchedNodeIDs(cs *changeset.ChangeSet, from, to *roster.Roster) (map[roster.NodeID]struct{}, error) {
	touched := make(map[roster.NodeID]struct{})

	resolve := func(r *roster.Roster, pathStr string) error {
		node, err := r.GetNodeByPath(rosterpath.Parse(pathStr))
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving touched path %q", pathStr)
		}
		touched[node.ID] = struct{}{}
		return nil
	}

	for p := range cs.NodesDeleted {
		if err := resolve(from, p); err != nil {
			return nil, err
		}
	}
	for p := range cs.DirsAdded {
		if err := resolve(to, p); err != nil {
			return nil, err
		}
	}
	for p := range cs.FilesAdded {
		if err := resolve(to, p); err != nil {
			return nil, err
		}
	}
	for _, newPath := range cs.NodesRenamed {
		if err := resolve(to, newPath); err != nil {
			return nil, err
		}
	}
	for p := range cs.DeltasApplied {
		if err := resolve(to, p); err != nil {
			return nil, err
		}
	}
	for k := range cs.AttrsCleared {
		if err := resolve(to, k.Path.String()); err != nil {
			return nil, err
		}
	}
	for k := range cs.AttrsSet {
		if err := resolve(to, k.Path.String()); err != nil {
			return nil, err
		}
	}

	return touched, nil
}
