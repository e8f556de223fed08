package rosterdelta

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// Apply applies d onto r and m in place, following the same step ordering
// changeset.Apply uses (§4.3), adapted to the delta's node-id-keyed shape:
// detach deletions and rename sources; drop deletions; create added nodes
// under their exact recorded ids; attach added and renamed nodes; apply
// content deltas; apply attribute clears and changes; replace marking
// entries; erase markings for deleted nodes.
//
// Unlike changeset.Apply, attachment order cannot be determined by sorting
// path strings up front: a newly added node's location names its parent by
// id, and that parent may itself be newly added within this same delta, so
// its path only becomes resolvable once its own attachment has run.
// Attachment instead proceeds by repeated passes, attaching whichever
// pending node's parent is already resolvable, until no pass makes
// progress.
//
// Application is conceptually atomic: if any step fails, the caller must
// discard r and m, since they may be left partially edited. Apply does not
// support reconstructing a roster's very first revision (one with no
// existing root): a delta always transforms an existing (roster, marking)
// pair, so the root's location is never itself a pending attachment.
func (d *Delta) Apply(r *roster.Roster, m marking.Map) error {
	for id := range d.Deleted {
		p, err := r.GetPath(id)
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving deleted node %d's path", id)
		}
		if _, err := r.DetachNode(p); err != nil {
			return errors.Wrapf(err, "rosterdelta: detaching deleted node %d", id)
		}
	}
	for id := range d.Renamed {
		p, err := r.GetPath(id)
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving renamed node %d's prior path", id)
		}
		if _, err := r.DetachNode(p); err != nil {
			return errors.Wrapf(err, "rosterdelta: detaching rename source %d", id)
		}
	}

	for id := range d.Deleted {
		if err := r.DropDetachedNode(id); err != nil {
			return errors.Wrapf(err, "rosterdelta: dropping deleted node %d", id)
		}
	}

	for id, loc := range d.AddedDirs {
		if err := r.CreateDirNodeWithID(id); err != nil {
			return errors.Wrapf(err, "rosterdelta: creating directory node %d", id)
		}
		_ = loc
	}
	for id, af := range d.AddedFiles {
		if err := r.CreateFileNodeWithID(id, af.Content); err != nil {
			return errors.Wrapf(err, "rosterdelta: creating file node %d", id)
		}
	}

	if err := attachPending(r, d); err != nil {
		return err
	}

	for id, newContent := range d.Deltas {
		node, err := r.GetNodeByID(id)
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving node %d for content delta", id)
		}
		p, err := r.GetPath(id)
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving node %d's path for content delta", id)
		}
		if err := r.ApplyDelta(p, node.Content, newContent); err != nil {
			return errors.Wrapf(err, "rosterdelta: applying content delta to node %d", id)
		}
	}

	for id, keys := range d.AttrCleared {
		p, err := r.GetPath(id)
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving node %d's path for attribute clear", id)
		}
		for _, key := range keys {
			if err := r.ClearAttr(p, key); err != nil {
				return errors.Wrapf(err, "rosterdelta: clearing attribute %q on node %d", key, id)
			}
		}
	}

	for id, changes := range d.AttrChanged {
		p, err := r.GetPath(id)
		if err != nil {
			return errors.Wrapf(err, "rosterdelta: resolving node %d's path for attribute change", id)
		}
		for _, c := range changes {
			if err := r.SetAttr(p, c.Key, c.Value); err != nil {
				return errors.Wrapf(err, "rosterdelta: setting attribute %q on node %d", c.Key, id)
			}
		}
	}

	for id, mk := range d.Markings {
		m[id] = mk
	}
	for id := range d.Deleted {
		delete(m, id)
	}

	return nil
}

type pendingAttach struct {
	id  roster.NodeID
	loc Location
}

func attachPending(r *roster.Roster, d *Delta) error {
	var pending []pendingAttach
	for id, loc := range d.AddedDirs {
		pending = append(pending, pendingAttach{id, loc})
	}
	for id, af := range d.AddedFiles {
		pending = append(pending, pendingAttach{id, af.Location})
	}
	for id, loc := range d.Renamed {
		pending = append(pending, pendingAttach{id, loc})
	}

	for len(pending) > 0 {
		var remaining []pendingAttach
		progressed := false
		for _, item := range pending {
			parentPath, err := r.GetPath(item.loc.Parent)
			if err != nil {
				remaining = append(remaining, item)
				continue
			}
			path := parentPath.Child(item.loc.Name)
			if err := r.AttachNode(item.id, path); err != nil {
				return errors.Wrapf(err, "rosterdelta: attaching node %d", item.id)
			}
			progressed = true
		}
		if !progressed {
			return errors.New("rosterdelta: cannot resolve attachment order (dangling parent reference)")
		}
		pending = remaining
	}
	return nil
}
