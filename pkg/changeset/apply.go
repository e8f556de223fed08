package changeset

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Apply applies the change set to tree, following the fixed seven-step
// order mandated by the specification (§4.3): detach deletions and rename
// sources; drop deletions; create added nodes (detached); attach added
// directories, added files, and rename targets in topological (parent
// before child) order; apply deltas; apply attribute clears; apply
// attribute sets.
//
// Application is conceptually atomic: if any step fails, the caller must
// discard tree, since it may be left in a partially-edited state. This
// mirrors the teacher's Apply (core/apply.go), generalized from whole-
// subtree replacement to these seven scalar-level steps.
func (c *ChangeSet) Apply(tree roster.EditableTree) error {
	detachedByPath := make(map[string]roster.NodeID)

	// Step 1: detach every deletion and rename source, in one pass.
	for p := range c.NodesDeleted {
		id, err := tree.DetachNode(pathFromKey(p))
		if err != nil {
			return errors.Wrapf(err, "changeset: detaching deleted node %q", p)
		}
		detachedByPath[p] = id
	}
	for from := range c.NodesRenamed {
		id, err := tree.DetachNode(pathFromKey(from))
		if err != nil {
			return errors.Wrapf(err, "changeset: detaching rename source %q", from)
		}
		detachedByPath[from] = id
	}

	// Step 2: drop every deleted node.
	for p := range c.NodesDeleted {
		if err := tree.DropDetachedNode(detachedByPath[p]); err != nil {
			return errors.Wrapf(err, "changeset: dropping deleted node %q", p)
		}
	}

	// Step 3: create every added directory and file (detached).
	createdDirs := make(map[string]roster.NodeID, len(c.DirsAdded))
	for p := range c.DirsAdded {
		createdDirs[p] = tree.CreateDirNode()
	}
	createdFiles := make(map[string]roster.NodeID, len(c.FilesAdded))
	for p, content := range c.FilesAdded {
		createdFiles[p] = tree.CreateFileNode(content)
	}

	// Step 4: attach added directories, added files, and rename targets, in
	// topological (parent-before-child) order. Sorting by rosterpath.Less
	// always places a parent before its children, since a parent's path is
	// a proper prefix of each child's and a prefix sorts first.
	type attachment struct {
		path string
		id   roster.NodeID
	}
	var attachments []attachment
	for p, id := range createdDirs {
		attachments = append(attachments, attachment{p, id})
	}
	for p, id := range createdFiles {
		attachments = append(attachments, attachment{p, id})
	}
	for from, to := range c.NodesRenamed {
		attachments = append(attachments, attachment{to, detachedByPath[from]})
	}
	sort.Slice(attachments, func(i, j int) bool {
		return rosterpath.Less(pathFromKey(attachments[i].path), pathFromKey(attachments[j].path))
	})
	for _, a := range attachments {
		if err := tree.AttachNode(a.id, pathFromKey(a.path)); err != nil {
			return errors.Wrapf(err, "changeset: attaching %q", a.path)
		}
	}

	// Step 5: apply deltas.
	for p, d := range c.DeltasApplied {
		if err := tree.ApplyDelta(pathFromKey(p), d.Old, d.New); err != nil {
			return errors.Wrapf(err, "changeset: applying delta to %q", p)
		}
	}

	// Step 6: apply attribute clears.
	for k := range c.AttrsCleared {
		if err := tree.ClearAttr(k.Path, k.Key); err != nil {
			return errors.Wrapf(err, "changeset: clearing attribute %q on %q", k.Key, k.Path.String())
		}
	}

	// Step 7: apply attribute sets.
	for k, v := range c.AttrsSet {
		if err := tree.SetAttr(k.Path, k.Key, roster.AttrValue{Live: true, Value: v}); err != nil {
			return errors.Wrapf(err, "changeset: setting attribute %q on %q", k.Key, k.Path.String())
		}
	}

	return nil
}
