package changeset

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Validate checks the change-set normalization invariants from the
// specification's data model: no path appears as both deleted and added;
// no rename is a no-op; no delta is a no-op; a cleared attribute is not
// also set in the same cset; a deleted path does not appear in any other
// collection; a directory added must have all its ancestors either added
// in the same cset or pre-existing (callers supply a predicate for
// "pre-existing and not deleted", since that depends on the roster the
// cset is meant to apply to).
func (c *ChangeSet) Validate(preexistingDir func(p rosterpath.Path) bool) error {
	touched := make(map[string]int)
	mark := func(key string) { touched[key]++ }

	for p := range c.NodesDeleted {
		mark(p)
	}
	for p := range c.DirsAdded {
		mark(p)
	}
	for p := range c.FilesAdded {
		mark(p)
	}
	for from, to := range c.NodesRenamed {
		if from == to {
			return errors.Errorf("changeset: rename of %q is a no-op", from)
		}
		mark(from)
		mark(to)
	}
	for from := range c.NodesRenamed {
		if _, deleted := c.NodesDeleted[from]; deleted {
			return errors.Errorf("changeset: %q is both deleted and a rename source", from)
		}
	}

	for p, d := range c.DeltasApplied {
		if d.Old == d.New {
			return errors.Errorf("changeset: delta on %q is a no-op", p)
		}
		if _, deleted := c.NodesDeleted[p]; deleted {
			return errors.Errorf("changeset: %q is both deleted and delta'd", p)
		}
	}

	for k := range c.AttrsCleared {
		if _, alsoSet := c.AttrsSet[k]; alsoSet {
			return errors.Errorf("changeset: attribute %q on %q is both cleared and set", k.Key, k.Path.String())
		}
		if _, deleted := c.NodesDeleted[pathKey(k.Path)]; deleted {
			return errors.Errorf("changeset: %q is both deleted and has an attribute edit", k.Path.String())
		}
	}
	for k := range c.AttrsSet {
		if _, deleted := c.NodesDeleted[pathKey(k.Path)]; deleted {
			return errors.Errorf("changeset: %q is both deleted and has an attribute edit", k.Path.String())
		}
	}

	// No path may be named as both deleted and added (as a directory or
	// file).
	for p := range c.NodesDeleted {
		if _, added := c.DirsAdded[p]; added {
			return errors.Errorf("changeset: %q is both deleted and added", p)
		}
		if _, added := c.FilesAdded[p]; added {
			return errors.Errorf("changeset: %q is both deleted and added", p)
		}
	}

	if preexistingDir != nil {
		for p := range c.DirsAdded {
			path := pathFromKey(p)
			if path.IsRoot() {
				continue
			}
			parent := path.Parent()
			parentKey := pathKey(parent)
			if _, alsoAdded := c.DirsAdded[parentKey]; alsoAdded {
				continue
			}
			if preexistingDir(parent) {
				continue
			}
			return errors.Errorf("changeset: directory %q added without its parent %q being added or pre-existing", p, parentKey)
		}
	}

	return nil
}
