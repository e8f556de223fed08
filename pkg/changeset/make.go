package changeset

import (
	"github.com/archivekeep/rosettavcs/pkg/pariter"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

func nodeIDLess(a, b roster.NodeID) bool { return a < b }

// Make computes the minimal change set whose application to from yields to,
// under the identity mapping of node ids (§4.3, make_cset). It performs a
// parallel walk of from's and to's node maps keyed on node id: a node only
// in from becomes a delete; a node only in to becomes an add (directory or
// file) plus an attr-set for every live attribute; a node in both becomes a
// rename if its (parent, name) differs, a delta if its file content
// differs, and per-attribute clear/set edits computed by a second parallel
// walk over the node's attribute map.
//
// from and to must be callable with the same node-id space (i.e. to was
// produced from from by edits that preserved ids, or both are post-
// unification merge outputs); otherwise every node looks "only in one
// side" and Make degenerates to a full delete-then-recreate, which is
// still correct but not minimal.
func Make(from, to *roster.Roster) (*ChangeSet, error) {
	fromNodes := nodeMap(from)
	toNodes := nodeMap(to)

	cs := New()
	it := pariter.New(fromNodes, toNodes, nodeIDLess)
	for it.State() != pariter.Done {
		switch it.State() {
		case pariter.InLeft:
			id := it.LeftKey()
			p, err := from.GetPath(id)
			if err != nil {
				return nil, err
			}
			cs.NodesDeleted[pathKey(p)] = struct{}{}
		case pariter.InRight:
			id := it.RightKey()
			node := it.RightValue()
			p, err := to.GetPath(id)
			if err != nil {
				return nil, err
			}
			key := pathKey(p)
			if node.Kind == roster.Directory {
				cs.DirsAdded[key] = struct{}{}
			} else {
				cs.FilesAdded[key] = node.Content
			}
			for _, attrKey := range node.LiveAttrs() {
				cs.AttrsSet[AttrKey{Path: p, Key: attrKey}] = node.Attrs[attrKey].Value
			}
		case pariter.InBoth:
			id := it.LeftKey()
			oldNode := it.LeftValue()
			newNode := it.RightValue()

			oldPath, err := from.GetPath(id)
			if err != nil {
				return nil, err
			}
			newPath, err := to.GetPath(id)
			if err != nil {
				return nil, err
			}

			if oldNode.Parent != newNode.Parent || oldNode.Name != newNode.Name {
				cs.NodesRenamed[pathKey(oldPath)] = pathKey(newPath)
			}
			if oldNode.Kind == roster.File && newNode.Kind == roster.File && oldNode.Content != newNode.Content {
				cs.DeltasApplied[pathKey(newPath)] = Delta{Old: oldNode.Content, New: newNode.Content}
			}

			diffAttrs(cs, newPath, oldNode, newNode)
		}
		it.Advance()
	}

	return cs, nil
}

func nodeMap(r *roster.Roster) map[roster.NodeID]*roster.Node {
	ids := r.NodeIDs()
	out := make(map[roster.NodeID]*roster.Node, len(ids))
	for _, id := range ids {
		n, _ := r.GetNodeByID(id)
		out[id] = n
	}
	return out
}

func attrKeyLess(a, b roster.AttrKey) bool { return a < b }

// diffAttrs computes attribute edits between oldNode and newNode by a
// second parallel walk over their attribute maps, keyed on attribute key:
// a key only in oldNode (live there) that's gone from newNode is an error
// path the roster layer already rejects (attributes may not disappear
// without an explicit clear, which leaves a dormant entry); a key present
// in both with a different (live, value) pair becomes either an attr-clear
// (new value is dormant) or an attr-set (new value is live and changed).
func diffAttrs(cs *ChangeSet, path rosterpath.Path, oldNode, newNode *roster.Node) {
	it := pariter.New(oldNode.Attrs, newNode.Attrs, attrKeyLess)
	for it.State() != pariter.Done {
		switch it.State() {
		case pariter.InRight:
			key := it.RightKey()
			val := it.RightValue()
			if val.Live {
				cs.AttrsSet[AttrKey{Path: path, Key: key}] = val.Value
			}
		case pariter.InBoth:
			key := it.LeftKey()
			oldVal := it.LeftValue()
			newVal := it.RightValue()
			if oldVal != newVal {
				if newVal.Live {
					cs.AttrsSet[AttrKey{Path: path, Key: key}] = newVal.Value
				} else {
					cs.AttrsCleared[AttrKey{Path: path, Key: key}] = struct{}{}
				}
			}
		}
		it.Advance()
	}
}
