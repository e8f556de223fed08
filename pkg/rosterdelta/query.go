package rosterdelta

import (
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// TryGetContent answers a partial content query against the delta alone,
// without materializing the target roster (§4.6): a node with an applied
// content delta or a newly added file yields its new content; a deleted
// node yields the explicit null hash (not merely absent, since the caller
// must distinguish "gone" from "unchanged, consult the parent"); any other
// node yields false, meaning the caller must fall through to the parent's
// content.
func (d *Delta) TryGetContent(id roster.NodeID) (hash.ContentHash, bool) {
	if c, ok := d.Deltas[id]; ok {
		return c, true
	}
	if af, ok := d.AddedFiles[id]; ok {
		return af.Content, true
	}
	if _, ok := d.Deleted[id]; ok {
		return hash.Null, true
	}
	return hash.ContentHash{}, false
}

// TryGetMarking answers a partial marking query: a node with a recorded
// marking stanza yields it directly; any other node yields false, meaning
// the caller must fall through to the parent's marking. A deleted node's
// marking stanza is never recorded (Apply erases its entry outright rather
// than replacing it), so a deleted node also falls through to false here.
func (d *Delta) TryGetMarking(id roster.NodeID) (marking.Marking, bool) {
	mk, ok := d.Markings[id]
	return mk, ok
}
