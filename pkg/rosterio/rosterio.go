// Package rosterio implements the roster serialization of specification
// §6: the superset of a manifest used for database storage rather than
// hashing. Every node's stanza carries its permanent node id, every
// attribute (live and dormant), and the node's full marking (birth,
// parent+name mark set, content mark set for files, and per-attribute mark
// sets) in the order the specification prescribes.
//
// Grounded on pkg/manifestio's walk/stanza structure, extended the way the
// teacher's Archive format extends its scan Cache with a persisted
// version/identity layer (mutagen's core/archive.go wraps a bare Entry
// with format metadata for on-disk storage, as opposed to cache.go's
// transient scan summary) — this is this specification's on-disk
// (roster, marking) pairing, as opposed to manifestio's hashable public
// face.
package rosterio

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/basicio"
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Serialize renders (r, m) to their canonical basic-IO roster form: for
// each node in depth-first order, the manifest's dir/file+content stanza
// head, then ident, each live attribute (sorted), each dormant attribute
// (sorted) as dormant_attr, then the node's marking: birth, one path_mark
// line listing the whole parent+name mark set, one content_mark line
// listing the content mark set (files only), and one attr_mark line per
// attribute key listing that key's mark set. A mark set is not split into
// one line per revision.
func Serialize(r *roster.Roster, m marking.Map) ([]byte, error) {
	var doc basicio.Document
	var walkErr error

	r.Walk(func(p rosterpath.Path, n *roster.Node) {
		if walkErr != nil {
			return
		}
		mk, ok := m[n.ID]
		if !ok {
			walkErr = errors.Errorf("rosterio: node %d has no marking", n.ID)
			return
		}

		b := basicio.NewStanzaBuilder()
		switch n.Kind {
		case roster.Directory:
			b.Str("dir", p.String())
		case roster.File:
			b.Str("file", p.String())
			b.HexLine("content", n.Content[:])
		}
		b.Str("ident", strconv.FormatUint(uint64(n.ID), 10))

		for _, key := range n.LiveAttrs() {
			b.StrPair("attr", string(key), n.Attrs[key].Value)
		}
		for _, key := range n.AllAttrKeys() {
			if n.Attrs[key].Live {
				continue
			}
			b.Str("dormant_attr", string(key))
		}

		b.HexLine("birth", mk.Birth[:])
		b.Line(hexListLine("path_mark", mk.ParentName.Sorted()))
		if n.Kind == roster.File {
			b.Line(hexListLine("content_mark", mk.Content.Sorted()))
		}
		for _, key := range sortedAttrMarkKeys(mk.Attrs) {
			line := hexListLine("attr_mark", mk.Attrs[key].Sorted())
			line.Values = append([]basicio.Value{basicio.StrValue(string(key))}, line.Values...)
			b.Line(line)
		}

		doc.Stanzas = append(doc.Stanzas, b.Build())
	})

	if walkErr != nil {
		return nil, walkErr
	}
	return []byte(basicio.WriteDocument(doc)), nil
}

// Parse reconstructs a (roster, marking) pair from its canonical
// serialization, creating every node under the exact id recorded by its
// ident line (via CreateDirNodeWithID/CreateFileNodeWithID), so the result
// is identity-equal to whatever roster produced the bytes, not merely
// structurally equal.
func Parse(data []byte) (*roster.Roster, marking.Map, error) {
	doc, err := basicio.ParseDocument(data)
	if err != nil {
		return nil, nil, err
	}

	r := roster.New()
	m := make(marking.Map, len(doc.Stanzas))

	for _, stanza := range doc.Stanzas {
		if len(stanza.Lines) == 0 {
			continue
		}
		head := stanza.Lines[0]
		p := rosterpath.Parse(head.Values[0].Str)

		id, err := findIdentLine(stanza)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "rosterio: parsing %q", p.String())
		}

		switch head.Symbol {
		case "dir":
			if err := r.CreateDirNodeWithID(id); err != nil {
				return nil, nil, errors.Wrapf(err, "rosterio: creating directory %q", p.String())
			}
		case "file":
			content, err := findContentLine(stanza)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "rosterio: parsing file %q", p.String())
			}
			if err := r.CreateFileNodeWithID(id, content); err != nil {
				return nil, nil, errors.Wrapf(err, "rosterio: creating file %q", p.String())
			}
		default:
			return nil, nil, &basicio.SyntaxError{Reason: "unknown roster stanza symbol " + head.Symbol}
		}

		if err := r.AttachNode(id, p); err != nil {
			return nil, nil, errors.Wrapf(err, "rosterio: attaching %q", p.String())
		}

		mk := marking.NewMarking()
		for _, line := range stanza.Lines[1:] {
			switch line.Symbol {
			case "attr":
				key := roster.AttrKey(line.Values[0].Str)
				value := line.Values[1].Str
				if err := r.SetAttr(p, key, roster.AttrValue{Live: true, Value: value}); err != nil {
					return nil, nil, errors.Wrapf(err, "rosterio: setting attribute %q on %q", key, p.String())
				}
			case "dormant_attr":
				key := roster.AttrKey(line.Values[0].Str)
				if err := r.SetAttr(p, key, roster.AttrValue{Live: false, Value: ""}); err != nil {
					return nil, nil, errors.Wrapf(err, "rosterio: setting dormant attribute %q on %q", key, p.String())
				}
			case "birth":
				if len(line.Values[0].Bytes) != hash.Size {
					return nil, nil, &basicio.SyntaxError{Reason: "birth revision has the wrong length"}
				}
				copy(mk.Birth[:], line.Values[0].Bytes)
			case "path_mark":
				mk.ParentName = revSet(line.Values)
			case "content_mark":
				mk.Content = revSet(line.Values)
			case "attr_mark":
				if len(line.Values) < 1 {
					return nil, nil, &basicio.SyntaxError{Reason: "attr_mark line has no attribute key"}
				}
				key := roster.AttrKey(line.Values[0].Str)
				mk.Attrs[key] = revSet(line.Values[1:])
			}
		}
		m[id] = mk
	}

	return r, m, nil
}

func hexListLine(symbol string, revs []marking.RevisionID) basicio.Line {
	values := make([]basicio.Value, len(revs))
	for i, rev := range revs {
		values[i] = basicio.HexValue(rev[:])
	}
	return basicio.NewLine(symbol, values...)
}

func revSet(values []basicio.Value) marking.Set {
	set := make(marking.Set, len(values))
	for _, v := range values {
		var r marking.RevisionID
		copy(r[:], v.Bytes)
		set[r] = struct{}{}
	}
	return set
}

func sortedAttrMarkKeys(attrs map[roster.AttrKey]marking.Set) []roster.AttrKey {
	out := make([]roster.AttrKey, 0, len(attrs))
	for k := range attrs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func findIdentLine(stanza basicio.Stanza) (roster.NodeID, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == "ident" {
			v, err := strconv.ParseUint(line.Values[0].Str, 10, 64)
			if err != nil {
				return 0, errors.Wrap(err, "invalid ident")
			}
			return roster.NodeID(v), nil
		}
	}
	return 0, &basicio.SyntaxError{Reason: "missing ident line"}
}

func findContentLine(stanza basicio.Stanza) (hash.ContentHash, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == "content" {
			var h hash.ContentHash
			if len(line.Values[0].Bytes) != hash.Size {
				return h, &basicio.SyntaxError{Reason: "content hash has the wrong length"}
			}
			copy(h[:], line.Values[0].Bytes)
			return h, nil
		}
	}
	return hash.ContentHash{}, &basicio.SyntaxError{Reason: "file stanza missing content line"}
}
