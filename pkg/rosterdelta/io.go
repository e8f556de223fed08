package rosterdelta

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

func idStr(id roster.NodeID) string { return strconv.FormatUint(uint64(id), 10) }

func parseID(s string) (roster.NodeID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "rosterdelta: invalid node id")
	}
	return roster.NodeID(v), nil
}

// Serialize renders the delta to its canonical basic-IO form (§4.6): one
// stanza per node touched (attr_cleared/attr_changed emit one stanza per
// (node, attribute) pair), grouped deleted/rename/add_dir/add_file/delta/
// attr_cleared/attr_changed/marking, each group ordered by node id (and,
// within a node, by attribute key) for determinism.
func (d *Delta) Serialize() []byte {
	var doc basicio.Document

	for _, id := range sortedIDs(d.Deleted) {
		doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().Str("deleted", idStr(id)).Build())
	}
	for _, id := range sortedIDs(d.Renamed) {
		doc.Stanzas = append(doc.Stanzas, locationStanza("rename", id, d.Renamed[id]))
	}
	for _, id := range sortedIDs(d.AddedDirs) {
		doc.Stanzas = append(doc.Stanzas, locationStanza("add_dir", id, d.AddedDirs[id]))
	}
	for _, id := range sortedIDs(d.AddedFiles) {
		af := d.AddedFiles[id]
		b := basicio.NewStanzaBuilder().
			Str("add_file", idStr(id)).
			StrPair("location", idStr(af.Location.Parent), string(af.Location.Name)).
			HexLine("content", af.Content[:])
		doc.Stanzas = append(doc.Stanzas, b.Build())
	}
	for _, id := range sortedIDs(d.Deltas) {
		content := d.Deltas[id]
		doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().
			Str("delta", idStr(id)).
			HexLine("content", content[:]).
			Build())
	}
	for _, id := range sortedIDs(d.AttrCleared) {
		keys := append([]roster.AttrKey(nil), d.AttrCleared[id]...)
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, key := range keys {
			doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().
				Str("attr_cleared", idStr(id)).
				Str("attr", string(key)).
				Build())
		}
	}
	for _, id := range sortedIDs(d.AttrChanged) {
		changes := append([]AttrChange(nil), d.AttrChanged[id]...)
		sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
		for _, c := range changes {
			liveStr := "false"
			if c.Value.Live {
				liveStr = "true"
			}
			doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().
				Str("attr_changed", idStr(id)).
				Str("attr", string(c.Key)).
				StrPair("value", liveStr, c.Value.Value).
				Build())
		}
	}
	for _, id := range sortedIDs(d.Markings) {
		mk := d.Markings[id]
		b := basicio.NewStanzaBuilder().
			Str("marking", idStr(id)).
			HexLine("birth", mk.Birth[:]).
			Line(hexListLine("path_mark", mk.ParentName.Sorted()))
		if len(mk.Content) > 0 {
			b.Line(hexListLine("content_mark", mk.Content.Sorted()))
		}
		for _, key := range sortedAttrMarkKeys(mk.Attrs) {
			line := hexListLine("attr_mark", mk.Attrs[key].Sorted())
			line.Values = append([]basicio.Value{basicio.StrValue(string(key))}, line.Values...)
			b.Line(line)
		}
		doc.Stanzas = append(doc.Stanzas, b.Build())
	}

	return []byte(basicio.WriteDocument(doc))
}

func locationStanza(symbol string, id roster.NodeID, loc Location) basicio.Stanza {
	return basicio.NewStanzaBuilder().
		Str(symbol, idStr(id)).
		StrPair("location", idStr(loc.Parent), string(loc.Name)).
		Build()
}

func hexListLine(symbol string, revs []marking.RevisionID) basicio.Line {
	values := make([]basicio.Value, len(revs))
	for i, r := range revs {
		values[i] = basicio.HexValue(r[:])
	}
	return basicio.NewLine(symbol, values...)
}

func sortedIDs[T any](m map[roster.NodeID]T) []roster.NodeID {
	out := make([]roster.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedAttrMarkKeys(attrs map[roster.AttrKey]marking.Set) []roster.AttrKey {
	out := make([]roster.AttrKey, 0, len(attrs))
	for k := range attrs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parse reconstructs a Delta from its canonical basic-IO serialization.
func Parse(data []byte) (*Delta, error) {
	doc, err := basicio.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	d := New()
	for _, stanza := range doc.Stanzas {
		if len(stanza.Lines) == 0 {
			continue
		}
		head := stanza.Lines[0]
		id, err := parseID(head.Values[0].Str)
		if err != nil {
			return nil, err
		}

		switch head.Symbol {
		case "deleted":
			d.Deleted[id] = struct{}{}
		case "rename":
			loc, err := parseLocation(stanza)
			if err != nil {
				return nil, err
			}
			d.Renamed[id] = loc
		case "add_dir":
			loc, err := parseLocation(stanza)
			if err != nil {
				return nil, err
			}
			d.AddedDirs[id] = loc
		case "add_file":
			loc, err := parseLocation(stanza)
			if err != nil {
				return nil, err
			}
			content, err := parseContentLine(stanza, "content")
			if err != nil {
				return nil, err
			}
			d.AddedFiles[id] = AddedFile{Location: loc, Content: content}
		case "delta":
			content, err := parseContentLine(stanza, "content")
			if err != nil {
				return nil, err
			}
			d.Deltas[id] = content
		case "attr_cleared":
			key, err := findStrLine(stanza, "attr")
			if err != nil {
				return nil, err
			}
			d.AttrCleared[id] = append(d.AttrCleared[id], roster.AttrKey(key))
		case "attr_changed":
			key, err := findStrLine(stanza, "attr")
			if err != nil {
				return nil, err
			}
			live, value, err := parseValueLine(stanza)
			if err != nil {
				return nil, err
			}
			d.AttrChanged[id] = append(d.AttrChanged[id], AttrChange{
				Key:   roster.AttrKey(key),
				Value: roster.AttrValue{Live: live, Value: value},
			})
		case "marking":
			mk, err := parseMarking(stanza)
			if err != nil {
				return nil, err
			}
			d.Markings[id] = mk
		default:
			return nil, &basicio.SyntaxError{Reason: "unknown roster delta stanza symbol " + head.Symbol}
		}
	}
	return d, nil
}

func parseLocation(stanza basicio.Stanza) (Location, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == "location" {
			parent, err := parseID(line.Values[0].Str)
			if err != nil {
				return Location{}, err
			}
			return Location{Parent: parent, Name: rosterpath.Component(line.Values[1].Str)}, nil
		}
	}
	return Location{}, &basicio.SyntaxError{Reason: "missing location line"}
}

func parseContentLine(stanza basicio.Stanza, symbol string) (hash.ContentHash, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == symbol {
			var h hash.ContentHash
			if len(line.Values[0].Bytes) != hash.Size {
				return h, &basicio.SyntaxError{Reason: symbol + " content hash has the wrong length"}
			}
			copy(h[:], line.Values[0].Bytes)
			return h, nil
		}
	}
	return hash.ContentHash{}, &basicio.SyntaxError{Reason: "missing " + symbol + " line"}
}

func findStrLine(stanza basicio.Stanza, symbol string) (string, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == symbol {
			return line.Values[0].Str, nil
		}
	}
	return "", &basicio.SyntaxError{Reason: "missing " + symbol + " line"}
}

func parseValueLine(stanza basicio.Stanza) (bool, string, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == "value" {
			return line.Values[0].Str == "true", line.Values[1].Str, nil
		}
	}
	return false, "", &basicio.SyntaxError{Reason: "missing value line"}
}

func parseMarking(stanza basicio.Stanza) (marking.Marking, error) {
	mk := marking.NewMarking()
	for _, line := range stanza.Lines {
		switch line.Symbol {
		case "birth":
			if len(line.Values[0].Bytes) != hash.Size {
				return mk, &basicio.SyntaxError{Reason: "birth revision has the wrong length"}
			}
			copy(mk.Birth[:], line.Values[0].Bytes)
		case "path_mark":
			mk.ParentName = revSet(line.Values)
		case "content_mark":
			mk.Content = revSet(line.Values)
		case "attr_mark":
			if len(line.Values) < 1 {
				return mk, &basicio.SyntaxError{Reason: "attr_mark line has no attribute key"}
			}
			key := roster.AttrKey(line.Values[0].Str)
			mk.Attrs[key] = revSet(line.Values[1:])
		}
	}
	return mk, nil
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
