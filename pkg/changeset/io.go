package changeset

import (
	"sort"

	"github.com/archivekeep/rosettavcs/pkg/basicio"
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// Serialize renders the change set to its canonical basic-IO form (§6,
// "Change-set serialization"): one stanza per operation, grouped and
// ordered delete, rename, add_dir, add_file/content, patch/from/to,
// clear, set/value, with keys sorted lexicographically within each group
// for determinism. A clear or set stanza carries the path and the
// attribute key together on its head line; there is no separate attr line.
func (c *ChangeSet) Serialize() []byte {
	var doc basicio.Document

	for _, p := range sortedStrings(c.NodesDeleted) {
		doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().Str("delete", p).Build())
	}
	for _, from := range sortedKeysOfRenames(c.NodesRenamed) {
		doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().StrPair("rename", from, c.NodesRenamed[from]).Build())
	}
	for _, p := range sortedStrings(c.DirsAdded) {
		doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().Str("add_dir", p).Build())
	}
	for _, p := range sortedKeysOfFiles(c.FilesAdded) {
		b := basicio.NewStanzaBuilder().Str("add_file", p)
		content := c.FilesAdded[p]
		b.HexLine("content", content[:])
		doc.Stanzas = append(doc.Stanzas, b.Build())
	}
	for _, p := range sortedKeysOfDeltas(c.DeltasApplied) {
		d := c.DeltasApplied[p]
		b := basicio.NewStanzaBuilder().Str("patch", p)
		b.HexLine("from", d.Old[:])
		b.HexLine("to", d.New[:])
		doc.Stanzas = append(doc.Stanzas, b.Build())
	}
	for _, k := range sortedAttrKeys(setKeysOf(c.AttrsCleared)) {
		doc.Stanzas = append(doc.Stanzas, basicio.NewStanzaBuilder().StrPair("clear", k.Path.String(), string(k.Key)).Build())
	}
	for _, k := range sortedAttrKeys(setKeysOfValues(c.AttrsSet)) {
		b := basicio.NewStanzaBuilder().StrPair("set", k.Path.String(), string(k.Key))
		b.Str("value", c.AttrsSet[k])
		doc.Stanzas = append(doc.Stanzas, b.Build())
	}

	return []byte(basicio.WriteDocument(doc))
}

// Parse reconstructs a ChangeSet from its canonical basic-IO serialization.
func Parse(data []byte) (*ChangeSet, error) {
	doc, err := basicio.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	cs := New()
	for _, stanza := range doc.Stanzas {
		if len(stanza.Lines) == 0 {
			continue
		}
		head := stanza.Lines[0]
		switch head.Symbol {
		case "delete":
			cs.NodesDeleted[head.Values[0].Str] = struct{}{}
		case "rename":
			cs.NodesRenamed[head.Values[0].Str] = head.Values[1].Str
		case "add_dir":
			cs.DirsAdded[head.Values[0].Str] = struct{}{}
		case "add_file":
			p := head.Values[0].Str
			content, err := decodeContentLine(stanza, "content")
			if err != nil {
				return nil, err
			}
			cs.FilesAdded[p] = content
		case "patch":
			p := head.Values[0].Str
			from, err := decodeContentLine(stanza, "from")
			if err != nil {
				return nil, err
			}
			to, err := decodeContentLine(stanza, "to")
			if err != nil {
				return nil, err
			}
			cs.DeltasApplied[p] = Delta{Old: from, New: to}
		case "clear":
			cs.AttrsCleared[AttrKey{Path: pathFromKey(head.Values[0].Str), Key: roster.AttrKey(head.Values[1].Str)}] = struct{}{}
		case "set":
			k := AttrKey{Path: pathFromKey(head.Values[0].Str), Key: roster.AttrKey(head.Values[1].Str)}
			value, err := decodeStrLine(stanza, "value")
			if err != nil {
				return nil, err
			}
			cs.AttrsSet[k] = value
		}
	}
	return cs, nil
}

func decodeContentLine(stanza basicio.Stanza, symbol string) (hash.ContentHash, error) {
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

func decodeStrLine(stanza basicio.Stanza, symbol string) (string, error) {
	for _, line := range stanza.Lines {
		if line.Symbol == symbol {
			return line.Values[0].Str, nil
		}
	}
	return "", &basicio.SyntaxError{Reason: "missing " + symbol + " line"}
}

func sortedStrings(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysOfRenames(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysOfFiles(m map[string]hash.ContentHash) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysOfDeltas(m map[string]Delta) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func setKeysOf(m map[AttrKey]struct{}) []AttrKey {
	out := make([]AttrKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func setKeysOfValues(m map[AttrKey]string) []AttrKey {
	out := make([]AttrKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedAttrKeys(keys []AttrKey) []AttrKey {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path.String() != keys[j].Path.String() {
			return keys[i].Path.String() < keys[j].Path.String()
		}
		return keys[i].Key < keys[j].Key
	})
	return keys
}
