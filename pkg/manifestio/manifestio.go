// Package manifestio implements the manifest serialization of
// specification §6: the roster's public, hashable face. A manifest omits
// node ids and marking entirely; it is the bit-exact byte sequence whose
// content hash becomes the new manifest id for a revision, so its writer
// must reproduce the legacy basic-IO stanza shape (including cosmetic
// symbol alignment) exactly.
//
// Grounded on the teacher's archive/cache persistence role
// (mutagen's pkg/synchronization/core/{archive,cache}.go serialize an
// Entry tree for storage via protobuf); this package generalizes that
// "persist the tree" responsibility to the specification's bit-exact
// textual form, which protobuf's non-canonical wire encoding cannot
// provide. Standard-library-plus-basicio only: no third-party codec in
// the pack produces a hash-stable textual tree encoding, so this stays a
// direct consumer of pkg/basicio.
package manifestio

import (
	"github.com/pkg/errors"

	"github.com/archivekeep/rosettavcs/pkg/basicio"
	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/roster"
	"github.com/archivekeep/rosettavcs/pkg/rosterpath"
)

// Serialize renders r's manifest form: for each node in depth-first order,
// a `dir`/`file` stanza (files additionally carry `content`), followed by
// one `attr` line per live attribute in sorted key order. Dormant
// attributes and marking never appear in a manifest.
func Serialize(r *roster.Roster) []byte {
	var doc basicio.Document
	r.Walk(func(p rosterpath.Path, n *roster.Node) {
		b := basicio.NewStanzaBuilder()
		switch n.Kind {
		case roster.Directory:
			b.Str("dir", p.String())
		case roster.File:
			b.Str("file", p.String())
			b.HexLine("content", n.Content[:])
		}
		for _, key := range n.LiveAttrs() {
			b.StrPair("attr", string(key), n.Attrs[key].Value)
		}
		doc.Stanzas = append(doc.Stanzas, b.Build())
	})
	return []byte(basicio.WriteDocument(doc))
}

// Hash computes the content hash of r's manifest serialization using alg,
// the canonical definition of a revision's manifest id (§6, "Content
// hash").
func Hash(r *roster.Roster, alg hash.Algorithm) hash.ContentHash {
	return alg.Sum(Serialize(r))
}

// Parse reconstructs a roster from its manifest serialization, drawing
// fresh node ids from ids. Since a manifest carries no node identity, the
// returned roster's ids are newly minted and bear no relation to whatever
// ids the original roster used; Parse exists for importing a manifest as
// a brand-new tree, not for
// round-tripping an existing revision's identity (use pkg/rosterio for
// that).
func Parse(data []byte, ids roster.IDSource) (*roster.Roster, error) {
	doc, err := basicio.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	r := roster.New()
	for _, stanza := range doc.Stanzas {
		if len(stanza.Lines) == 0 {
			continue
		}
		head := stanza.Lines[0]
		p := rosterpath.Parse(head.Values[0].Str)

		var id roster.NodeID
		switch head.Symbol {
		case "dir":
			id = r.CreateDirNode(ids)
		case "file":
			content, err := findContentLine(stanza)
			if err != nil {
				return nil, errors.Wrapf(err, "manifestio: parsing file %q", p.String())
			}
			id = r.CreateFileNode(content, ids)
		default:
			return nil, &basicio.SyntaxError{Reason: "unknown manifest stanza symbol " + head.Symbol}
		}

		if err := r.AttachNode(id, p); err != nil {
			return nil, errors.Wrapf(err, "manifestio: attaching %q", p.String())
		}

		for _, line := range stanza.Lines[1:] {
			if line.Symbol != "attr" {
				continue
			}
			key := roster.AttrKey(line.Values[0].Str)
			value := line.Values[1].Str
			if err := r.SetAttr(p, key, roster.AttrValue{Live: true, Value: value}); err != nil {
				return nil, errors.Wrapf(err, "manifestio: setting attribute %q on %q", key, p.String())
			}
		}
	}

	return r, nil
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
