package basicio

import "strings"

// WriteDocument serializes a document to its canonical textual form:
// stanzas separated by a single blank line, with a trailing newline, and
// with each stanza's symbols right-aligned to the width of its longest
// symbol. The alignment is purely cosmetic (the parser tolerates any
// whitespace run between a symbol and its first value) but is reproduced
// exactly here because manifests are hashed byte-for-byte.
func WriteDocument(doc Document) string {
	var b strings.Builder
	for i, stanza := range doc.Stanzas {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeStanza(&b, stanza)
	}
	return b.String()
}

func writeStanza(b *strings.Builder, stanza Stanza) {
	width := 0
	for _, line := range stanza.Lines {
		if len(line.Symbol) > width {
			width = len(line.Symbol)
		}
	}
	for _, line := range stanza.Lines {
		pad := width - len(line.Symbol)
		for i := 0; i < pad; i++ {
			b.WriteByte(' ')
		}
		b.WriteString(line.Symbol)
		for _, v := range line.Values {
			b.WriteByte(' ')
			writeValue(b, v)
		}
		b.WriteByte('\n')
	}
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Kind {
	case String:
		b.WriteString(Escape(v.Str))
	case Hex:
		b.WriteString(EncodeHex(v.Bytes))
	default:
		panic("unknown basic-IO value kind")
	}
}
