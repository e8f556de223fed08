package basicio

// ValueKind distinguishes the two token kinds that may appear as a value in
// a basic-IO line: quoted strings and bracketed hex literals. Symbols only
// ever appear as the leading token of a line, never as a value.
type ValueKind int

const (
	// String marks a value as a double-quoted, byte-transparent string.
	String ValueKind = iota
	// Hex marks a value as a bracketed hex literal.
	Hex
)

// Value is a single token following the symbol on a basic-IO line.
type Value struct {
	Kind ValueKind
	// Str holds the decoded content for String values: arbitrary bytes,
	// exactly as they will round-trip through Escape/the string parser.
	Str string
	// Bytes holds the decoded content for Hex values.
	Bytes []byte
}

// StrValue constructs a String-kind value.
func StrValue(s string) Value {
	return Value{Kind: String, Str: s}
}

// HexValue constructs a Hex-kind value.
func HexValue(b []byte) Value {
	// Copy defensively so callers can't mutate the stored bytes afterward.
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: Hex, Bytes: cp}
}

// Line is one symbol followed by its values.
type Line struct {
	Symbol string
	Values []Value
}

// NewLine builds a Line from a symbol and its values.
func NewLine(symbol string, values ...Value) Line {
	return Line{Symbol: symbol, Values: values}
}

// Stanza is a sequence of lines, separated from neighboring stanzas by a
// blank line in the serialized document.
type Stanza struct {
	Lines []Line
}

// Document is a sequence of stanzas.
type Document struct {
	Stanzas []Stanza
}

// StanzaBuilder accumulates lines for a single stanza with a fluent API,
// mirroring how callers assemble manifest/roster/delta stanzas one field
// at a time.
type StanzaBuilder struct {
	stanza Stanza
}

// NewStanzaBuilder starts a new, empty stanza.
func NewStanzaBuilder() *StanzaBuilder {
	return &StanzaBuilder{}
}

// Str appends a line with a single string value.
func (b *StanzaBuilder) Str(symbol, value string) *StanzaBuilder {
	b.stanza.Lines = append(b.stanza.Lines, NewLine(symbol, StrValue(value)))
	return b
}

// StrPair appends a line with two string values.
func (b *StanzaBuilder) StrPair(symbol, first, second string) *StanzaBuilder {
	b.stanza.Lines = append(b.stanza.Lines, NewLine(symbol, StrValue(first), StrValue(second)))
	return b
}

// HexLine appends a line with a single hex value.
func (b *StanzaBuilder) HexLine(symbol string, value []byte) *StanzaBuilder {
	b.stanza.Lines = append(b.stanza.Lines, NewLine(symbol, HexValue(value)))
	return b
}

// StrHex appends a line with a string value followed by a hex value.
func (b *StanzaBuilder) StrHex(symbol, first string, second []byte) *StanzaBuilder {
	b.stanza.Lines = append(b.stanza.Lines, NewLine(symbol, StrValue(first), HexValue(second)))
	return b
}

// Line appends a pre-built line verbatim, for shapes none of the
// fixed-arity helpers above cover, such as a mark-set's variable-length
// list of hex values.
func (b *StanzaBuilder) Line(line Line) *StanzaBuilder {
	b.stanza.Lines = append(b.stanza.Lines, line)
	return b
}

// Build finalizes the stanza.
func (b *StanzaBuilder) Build() Stanza {
	return b.stanza
}
