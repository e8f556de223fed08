// Package basicio implements the line-oriented textual serialization format
// used for manifests, rosters, change sets, and roster deltas: symbols,
// double-quoted byte-transparent strings, and bracketed hex literals,
// grouped into blank-line-terminated stanzas.
//
// The codec is deliberately narrow: it has no notion of nesting, numbers,
// or lists beyond what a caller builds out of repeated lines with the same
// symbol. Every higher-level format in this module (manifest, roster,
// change set, roster delta, revision) is expressed as a sequence of
// Stanzas built with StanzaBuilder and written with WriteDocument, or
// parsed back with ParseDocument.
package basicio
