// Package hash provides the opaque 20-byte content hash used to identify
// file versions, manifests, and revisions. The core packages never inspect
// the bytes of a ContentHash beyond equality; this package exists only so
// that every collaborator agrees on the wire width and hex representation.
package hash

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Size is the fixed width, in bytes, of every content hash in the system.
const Size = 20

// ContentHash is a 20-byte content-addressable identifier. It is used for
// file version ids, manifest ids, and revision ids alike; nothing in this
// package or its callers distinguishes between those uses structurally.
type ContentHash [Size]byte

// Null is the sentinel content hash used to mean "no content" (for example,
// the old side of a node creation, or the new side of a deletion) in wire
// formats that need an explicit hex literal rather than an absent field.
var Null ContentHash

// IsNull reports whether h is the all-zero sentinel.
func (h ContentHash) IsNull() bool {
	return h == Null
}

// String renders the hash as lowercase hex, matching the wire form used by
// the basic-IO codec's hex literals.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHex parses a lowercase hex string into a ContentHash. It requires
// exactly 2*Size hex digits.
func ParseHex(s string) (ContentHash, error) {
	var h ContentHash
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.Wrap(err, "invalid hex content hash")
	}
	if len(decoded) != Size {
		return h, errors.Errorf("content hash must be %d bytes, got %d", Size, len(decoded))
	}
	copy(h[:], decoded)
	return h, nil
}

// Algorithm identifies a concrete hashing algorithm backing the opaque
// content hash. The core treats content hashes as opaque identity tokens
// (per the specification's out-of-scope cryptographic primitives); this
// enum only exists at the boundary where bytes are actually digested, e.g.
// when a collaborator computes the manifest hash for a new revision.
type Algorithm uint8

const (
	// AlgorithmDefault is the unspecified/zero algorithm value.
	AlgorithmDefault Algorithm = iota
	// AlgorithmBLAKE2b160 selects BLAKE2b-160, the default algorithm for new
	// content hashes.
	AlgorithmBLAKE2b160
	// AlgorithmSHA1 selects truncated SHA-1, retained for compatibility with
	// identifiers produced by legacy repositories.
	AlgorithmSHA1
)

// Supported reports whether the algorithm is usable in this build.
func (a Algorithm) Supported() bool {
	switch a {
	case AlgorithmBLAKE2b160, AlgorithmSHA1:
		return true
	default:
		return false
	}
}

// Description returns a human-readable name for the algorithm.
func (a Algorithm) Description() string {
	switch a {
	case AlgorithmBLAKE2b160:
		return "BLAKE2b-160"
	case AlgorithmSHA1:
		return "SHA-1"
	default:
		return "Unknown"
	}
}

// Sum computes the content hash of data using the algorithm. It panics if
// the algorithm is unsupported, matching the panic-on-misuse behavior of
// the equivalent factory lookups this is grounded on.
func (a Algorithm) Sum(data []byte) ContentHash {
	var result ContentHash
	switch a {
	case AlgorithmBLAKE2b160:
		digest, _ := blake2b.New(Size, nil)
		digest.Write(data)
		copy(result[:], digest.Sum(nil))
	case AlgorithmSHA1:
		full := sha1.Sum(data)
		copy(result[:], full[:Size])
	default:
		panic("unsupported or default content hash algorithm")
	}
	return result
}
