package roster

import (
	"fmt"

	"github.com/pkg/errors"
)

// Domain contract violations: the caller passed a semantically invalid
// request. These are sentinel-wrapped so callers can distinguish them from
// invariant failures (bugs) using errors.Is.
var (
	ErrUnknownNode          = errors.New("unknown node id")
	ErrNodeNotDetached      = errors.New("node is not detached")
	ErrNodeStillAttached    = errors.New("node is still attached")
	ErrDirectoryNotEmpty    = errors.New("directory is not empty")
	ErrPathOccupied         = errors.New("path is already occupied")
	ErrParentMissing        = errors.New("parent path does not resolve to an existing node")
	ErrParentNotDirectory   = errors.New("parent path does not resolve to a directory")
	ErrRootAlreadyPresent   = errors.New("roster already has a root")
	ErrCannotDetachRoot     = errors.New("root node cannot be detached")
	ErrRecentlyDetachedHere = errors.New("node cannot be reattached to the location it was just detached from")
	ErrNotAFile             = errors.New("node is not a file")
	ErrContentMismatch      = errors.New("old content does not match node's current content")
	ErrNoOpDelta            = errors.New("delta's old and new content are identical")
	ErrNoSuchAttribute      = errors.New("node has no such attribute")
	ErrPathNotFound         = errors.New("path does not resolve to a node")
	ErrNodeDetached         = errors.New("node is detached and has no path")

	errDormantAttrHasValue = errors.New("dormant attribute must have an empty value")
)

// InvariantError signals a violation of a roster-internal invariant: a bug
// in the core or a corrupt input constructed by a trusted producer. It is
// distinct from the domain-contract-violation sentinels above, which
// signal caller misuse of an otherwise-sane roster.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "roster invariant violation: " + e.Reason
}

func invariantf(format string, args ...interface{}) error {
	return &InvariantError{Reason: fmt.Sprintf(format, args...)}
}
