// Package rosterpath implements the internal path representation shared by
// the roster, change set, and roster delta components: slash-separated
// path components with an explicit root sentinel, grounded on the
// root-relative path helpers in mutagen's synchronization core
// (core/path.go's pathJoin/pathDir/PathBase/pathLess), generalized to carry
// an explicit root element rather than eliding it implicitly.
package rosterpath

import (
	"strings"

	"github.com/pkg/errors"
)

// Component is a single path element. The empty string is the reserved root
// sentinel and may only appear as the first element of a Path.
type Component string

// ValidateComponent checks a non-root component against the specification's
// path-component invariants: non-empty, no '/', no NUL, and not "." or "..".
func ValidateComponent(c Component) error {
	s := string(c)
	if s == "" {
		return errors.New("empty path component")
	}
	if s == "." || s == ".." {
		return errors.Errorf("reserved path component %q", s)
	}
	if strings.IndexByte(s, '/') != -1 {
		return errors.Errorf("path component %q contains a slash", s)
	}
	if strings.IndexByte(s, 0) != -1 {
		return errors.Errorf("path component %q contains a NUL byte", s)
	}
	return nil
}

// Path is a sequence of components. A nil/zero-length Path denotes "no
// path" (an absent location); a single-element Path (always the root
// sentinel) denotes the root directory itself.
type Path struct {
	components []Component
}

// Root returns the path denoting the root directory.
func Root() Path {
	return Path{components: []Component{""}}
}

// Empty returns the "no path" sentinel value.
func Empty() Path {
	return Path{}
}

// IsEmpty reports whether p is the "no path" sentinel.
func (p Path) IsEmpty() bool {
	return len(p.components) == 0
}

// IsRoot reports whether p denotes the root directory.
func (p Path) IsRoot() bool {
	return len(p.components) == 1
}

// Components returns the path's raw component sequence, root sentinel
// included. Callers must not mutate the returned slice.
func (p Path) Components() []Component {
	return p.components
}

// Depth returns the number of non-root components (0 for the root itself).
func (p Path) Depth() int {
	if p.IsEmpty() {
		return 0
	}
	return len(p.components) - 1
}

// Base returns the final path component, or the root sentinel ("") for the
// root path itself. Calling Base on an empty path panics.
func (p Path) Base() Component {
	if p.IsEmpty() {
		panic("rosterpath: Base called on empty path")
	}
	return p.components[len(p.components)-1]
}

// Parent returns the path of the containing directory. Calling Parent on
// the root or an empty path panics.
func (p Path) Parent() Path {
	if p.IsEmpty() || p.IsRoot() {
		panic("rosterpath: Parent called on root or empty path")
	}
	parent := make([]Component, len(p.components)-1)
	copy(parent, p.components[:len(p.components)-1])
	return Path{components: parent}
}

// Child returns the path obtained by appending name below p. Calling Child
// on an empty path panics, since there is no path to extend.
func (p Path) Child(name Component) Path {
	if p.IsEmpty() {
		panic("rosterpath: Child called on empty path")
	}
	child := make([]Component, len(p.components)+1)
	copy(child, p.components)
	child[len(p.components)] = name
	return Path{components: child}
}

// String renders the path in its external, slash-joined form with the
// leading root sentinel elided.
func (p Path) String() string {
	if p.IsEmpty() || p.IsRoot() {
		return ""
	}
	parts := make([]string, len(p.components)-1)
	for i, c := range p.components[1:] {
		parts[i] = string(c)
	}
	return strings.Join(parts, "/")
}

// Parse converts the external slash-joined form (root sentinel elided) back
// into a Path. An empty string parses to the root path; Parse never
// produces the "no path" sentinel, since external path text always denotes
// some location.
func Parse(s string) Path {
	if s == "" {
		return Root()
	}
	parts := strings.Split(s, "/")
	components := make([]Component, len(parts)+1)
	components[0] = ""
	for i, part := range parts {
		components[i+1] = Component(part)
	}
	return Path{components: components}
}

// Equal reports whether two paths denote the same location.
func Equal(a, b Path) bool {
	if len(a.components) != len(b.components) {
		return false
	}
	for i := range a.components {
		if a.components[i] != b.components[i] {
			return false
		}
	}
	return true
}

// IsAncestor reports whether ancestor is a non-strict ancestor of p (i.e.
// ancestor == p or ancestor is a containing directory of p).
func IsAncestor(ancestor, p Path) bool {
	if len(ancestor.components) > len(p.components) {
		return false
	}
	for i := range ancestor.components {
		if ancestor.components[i] != p.components[i] {
			return false
		}
	}
	return true
}

// IsStrictAncestor reports whether ancestor is a strict ancestor of p.
func IsStrictAncestor(ancestor, p Path) bool {
	return len(ancestor.components) < len(p.components) && IsAncestor(ancestor, p)
}

// Less performs the lexicographic-over-raw-bytes comparison used to order
// sibling path components, and by extension whole paths compared
// component-wise. It is used wherever a stable, canonical ordering over
// paths is required outside of a roster's own sorted-children walk (for
// example, sorting restriction path lists or diagnostic output).
func Less(a, b Path) bool {
	n := len(a.components)
	if len(b.components) < n {
		n = len(b.components)
	}
	for i := 0; i < n; i++ {
		if a.components[i] != b.components[i] {
			return a.components[i] < b.components[i]
		}
	}
	return len(a.components) < len(b.components)
}
