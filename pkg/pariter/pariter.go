// Package pariter implements the joint walk of two ordered maps used by
// the pairwise diffs of the versioned-tree core: change-set computation
// and roster delta construction both need to visit keys present in only
// the left map, only the right map, or both, in ascending key order.
//
// The source material drives this kind of walk with a C++ iterator pair
// advanced in lockstep. Rather than model that with goroutines and
// channels (which would introduce a hidden suspension point), this is an
// explicit pull-based state machine: State reports which branch the
// cursor currently sits in, and Advance moves past the current entry (or
// entries, for InBoth) to the next.
package pariter

// State identifies which side (or both) the walk's cursor currently sits
// on, or that the walk is exhausted.
type State int

const (
	// InLeft means the current key exists only in the left map.
	InLeft State = iota
	// InRight means the current key exists only in the right map.
	InRight
	// InBoth means the current key exists in both maps.
	InBoth
	// Done means every key has been visited.
	Done
)

// Iterator walks two maps keyed by K in ascending order (per the supplied
// less function), yielding InLeft/InRight/InBoth transitions.
type Iterator[K comparable, V any] struct {
	leftKeys, rightKeys []K
	left, right         map[K]V
	li, ri              int
	less                func(a, b K) bool
	state               State
}

// New constructs an iterator over left and right, using less to order
// keys. less must define a strict total order consistent across both key
// sets (e.g. numeric order for node ids, or rosterpath.Less for paths).
func New[K comparable, V any](left, right map[K]V, less func(a, b K) bool) *Iterator[K, V] {
	it := &Iterator[K, V]{
		leftKeys:  sortedKeys(left, less),
		rightKeys: sortedKeys(right, less),
		left:      left,
		right:     right,
		less:      less,
	}
	it.settle()
	return it
}

func sortedKeys[K comparable, V any](m map[K]V, less func(a, b K) bool) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// settle recomputes state from the current li/ri cursor positions.
func (it *Iterator[K, V]) settle() {
	switch {
	case it.li >= len(it.leftKeys) && it.ri >= len(it.rightKeys):
		it.state = Done
	case it.li >= len(it.leftKeys):
		it.state = InRight
	case it.ri >= len(it.rightKeys):
		it.state = InLeft
	default:
		lk, rk := it.leftKeys[it.li], it.rightKeys[it.ri]
		switch {
		case it.less(lk, rk):
			it.state = InLeft
		case it.less(rk, lk):
			it.state = InRight
		default:
			it.state = InBoth
		}
	}
}

// State reports the current transition.
func (it *Iterator[K, V]) State() State {
	return it.state
}

// LeftKey returns the current left-side key. Valid only when State is
// InLeft or InBoth.
func (it *Iterator[K, V]) LeftKey() K {
	return it.leftKeys[it.li]
}

// LeftValue returns the current left-side value. Valid only when State is
// InLeft or InBoth.
func (it *Iterator[K, V]) LeftValue() V {
	return it.left[it.LeftKey()]
}

// RightKey returns the current right-side key. Valid only when State is
// InRight or InBoth.
func (it *Iterator[K, V]) RightKey() K {
	return it.rightKeys[it.ri]
}

// RightValue returns the current right-side value. Valid only when State
// is InRight or InBoth.
func (it *Iterator[K, V]) RightValue() V {
	return it.right[it.RightKey()]
}

// Advance moves past the current entry (both entries, if InBoth) and
// recomputes State. Calling Advance when State is Done is a no-op.
func (it *Iterator[K, V]) Advance() {
	switch it.state {
	case InLeft:
		it.advanceLeft()
	case InRight:
		it.advanceRight()
	case InBoth:
		it.advanceLeft()
		it.advanceRight()
	case Done:
		return
	}
	it.settle()
}

func (it *Iterator[K, V]) advanceLeft() {
	it.li++
}

func (it *Iterator[K, V]) advanceRight() {
	it.ri++
}
