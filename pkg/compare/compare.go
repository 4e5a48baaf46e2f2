// Package compare provides small generic helpers for the structural equality
// checks used when comparing schema snapshots.
package compare

// NilCheck performs a nil check on two pointers and returns whether they are
// equal and whether further field comparison is needed.
//
// Example:
//
//	func (t *Table) Equal(other *Table) bool {
//	    if eq, more := compare.NilCheck(t, other); !more {
//	        return eq
//	    }
//	    // Continue with field comparisons...
//	}
func NilCheck[T any](a, b *T) (equal bool, needsMoreChecks bool) {
	if a == nil && b == nil {
		return true, false
	}
	if a == nil || b == nil {
		return false, false
	}
	return false, true
}

// Pointers compares two pointer values for equality. Returns true if both are
// nil, or both are non-nil with equal values.
func Pointers[T comparable](a, b *T) bool {
	if (a != nil) != (b != nil) {
		return false
	}
	return a == nil || *a == *b
}

// Slices compares two slices for equality using an equality function for
// elements. Order is significant.
func Slices[T any](a, b []T, equalFunc func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalFunc(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SlicesUnordered compares two slices for equality regardless of order.
func SlicesUnordered[T any](a, b []T, equalFunc func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}

	matched := make([]bool, len(b))
	for _, aElem := range a {
		found := false
		for j, bElem := range b {
			if !matched[j] && equalFunc(aElem, bElem) {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
