// Package unique deduplicates slices.
package unique

import (
	"cmp"
	"slices"
)

// Values returns the distinct elements of input in first-seen order.
func Values[T comparable](input []T) []T {
	u := make([]T, 0, len(input))
	m := make(map[T]struct{}, len(input))
	for _, val := range input {
		if _, ok := m[val]; !ok {
			m[val] = struct{}{}
			u = append(u, val)
		}
	}
	return u
}

// Sorted returns the distinct elements of input in ascending order.
func Sorted[T cmp.Ordered](input []T) []T {
	u := Values(input)
	slices.Sort(u)
	return u
}
