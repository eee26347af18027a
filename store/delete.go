// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package store

import "golang.org/x/exp/slices"

// deleteAndZeroFunc removes all elements matching del, keeping the order of the
// remaining elements, and zeroes the now unused tail of the backing array so
// that removed records (including their credentials) are not kept reachable. It
// returns the shortened slice and the number of elements removed.
func deleteAndZeroFunc[S ~[]E, E any](s S, del func(E) bool) (S, int) {
	i := slices.IndexFunc(s, del)
	if i == -1 {
		return s, 0
	}
	for j := i + 1; j < len(s); j++ {
		if v := s[j]; !del(v) {
			s[i] = v
			i++
		}
	}
	removed := len(s) - i
	var zero E
	for j := i; j < len(s); j++ {
		s[j] = zero
	}
	return s[:i], removed
}
