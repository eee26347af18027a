// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package store

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("deleting slice elements", func() {

	It("deletes and zeros", func() {
		s := []*int{new(int), nil, new(int), nil, new(int)}
		*s[0] = 1
		*s[2] = 2
		*s[4] = 3
		orig := s
		s, removed := deleteAndZeroFunc(s, func(e *int) bool { return e == nil })
		Expect(removed).To(Equal(2))
		Expect(s).To(HaveLen(3))
		Expect(*s[0]).To(Equal(1))
		Expect(*s[1]).To(Equal(2))
		Expect(*s[2]).To(Equal(3))
		Expect(orig[3:]).To(HaveEach(BeNil()))
	})

	It("leaves the slice alone when nothing matches", func() {
		s := []int{1, 2, 3}
		s2, removed := deleteAndZeroFunc(s, func(e int) bool { return e == 42 })
		Expect(removed).To(BeZero())
		Expect(s2).To(Equal([]int{1, 2, 3}))
	})

})
