// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package hub

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("tags", func() {

	It("sorts tags newest first", func() {
		tags := []string{"9.6", "bookworm", "16-alpine", "16", "10", "16.2", "alpine", "15.10", "15.9"}
		SortTags(tags)
		Expect(tags).To(HaveExactElements(
			"16.2", "16", "16-alpine", "15.10", "15.9", "10", "9.6", "alpine", "bookworm"))
	})

	It("categorizes tags", func() {
		cats := Categorize([]string{"latest", "7", "7.2.4", "7-alpine", "latest-alpine", "bookworm", "6.2"})
		Expect(cats.Latest).To(HaveExactElements("latest", "latest-alpine"))
		Expect(cats.Versions).To(HaveExactElements("7.2.4", "7", "6.2"))
		Expect(cats.Variants).To(HaveExactElements("7-alpine", "bookworm"))
	})

	DescribeTable("parsing leading versions",
		func(name string, version []int, rest string) {
			v, r := leadingVersion(name)
			if version == nil {
				Expect(v).To(BeNil())
			} else {
				Expect(v).To(Equal(version))
			}
			Expect(r).To(Equal(rest))
		},
		Entry(nil, "16", []int{16}, ""),
		Entry(nil, "16.2.1", []int{16, 2, 1}, ""),
		Entry(nil, "16-alpine3.19", []int{16}, "-alpine3.19"),
		Entry(nil, "16.", []int{16}, "."),
		Entry(nil, "alpine", nil, "alpine"),
		Entry(nil, "", nil, ""),
	)

	It("lists the supported images", func() {
		Expect(SupportedImages()).To(HaveExactElements(
			HaveField("Repository", "library/postgres"),
			HaveField("Repository", "library/redis"),
			HaveField("Repository", "library/mysql"),
			HaveField("Repository", "library/mongo"),
		))
		Expect(SupportedImages()[0].Name).To(Equal("postgres"))
	})

})
