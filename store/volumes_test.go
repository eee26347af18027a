// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package store

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("instance volumes", func() {

	var v *Volumes

	BeforeEach(func() {
		v = NewVolumes(GinkgoT().TempDir())
	})

	It("derives volume paths without creating them", func() {
		Expect(v.Path("abc")).To(Equal(filepath.Join(v.Root(), "abc")))
		Expect(v.Path("abc")).NotTo(BeADirectory())
	})

	It("creates, re-ensures and removes volume directories", func() {
		path := Successful(v.Ensure("abc"))
		Expect(path).To(BeADirectory())
		Expect(os.WriteFile(filepath.Join(path, "PG_VERSION"), []byte("16"), 0o644)).To(Succeed())
		Expect(v.Ensure("abc")).To(Equal(path))
		Expect(v.Remove(path)).To(Succeed())
		Expect(path).NotTo(BeAnExistingFile())
		Expect(v.Remove(path)).To(Succeed())
		Expect(v.Remove("")).To(Succeed())
	})

	It("rejects volume IDs escaping the volumes directory", func() {
		Expect(v.Ensure("../etc")).Error().To(HaveOccurred())
		Expect(v.Ensure("")).Error().To(HaveOccurred())
	})

	It("refuses to remove directories outside the volumes directory", func() {
		outside := filepath.Join(filepath.Dir(v.Root()), "precious")
		Expect(os.Mkdir(outside, 0o755)).To(Succeed())
		Expect(v.Contains(outside)).To(BeFalse())
		Expect(v.Contains(v.Root())).To(BeFalse())
		Expect(v.Contains(filepath.Join(v.Root(), "abc", "..", "..", "precious"))).To(BeFalse())
		Expect(v.Contains(filepath.Join(v.Root(), "abc"))).To(BeTrue())

		Expect(v.Remove(outside)).To(MatchError(ErrOutsideVolumes))
		Expect(v.Remove(v.Root())).To(MatchError(ErrOutsideVolumes))
		Expect(v.Remove(filepath.Join(v.Root(), "..", "precious"))).To(MatchError(ErrOutsideVolumes))
		Expect(outside).To(BeADirectory())
	})

	It("finds orphaned volume directories", func() {
		Expect(v.Orphans(nil)).To(BeEmpty())
		_ = Successful(v.Ensure("abc"))
		_ = Successful(v.Ensure("def"))
		Expect(v.Orphans([]string{"abc", "xyz"})).To(ConsistOf("def"))
	})

})
