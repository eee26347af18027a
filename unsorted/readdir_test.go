// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package unsorted

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/fdooze"
	. "github.com/thediveo/success"
)

var _ = Describe("unsorted subdirectories", func() {

	BeforeEach(func() {
		goodfds := Filedescriptors()
		DeferCleanup(func() {
			Expect(Filedescriptors()).NotTo(HaveLeakedFds(goodfds))
		})
	})

	It("reports an error when not being able to read a directory", func() {
		Expect(Subdirs(filepath.Join(GinkgoT().TempDir(), "readdir-non-existing"))).
			Error().To(HaveOccurred())
	})

	It("returns only subdirectories", func() {
		dir := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(dir, "123"), 0o755)).To(Succeed())
		Expect(os.Mkdir(filepath.Join(dir, "456"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "ABC"), nil, 0o644)).To(Succeed())
		Expect(os.Symlink(filepath.Join(dir, "123"), filepath.Join(dir, "link"))).To(Succeed())
		Expect(Successful(Subdirs(dir))).To(ConsistOf("123", "456"))
	})

})
