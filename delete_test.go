// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siemens/ldbengine/internal/test"
	"github.com/siemens/ldbengine/model"
	"github.com/siemens/ldbengine/store"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("deleting instances", func() {

	var eng *test.FakeEngine
	var datadir string
	var mgr *Manager

	BeforeEach(test.LogToGinkgo)

	BeforeEach(func() {
		eng = test.NewFakeEngine()
		datadir = filepath.Join(GinkgoT().TempDir(), "ldb-engine")
		mgr = New(eng, Successful(store.Open(datadir)), store.NewVolumes(datadir))
	})

	It("force-removes a running instance, keeping its volume", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		Expect(mgr.Start(ctx, inst.ID)).Error().NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(inst.VolumePath, "PG_VERSION"), []byte("16\n"), 0o644)).To(Succeed())

		Expect(mgr.Delete(ctx, inst.ContainerID, false)).To(Succeed())
		Expect(eng.Containers()).To(BeZero())
		Expect(mgr.Store().Get(inst.ID)).To(BeNil())
		Expect(filepath.Join(inst.VolumePath, "PG_VERSION")).To(BeARegularFile())
		Expect(mgr.OrphanVolumes()).To(ConsistOf(inst.ID))
	})

	It("removes the volume derived from the instance ID without a recorded path", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		path := inst.VolumePath
		inst.VolumePath = ""
		Expect(mgr.Store().Update(inst)).To(Succeed())

		Expect(mgr.Delete(ctx, inst.ID, true)).To(Succeed())
		Expect(path).NotTo(BeAnExistingFile())
		Expect(mgr.OrphanVolumes()).To(BeEmpty())
	})

	It("cleans up a record whose container is already gone", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		Expect(eng.RemoveContainer(ctx, inst.ContainerID, true)).To(Succeed())

		Expect(mgr.Delete(ctx, "ldb-my-db", true)).To(Succeed())
		Expect(mgr.Store().Load()).To(BeEmpty())
		Expect(inst.VolumePath).NotTo(BeAnExistingFile())
	})

	It("removes containers without records", func(ctx context.Context) {
		id := eng.Add(test.FakeContainer{Name: "ldb-legacy", Image: "redis:7", Status: "running"})
		Expect(mgr.Delete(ctx, id[:12], true)).To(Succeed())
		Expect(eng.Containers()).To(BeZero())
	})

	It("finds the record of a container referenced by ID prefix", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		Expect(mgr.Delete(ctx, inst.ContainerID[len(inst.ContainerID)-12:], true)).To(HaveOccurred(),
			"suffixes are not references")
		Expect(mgr.Delete(ctx, inst.ContainerID[:63], true)).To(Succeed())
		Expect(mgr.Store().Load()).To(BeEmpty())
		Expect(inst.VolumePath).NotTo(BeAnExistingFile())
	})

	It("fails on an unavailable engine, keeping the record", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		eng.SetUnavailable(true)
		Expect(mgr.Delete(ctx, inst.ID, true)).To(MatchError(model.ErrEngineUnavailable))
		Expect(mgr.Store().Get(inst.ID)).NotTo(BeNil())
		Expect(inst.VolumePath).To(BeADirectory())
	})

	It("never removes recorded volume paths outside the volumes directory", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		precious := filepath.Join(filepath.Dir(datadir), "precious")
		Expect(os.Mkdir(precious, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(precious, "keep"), nil, 0o644)).To(Succeed())
		volume := inst.VolumePath
		inst.VolumePath = precious
		Expect(mgr.Store().Update(inst)).To(Succeed())

		Expect(mgr.Delete(ctx, inst.ID, true)).To(Succeed())
		Expect(filepath.Join(precious, "keep")).To(BeARegularFile())
		Expect(volume).NotTo(BeAnExistingFile())
		Expect(GinkgoWriter.(fmt.Stringer).String()).To(ContainSubstring("ignoring volume path"))
	})

	It("only logs failing to remove the record of a removed container", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		eng.After(test.OpRemove, func() {
			Expect(mgr.Store().Remove(inst.ID)).To(Succeed())
		})

		Expect(mgr.Delete(ctx, inst.ID, true)).To(Succeed())
		Expect(eng.Containers()).To(BeZero())
		Expect(inst.VolumePath).NotTo(BeAnExistingFile())
		Expect(GinkgoWriter.(fmt.Stringer).String()).To(
			ContainSubstring("cannot remove metadata of instance " + inst.ID))
	})

	It("only logs an unwritable metadata store after removing the container", func(ctx context.Context) {
		if os.Geteuid() == 0 {
			Skip("needs non-root to make the data directory unwritable")
		}
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		Expect(os.Chmod(datadir, 0o500)).To(Succeed())
		DeferCleanup(func() { _ = os.Chmod(datadir, 0o755) })

		Expect(mgr.Delete(ctx, inst.ID, false)).To(Succeed())
		Expect(eng.Containers()).To(BeZero())
		Expect(mgr.Store().Get(inst.ID)).NotTo(BeNil())
		Expect(GinkgoWriter.(fmt.Stringer).String()).To(
			ContainSubstring("cannot remove metadata of instance " + inst.ID))
	})

})
