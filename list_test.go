// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/siemens/ldbengine/internal/test"
	"github.com/siemens/ldbengine/model"
	"github.com/siemens/ldbengine/store"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/siemens/ldbengine/matcher"
	. "github.com/thediveo/success"
)

// failingInspections wraps a FakeEngine in order to fail inspecting specific
// containers.
type failingInspections struct {
	*test.FakeEngine
	failing map[string]error
}

func (f *failingInspections) InspectContainer(ctx context.Context, ref string) (*Observation, error) {
	if err, ok := f.failing[ref]; ok {
		return nil, err
	}
	return f.FakeEngine.InspectContainer(ctx, ref)
}

var _ = Describe("listing instances", func() {

	var eng *test.FakeEngine
	var mgr *Manager

	BeforeEach(test.LogToGinkgo)

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(goroutinesUnwindTimeout).WithPolling(goroutinesUnwindPolling).
				ShouldNot(HaveLeaked(goodgos))
		})
		eng = test.NewFakeEngine()
		datadir := filepath.Join(GinkgoT().TempDir(), "ldb-engine")
		mgr = New(eng, Successful(store.Open(datadir)), store.NewVolumes(datadir), WithWorkers(2))
	})

	It("lists nothing", func(ctx context.Context) {
		Expect(mgr.List(ctx)).To(BeEmpty())
	})

	It("lists only instance containers, including stopped ones, in engine order", func(ctx context.Context) {
		eng.Add(test.FakeContainer{Name: "foreign", Image: "busybox", Status: "running"})
		a := Successful(mgr.Create(ctx, myDBRequest()))
		req := myDBRequest()
		req.Name = "cache"
		req.DatabaseType = model.Redis
		req.Image = "redis"
		b := Successful(mgr.Create(ctx, req))
		Expect(mgr.Start(ctx, b.ID)).Error().NotTo(HaveOccurred())

		results := Successful(mgr.List(ctx))
		Expect(results).To(HaveExactElements(
			And(HaveField("ContainerID", a.ContainerID), HaveField("Err", BeNil()),
				HaveField("Instance", And(HaveInstanceNameID(a.ID), HaveStatus(model.Stopped)))),
			And(HaveField("ContainerID", b.ContainerID), HaveField("Err", BeNil()),
				HaveField("Instance", And(HaveInstanceNameID(b.ID), HaveStatus(model.Running), HavePort(6379)))),
		))
		Expect(results[1].Instance.RootPassword).To(Equal("secret"))
	})

	It("lists unrecorded instance containers", func(ctx context.Context) {
		id := eng.Add(test.FakeContainer{Name: "ldb-legacy", Image: "mongo:7", Status: "exited"})
		results := Successful(mgr.List(ctx))
		Expect(results).To(HaveLen(1))
		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[0].Instance).To(And(
			HaveInstanceNameID(SyntheticID(id)),
			HaveInstanceNameID("ldb-legacy"),
			HaveField("DatabaseType", model.MongoDB),
			HaveStatus(model.Stopped)))
	})

	It("correlates by instance label when the container ID is unknown", func(ctx context.Context) {
		inst := Successful(mgr.Create(ctx, myDBRequest()))
		inst.ContainerID = ""
		Expect(mgr.Store().Update(inst)).To(Succeed())
		Expect(eng.Modify(inst.ContainerName(), func(c *test.FakeContainer) { c.Name = "ldb-renamed" })).To(BeTrue())
		results := Successful(mgr.List(ctx))
		Expect(results).To(ConsistOf(HaveField("Instance", And(
			HaveInstanceNameID(inst.ID),
			HaveField("RootPassword", "secret")))))
	})

	It("reports failing containers without failing the whole list", func(ctx context.Context) {
		a := Successful(mgr.Create(ctx, myDBRequest()))
		req := myDBRequest()
		req.Name = "broken"
		b := Successful(mgr.Create(ctx, req))
		req.Name = "partial"
		c := Successful(mgr.Create(ctx, req))
		Expect(eng.Modify(c.ContainerID, func(c *test.FakeContainer) { c.Partial = true })).To(BeTrue())

		failing := &failingInspections{
			FakeEngine: eng,
			failing:    map[string]error{b.ContainerID: errors.New("D'OH!")},
		}
		mgr := New(failing, mgr.Store(), mgr.Volumes())
		results := Successful(mgr.List(ctx))
		Expect(results).To(HaveExactElements(
			And(HaveField("ContainerID", a.ContainerID), HaveField("Err", BeNil())),
			And(HaveField("ContainerID", b.ContainerID), HaveField("Err", MatchError("D'OH!"))),
			And(HaveField("ContainerID", c.ContainerID), HaveField("Err", MatchError(model.ErrPartialState))),
		))
	})

	It("fails when the containers cannot be listed", func(ctx context.Context) {
		eng.SetUnavailable(true)
		Expect(mgr.List(ctx)).Error().To(MatchError(model.ErrEngineUnavailable))
	})

	It("skips link alias names", func() {
		Expect(containerName([]string{"/other/ldb-alias", "/foo"})).To(Equal("foo"))
		Expect(containerName(nil)).To(BeEmpty())
	})

	It("inspects in parallel", NodeTimeout(10*time.Second), func(ctx context.Context) {
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			req := myDBRequest()
			req.Name = name
			Successful(mgr.Create(ctx, req))
		}
		Expect(mgr.List(ctx)).To(HaveLen(5))
		Expect(eng.Calls(test.OpInspect)).To(Equal(5))
	})

})
