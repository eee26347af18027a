// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

const someContainerID = "c0ffee0000000000000000000000000000000000000000000000000000000001"

func someObservation() *Observation {
	return &Observation{
		ID:      someContainerID,
		Name:    "/ldb-my-db",
		Created: "2024-05-01T12:34:56.123456789Z",
		Config: &engine.Config{
			Image: "postgres:16",
		},
		State: &engine.State{
			Status:  "running",
			Running: true,
		},
		Ports: nat.PortMap{
			"5433/tcp": []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: "5433"}},
		},
	}
}

func someRecord() *model.Instance {
	return &model.Instance{
		ID:           "2b9d6f1c-4a57-4c3e-9a0e-3f8e7d1f4c11",
		Name:         "My DB",
		DatabaseType: model.MySQL,
		Image:        "mysql",
		Tag:          "8",
		Port:         3306,
		RootPassword: "secret",
		Status:       model.Stopped,
		CreatedAt:    time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
		VolumePath:   "/tmp/volumes/2b9d6f1c-4a57-4c3e-9a0e-3f8e7d1f4c11",
		ContainerID:  "old",
	}
}

var _ = Describe("reconciling", func() {

	It("needs at least one source", func() {
		Expect(Reconcile(nil, nil)).Error().To(MatchError(model.ErrPartialState))
	})

	It("rejects partial observations", func() {
		obs := someObservation()
		obs.Config = nil
		Expect(Reconcile(obs, someRecord())).Error().To(MatchError(model.ErrPartialState))
		obs = someObservation()
		obs.State = nil
		Expect(Reconcile(obs, nil)).Error().To(MatchError(model.ErrPartialState))
	})

	It("returns the stored record without observation", func() {
		Expect(Reconcile(nil, someRecord())).To(Equal(*someRecord()))
	})

	It("merges engine facts into the stored record", func() {
		inst := Successful(Reconcile(someObservation(), someRecord()))
		Expect(inst.ID).To(Equal("2b9d6f1c-4a57-4c3e-9a0e-3f8e7d1f4c11"))
		Expect(inst.Name).To(Equal("My DB"))
		Expect(inst.DatabaseType).To(Equal(model.MySQL), "stored type must win over image inference")
		Expect(inst.Image).To(Equal("postgres"))
		Expect(inst.Tag).To(Equal("16"))
		Expect(inst.Port).To(Equal(uint16(5433)))
		Expect(inst.RootPassword).To(Equal("secret"))
		Expect(inst.Status).To(Equal(model.Running))
		Expect(inst.CreatedAt).To(Equal(time.Date(2024, 5, 1, 12, 34, 56, 123456789, time.UTC)))
		Expect(inst.VolumePath).To(Equal("/tmp/volumes/2b9d6f1c-4a57-4c3e-9a0e-3f8e7d1f4c11"))
		Expect(inst.ContainerID).To(Equal(someContainerID))
	})

	It("keeps stored facts the engine doesn't supply", func() {
		obs := someObservation()
		obs.Ports = nil
		obs.Created = "yesterday"
		obs.Config.Image = ""
		inst := Successful(Reconcile(obs, someRecord()))
		Expect(inst.Port).To(Equal(uint16(3306)))
		Expect(inst.CreatedAt).To(Equal(someRecord().CreatedAt))
		Expect(inst.Image).To(Equal("mysql"))
		Expect(inst.Tag).To(Equal("8"))
	})

	It("synthesizes unrecorded instances", func() {
		obs := someObservation()
		obs.Config.Image = "docker.io/library/redis:7-alpine"
		inst := Successful(Reconcile(obs, nil))
		Expect(inst.ID).To(Equal(SyntheticID(someContainerID)))
		Expect(inst.Name).To(Equal("ldb-my-db"))
		Expect(inst.DatabaseType).To(Equal(model.Redis))
		Expect(inst.Image).To(Equal("docker.io/library/redis"))
		Expect(inst.Tag).To(Equal("7-alpine"))
		Expect(inst.RootPassword).To(BeEmpty())
		Expect(inst.VolumePath).To(BeEmpty())

		again := Successful(Reconcile(obs, nil))
		Expect(again.ID).To(Equal(inst.ID))
	})

	It("derives stable synthetic IDs", func() {
		Expect(SyntheticID("abc")).To(Equal(SyntheticID("abc")))
		Expect(SyntheticID("abc")).NotTo(Equal(SyntheticID("abd")))
		Expect(SyntheticID("abc")).To(MatchRegexp(`^[0-9a-f]{8}-[0-9a-f]{4}-5[0-9a-f]{3}-`))
	})

	It("picks the published port deterministically", func() {
		Expect(publishedPort(nat.PortMap{
			"6000/tcp": []nat.PortBinding{{HostPort: "6001"}},
			"5000/tcp": []nat.PortBinding{{HostPort: ""}, {HostPort: "5001"}},
			"4000/tcp": nil,
		})).To(Equal(uint16(5001)))
		Expect(publishedPort(nil)).To(BeZero())
	})

	DescribeTable("splitting image references",
		func(ref, image, tag string) {
			i, t := SplitImageRef(ref)
			Expect(i).To(Equal(image))
			Expect(t).To(Equal(tag))
		},
		Entry(nil, "postgres:16", "postgres", "16"),
		Entry(nil, "postgres", "postgres", "latest"),
		Entry(nil, "localhost:5000/postgres", "localhost:5000/postgres", "latest"),
		Entry(nil, "localhost:5000/postgres:15-alpine", "localhost:5000/postgres", "15-alpine"),
		Entry(nil, "mongo:7@sha256:0123", "mongo", "7"),
	)

	DescribeTable("deriving instance status",
		func(state *engine.State, status model.Status) {
			Expect(DeriveStatus(state)).To(Equal(status))
		},
		Entry("running", &engine.State{Running: true}, model.Running),
		Entry("running while paused", &engine.State{Running: true, Paused: true}, model.Running),
		Entry("paused", &engine.State{Paused: true}, model.Stopped),
		Entry("restarting", &engine.State{Restarting: true}, model.Creating),
		Entry("failed", &engine.State{Error: "D'OH!"}, model.Error),
		Entry("restarting beats error", &engine.State{Restarting: true, Error: "D'OH!"}, model.Creating),
		Entry("exited", &engine.State{Status: "exited"}, model.Stopped),
		Entry("missing", nil, model.Error),
	)

	DescribeTable("labelling engine status",
		func(state *engine.State, label string) {
			Expect(StatusLabel(state)).To(Equal(label))
		},
		Entry(nil, &engine.State{Status: "running", Running: true}, "running"),
		Entry(nil, &engine.State{Status: "paused", Running: true, Paused: true}, "paused"),
		Entry(nil, &engine.State{Status: "restarting", Running: true, Restarting: true}, "restarting"),
		Entry(nil, &engine.State{Status: "removing"}, "removing"),
		Entry(nil, &engine.State{Status: "exited"}, "exited"),
		Entry(nil, &engine.State{Status: "dead", Dead: true}, "dead"),
		Entry(nil, &engine.State{Status: "created"}, "created"),
	)

	It("fails labelling without state", func() {
		Expect(StatusLabel(nil)).Error().To(MatchError(model.ErrPartialState))
	})

})
