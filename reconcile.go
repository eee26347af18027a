// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"
	"golang.org/x/exp/slices"
)

// Observation is the engine's live view on an instance container.
type Observation = engine.Inspection

// containerNamespace scopes the synthetic instance IDs derived from container
// IDs.
var containerNamespace = uuid.NewSHA1(uuid.NameSpaceURL,
	[]byte("https://github.com/siemens/ldbengine/container"))

// SyntheticID returns the stable instance ID for a container that has no
// metadata record. The same container ID always results in the same instance
// ID.
func SyntheticID(containerID string) string {
	return uuid.NewSHA1(containerNamespace, []byte(containerID)).String()
}

// Reconcile merges the engine's observation of a container with the stored
// metadata record of the instance. Either may be nil, but not both. The
// engine is authoritative for the runtime facts (image, published port,
// status, creation time), while the store is authoritative for what the
// engine doesn't know or forgot: identity, display name, database type, root
// password and volume path.
//
// An observation lacking configuration or state information fails with
// model.ErrPartialState.
func Reconcile(obs *Observation, stored *model.Instance) (model.Instance, error) {
	if obs == nil && stored == nil {
		return model.Instance{}, fmt.Errorf("%w: neither container nor metadata record",
			model.ErrPartialState)
	}
	if obs != nil && (obs.Config == nil || obs.State == nil) {
		return model.Instance{}, fmt.Errorf("%w: container %s lacks configuration or state",
			model.ErrPartialState, obs.ID)
	}
	var inst model.Instance
	if stored != nil {
		inst = *stored
	}
	if obs == nil {
		return inst, nil
	}
	if stored == nil {
		inst.ID = SyntheticID(obs.ID)
		inst.Name = strings.TrimPrefix(obs.Name, "/")
		inst.DatabaseType, _ = dbtype.Infer(obs.Config.Image)
	}
	if obs.Config.Image != "" {
		inst.Image, inst.Tag = SplitImageRef(obs.Config.Image)
	}
	if port := publishedPort(obs.Ports); port != 0 {
		inst.Port = port
	}
	inst.Status = DeriveStatus(obs.State)
	if created, err := time.Parse(time.RFC3339Nano, obs.Created); err == nil {
		inst.CreatedAt = created
	}
	if obs.ID != "" {
		inst.ContainerID = obs.ID
	}
	return inst, nil
}

// DeriveStatus maps the engine's container state onto an instance status.
// Please note that the engine reports paused containers as also running.
func DeriveStatus(state *engine.State) model.Status {
	switch {
	case state == nil:
		return model.Error
	case state.Running:
		return model.Running
	case state.Paused:
		return model.Stopped
	case state.Restarting:
		return model.Creating
	case state.Error != "":
		return model.Error
	}
	return model.Stopped
}

// StatusLabel returns the engine-level status of a container: "running",
// "paused", "restarting", "removing", "exited", "dead", or "created".
func StatusLabel(state *engine.State) (string, error) {
	if state == nil {
		return "", fmt.Errorf("%w: container lacks state", model.ErrPartialState)
	}
	switch {
	case state.Running && !state.Paused && !state.Restarting:
		return "running", nil
	case state.Paused:
		return "paused", nil
	case state.Restarting:
		return "restarting", nil
	case state.Status == "removing":
		return "removing", nil
	case state.Status == "exited":
		return "exited", nil
	case state.Dead || state.Status == "dead":
		return "dead", nil
	}
	return "created", nil
}

// SplitImageRef splits an image reference into its image and tag parts. The
// tag is separated by the last colon after the last slash, so registry ports
// are not mistaken for tags. Without a tag, SplitImageRef returns "latest".
// Any digest is dropped.
func SplitImageRef(ref string) (image string, tag string) {
	ref, _, _ = strings.Cut(ref, "@")
	slash := strings.LastIndex(ref, "/")
	colon := strings.LastIndex(ref, ":")
	if colon > slash {
		return ref[:colon], ref[colon+1:]
	}
	return ref, "latest"
}

// publishedPort returns the first non-zero host port in the order of the
// container ports, or zero.
func publishedPort(ports nat.PortMap) uint16 {
	cports := make([]nat.Port, 0, len(ports))
	for cport := range ports {
		cports = append(cports, cport)
	}
	slices.Sort(cports)
	for _, cport := range cports {
		for _, binding := range ports[cport] {
			port, err := strconv.ParseUint(binding.HostPort, 10, 16)
			if err == nil && port != 0 {
				return uint16(port)
			}
		}
	}
	return 0
}
