// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"time"

	"github.com/docker/go-connections/nat"
)

// Engine is the request/response contract of the container engine consumed by
// the lifecycle manager. All methods fail with model.ErrEngineUnavailable if
// the engine daemon cannot be reached.
type Engine interface {
	// CreateContainer creates (but does not start) a container, returning its
	// engine-assigned ID. The image must already be present.
	CreateContainer(ctx context.Context, spec ContainerSpec) (string, error)
	// StartContainer starts the referenced container.
	StartContainer(ctx context.Context, ref string) error
	// StopContainer stops the referenced container, giving it the specified
	// grace period before force termination.
	StopContainer(ctx context.Context, ref string, grace time.Duration) error
	// RestartContainer restarts the referenced container with the specified
	// grace period for stopping.
	RestartContainer(ctx context.Context, ref string, grace time.Duration) error
	// RemoveContainer removes the referenced container; when force is true it
	// gets removed regardless of its state.
	RemoveContainer(ctx context.Context, ref string, force bool) error
	// InspectContainer returns the details of the referenced container.
	InspectContainer(ctx context.Context, ref string) (*Inspection, error)
	// ListContainers lists either only the running containers or all
	// containers, including stopped ones.
	ListContainers(ctx context.Context, all bool) ([]Summary, error)
	// Close releases the engine connection.
	Close() error
}

// ContainerSpec describes a container to create.
type ContainerSpec struct {
	Name         string
	Image        string // full image reference, including tag.
	Env          []string
	Cmd          []string
	Labels       map[string]string
	ExposedPorts nat.PortSet
	PortBindings nat.PortMap
	Binds        []string
}

// Inspection is the engine's view on a single container. Config and State are
// nil when the engine didn't return them.
type Inspection struct {
	ID      string
	Name    string // as reported by the engine, usually with a leading "/".
	Created string // RFC3339 creation timestamp.
	Config  *Config
	State   *State
	Ports   nat.PortMap // published ports, from the network settings.
}

// Config is the container configuration part of an Inspection.
type Config struct {
	Image  string
	Labels map[string]string
}

// State is the runtime state part of an Inspection.
type State struct {
	Status     string // "created", "running", "paused", "restarting", "removing", "exited", or "dead".
	Running    bool
	Paused     bool
	Restarting bool
	Dead       bool
	ExitCode   int
	Error      string
}

// Summary is a single container entry of a container listing.
type Summary struct {
	ID     string
	Names  []string // usually with leading "/".
	Image  string
	Ports  []Port
	Labels map[string]string
}

// Port is a published container port.
type Port struct {
	IP          string
	PrivatePort uint16
	PublicPort  uint16
	Type        string
}
