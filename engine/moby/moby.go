// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package moby

import (
	"context"
	"fmt"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client" // priceless
	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"
	log "github.com/sirupsen/logrus"
)

// Type identifying Docker engines.
const Type = "docker.com"

// Engine implements the engine.Engine contract on top of the Docker Engine
// API. It holds a single long-lived API client that is shared by all
// operations and safe to be used from multiple goroutines.
type Engine struct {
	client *client.Client
	api    string
	typ    string
}

var _ engine.Engine = (*Engine)(nil)

// New returns an Engine talking to the Docker-compatible API at the specified
// endpoint, such as "unix:///run/docker.sock". An empty endpoint falls back to
// the usual DOCKER_HOST and friends environment variables, and finally to the
// Docker client's default endpoint.
//
// As Docker's go client will accept any API pathname we throw at it and
// throw up only when actually trying to communicate with the engine, New does
// not check the endpoint. Use [Engine.Ping] for that.
func New(endpoint string) (*Engine, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if endpoint != "" {
		opts = append(opts, client.WithHost(endpoint))
	}
	c, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid API endpoint %q, reason: %w",
			model.ErrEngineUnavailable, endpoint, err)
	}
	return &Engine{client: c, api: c.DaemonHost(), typ: Type}, nil
}

// API returns the API endpoint of the engine.
func (e *Engine) API() string { return e.api }

// Type returns the engine type, such as "docker.com" or "podman.io".
func (e *Engine) Type() string { return e.typ }

// Client returns the underlying Docker API client.
func (e *Engine) Client() *client.Client { return e.client }

// Ping checks that the engine daemon is responsive.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.client.Ping(ctx)
	if err != nil {
		return wrap(err, "ping engine at %s", e.api)
	}
	return nil
}

// Close releases the API client's idle connections.
func (e *Engine) Close() error {
	return e.client.Close()
}

// CreateContainer creates a new container according to spec, but does not
// start it. Creation does not pull the image.
func (e *Engine) CreateContainer(ctx context.Context, spec engine.ContainerSpec) (string, error) {
	resp, err := e.client.ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			Env:          spec.Env,
			Cmd:          spec.Cmd,
			Labels:       spec.Labels,
			ExposedPorts: spec.ExposedPorts,
		},
		&container.HostConfig{
			PortBindings: spec.PortBindings,
			Binds:        spec.Binds,
		},
		nil, nil, spec.Name)
	if err != nil {
		switch {
		case client.IsErrConnectionFailed(err):
			return "", wrap(err, "create container %s", spec.Name)
		case cerrdefs.IsConflict(err):
			return "", fmt.Errorf("%w: %w: container %s, reason: %w",
				model.ErrProvisioningFailed, model.ErrNameTaken, spec.Name, err)
		}
		return "", fmt.Errorf("%w: cannot create container %s, reason: %w",
			model.ErrProvisioningFailed, spec.Name, err)
	}
	for _, warning := range resp.Warnings {
		log.Warnf("creating container %s: %s", spec.Name, warning)
	}
	log.Infof("created container %s with ID %s", spec.Name, resp.ID)
	return resp.ID, nil
}

// StartContainer starts the referenced container. If the engine refuses to
// publish a port because it is already taken, the error wraps
// model.ErrPortConflict.
func (e *Engine) StartContainer(ctx context.Context, ref string) error {
	err := e.client.ContainerStart(ctx, ref, container.StartOptions{})
	if err != nil {
		if isPortInUse(err) {
			return fmt.Errorf("%w: cannot start container %s, reason: %w",
				model.ErrPortConflict, ref, err)
		}
		return wrap(err, "start container %s", ref)
	}
	return nil
}

// StopContainer stops the referenced container, force-terminating it after
// the grace period.
func (e *Engine) StopContainer(ctx context.Context, ref string, grace time.Duration) error {
	timeout := int(grace.Seconds())
	err := e.client.ContainerStop(ctx, ref, container.StopOptions{Timeout: &timeout})
	if err != nil {
		return wrap(err, "stop container %s", ref)
	}
	return nil
}

// RestartContainer restarts the referenced container.
func (e *Engine) RestartContainer(ctx context.Context, ref string, grace time.Duration) error {
	timeout := int(grace.Seconds())
	err := e.client.ContainerRestart(ctx, ref, container.StopOptions{Timeout: &timeout})
	if err != nil {
		if isPortInUse(err) {
			return fmt.Errorf("%w: cannot restart container %s, reason: %w",
				model.ErrPortConflict, ref, err)
		}
		return wrap(err, "restart container %s", ref)
	}
	return nil
}

// RemoveContainer removes the referenced container.
func (e *Engine) RemoveContainer(ctx context.Context, ref string, force bool) error {
	err := e.client.ContainerRemove(ctx, ref, container.RemoveOptions{Force: force})
	if err != nil {
		return wrap(err, "remove container %s", ref)
	}
	return nil
}

// InspectContainer returns details about the referenced container.
func (e *Engine) InspectContainer(ctx context.Context, ref string) (*engine.Inspection, error) {
	info, err := e.client.ContainerInspect(ctx, ref)
	if err != nil {
		return nil, wrap(err, "inspect container %s", ref)
	}
	return inspection(info), nil
}

// inspection converts the Docker API inspection result, keeping absent parts
// absent.
func inspection(info container.InspectResponse) *engine.Inspection {
	insp := &engine.Inspection{}
	if base := info.ContainerJSONBase; base != nil {
		insp.ID = base.ID
		insp.Name = base.Name
		insp.Created = base.Created
		if state := base.State; state != nil {
			insp.State = &engine.State{
				Status:     string(state.Status),
				Running:    state.Running,
				Paused:     state.Paused,
				Restarting: state.Restarting,
				Dead:       state.Dead,
				ExitCode:   state.ExitCode,
				Error:      state.Error,
			}
		}
	}
	if config := info.Config; config != nil {
		insp.Config = &engine.Config{
			Image:  config.Image,
			Labels: config.Labels,
		}
	}
	if ns := info.NetworkSettings; ns != nil {
		insp.Ports = ns.Ports
	}
	return insp
}

// ListContainers lists the running or all containers.
func (e *Engine) ListContainers(ctx context.Context, all bool) ([]engine.Summary, error) {
	containers, err := e.client.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, wrap(err, "list containers")
	}
	summaries := make([]engine.Summary, 0, len(containers))
	for _, cntr := range containers {
		ports := make([]engine.Port, 0, len(cntr.Ports))
		for _, port := range cntr.Ports {
			ports = append(ports, engine.Port{
				IP:          port.IP,
				PrivatePort: port.PrivatePort,
				PublicPort:  port.PublicPort,
				Type:        port.Type,
			})
		}
		summaries = append(summaries, engine.Summary{
			ID:     cntr.ID,
			Names:  cntr.Names,
			Image:  cntr.Image,
			Ports:  ports,
			Labels: cntr.Labels,
		})
	}
	return summaries, nil
}

// wrap maps Docker client errors onto the error taxonomy: an unreachable
// daemon becomes model.ErrEngineUnavailable and unknown containers become
// model.ErrNotFound.
func wrap(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case client.IsErrConnectionFailed(err):
		return fmt.Errorf("%w: cannot %s, reason: %w", model.ErrEngineUnavailable, what, err)
	case cerrdefs.IsNotFound(err):
		return fmt.Errorf("cannot %s: %w, reason: %w", what, model.ErrNotFound, err)
	}
	return fmt.Errorf("cannot %s, reason: %w", what, err)
}

// isPortInUse returns true if the engine refused to publish a port because it
// is already in use.
func isPortInUse(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "port is already allocated") ||
		strings.Contains(msg, "address already in use")
}
