// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"fmt"
	"math"

	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"
)

// PortAllocator assigns host ports to new instances, avoiding the host ports
// currently published by running containers.
//
// Availability is only checked at allocation time: the engine may still
// refuse to bind the port later when another container grabbed it in the
// meantime, which then surfaces as model.ErrPortConflict.
type PortAllocator struct {
	engine engine.Engine
}

// NewPortAllocator returns a PortAllocator checking the containers of the
// specified engine.
func NewPortAllocator(eng engine.Engine) *PortAllocator {
	return &PortAllocator{engine: eng}
}

// OccupiedPorts returns the set of host ports published by running containers.
// Ports of stopped containers are not considered to be occupied.
func (a *PortAllocator) OccupiedPorts(ctx context.Context) (map[uint16]struct{}, error) {
	containers, err := a.engine.ListContainers(ctx, false)
	if err != nil {
		return nil, err
	}
	occupied := map[uint16]struct{}{}
	for _, cntr := range containers {
		for _, port := range cntr.Ports {
			if port.PublicPort != 0 {
				occupied[port.PublicPort] = struct{}{}
			}
		}
	}
	return occupied, nil
}

// IsAvailable returns true if the specified host port isn't currently
// published by any running container.
func (a *PortAllocator) IsAvailable(ctx context.Context, port uint16) (bool, error) {
	occupied, err := a.OccupiedPorts(ctx)
	if err != nil {
		return false, err
	}
	_, taken := occupied[port]
	return !taken, nil
}

// Allocate returns a host port for a new instance of the specified database
// type. If a preferred port is specified, it is returned when available, and
// otherwise Allocate fails with model.ErrPortConflict. Without a preferred
// port, Allocate returns the first available port at or above the database
// type's default port, failing with model.ErrNoPortsAvailable when the port
// space has been exhausted.
func (a *PortAllocator) Allocate(ctx context.Context, typ model.DatabaseType, preferred *uint16) (uint16, error) {
	policy, err := dbtype.Lookup(typ)
	if err != nil {
		return 0, err
	}
	occupied, err := a.OccupiedPorts(ctx)
	if err != nil {
		return 0, err
	}
	return allocatePort(occupied, policy.BasePort(), preferred)
}

// allocatePort implements the allocation policy on a snapshot of the occupied
// ports. It never returns port 0.
func allocatePort(occupied map[uint16]struct{}, base uint16, preferred *uint16) (uint16, error) {
	if preferred != nil {
		if *preferred == 0 {
			return 0, fmt.Errorf("%w: port 0", model.ErrInvalidRequest)
		}
		if _, taken := occupied[*preferred]; taken {
			return 0, fmt.Errorf("%w: port %d is already in use", model.ErrPortConflict, *preferred)
		}
		return *preferred, nil
	}
	for port := max(uint32(base), 1); port <= math.MaxUint16; port++ {
		if _, taken := occupied[uint16(port)]; !taken {
			return uint16(port), nil
		}
	}
	return 0, fmt.Errorf("%w: all ports from %d upwards are in use", model.ErrNoPortsAvailable, base)
}
