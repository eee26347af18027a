// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"
	log "github.com/sirupsen/logrus"
)

// ListResult is an individual instance listing result: either the reconciled
// instance, or the error that prevented inspecting or reconciling the
// container.
type ListResult struct {
	ContainerID string
	Instance    model.Instance
	Err         error
}

// List returns all instance containers, including stopped ones, in the order
// reported by the engine. Containers are inspected in parallel and a failing
// container doesn't fail the whole listing, but instead is reported in its
// ListResult. Only a failing container listing fails List.
func (m *Manager) List(ctx context.Context) (results []ListResult, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("list", started, err) }()

	containers, err := m.engine.ListContainers(ctx, true)
	if err != nil {
		return nil, err
	}
	candidates := make([]engine.Summary, 0, len(containers))
	for _, cntr := range containers {
		if strings.HasPrefix(containerName(cntr.Names), model.ContainerNamePrefix) {
			candidates = append(candidates, cntr)
		}
	}
	results = make([]ListResult, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}
	instances, err := m.store.Load()
	if err != nil {
		log.Warnf("cannot read instance metadata, reason: %s", err.Error())
		instances = nil
	}
	// Feel the heat and inspect the containers in parallel. Please note that
	// the number of parallel inspections is bounded over *all parallel calls*
	// to this method, and not just within a single call.
	log.Debugf("inspecting %d containers ... in parallel", len(candidates))
	var wg sync.WaitGroup
	for idx, cntr := range candidates {
		if err := m.workersem.Acquire(ctx, 1); err != nil {
			for rest := idx; rest < len(candidates); rest++ {
				results[rest] = ListResult{ContainerID: candidates[rest].ID, Err: err}
			}
			break
		}
		wg.Add(1)
		go func(idx int, cntr engine.Summary) {
			defer wg.Done()
			defer m.workersem.Release(1)
			results[idx] = m.listItem(ctx, cntr, instances)
		}(idx, cntr)
	}
	wg.Wait()
	for _, result := range results {
		if result.Err != nil {
			m.metrics.listFailed()
			log.Warnf("cannot list container %s, reason: %s", result.ContainerID, result.Err.Error())
		}
	}
	return results, nil
}

// listItem inspects and reconciles an individual container.
func (m *Manager) listItem(ctx context.Context, cntr engine.Summary, instances []model.Instance) ListResult {
	result := ListResult{ContainerID: cntr.ID}
	insp, err := m.engine.InspectContainer(ctx, cntr.ID)
	if err != nil {
		result.Err = err
		return result
	}
	stored := findRecord(instances, insp.ID, labels(insp), strings.TrimPrefix(insp.Name, "/"))
	result.Instance, result.Err = Reconcile(insp, stored)
	return result
}

// containerName returns the container's own name without the leading slash,
// skipping any link alias names of the form "/other/alias".
func containerName(names []string) string {
	for _, name := range names {
		name = strings.TrimPrefix(name, "/")
		if !strings.Contains(name, "/") {
			return name
		}
	}
	return ""
}
