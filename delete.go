// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Delete force-removes the referenced instance container regardless of its
// state and then removes the instance's metadata record, if any. When
// deleteVolume is true, the instance's volume directory gets removed too.
//
// Failing to remove the metadata record after the container has been removed
// is only logged and does not fail Delete. A container that is already gone
// while its metadata record still exists is not an error either, so stale
// records can be cleaned up.
func (m *Manager) Delete(ctx context.Context, ref string, deleteVolume bool) (err error) {
	started := time.Now()
	defer func() { m.metrics.observe("delete", started, err) }()

	stored, target := m.resolve(ref)
	if stored == nil {
		// Maybe just a container ID prefix or an engine-side name...
		if insp, err := m.engine.InspectContainer(ctx, target); err == nil {
			stored = m.recordOf(insp)
		}
	}
	unlock := m.lock(lockKey(stored, target))
	defer unlock()

	if err := m.engine.RemoveContainer(ctx, target, true); err != nil {
		if stored == nil || !isNotFound(err) {
			return err
		}
		log.Warnf("container %s of instance %s already gone", target, stored.ID)
	} else {
		log.Infof("removed container %s", target)
	}
	if stored == nil {
		return nil
	}
	if err := m.store.Remove(stored.ID); err != nil {
		log.Warnf("cannot remove metadata of instance %s, reason: %s", stored.ID, err.Error())
	}
	if !deleteVolume {
		return nil
	}
	path := stored.VolumePath
	if !m.volumes.Contains(path) {
		if path != "" {
			log.Warnf("ignoring volume path %s of instance %s outside %s",
				path, stored.ID, m.volumes.Root())
		}
		path = m.volumes.Path(stored.ID)
	}
	if err := m.volumes.Remove(path); err != nil {
		return fmt.Errorf("cannot remove volume of instance %s, reason: %w", stored.ID, err)
	}
	return nil
}
