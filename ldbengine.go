// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"
	"github.com/siemens/ldbengine/provision"
	"github.com/siemens/ldbengine/store"
	"golang.org/x/sync/semaphore"

	_ "github.com/siemens/ldbengine/dbtype/all" // pull in database type policy plugins

	log "github.com/sirupsen/logrus"
)

// Manager manages the lifecycle of database instances on a single container
// engine, keeping the engine's containers and the local metadata records in
// sync. It can be safely used from multiple goroutines.
//
// Operations taking a container reference accept a container ID, a container
// name, or an instance ID.
type Manager struct {
	engine   engine.Engine
	store    *store.Store
	volumes  *store.Volumes
	ports    *PortAllocator
	validate *validator.Validate

	numworkers int                 // max number of parallel inspections.
	workersem  *semaphore.Weighted // bounded pool.
	grace      time.Duration       // stop grace period.
	settle     time.Duration       // restart settle delay.
	metrics    *Metrics

	locks *xsync.MapOf[string, *refLock] // per-instance operation locks.
}

// refLock is an operation lock that is only kept in the lock map as long as
// operations hold or wait for it.
type refLock struct {
	mu   sync.Mutex
	refs int // guarded by the lock map.
}

// New returns a Manager operating on the specified engine, metadata store and
// volumes. The Manager takes ownership of the engine and closes it when the
// Manager gets closed.
//
// Further options ([NewOption], such as [WithWorkers] and [WithGracePeriod])
// allow to customize the Manager object returned.
func New(eng engine.Engine, st *store.Store, vols *store.Volumes, opts ...NewOption) *Manager {
	m := &Manager{
		engine:   eng,
		store:    st,
		volumes:  vols,
		ports:    NewPortAllocator(eng),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		grace:    10 * time.Second,
		settle:   1 * time.Second,
		locks:    xsync.NewMapOf[string, *refLock](),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.numworkers <= 0 {
		m.numworkers = runtime.GOMAXPROCS(0)
	}
	m.workersem = semaphore.NewWeighted(int64(m.numworkers))
	return m
}

// Ports returns the port allocator used for new instances.
func (m *Manager) Ports() *PortAllocator { return m.ports }

// Store returns the metadata store.
func (m *Manager) Store() *store.Store { return m.store }

// Volumes returns the volume directory manager.
func (m *Manager) Volumes() *store.Volumes { return m.volumes }

// Close releases the engine connection.
func (m *Manager) Close() error {
	return m.engine.Close()
}

// Create provisions a new database instance: it allocates a host port,
// creates the instance's volume directory and its (stopped) container, and
// finally persists the instance's metadata record. Create does not pull the
// image, so it must already be present.
//
// If any step fails, the steps done so far are undone.
func (m *Manager) Create(ctx context.Context, req model.CreateRequest) (inst model.Instance, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("create", started, err) }()

	if err := m.validate.Struct(req); err != nil {
		return model.Instance{}, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	name := model.ContainerName(req.Name)
	unlock := m.lock(name)
	defer unlock()

	existing, err := m.store.Find(func(i model.Instance) bool {
		return i.ContainerName() == name
	})
	if err != nil {
		return model.Instance{}, err
	}
	if existing != nil {
		return model.Instance{}, fmt.Errorf("%w: %w: %q derives the container name %s of instance %s",
			model.ErrProvisioningFailed, model.ErrNameTaken, req.Name, name, existing.ID)
	}
	port, err := m.ports.Allocate(ctx, req.DatabaseType, req.Port)
	if err != nil {
		return model.Instance{}, err
	}

	inst = model.Instance{
		ID:           uuid.NewString(),
		Name:         req.Name,
		DatabaseType: req.DatabaseType,
		Image:        req.Image,
		Tag:          req.Tag,
		Port:         port,
		RootPassword: req.Password,
		Status:       model.Stopped,
	}
	// Unwinding must happen even when the caller's context got cancelled in
	// the meantime.
	cleanupctx := context.WithoutCancel(ctx)

	inst.VolumePath, err = m.volumes.Ensure(inst.ID)
	if err != nil {
		return model.Instance{}, fmt.Errorf("%w: %w", model.ErrProvisioningFailed, err)
	}
	params, err := provision.Translate(inst.DatabaseType, inst.RootPassword, port, inst.VolumePath)
	if err != nil {
		m.removeVolume(inst.VolumePath)
		return model.Instance{}, err
	}
	inst.ContainerID, err = m.engine.CreateContainer(ctx, engine.ContainerSpec{
		Name:         name,
		Image:        inst.ImageRef(),
		Env:          params.Env,
		Cmd:          params.Cmd,
		Labels:       map[string]string{model.InstanceLabel: inst.ID},
		ExposedPorts: params.ExposedPorts,
		PortBindings: params.PortBindings,
		Binds:        params.Binds,
	})
	if err != nil {
		m.removeVolume(inst.VolumePath)
		return model.Instance{}, err
	}
	inst.CreatedAt = time.Now().UTC()
	if err := m.store.Add(inst); err != nil {
		if rmerr := m.engine.RemoveContainer(cleanupctx, inst.ContainerID, true); rmerr != nil {
			log.Errorf("cannot remove container %s of unpersisted instance %s, reason: %s",
				inst.ContainerID, inst.ID, rmerr.Error())
		}
		m.removeVolume(inst.VolumePath)
		return model.Instance{}, fmt.Errorf("cannot persist instance %s, reason: %w", inst.ID, err)
	}
	log.Infof("created %s instance %q (%s) with container %s on port %d",
		inst.DatabaseType, inst.Name, inst.ID, name, inst.Port)
	return inst, nil
}

// Start starts the referenced instance container and returns the instance's
// reconciled state.
func (m *Manager) Start(ctx context.Context, ref string) (inst model.Instance, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("start", started, err) }()

	stored, target := m.resolve(ref)
	unlock := m.lock(lockKey(stored, target))
	defer unlock()
	if err := m.engine.StartContainer(ctx, target); err != nil {
		return model.Instance{}, err
	}
	log.Infof("started container %s", target)
	return m.inspect(ctx, target, stored)
}

// Stop stops the referenced instance container, giving the database the grace
// period to shut down, and returns the instance's reconciled state. The
// returned status is always model.Stopped.
func (m *Manager) Stop(ctx context.Context, ref string) (inst model.Instance, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("stop", started, err) }()

	stored, target := m.resolve(ref)
	unlock := m.lock(lockKey(stored, target))
	defer unlock()
	if err := m.engine.StopContainer(ctx, target, m.grace); err != nil {
		return model.Instance{}, err
	}
	log.Infof("stopped container %s", target)
	inst, err = m.inspect(ctx, target, stored)
	if err != nil {
		return model.Instance{}, err
	}
	inst.Status = model.Stopped
	return inst, nil
}

// Restart restarts the referenced instance container and returns the
// instance's reconciled state after a short settle delay.
func (m *Manager) Restart(ctx context.Context, ref string) (inst model.Instance, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("restart", started, err) }()

	stored, target := m.resolve(ref)
	unlock := m.lock(lockKey(stored, target))
	defer unlock()
	if err := m.engine.RestartContainer(ctx, target, m.grace); err != nil {
		return model.Instance{}, err
	}
	log.Infof("restarted container %s", target)
	if err := settle(ctx, m.settle); err != nil {
		return model.Instance{}, err
	}
	return m.inspect(ctx, target, stored)
}

// Get returns the reconciled state of the referenced instance without
// changing it.
func (m *Manager) Get(ctx context.Context, ref string) (inst model.Instance, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("get", started, err) }()

	stored, target := m.resolve(ref)
	return m.inspect(ctx, target, stored)
}

// Status returns the engine-level status of the referenced container:
// "running", "paused", "restarting", "removing", "exited", "dead", or
// "created".
func (m *Manager) Status(ctx context.Context, ref string) (status string, err error) {
	started := time.Now()
	defer func() { m.metrics.observe("status", started, err) }()

	_, target := m.resolve(ref)
	insp, err := m.engine.InspectContainer(ctx, target)
	if err != nil {
		return "", err
	}
	return StatusLabel(insp.State)
}

// ConnectionString returns the client connection URI of the referenced
// instance. Instances without metadata record lack the root password.
func (m *Manager) ConnectionString(ctx context.Context, ref string) (string, error) {
	inst, err := m.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return inst.ConnectionString(), nil
}

// OrphanVolumes returns the IDs of volume directories without a metadata
// record, such as left behind by deleting instances without their volumes.
func (m *Manager) OrphanVolumes() ([]string, error) {
	instances, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(instances))
	for _, inst := range instances {
		ids = append(ids, inst.ID)
	}
	return m.volumes.Orphans(ids)
}

// inspect inspects the target container and reconciles it with the stored
// record. If no record is known yet, inspect looks for a record belonging to
// the inspected container.
func (m *Manager) inspect(ctx context.Context, target string, stored *model.Instance) (model.Instance, error) {
	insp, err := m.engine.InspectContainer(ctx, target)
	if err != nil {
		return model.Instance{}, err
	}
	if stored == nil {
		stored = m.recordOf(insp)
	}
	return Reconcile(insp, stored)
}

// resolve returns the metadata record referenced by either instance ID,
// container ID, or container name, as well as the engine container reference
// to use. Without a matching record, the reference is passed on to the engine
// as is. Store errors degrade to an absent record.
func (m *Manager) resolve(ref string) (*model.Instance, string) {
	instances, err := m.store.Load()
	if err != nil {
		log.Warnf("cannot read instance metadata, reason: %s", err.Error())
		return nil, ref
	}
	name := strings.TrimPrefix(ref, "/")
	matchers := []func(model.Instance) bool{
		func(i model.Instance) bool { return i.ContainerID != "" && i.ContainerID == ref },
		func(i model.Instance) bool { return i.ID == ref },
		func(i model.Instance) bool { return i.ContainerName() == name },
	}
	for _, match := range matchers {
		for idx := range instances {
			if !match(instances[idx]) {
				continue
			}
			stored := &instances[idx]
			if stored.ContainerID != "" {
				return stored, stored.ContainerID
			}
			return stored, stored.ContainerName()
		}
	}
	return nil, ref
}

// recordOf returns the metadata record of an inspected container, if any.
func (m *Manager) recordOf(insp *engine.Inspection) *model.Instance {
	instances, err := m.store.Load()
	if err != nil {
		log.Warnf("cannot read instance metadata, reason: %s", err.Error())
		return nil
	}
	return findRecord(instances, insp.ID, labels(insp), strings.TrimPrefix(insp.Name, "/"))
}

// findRecord returns the record belonging to the container with the specified
// ID, labels and name. It correlates first by the recorded container ID, then
// by the instance label, and finally by the derived container name.
func findRecord(instances []model.Instance, id string, labels map[string]string, name string) *model.Instance {
	for idx := range instances {
		if id != "" && instances[idx].ContainerID == id {
			return &instances[idx]
		}
	}
	if instID := labels[model.InstanceLabel]; instID != "" {
		for idx := range instances {
			if instances[idx].ID == instID {
				return &instances[idx]
			}
		}
	}
	for idx := range instances {
		if name != "" && instances[idx].ContainerName() == name {
			return &instances[idx]
		}
	}
	return nil
}

func labels(insp *engine.Inspection) map[string]string {
	if insp.Config == nil {
		return nil
	}
	return insp.Config.Labels
}

// lock acquires the operation lock for the specified key, returning the
// unlock function. The lock map only holds keys with operations in flight.
func (m *Manager) lock(key string) func() {
	l, _ := m.locks.Compute(key, func(l *refLock, loaded bool) (*refLock, bool) {
		if !loaded {
			l = &refLock{}
		}
		l.refs++
		return l, false
	})
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.locks.Compute(key, func(l *refLock, loaded bool) (*refLock, bool) {
			l.refs--
			return l, l.refs == 0
		})
	}
}

// lockKey returns the key for serializing operations on the same instance,
// independent of how the instance was referenced.
func lockKey(stored *model.Instance, target string) string {
	if stored != nil {
		return stored.ContainerName()
	}
	return target
}

// removeVolume removes a volume directory while unwinding, logging failures.
func (m *Manager) removeVolume(path string) {
	if err := m.volumes.Remove(path); err != nil {
		log.Errorf("cannot remove volume %s, reason: %s", path, err.Error())
	}
}

// isNotFound returns true if err signals a missing container or record.
func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
