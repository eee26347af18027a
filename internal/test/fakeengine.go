// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/siemens/ldbengine/engine"
	"github.com/siemens/ldbengine/model"
)

// Operation names for injecting errors into a FakeEngine.
const (
	OpCreate  = "create"
	OpStart   = "start"
	OpStop    = "stop"
	OpRestart = "restart"
	OpRemove  = "remove"
	OpInspect = "inspect"
	OpList    = "list"
)

// FakeContainer is a container managed by a FakeEngine.
type FakeContainer struct {
	ID           string
	Name         string // without leading "/".
	Image        string
	Env          []string
	Cmd          []string
	Labels       map[string]string
	ExposedPorts nat.PortSet
	PortBindings nat.PortMap
	Binds        []string
	Status       string // "created", "running", "paused", "restarting", "exited", "dead".
	Error        string
	Created      time.Time
	Partial      bool // inspection lacks configuration and state.
	Lagging      bool // ignores stop requests.
}

// FakeEngine is an in-memory container engine for testing purposes. It can be
// safely used from multiple goroutines.
type FakeEngine struct {
	mu          sync.Mutex
	containers  []*FakeContainer // in creation order.
	nextID      int
	errs        map[string]error
	hooks       map[string]func()
	calls       map[string]int
	unavailable bool
	closed      bool
}

var _ engine.Engine = (*FakeEngine)(nil)

// NewFakeEngine returns a new FakeEngine without any containers.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		errs:  map[string]error{},
		hooks: map[string]func(){},
		calls: map[string]int{},
	}
}

// Fail makes all subsequent calls of the specified operation fail with err,
// until reset using a nil err.
func (f *FakeEngine) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// After runs fn after each successful call of the specified operation, without
// holding the engine lock; a nil fn removes the hook. Only OpRemove supports
// hooks.
func (f *FakeEngine) After(op string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		delete(f.hooks, op)
		return
	}
	f.hooks[op] = fn
}

// SetUnavailable makes all operations fail with model.ErrEngineUnavailable.
func (f *FakeEngine) SetUnavailable(unavailable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unavailable = unavailable
}

// Calls returns the number of calls to the specified operation.
func (f *FakeEngine) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// IsClosed returns true after Close has been called.
func (f *FakeEngine) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Add adds the specified container as is, returning its ID. A missing ID gets
// assigned automatically, a missing status defaults to "created".
func (f *FakeEngine) Add(c FakeContainer) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = f.newID()
	}
	if c.Status == "" {
		c.Status = "created"
	}
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	f.containers = append(f.containers, &c)
	return c.ID
}

// Container returns a copy of the referenced container.
func (f *FakeEngine) Container(ref string) (FakeContainer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.lookup(ref)
	if c == nil {
		return FakeContainer{}, false
	}
	return *c, true
}

// Modify runs fn on the referenced container, returning false if there is no
// such container.
func (f *FakeEngine) Modify(ref string, fn func(c *FakeContainer)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.lookup(ref)
	if c == nil {
		return false
	}
	fn(c)
	return true
}

// Containers returns the number of containers.
func (f *FakeEngine) Containers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.containers)
}

func (f *FakeEngine) CreateContainer(ctx context.Context, spec engine.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpCreate); err != nil {
		return "", err
	}
	for _, c := range f.containers {
		if c.Name == spec.Name {
			return "", fmt.Errorf("%w: %w: container name %q is already in use",
				model.ErrProvisioningFailed, model.ErrNameTaken, spec.Name)
		}
	}
	c := &FakeContainer{
		ID:           f.newID(),
		Name:         spec.Name,
		Image:        spec.Image,
		Env:          spec.Env,
		Cmd:          spec.Cmd,
		Labels:       spec.Labels,
		ExposedPorts: spec.ExposedPorts,
		PortBindings: spec.PortBindings,
		Binds:        spec.Binds,
		Status:       "created",
		Created:      time.Now(),
	}
	f.containers = append(f.containers, c)
	return c.ID, nil
}

func (f *FakeEngine) StartContainer(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpStart); err != nil {
		return err
	}
	c, err := f.mustLookup(ref)
	if err != nil {
		return err
	}
	return f.start(c)
}

func (f *FakeEngine) StopContainer(ctx context.Context, ref string, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpStop); err != nil {
		return err
	}
	c, err := f.mustLookup(ref)
	if err != nil {
		return err
	}
	if c.Status != "created" && !c.Lagging {
		c.Status = "exited"
	}
	return nil
}

func (f *FakeEngine) RestartContainer(ctx context.Context, ref string, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpRestart); err != nil {
		return err
	}
	c, err := f.mustLookup(ref)
	if err != nil {
		return err
	}
	c.Status = "exited"
	return f.start(c)
}

func (f *FakeEngine) RemoveContainer(ctx context.Context, ref string, force bool) error {
	if err := f.remove(ctx, ref, force); err != nil {
		return err
	}
	f.mu.Lock()
	hook := f.hooks[OpRemove]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (f *FakeEngine) remove(ctx context.Context, ref string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpRemove); err != nil {
		return err
	}
	c, err := f.mustLookup(ref)
	if err != nil {
		return err
	}
	if c.Status == "running" && !force {
		return fmt.Errorf("cannot remove running container %s", ref)
	}
	for idx, cntr := range f.containers {
		if cntr == c {
			f.containers = append(f.containers[:idx], f.containers[idx+1:]...)
			break
		}
	}
	return nil
}

func (f *FakeEngine) InspectContainer(ctx context.Context, ref string) (*engine.Inspection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpInspect); err != nil {
		return nil, err
	}
	c, err := f.mustLookup(ref)
	if err != nil {
		return nil, err
	}
	insp := &engine.Inspection{
		ID:      c.ID,
		Name:    "/" + c.Name,
		Created: c.Created.UTC().Format(time.RFC3339Nano),
		Ports:   nat.PortMap{},
	}
	if c.Partial {
		return insp, nil
	}
	insp.Config = &engine.Config{
		Image:  c.Image,
		Labels: c.Labels,
	}
	insp.State = &engine.State{
		Status:     c.Status,
		Running:    c.Status == "running" || c.Status == "paused" || c.Status == "restarting",
		Paused:     c.Status == "paused",
		Restarting: c.Status == "restarting",
		Dead:       c.Status == "dead",
		Error:      c.Error,
	}
	if insp.State.Running {
		for port, bindings := range c.PortBindings {
			insp.Ports[port] = bindings
		}
	}
	return insp, nil
}

func (f *FakeEngine) ListContainers(ctx context.Context, all bool) ([]engine.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, OpList); err != nil {
		return nil, err
	}
	summaries := []engine.Summary{}
	for _, c := range f.containers {
		running := c.Status == "running"
		if !all && !running {
			continue
		}
		ports := []engine.Port{}
		if running {
			for port, bindings := range c.PortBindings {
				for _, binding := range bindings {
					public, _ := strconv.ParseUint(binding.HostPort, 10, 16)
					ports = append(ports, engine.Port{
						IP:          binding.HostIP,
						PrivatePort: uint16(port.Int()),
						PublicPort:  uint16(public),
						Type:        port.Proto(),
					})
				}
			}
		}
		summaries = append(summaries, engine.Summary{
			ID:     c.ID,
			Names:  []string{"/" + c.Name},
			Image:  c.Image,
			Ports:  ports,
			Labels: c.Labels,
		})
	}
	return summaries, nil
}

func (f *FakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// enter counts an operation call and returns any error to be injected.
// Expects the lock to be held.
func (f *FakeEngine) enter(ctx context.Context, op string) error {
	f.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.unavailable {
		return fmt.Errorf("%w: cannot %s, reason: connection refused",
			model.ErrEngineUnavailable, op)
	}
	return f.errs[op]
}

// start starts the container unless one of its host ports is already bound
// by another running container. Expects the lock to be held.
func (f *FakeEngine) start(c *FakeContainer) error {
	for _, other := range f.containers {
		if other == c || other.Status != "running" {
			continue
		}
		for _, bindings := range c.PortBindings {
			for _, binding := range bindings {
				for _, otherbindings := range other.PortBindings {
					for _, otherbinding := range otherbindings {
						if binding.HostPort == otherbinding.HostPort {
							return fmt.Errorf("%w: Bind for 0.0.0.0:%s failed: port is already allocated",
								model.ErrPortConflict, binding.HostPort)
						}
					}
				}
			}
		}
	}
	c.Status = "running"
	return nil
}

// lookup returns the container referenced by ID, unique ID prefix or name
// (with or without a leading slash), or nil. Expects the lock to be held.
func (f *FakeEngine) lookup(ref string) *FakeContainer {
	if ref == "" {
		return nil
	}
	name := strings.TrimPrefix(ref, "/")
	for _, c := range f.containers {
		if c.ID == ref || c.Name == name {
			return c
		}
	}
	var found *FakeContainer
	for _, c := range f.containers {
		if strings.HasPrefix(c.ID, ref) {
			if found != nil {
				return nil
			}
			found = c
		}
	}
	return found
}

func (f *FakeEngine) mustLookup(ref string) (*FakeContainer, error) {
	c := f.lookup(ref)
	if c == nil {
		return nil, fmt.Errorf("no such container %s: %w", ref, model.ErrNotFound)
	}
	return c, nil
}

// newID returns a new 64 hex digit container ID. Expects the lock to be held.
func (f *FakeEngine) newID() string {
	f.nextID++
	return fmt.Sprintf("%064x", f.nextID)
}
