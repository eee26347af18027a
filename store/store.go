// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	"github.com/siemens/ldbengine/model"
	log "github.com/sirupsen/logrus"
)

// InstancesFilename is the name of the metadata file inside the data
// directory.
const InstancesFilename = "instances.json"

// Store is the durable metadata store of database instances, backed by a
// single JSON file. It is the sole authority for those instance fields the
// container engine does not retain, such as the root password and the volume
// path.
//
// All mutations are serialized: inside a process by a mutex, and across
// processes by an advisory lock on a sibling lock file. Each operation acquires
// and releases both within its own scope. Writes replace the file atomically.
type Store struct {
	path string

	mu   sync.Mutex   // serializes all operations inside this process.
	lock *flock.Flock // serializes all operations across processes.
}

// New returns a Store backed by the specified metadata file. The file itself
// is only created upon the first write.
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Open returns a Store for the instances file inside the specified data
// directory, creating the data directory if necessary.
func Open(datadir string) (*Store, error) {
	if err := os.MkdirAll(datadir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data directory, reason: %w", err)
	}
	return New(filepath.Join(datadir, InstancesFilename)), nil
}

// Path returns the path of the metadata file.
func (s *Store) Path() string { return s.path }

// locked runs fn while holding both the in-process and the cross-process
// lock, releasing them on all exit paths.
func (s *Store) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create data directory, reason: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("cannot lock instances file, reason: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			log.Warnf("cannot unlock instances file %s, reason: %s", s.path, err.Error())
		}
	}()
	return fn()
}

// Load returns all instance records. A missing file is the first-run case and
// returns an empty list.
func (s *Store) Load() ([]model.Instance, error) {
	var instances []model.Instance
	err := s.locked(func() (err error) {
		instances, _, err = s.read()
		return
	})
	return instances, err
}

// Save overwrites the metadata file with the specified instance records.
func (s *Store) Save(instances []model.Instance) error {
	return s.locked(func() error {
		_, digest, err := s.read()
		if err != nil && !errors.Is(err, errCorrupt) {
			return err
		}
		return s.write(instances, digest)
	})
}

// Add appends a new instance record.
func (s *Store) Add(instance model.Instance) error {
	return s.modify(func(instances []model.Instance) ([]model.Instance, error) {
		return append(instances, instance), nil
	})
}

// Update replaces the record with the same ID as the specified instance,
// failing with model.ErrNotFound if there is none.
func (s *Store) Update(instance model.Instance) error {
	return s.modify(func(instances []model.Instance) ([]model.Instance, error) {
		idx := indexOf(instances, instance.ID)
		if idx < 0 {
			return nil, fmt.Errorf("instance %s %w", instance.ID, model.ErrNotFound)
		}
		instances[idx] = instance
		return instances, nil
	})
}

// Remove deletes the record with the specified ID, failing with
// model.ErrNotFound if there is none. In this case the file is left
// untouched.
func (s *Store) Remove(id string) error {
	return s.modify(func(instances []model.Instance) ([]model.Instance, error) {
		instances, removed := deleteAndZeroFunc(instances, func(i model.Instance) bool {
			return i.ID == id
		})
		if removed == 0 {
			return nil, fmt.Errorf("instance %s %w", id, model.ErrNotFound)
		}
		return instances, nil
	})
}

// Get returns the record with the specified ID, or nil if there is none.
func (s *Store) Get(id string) (*model.Instance, error) {
	return s.Find(func(i model.Instance) bool { return i.ID == id })
}

// Find returns the first record satisfying match, or nil if there is none.
func (s *Store) Find(match func(model.Instance) bool) (*model.Instance, error) {
	instances, err := s.Load()
	if err != nil {
		return nil, err
	}
	for idx := range instances {
		if match(instances[idx]) {
			return &instances[idx], nil
		}
	}
	return nil, nil
}

// modify runs a complete read-mutate-write cycle under lock.
func (s *Store) modify(mutate func([]model.Instance) ([]model.Instance, error)) error {
	return s.locked(func() error {
		instances, digest, err := s.read()
		if err != nil {
			return err
		}
		instances, err = mutate(instances)
		if err != nil {
			return err
		}
		return s.write(instances, digest)
	})
}

var errCorrupt = errors.New("corrupt instances file")

// read returns the instance records as well as the digest of the file
// contents; a missing file yields no records and a zero digest. The caller
// must hold the locks.
func (s *Store) read() ([]model.Instance, uint64, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Instance{}, 0, nil
		}
		return nil, 0, fmt.Errorf("cannot read instances file, reason: %w", err)
	}
	digest := xxhash.Sum64(content)
	instances := []model.Instance{}
	if len(bytes.TrimSpace(content)) == 0 {
		return instances, digest, nil
	}
	if err := json.Unmarshal(content, &instances); err != nil {
		return nil, digest, fmt.Errorf("%w %s, reason: %w", errCorrupt, s.path, err)
	}
	return instances, digest, nil
}

// write atomically replaces the instances file, unless the new contents hash
// to the same digest as the current file contents. The caller must hold the
// locks.
func (s *Store) write(instances []model.Instance, digest uint64) error {
	if instances == nil {
		instances = []model.Instance{}
	}
	content, err := json.MarshalIndent(instances, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize instances, reason: %w", err)
	}
	if digest != 0 && xxhash.Sum64(content) == digest {
		log.Debugf("instances file %s unchanged, skipping write", s.path)
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("cannot write instances file, reason: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op after successful rename
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write instances file, reason: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write instances file, reason: %w", err)
	}
	// The metadata file contains root credentials.
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("cannot write instances file, reason: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("cannot write instances file, reason: %w", err)
	}
	log.Debugf("wrote %d instance records to %s", len(instances), s.path)
	return nil
}

func indexOf(instances []model.Instance, id string) int {
	for idx := range instances {
		if instances[idx].ID == id {
			return idx
		}
	}
	return -1
}
