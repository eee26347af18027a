// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/siemens/ldbengine/unsorted"
	log "github.com/sirupsen/logrus"
)

// VolumesDirname is the name of the directory inside the data directory that
// contains the per-instance volume directories.
const VolumesDirname = "volumes"

// Volumes manages the on-disk volume directories of instances, each named
// after its instance ID.
type Volumes struct {
	root string
}

// NewVolumes returns a Volumes manager for the volumes directory inside the
// specified data directory.
func NewVolumes(datadir string) *Volumes {
	return &Volumes{root: filepath.Join(datadir, VolumesDirname)}
}

// Root returns the directory containing all volume directories.
func (v *Volumes) Root() string { return v.root }

// Path returns the volume directory path for the specified instance ID,
// without creating it.
func (v *Volumes) Path(id string) string {
	return filepath.Join(v.root, id)
}

// Ensure returns the volume directory path for the specified instance ID,
// creating it if necessary.
func (v *Volumes) Ensure(id string) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", fmt.Errorf("invalid volume id %q", id)
	}
	path := v.Path(id)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("cannot create volume directory, reason: %w", err)
	}
	return path, nil
}

// ErrOutsideVolumes signals a volume path that doesn't denote a volume
// directory inside the volumes directory.
var ErrOutsideVolumes = errors.New("path outside volumes directory")

// Contains returns true if path denotes a volume directory beneath the volumes
// directory, but not the volumes directory itself. Symbolic links are not
// resolved.
func (v *Volumes) Contains(path string) bool {
	if path == "" {
		return false
	}
	root, err := filepath.Abs(v.root)
	if err != nil {
		return false
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// Remove removes the specified volume directory including all its contents.
// A directory that does not exist is not an error. Paths outside the volumes
// directory are refused with ErrOutsideVolumes.
func (v *Volumes) Remove(path string) error {
	if path == "" {
		return nil
	}
	if !v.Contains(path) {
		return fmt.Errorf("cannot remove volume directory %s, reason: %w", path, ErrOutsideVolumes)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("cannot remove volume directory, reason: %w", err)
	}
	log.Infof("removed volume directory %s", path)
	return nil
}

// Orphans returns the IDs of volume directories for which there is no known
// instance ID. A missing volumes directory has no orphans.
func (v *Volumes) Orphans(known []string) ([]string, error) {
	dirs, err := unsorted.Subdirs(v.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read volumes directory, reason: %w", err)
	}
	knownset := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownset[id] = struct{}{}
	}
	orphans := []string{}
	for _, dir := range dirs {
		if _, ok := knownset[dir]; ok {
			continue
		}
		orphans = append(orphans, dir)
	}
	return orphans, nil
}
