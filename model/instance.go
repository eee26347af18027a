// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ContainerNamePrefix is the reserved prefix of all engine-facing container
// names of database instances. Containers without this prefix are never
// considered to be instances.
const ContainerNamePrefix = "ldb-"

// InstanceLabel is attached to every container we create and carries the
// instance ID.
const InstanceLabel = "io.github.siemens.ldbengine.instance"

// DatabaseType enumerates the supported database engines.
type DatabaseType int

const (
	PostgreSQL DatabaseType = iota
	Redis
	MySQL
	MongoDB
)

// DatabaseTypes lists all supported database types in their canonical order.
var DatabaseTypes = []DatabaseType{PostgreSQL, Redis, MySQL, MongoDB}

var databaseTypeNames = map[DatabaseType]string{
	PostgreSQL: "postgresql",
	Redis:      "redis",
	MySQL:      "mysql",
	MongoDB:    "mongodb",
}

// String returns the lowercase name of the database type, as also used in the
// on-disk metadata file.
func (t DatabaseType) String() string {
	if name, ok := databaseTypeNames[t]; ok {
		return name
	}
	return "DatabaseType(" + strconv.Itoa(int(t)) + ")"
}

// ParseDatabaseType returns the database type for the given (case-insensitive)
// name. Besides the canonical names it accepts the common short forms
// "postgres" and "mongo".
func ParseDatabaseType(name string) (DatabaseType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgresql", "postgres":
		return PostgreSQL, nil
	case "redis":
		return Redis, nil
	case "mysql":
		return MySQL, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	}
	return 0, fmt.Errorf("%w: unknown database type %q", ErrInvalidRequest, name)
}

// MarshalJSON encodes the database type as its lowercase name.
func (t DatabaseType) MarshalJSON() ([]byte, error) {
	name, ok := databaseTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid database type %d", int(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a lowercase database type name, rejecting unknown
// names.
func (t *DatabaseType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for typ, typname := range databaseTypeNames {
		if typname == name {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown database type %q", name)
}

// Status is the canonical status of a database instance.
type Status string

const (
	Running  Status = "running"
	Stopped  Status = "stopped"
	Error    Status = "error"
	Creating Status = "creating"
)

// UnmarshalJSON decodes a status, rejecting unknown values.
func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch st := Status(name); st {
	case Running, Stopped, Error, Creating:
		*s = st
		return nil
	}
	return fmt.Errorf("unknown instance status %q", name)
}

// Instance is a single-container database deployment. The ID is assigned once
// at creation time and never changes; it is the join key between the local
// metadata record and the engine's container.
type Instance struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	DatabaseType DatabaseType `json:"database_type"`
	Image        string       `json:"image"`
	Tag          string       `json:"tag"`
	Port         uint16       `json:"port"`
	RootPassword string       `json:"root_password"`
	Status       Status       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	VolumePath   string       `json:"volume_path,omitempty"`
	ContainerID  string       `json:"container_id,omitempty"`
}

// ContainerName returns the engine-facing name of this instance's container.
func (i *Instance) ContainerName() string {
	return ContainerName(i.Name)
}

// ImageRef returns the full image reference "image:tag".
func (i *Instance) ImageRef() string {
	if i.Tag == "" {
		return i.Image
	}
	return i.Image + ":" + i.Tag
}

// ContainerName derives the engine-facing container name from an instance's
// display name: the reserved prefix followed by the lower-cased name with
// spaces replaced by hyphens.
func ContainerName(name string) string {
	return ContainerNamePrefix + strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// DatabaseName derives the name of the database inside an instance from the
// instance's display name: lower-cased, with spaces replaced by underscores.
func DatabaseName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// ConnectionString returns a client connection URI for this instance, always
// pointing to the loopback address and the instance's published port. The
// credentials are properly escaped.
func (i *Instance) ConnectionString() string {
	u := url.URL{
		Host: net.JoinHostPort("127.0.0.1", strconv.Itoa(int(i.Port))),
		Path: "/" + DatabaseName(i.Name),
	}
	switch i.DatabaseType {
	case Redis:
		u.Scheme = "redis"
		u.User = url.UserPassword("", i.RootPassword)
		u.Path = ""
	case MySQL:
		u.Scheme = "mysql"
		u.User = url.UserPassword("root", i.RootPassword)
	case MongoDB:
		u.Scheme = "mongodb"
		u.User = url.UserPassword("root", i.RootPassword)
		u.RawQuery = "authSource=admin"
	default:
		u.Scheme = "postgresql"
		u.User = url.UserPassword("postgres", i.RootPassword)
	}
	return u.String()
}

// CreateRequest describes a new database instance to provision. If Port is nil,
// a free port is allocated automatically, starting at the database type's
// default port.
type CreateRequest struct {
	Name         string       `json:"name" validate:"required,max=64"`
	DatabaseType DatabaseType `json:"database_type"`
	Image        string       `json:"image" validate:"required"`
	Tag          string       `json:"tag" validate:"required"`
	Password     string       `json:"password" validate:"required"`
	Port         *uint16      `json:"port,omitempty" validate:"omitempty,min=1"`
}
