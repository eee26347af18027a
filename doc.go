/*
Package ldbengine manages the lifecycle of local single-container database
instances, such as PostgreSQL, Redis, MySQL, and MongoDB, on a Docker
API-compatible container engine.

# Supported Databases

The following database types are supported, each one implemented as a policy
plugin in its own package below [github.com/siemens/ldbengine/dbtype]:

  - [PostgreSQL]
  - [Redis]
  - [MySQL]
  - [MongoDB]

# Supported Container Engines

  - [Docker/Moby], rootful, rootless, and Docker Desktop
  - [podman] (via Docker-compatible API only)

# Quick Start

	eng, err := moby.Discover(ctx)
	st, err := store.Open(datadir)
	mgr := ldbengine.New(eng, st, store.NewVolumes(datadir))
	defer mgr.Close()

	inst, err := mgr.Create(ctx, model.CreateRequest{
		Name:         "My DB",
		DatabaseType: model.PostgreSQL,
		Image:        "postgres",
		Tag:          "16",
		Password:     "secret",
	})
	inst, err = mgr.Start(ctx, inst.ID)

A [Manager] is safe to be used from multiple goroutines.

# Instances and Containers

Each instance is backed by a single container named after the instance's
display name, prefixed with “ldb-”; for instance, “My DB” becomes
“ldb-my-db”. Containers without this prefix are never touched. Each instance
gets its own volume directory named after the instance ID, which is bind-mounted
into the container's data directory.

The local metadata store is the only durable record of what the engine doesn't
know or forgets: the instance ID, display name, database type, root password,
and volume path. On the other hand, the engine is authoritative for everything
about a container's runtime state. Whenever an instance gets inspected, both
views are reconciled (see [Reconcile]).

Instance records carry the container ID assigned at creation time, so
correlating records and containers does not depend on re-deriving names.
Additionally, containers are labelled with their instance ID. For containers
without any record, the container name is the last resort.

# Ports

New instances get a host port assigned which isn't published by any running
container, starting at the database type's default port and scanning upwards.
As availability is only checked when allocating, another container might
grab the port before the instance gets started, in which case starting fails
with an error wrapping [model.ErrPortConflict]. Use [model.IsRetryable] to
detect such situations; the Manager itself never retries.

[PostgreSQL]: https://www.postgresql.org
[Redis]: https://redis.io
[MySQL]: https://www.mysql.com
[MongoDB]: https://www.mongodb.com
[Docker/Moby]: https://mobyproject.org
[podman]: https://podman.io
*/
package ldbengine
