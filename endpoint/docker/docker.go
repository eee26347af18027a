// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package docker

import (
	"github.com/siemens/ldbengine/endpoint"
	"github.com/thediveo/go-plugger/v3"
)

// Type identifying Docker engines.
const Type = "docker.com"

// Register this endpoint finder plugin. This statically ensures that the
// Finder interface is fully implemented.
func init() {
	plugger.Group[endpoint.Finder]().Register(
		&Finder{}, plugger.WithPlugin("docker"))
}

// Finder returns the well-known API endpoints of rootful, rootless, and
// desktop Docker engines.
type Finder struct{}

// Type returns "docker.com".
func (f *Finder) Type() string { return Type }

// Endpoints returns the rootful system socket first, followed by the rootless
// socket in the user's runtime directory and finally the Docker Desktop
// sockets in the user's home directory.
func (f *Finder) Endpoints(env endpoint.LookupEnv) []string {
	return endpoint.Compact(
		endpoint.Unix(env, "", "/var/run/docker.sock"),
		endpoint.Unix(env, "XDG_RUNTIME_DIR", "docker.sock"),
		endpoint.Unix(env, "HOME", ".docker", "run", "docker.sock"),
		endpoint.Unix(env, "HOME", ".docker", "desktop", "docker.sock"),
	)
}
