// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package podman

import (
	"github.com/siemens/ldbengine/endpoint"
	"github.com/thediveo/go-plugger/v3"
)

// Type identifying podman engines.
const Type = "podman.io"

// Register this endpoint finder plugin. This statically ensures that the
// Finder interface is fully implemented.
func init() {
	plugger.Group[endpoint.Finder]().Register(
		&Finder{}, plugger.WithPlugin("podman"))
}

// Finder returns the API endpoints of (usually socket-activated) podman
// services.
//
// We use the Docker API on podman, not least as the podman-specific API is
// very-very hard to use in production and the podman developers basically
// told us to stick with the Docker API anyway.
type Finder struct{}

// Type returns "podman.io".
func (f *Finder) Type() string { return Type }

// Endpoints returns the rootless user socket first, followed by the rootful
// system socket.
func (f *Finder) Endpoints(env endpoint.LookupEnv) []string {
	return endpoint.Compact(
		endpoint.Unix(env, "XDG_RUNTIME_DIR", "podman", "podman.sock"),
		endpoint.Unix(env, "", "/run/podman/podman.sock"),
	)
}
