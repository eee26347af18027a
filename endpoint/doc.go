/*
Package endpoint defines the plugin interface for finding the API endpoints of
local container engines that speak the Docker Engine API, such as Docker
itself (rootful, rootless, or Docker Desktop) and podman.

Endpoint finder plugins register with the [github.com/thediveo/go-plugger/v3]
plugin group for [Finder]. Import package
[github.com/siemens/ldbengine/endpoint/all] to pull in all of them.
*/
package endpoint
