/*
Package engine defines the contract of the container engine as consumed by the
lifecycle manager: creating, starting, stopping, restarting, removing,
inspecting and listing containers.

Package [github.com/siemens/ldbengine/engine/moby] implements this contract on
top of the Docker Engine API, which is also spoken by podman.
*/
package engine
