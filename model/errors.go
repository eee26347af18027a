// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package model

import "errors"

// Error taxonomy of the lifecycle manager. Errors returned by this module wrap
// one of these sentinels, so callers should check using [errors.Is].
var (
	// ErrEngineUnavailable signals that the container engine daemon cannot be
	// reached.
	ErrEngineUnavailable = errors.New("container engine unavailable")
	// ErrNotFound signals a metadata store or engine lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrPortConflict signals that an explicitly requested port is already
	// published, or that the engine refused to bind it.
	ErrPortConflict = errors.New("port conflict")
	// ErrNoPortsAvailable signals that the port space above the base port has
	// been exhausted.
	ErrNoPortsAvailable = errors.New("no available ports")
	// ErrProvisioningFailed signals that the engine rejected the creation
	// parameters of a container.
	ErrProvisioningFailed = errors.New("provisioning failed")
	// ErrPartialState signals an engine inspection result lacking the
	// configuration or state information.
	ErrPartialState = errors.New("partial container state")
	// ErrNameTaken signals that an instance name derives the same container
	// name as an already existing instance.
	ErrNameTaken = errors.New("instance name already taken")
	// ErrInvalidRequest signals a malformed create request.
	ErrInvalidRequest = errors.New("invalid request")
)

// IsRetryable returns true if the operation failing with err might succeed
// when deliberately re-invoked by the caller, such as when losing a port race
// against another instance. Nothing in this module ever retries on its own.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPortConflict)
}
