// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dbtype

import (
	"fmt"
	"strings"

	"github.com/siemens/ldbengine/model"
	"github.com/thediveo/go-plugger/v3"
)

// Policy allows specialized database type plugins to describe how to provision
// and recognize containers of a particular database engine.
type Policy interface {
	// Type returns the database type this policy is responsible for.
	Type() model.DatabaseType
	// BasePort returns the well-known default port of the database engine;
	// automatic port allocation starts here.
	BasePort() uint16
	// MountPath returns the container-internal path where the engine keeps
	// its data and where the instance volume gets bound to.
	MountPath() string
	// Env returns the environment variables ("KEY=value") configuring the
	// root credential.
	Env(password string) []string
	// Cmd returns the command override for engines lacking an environment
	// variable-based credential mechanism, otherwise nil.
	Cmd(password string) []string
	// ImageToken returns the token that identifies images of this engine type
	// when found inside an image reference.
	ImageToken() string
	// HubRepository returns the Docker Hub repository of the official image.
	HubRepository() string
	// Description returns a short human-readable description.
	Description() string
}

// Lookup returns the policy for the specified database type.
func Lookup(typ model.DatabaseType) (Policy, error) {
	for _, p := range plugger.Group[Policy]().Symbols() {
		if p.Type() == typ {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no policy for database type %s", model.ErrInvalidRequest, typ)
}

// Policies returns all registered policies, ordered by their database type.
func Policies() []Policy {
	policies := plugger.Group[Policy]().Symbols()
	ordered := make([]Policy, 0, len(policies))
	for _, typ := range model.DatabaseTypes {
		for _, p := range policies {
			if p.Type() == typ {
				ordered = append(ordered, p)
			}
		}
	}
	return ordered
}

// Infer guesses the database type from an image reference by checking which
// policy's image token is contained in it, in canonical type order. The check
// is case-sensitive. If no token matches, Infer returns PostgreSQL and false.
//
// Inference is heuristic and misclassifies custom images; it thus should only
// be used when there is no stored type information for a container.
func Infer(image string) (model.DatabaseType, bool) {
	for _, p := range Policies() {
		if strings.Contains(image, p.ImageToken()) {
			return p.Type(), true
		}
	}
	return model.PostgreSQL, false
}
