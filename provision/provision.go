// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package provision

import (
	"strconv"

	"github.com/docker/go-connections/nat"
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/model"
)

// HostIP is the host address published instance ports get bound to.
const HostIP = "0.0.0.0"

// Params are the engine-specific creation parameters of a database container.
type Params struct {
	Env          []string    // "KEY=value" environment variables, nil if none.
	Cmd          []string    // command override, nil if the image default is used.
	MountPath    string      // container-internal data path.
	Binds        []string    // "host:container" volume binds.
	ExposedPorts nat.PortSet // container port(s) to expose.
	PortBindings nat.PortMap // container port to host port binding(s).
}

// Translate maps a logical instance definition onto container creation
// parameters. The assigned port is bound 1:1, that is, the same port number on
// the host and inside the container. An empty hostVolume results in no volume
// bind.
//
// Translate does no I/O and always returns the same parameters for the same
// inputs.
func Translate(typ model.DatabaseType, password string, port uint16, hostVolume string) (Params, error) {
	policy, err := dbtype.Lookup(typ)
	if err != nil {
		return Params{}, err
	}
	cport := nat.Port(strconv.Itoa(int(port)) + "/tcp")
	params := Params{
		Env:       policy.Env(password),
		Cmd:       policy.Cmd(password),
		MountPath: policy.MountPath(),
		ExposedPorts: nat.PortSet{
			cport: struct{}{},
		},
		PortBindings: nat.PortMap{
			cport: []nat.PortBinding{{HostIP: HostIP, HostPort: strconv.Itoa(int(port))}},
		},
	}
	if hostVolume != "" {
		params.Binds = []string{hostVolume + ":" + policy.MountPath()}
	}
	return params, nil
}
