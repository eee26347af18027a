// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package all

import (
	_ "github.com/siemens/ldbengine/endpoint/docker" // find Docker engine endpoints

	_ "github.com/siemens/ldbengine/endpoint/podman" // find podman engine endpoints
)
