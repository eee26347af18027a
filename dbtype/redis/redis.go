// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package redis

import (
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/model"
	"github.com/thediveo/go-plugger/v3"
)

func init() {
	plugger.Group[dbtype.Policy]().Register(
		&Policy{}, plugger.WithPlugin("redis"))
}

// Policy implements the dbtype.Policy interface for Redis.
type Policy struct{}

func (p *Policy) Type() model.DatabaseType { return model.Redis }
func (p *Policy) BasePort() uint16         { return 6379 }
func (p *Policy) MountPath() string        { return "/data" }
func (p *Policy) ImageToken() string       { return "redis" }
func (p *Policy) HubRepository() string    { return "library/redis" }
func (p *Policy) Description() string      { return "In-memory data structure store" }

// Env returns nil: Redis has no environment variable for its password.
func (p *Policy) Env(string) []string { return nil }

// Cmd returns a server start command with the password passed explicitly.
func (p *Policy) Cmd(password string) []string {
	return []string{"redis-server", "--requirepass", password}
}
