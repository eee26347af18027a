// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package postgres

import (
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/model"
	"github.com/thediveo/go-plugger/v3"
)

// Register this PostgreSQL policy plugin. This statically ensures that the
// Policy interface is fully implemented.
func init() {
	plugger.Group[dbtype.Policy]().Register(
		&Policy{}, plugger.WithPlugin("postgres"))
}

// Policy implements the dbtype.Policy interface for PostgreSQL.
type Policy struct{}

func (p *Policy) Type() model.DatabaseType { return model.PostgreSQL }
func (p *Policy) BasePort() uint16         { return 5432 }
func (p *Policy) MountPath() string        { return "/var/lib/postgresql/data" }
func (p *Policy) ImageToken() string       { return "postgres" }
func (p *Policy) HubRepository() string    { return "library/postgres" }
func (p *Policy) Description() string      { return "Advanced open source database" }

// Env returns the superuser password variable of the official image.
func (p *Policy) Env(password string) []string {
	return []string{"POSTGRES_PASSWORD=" + password}
}

// Cmd returns nil, as the image's default command is fine.
func (p *Policy) Cmd(string) []string { return nil }
