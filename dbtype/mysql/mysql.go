// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package mysql

import (
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/model"
	"github.com/thediveo/go-plugger/v3"
)

func init() {
	plugger.Group[dbtype.Policy]().Register(
		&Policy{}, plugger.WithPlugin("mysql"))
}

// Policy implements the dbtype.Policy interface for MySQL.
type Policy struct{}

func (p *Policy) Type() model.DatabaseType { return model.MySQL }
func (p *Policy) BasePort() uint16         { return 3306 }
func (p *Policy) MountPath() string        { return "/var/lib/mysql" }
func (p *Policy) ImageToken() string       { return "mysql" }
func (p *Policy) HubRepository() string    { return "library/mysql" }
func (p *Policy) Description() string      { return "Popular relational database" }

func (p *Policy) Env(password string) []string {
	return []string{"MYSQL_ROOT_PASSWORD=" + password}
}

func (p *Policy) Cmd(string) []string { return nil }
