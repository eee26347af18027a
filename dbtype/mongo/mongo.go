// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package mongo

import (
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/model"
	"github.com/thediveo/go-plugger/v3"
)

// RootUsername is the fixed name of the MongoDB root user.
const RootUsername = "root"

func init() {
	plugger.Group[dbtype.Policy]().Register(
		&Policy{}, plugger.WithPlugin("mongo"))
}

// Policy implements the dbtype.Policy interface for MongoDB.
type Policy struct{}

func (p *Policy) Type() model.DatabaseType { return model.MongoDB }
func (p *Policy) BasePort() uint16         { return 27017 }
func (p *Policy) MountPath() string        { return "/data/db" }
func (p *Policy) ImageToken() string       { return "mongo" }
func (p *Policy) HubRepository() string    { return "library/mongo" }
func (p *Policy) Description() string      { return "NoSQL document database" }

// Env returns the root user name and password variables; the official image
// only enables authentication when both are set.
func (p *Policy) Env(password string) []string {
	return []string{
		"MONGO_INITDB_ROOT_USERNAME=" + RootUsername,
		"MONGO_INITDB_ROOT_PASSWORD=" + password,
	}
}

func (p *Policy) Cmd(string) []string { return nil }
