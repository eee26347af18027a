// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package provision

import (
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/siemens/ldbengine/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

func envKeys(env []string) []string {
	keys := []string{}
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		keys = append(keys, key)
	}
	return keys
}

var _ = Describe("provisioning translator", func() {

	DescribeTable("per-type mount paths and environment keys",
		func(typ model.DatabaseType, mount string, keys []string, hasCmd bool) {
			params := Successful(Translate(typ, "sekret", 4242, "/tmp/vol"))
			Expect(params.MountPath).To(Equal(mount))
			Expect(envKeys(params.Env)).To(Equal(keys))
			Expect(params.Binds).To(ConsistOf("/tmp/vol:" + mount))
			if hasCmd {
				Expect(params.Cmd).To(Equal([]string{"redis-server", "--requirepass", "sekret"}))
			} else {
				Expect(params.Cmd).To(BeNil())
			}
		},
		Entry(nil, model.PostgreSQL, "/var/lib/postgresql/data", []string{"POSTGRES_PASSWORD"}, false),
		Entry(nil, model.Redis, "/data", []string{}, true),
		Entry(nil, model.MySQL, "/var/lib/mysql", []string{"MYSQL_ROOT_PASSWORD"}, false),
		Entry(nil, model.MongoDB, "/data/db",
			[]string{"MONGO_INITDB_ROOT_USERNAME", "MONGO_INITDB_ROOT_PASSWORD"}, false),
	)

	It("binds the assigned port 1:1", func() {
		params := Successful(Translate(model.MySQL, "pw", 3307, ""))
		Expect(params.ExposedPorts).To(HaveKey(nat.Port("3307/tcp")))
		Expect(params.PortBindings).To(HaveKeyWithValue(nat.Port("3307/tcp"),
			ConsistOf(nat.PortBinding{HostIP: HostIP, HostPort: "3307"})))
		Expect(params.Binds).To(BeEmpty())
	})

	It("is deterministic", func() {
		Expect(Translate(model.MongoDB, "pw", 27018, "/v")).To(
			Equal(Successful(Translate(model.MongoDB, "pw", 27018, "/v"))))
	})

	It("rejects unknown database types", func() {
		Expect(Translate(model.DatabaseType(666), "pw", 1, "")).Error().To(
			MatchError(model.ErrInvalidRequest))
	})

})
