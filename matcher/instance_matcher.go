// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package matcher

import (
	"fmt"

	"github.com/siemens/ldbengine/model"

	g "github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

// HaveInstanceNameID succeeds if ACTUAL is either a model.Instance or
// *model.Instance with the specified name or ID. Alternatively of a name/ID
// string, a GomegaMatcher can also be specified for matching the name or ID,
// such as ContainSubstring and MatchRegexp.
func HaveInstanceNameID(nameorid interface{}) types.GomegaMatcher {
	nameoridMatcher := stringMatcher(nameorid, "nameorid")
	return g.SatisfyAny(
		g.WithTransform(func(actual interface{}) (string, error) {
			inst, err := instance("HaveInstanceNameID", actual)
			if err != nil {
				return "", err
			}
			return inst.ID, nil
		}, nameoridMatcher),
		g.WithTransform(func(actual interface{}) (string, error) {
			inst, err := instance("HaveInstanceNameID", actual)
			if err != nil {
				return "", err
			}
			return inst.Name, nil
		}, nameoridMatcher),
	)
}

// HaveStatus succeeds if ACTUAL is either a model.Instance or *model.Instance
// with the specified status.
func HaveStatus(status model.Status) types.GomegaMatcher {
	return g.WithTransform(func(actual interface{}) (model.Status, error) {
		inst, err := instance("HaveStatus", actual)
		if err != nil {
			return "", err
		}
		return inst.Status, nil
	}, g.Equal(status))
}

// HavePort succeeds if ACTUAL is either a model.Instance or *model.Instance
// published on the specified host port.
func HavePort(port uint16) types.GomegaMatcher {
	return g.WithTransform(func(actual interface{}) (uint16, error) {
		inst, err := instance("HavePort", actual)
		if err != nil {
			return 0, err
		}
		return inst.Port, nil
	}, g.Equal(port))
}

func stringMatcher(s interface{}, argname string) types.GomegaMatcher {
	switch s := s.(type) {
	case string:
		return g.Equal(s)
	case types.GomegaMatcher:
		return s
	}
	panic(argname + " argument must be string or GomegaMatcher")
}

func instance(matchername string, actual interface{}) (*model.Instance, error) {
	switch inst := actual.(type) {
	case *model.Instance:
		return inst, nil
	case model.Instance:
		return &inst, nil
	}
	return nil, fmt.Errorf("%s expects a model.Instance or *model.Instance, but got %T",
		matchername, actual)
}
