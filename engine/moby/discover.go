// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package moby

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/docker/client"
	"github.com/siemens/ldbengine/endpoint"
	"github.com/siemens/ldbengine/model"
	"github.com/thediveo/go-plugger/v3"
	log "github.com/sirupsen/logrus"
)

// PingTimeout limits how long to wait for a candidate engine endpoint to
// respond.
const PingTimeout = 10 * time.Second

// Discover returns an Engine connected to the first responsive API endpoint.
// An endpoint configured via DOCKER_HOST takes precedence and is the only one
// tried when set. Otherwise, the endpoint candidates of the registered
// endpoint finder plugins are tried in order, skipping candidates whose socket
// doesn't exist.
func Discover(ctx context.Context) (*Engine, error) {
	if host := os.Getenv(client.EnvOverrideHost); host != "" {
		eng, err := dial(ctx, host, Type)
		if err != nil {
			return nil, err
		}
		return eng, nil
	}
	for _, finder := range plugger.Group[endpoint.Finder]().PluginsSymbols() {
		for _, api := range finder.S.Endpoints(os.LookupEnv) {
			if path := endpoint.SocketPath(api); path != "" {
				if _, err := os.Stat(path); err != nil {
					continue
				}
			}
			log.Debugf("dialing %s endpoint '%s' found by plugin %s",
				finder.S.Type(), api, finder.Plugin)
			eng, err := dial(ctx, api, finder.S.Type())
			if err != nil {
				log.Debugf("%s API endpoint '%s' failed: %s", finder.S.Type(), api, err.Error())
				continue
			}
			return eng, nil
		}
	}
	return nil, fmt.Errorf("%w: no responsive container engine API endpoint found",
		model.ErrEngineUnavailable)
}

// dial returns an Engine for the specified API endpoint, but only after it
// successfully pinged the engine.
func dial(ctx context.Context, api string, typ string) (*Engine, error) {
	eng, err := New(api)
	if err != nil {
		return nil, err
	}
	eng.typ = typ
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := eng.Ping(ctx); err != nil {
		_ = eng.Close()
		return nil, err
	}
	log.Infof("using %s engine at API endpoint %s", typ, eng.API())
	return eng, nil
}
