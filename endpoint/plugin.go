// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package endpoint

import (
	"path/filepath"
	"strings"
)

// LookupEnv looks up environment variables, such as [os.LookupEnv].
type LookupEnv func(key string) (string, bool)

// Finder returns API endpoint candidates of a particular type of container
// engine.
type Finder interface {
	// Type returns the engine type, such as "docker.com" or "podman.io".
	Type() string
	// Endpoints returns the API endpoint URLs to try, most preferred first.
	// Endpoints only depending on unset environment variables are skipped.
	Endpoints(env LookupEnv) []string
}

// Unix returns the "unix://" endpoint URL for the socket path consisting of
// the value of the specified environment variable and the remaining path
// elements. If the environment variable is unset or empty, Unix returns "".
// An empty variable name denotes an absolute socket path.
func Unix(env LookupEnv, variable string, elem ...string) string {
	if variable == "" {
		return "unix://" + filepath.Join(elem...)
	}
	dir, ok := env(variable)
	if !ok || dir == "" {
		return ""
	}
	return "unix://" + filepath.Join(append([]string{dir}, elem...)...)
}

// SocketPath returns the file system path of a "unix://" endpoint URL, or ""
// for other URL schemes.
func SocketPath(api string) string {
	path, ok := strings.CutPrefix(api, "unix://")
	if !ok {
		return ""
	}
	return path
}

// Compact drops empty endpoints.
func Compact(apis ...string) []string {
	compacted := apis[:0]
	for _, api := range apis {
		if api != "" {
			compacted = append(compacted, api)
		}
	}
	return compacted
}
