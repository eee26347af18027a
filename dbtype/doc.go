/*
Package dbtype defines the plugin interface for database type policies: default
ports, data mount paths, credential environment variables and command
overrides, as well as image-based type inference.

The individual policies live in their own packages and register themselves
with the [github.com/thediveo/go-plugger/v3] plugin group for [Policy]. Import
package [github.com/siemens/ldbengine/dbtype/all] to pull in all of them.
*/
package dbtype
