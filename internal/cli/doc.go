/*
Package cli implements the ldbctl command line interface for managing local
database instances.

Configuration is taken from (in order of precedence) command line flags,
environment variables prefixed with “LDB_” (also from “.env” and “.env.local”
files in the current directory), and the optional “config.yaml” file in the
data directory.
*/
package cli
