// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package unsorted

import "os"

// Subdirs reads the specified directory, returning the names of all its
// subdirectories, but not taking the time to sort them as the stdlib's
// [os.ReadDir] does (see also the [go-nuts] discussion). Symbolic links are
// not followed and thus never reported.
//
// [go-nuts]:
// https://groups.google.com/g/golang-nuts/c/Q7hYQ9GdX9Q/m/fwYRMIbNDgsJ
func Subdirs(name string) ([]string, error) {
	d, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}
