// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package hub

import (
	"strconv"
	"strings"

	"github.com/siemens/ldbengine/dbtype"
	"golang.org/x/exp/slices"
)

// Categories of tags.
type Categories struct {
	Latest   []string // "latest" and "latest"-something.
	Versions []string // pure versions, such as "16" and "16.2".
	Variants []string // everything else, such as "16-alpine" or "bookworm".
}

// Categorize sorts the tag names into their categories, each category sorted
// with the newest versions first.
func Categorize(names []string) Categories {
	var cats Categories
	for _, name := range names {
		switch {
		case name == "latest" || strings.HasPrefix(name, "latest-"):
			cats.Latest = append(cats.Latest, name)
		case isVersion(name):
			cats.Versions = append(cats.Versions, name)
		default:
			cats.Variants = append(cats.Variants, name)
		}
	}
	SortTags(cats.Latest)
	SortTags(cats.Versions)
	SortTags(cats.Variants)
	return cats
}

// SortTags sorts tag names in place: tags with a leading version come first,
// ordered by descending version, followed by all other tags in lexical order.
// Tags with the same version are ordered lexically, so "16" comes before
// "16-alpine".
func SortTags(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		va, resta := leadingVersion(a)
		vb, restb := leadingVersion(b)
		switch {
		case va == nil && vb != nil:
			return 1
		case va != nil && vb == nil:
			return -1
		}
		if c := compareVersions(va, vb); c != 0 {
			return -c
		}
		return strings.Compare(resta, restb)
	})
}

// Names returns the names of the specified tags.
func Names(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

// Image is a supported database image on the Docker Hub.
type Image struct {
	Name        string // short name, such as "postgres".
	Repository  string // repository, such as "library/postgres".
	Description string
}

// SupportedImages returns the official images of all supported database
// types.
func SupportedImages() []Image {
	images := []Image{}
	for _, policy := range dbtype.Policies() {
		repo := policy.HubRepository()
		images = append(images, Image{
			Name:        repo[strings.LastIndex(repo, "/")+1:],
			Repository:  repo,
			Description: policy.Description(),
		})
	}
	return images
}

// isVersion returns true if the tag name is a dotted version only.
func isVersion(name string) bool {
	v, rest := leadingVersion(name)
	return v != nil && rest == ""
}

// leadingVersion parses the leading dotted numeric version of a tag name,
// returning the version components and the remaining suffix. Without a
// leading version, it returns nil and the complete name.
func leadingVersion(name string) ([]int, string) {
	var components []int
	rest := name
	for {
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 {
			break
		}
		n, err := strconv.Atoi(rest[:end])
		if err != nil {
			break
		}
		components = append(components, n)
		rest = rest[end:]
		if len(rest) < 2 || rest[0] != '.' || rest[1] < '0' || rest[1] > '9' {
			break
		}
		rest = rest[1:]
	}
	if components == nil {
		return nil, name
	}
	return components, rest
}

// compareVersions compares versions component-wise, where a missing component
// counts as less than any existing one, so "16" < "16.0".
func compareVersions(a, b []int) int {
	for idx := 0; idx < len(a) && idx < len(b); idx++ {
		if a[idx] != b[idx] {
			if a[idx] < b[idx] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
