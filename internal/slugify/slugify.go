// Package slugify derives URL-safe slugs and resolves collisions within a
// uniqueness scope. Collision resolution is a pure function over the set of
// slugs already taken in the scope; callers are expected to run the
// taken-slug query and the insert inside one transaction.
package slugify

import (
	"strconv"

	"github.com/gosimple/slug"
)

// Derive returns the slug form of a display name: lowercased, with runs of
// non-alphanumeric characters collapsed to single hyphens and no leading or
// trailing hyphen.
func Derive(name string) string {
	return slug.Make(name)
}

// Unique returns base if it is not taken, otherwise the first free
// "base-N" for the lowest N >= 2.
func Unique(base string, taken []string) string {
	set := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		set[s] = struct{}{}
	}
	if _, ok := set[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := set[candidate]; !ok {
			return candidate
		}
	}
}
