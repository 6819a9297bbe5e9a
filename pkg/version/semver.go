package version

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Update deltas reported by Delta.
const (
	DeltaMajor = "major"
	DeltaMinor = "minor"
	DeltaPatch = "patch"
)

// Delta classifies the step from current to latest as major, minor or patch.
// It returns "" when either side is not a semantic version or latest is not newer.
func Delta(current, latest string) string {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return ""
	}
	lat, err := semver.NewVersion(latest)
	if err != nil {
		return ""
	}
	if !lat.GreaterThan(cur) {
		return ""
	}

	switch {
	case lat.Major() != cur.Major():
		return DeltaMajor
	case lat.Minor() != cur.Minor():
		return DeltaMinor
	default:
		return DeltaPatch
	}
}

// SortTags orders release tags newest first. Tags that are not semantic
// versions keep their relative order after all semantic ones.
func SortTags(tags []string) []string {
	type parsed struct {
		tag string
		v   *semver.Version
	}

	var versioned, other []parsed
	for _, t := range tags {
		v, err := semver.NewVersion(ExtractFromTag(t))
		if err != nil {
			other = append(other, parsed{tag: t})
			continue
		}
		versioned = append(versioned, parsed{tag: t, v: v})
	}

	sort.SliceStable(versioned, func(i, j int) bool {
		return versioned[i].v.GreaterThan(versioned[j].v)
	})

	out := make([]string, 0, len(tags))
	for _, p := range versioned {
		out = append(out, p.tag)
	}
	for _, p := range other {
		out = append(out, p.tag)
	}
	return out
}
