// Package commit contains code for reading and processing commits.
package commit

// TypeUnknown is assigned to commits whose subject doesn't follow the
// conventional grammar. It is always set, so downstream aggregations have a
// total partition over commit types.
const TypeUnknown = "unknown"

type BumpType int

const (
	_ BumpType = iota

	BumpPrerelease
	BumpPatch
	BumpMinor
	BumpMajor
)

func (t BumpType) String() string {
	switch t {
	case BumpPrerelease:
		return "prerelease"
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	case 0:
		return "<INVALID>"
	default:
		return "<UNKNOWN>"
	}
}

func BumpTypeFromString(s string) BumpType {
	switch s {
	case "prerelease":
		return BumpPrerelease
	case "patch":
		return BumpPatch
	case "minor":
		return BumpMinor
	case "major":
		return BumpMajor
	}
	panic("unknown bump type: " + s)
}
