package commit

import (
	"errors"
	"strings"

	"github.com/blang/semver/v4"
)

var ErrNoTags = errors.New("commit: no release tags found")

// parseBaseline parses a baseline version string, tolerating a leading "v".
func parseBaseline(s string) (semver.Version, error) {
	return semver.Parse(strings.TrimPrefix(s, "v"))
}

// SemverLatest returns the highest release version among tags. Prerelease
// tags are skipped unless prerelease names the release-candidate channel to
// match (v.Pre splits on periods, so -rc.0 becomes [rc, 0]).
func SemverLatest(tags []string, prerelease string) (semver.Version, error) {
	var versions []semver.Version
	for _, t := range tags {
		if strings.HasPrefix(t, "v") {
			t = t[1:]
		}

		v, err := semver.Parse(t)
		if err != nil {
			continue
		}

		if prerelease == "" && len(v.Pre) > 0 {
			continue
		} else if prerelease != "" && (len(v.Pre) != 2 || v.Pre[0].String() != prerelease) {
			continue
		}

		versions = append(versions, v)
	}

	semver.Sort(versions)
	if len(versions) > 0 {
		return versions[len(versions)-1], nil
	}
	return semver.Version{}, ErrNoTags
}
