package versions

import (
	"sort"
	"strings"
)

// EntropyVersion is the (version, tag, revision) triple packages are ranked by.
type EntropyVersion struct {
	Version  string
	Tag      string
	Revision int
}

// EntropyVerCmp orders two triples. Tags are compared first only when both
// sides are tagged; otherwise the version decides and the tag, then the
// entropy revision, break ties.
func EntropyVerCmp(a, b EntropyVersion) int {
	rc := 0
	if a.Tag != "" && b.Tag != "" {
		rc = strings.Compare(a.Tag, b.Tag)
	}
	if rc == 0 {
		rc, _ = VerCmp(a.Version, b.Version)
	}
	if rc != 0 {
		return rc
	}
	if c := strings.Compare(a.Tag, b.Tag); c != 0 {
		return c
	}
	switch {
	case a.Revision > b.Revision:
		return 1
	case a.Revision < b.Revision:
		return -1
	}
	return 0
}

// GetEntropyNewerVersion returns a copy of vers sorted newest first.
func GetEntropyNewerVersion(vers []EntropyVersion) []EntropyVersion {
	out := make([]EntropyVersion, len(vers))
	copy(out, vers)
	sort.SliceStable(out, func(i, j int) bool {
		return EntropyVerCmp(out[i], out[j]) > 0
	})
	return out
}
