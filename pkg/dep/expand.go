package dep

import (
	"strings"

	"github.com/ppphp/entropago/pkg/util/msg"
)

// DependencyKind is an opaque tag carried along with a dependency.
type DependencyKind int

const (
	KindNone DependencyKind = iota
	KindRuntime
	KindPostRuntime
	KindManual
	KindBuild
)

type DependencyEntry struct {
	Dependency string
	Kind       DependencyKind
}

func isConditional(dep string) bool {
	return strings.HasPrefix(dep, "(")
}

// ExpandDependencies replaces every conditional entry with the atoms that
// satisfy it. Conditionals that are malformed or cannot be satisfied are
// kept verbatim so one bad package never aborts a whole catalogue.
func ExpandDependencies(entries []DependencyEntry, repos []Repository, selectedMatches []PackageMatch) []DependencyEntry {
	parser := NewDependencyStringParser(repos, selectedMatches)
	pkgDeps := make([]DependencyEntry, 0, len(entries))
	for _, entry := range entries {
		if !isConditional(entry.Dependency) {
			pkgDeps = append(pkgDeps, entry)
			continue
		}
		matched, deps, err := parser.Parse(entry.Dependency)
		if err != nil {
			msg.WithField("dependency", entry.Dependency).Debugf("keeping malformed dependency: %v", err)
			pkgDeps = append(pkgDeps, entry)
			continue
		}
		if !matched {
			msg.WithField("dependency", entry.Dependency).Debugf("keeping unsatisfied dependency")
			pkgDeps = append(pkgDeps, entry)
			continue
		}
		for _, d := range deps {
			pkgDeps = append(pkgDeps, DependencyEntry{Dependency: d, Kind: entry.Kind})
		}
	}
	return pkgDeps
}

// ExpandDependencyStrings is ExpandDependencies for untagged dependencies.
func ExpandDependencyStrings(deps []string, repos []Repository, selectedMatches []PackageMatch) []string {
	entries := make([]DependencyEntry, len(deps))
	for i, d := range deps {
		entries[i] = DependencyEntry{Dependency: d}
	}
	expanded := ExpandDependencies(entries, repos, selectedMatches)
	out := make([]string, len(expanded))
	for i, e := range expanded {
		out[i] = e.Dependency
	}
	return out
}
