package env

import (
	"strings"

	"github.com/ppphp/entropago/pkg/dep"
)

// PackagesFileValidator accepts atoms optionally prefixed with "*" or "-",
// the markers package list files use for system and removed entries.
func PackagesFileValidator(atom string) bool {
	if strings.HasPrefix(atom, "*") || strings.HasPrefix(atom, "-") {
		atom = atom[1:]
	}
	return dep.IsValidAtom(atom)
}
