package dep

import (
	"strconv"
	"strings"

	"github.com/ppphp/entropago/pkg/exception"
	"github.com/ppphp/entropago/pkg/versions"
)

// Atom is a parsed package reference. Values are only built by ParseAtom
// and are not modified afterwards.
type Atom struct {
	Value string

	Blocker  bool
	Operator string
	Star     bool

	Category string
	Name     string
	Version  string
	Revision string

	Tag                string
	Sha1               string
	EntropyRevision    int
	HasEntropyRevision bool

	Slot         string
	UseDeps      []string
	Repositories []string
}

func invalidAtom(s, why string) error {
	return exception.Raisef(exception.KindInvalidAtom, "invalid atom %q: %s", s, why)
}

// ParseAtom decomposes an atom string of the form
//
//	[!][op]category/name[-version[-rN]][*][#tag][.sha1][~N][:slot][[use]][@repo,...]
//
// and fails with exception.ErrInvalidAtom when any part is malformed.
func ParseAtom(s string) (*Atom, error) {
	if s == "" {
		return nil, invalidAtom(s, "empty")
	}
	a := &Atom{Value: s, Revision: defaultRev}
	rest := s
	if strings.HasPrefix(rest, "!") {
		a.Blocker = true
		rest = strings.TrimLeft(rest, "!")
	}

	if strings.Contains(rest, repoSeparator) {
		rest, a.Repositories = GetMatchInRepos(rest)
		if len(a.Repositories) == 0 {
			return nil, invalidAtom(s, "empty repository list")
		}
		for _, r := range a.Repositories {
			if !repoIDRe.MatchString(r) {
				return nil, invalidAtom(s, "bad repository id "+r)
			}
		}
	}

	if i := strings.IndexByte(rest, useOpen); i != -1 {
		use, err := GetUseDeps(rest)
		if err != nil {
			return nil, err
		}
		if RemoveUseDeps(rest) != rest[:i] || !strings.HasSuffix(rest, string(useClose)) ||
			strings.Count(rest, string(useOpen)) != strings.Count(rest, string(useClose)) {
			return nil, invalidAtom(s, "text after use dependencies")
		}
		a.UseDeps = use
		rest = rest[:i]
	} else if strings.IndexByte(rest, useClose) != -1 {
		return nil, invalidAtom(s, "unbalanced use dependency bracket")
	}

	if slot, ok := GetSlot(rest); ok {
		if !slotRe.MatchString(slot) {
			return nil, invalidAtom(s, "bad slot")
		}
		a.Slot = slot
		rest = RemoveSlot(rest)
	}

	a.Operator, rest = splitOperator(rest)

	if start, end, ok := entropyRevisionSpan(rest); ok {
		rev := rest[start+1 : end]
		if n, ok := GetEntropyRevision(rest); ok {
			a.EntropyRevision, a.HasEntropyRevision = n, true
		} else if rev == "" {
			return nil, invalidAtom(s, "empty entropy revision")
		}
		rest = RemoveEntropyRevision(rest)
	}

	rest, a.Sha1, _ = GetSha1(rest)
	if strings.Contains(rest, tagSeparator) {
		tag, ok := GetTag(rest)
		if !ok || !tagRe.MatchString(tag) {
			return nil, invalidAtom(s, "bad package tag")
		}
		a.Tag = tag
		rest = RemoveTag(rest)
	}

	if strings.HasSuffix(rest, "*") {
		if a.Operator != "=" {
			return nil, invalidAtom(s, "wildcard requires the = operator")
		}
		a.Star = true
		rest = strings.TrimSuffix(rest, "*")
	}

	if !strings.Contains(rest, catSeparator) {
		return nil, invalidAtom(s, "missing category")
	}
	split, versioned := CatPkgSplit(rest)
	if !versioned {
		if a.Operator != "" {
			return nil, invalidAtom(s, "operator without version")
		}
		parts := strings.Split(rest, catSeparator)
		if len(parts) != 2 || !catRe.MatchString(parts[0]) || !pkgRe.MatchString(parts[1]) {
			return nil, invalidAtom(s, "bad category or name")
		}
		nameParts := strings.Split(parts[1], "-")
		if revRe.MatchString(nameParts[len(nameParts)-1]) {
			return nil, invalidAtom(s, "name ends in a revision")
		}
		for _, x := range nameParts {
			if x == "" || versions.VerVerify(x) {
				return nil, invalidAtom(s, "bad name part")
			}
		}
		a.Category, a.Name = parts[0], parts[1]
		return a, nil
	}
	a.Category, a.Name, a.Version, a.Revision = split[0], split[1], split[2], split[3]
	return a, nil
}

// Key returns category/name.
func (a *Atom) Key() string {
	return a.Category + catSeparator + a.Name
}

// FullVersion returns the version with a non-default revision appended.
func (a *Atom) FullVersion() string {
	if a.Version == "" || a.Revision == defaultRev {
		return a.Version
	}
	return a.Version + "-" + a.Revision
}

// Cpv returns category/name[-version[-rN]].
func (a *Atom) Cpv() string {
	if a.Version == "" {
		return a.Key()
	}
	return a.Key() + "-" + a.FullVersion()
}

// String renders the atom back in canonical order.
func (a *Atom) String() string {
	var b strings.Builder
	if a.Blocker {
		b.WriteString("!")
	}
	b.WriteString(a.Operator)
	b.WriteString(a.Cpv())
	if a.Star {
		b.WriteString("*")
	}
	if a.Tag != "" {
		b.WriteString(tagSeparator + a.Tag)
	}
	if a.Sha1 != "" {
		b.WriteString("." + a.Sha1)
	}
	if a.HasEntropyRevision {
		b.WriteString(entropyRevisionSeparator + strconv.Itoa(a.EntropyRevision))
	}
	if a.Slot != "" {
		b.WriteString(slotSeparator + a.Slot)
	}
	if len(a.UseDeps) > 0 {
		b.WriteString(string(useOpen) + strings.Join(a.UseDeps, ",") + string(useClose))
	}
	if len(a.Repositories) > 0 {
		b.WriteString(repoSeparator + strings.Join(a.Repositories, repoListSeparator))
	}
	return b.String()
}

// IsValidAtom reports whether ParseAtom accepts s.
func IsValidAtom(s string) bool {
	_, err := ParseAtom(s)
	return err == nil
}
