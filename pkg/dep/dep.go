package dep

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppphp/entropago/pkg/exception"
	"github.com/ppphp/entropago/pkg/versions"
)

const (
	catSeparator             = "/"
	slotSeparator            = ":"
	slotTagSeparator         = ","
	tagSeparator             = "#"
	entropyRevisionSeparator = "~"
	repoSeparator            = "@"
	repoListSeparator        = ","
	useOpen                  = '['
	useClose                 = ']'

	missingCat = "null"
	defaultRev = "r0"

	cat = `[\w+][\w+.-]*`
	pkg = `[\w+][\w+-]*`

	// operatorChars are the characters a comparison operator is made of.
	operatorChars = "<>=~"
)

var (
	catRe     = regexp.MustCompile("^" + cat + "$")
	pkgRe     = regexp.MustCompile("^" + pkg + "$")
	revRe     = regexp.MustCompile(`^r\d+$`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
	sha1Re    = regexp.MustCompile(`^(.*)\.([a-f0-9]{40})$`)
	slotRe    = regexp.MustCompile(`^[\w+][\w+.,/-]*$`)
	tagRe     = regexp.MustCompile(`^[\w+.-]+$`)
	repoIDRe  = regexp.MustCompile(`^[\w][\w.-]*$`)
	operators = []string{">=", "<=", "=", "~", "<", ">"}
)

// PkgSplit splits "name-version[-rN]" into name, version and revision.
// Name parts must not look like versions.
func PkgSplit(mypkg string) ([3]string, bool) {
	myparts := strings.Split(mypkg, "-")
	if len(myparts) < 2 {
		return [3]string{}, false
	}
	for _, x := range myparts {
		if len(x) == 0 {
			return [3]string{}, false
		}
	}
	verPos := len(myparts) - 1
	revision := defaultRev
	if revRe.MatchString(myparts[verPos]) {
		revision = myparts[verPos]
		verPos--
	}
	if verPos < 1 || !versions.VerVerify(myparts[verPos]) {
		return [3]string{}, false
	}
	for _, x := range myparts[:verPos] {
		if versions.VerVerify(x) {
			return [3]string{}, false
		}
	}
	name := strings.Join(myparts[:verPos], "-")
	if !pkgRe.MatchString(name) {
		return [3]string{}, false
	}
	return [3]string{name, myparts[verPos], revision}, true
}

// CatPkgSplit splits "category/name-version[-rN]". The category is "null"
// when the separator is missing.
func CatPkgSplit(mydata string) ([4]string, bool) {
	mySplit := strings.Split(mydata, catSeparator)
	var category string
	switch len(mySplit) {
	case 1:
		category = missingCat
	case 2:
		category = mySplit[0]
		if !catRe.MatchString(category) {
			return [4]string{}, false
		}
	default:
		return [4]string{}, false
	}
	p, ok := PkgSplit(mySplit[len(mySplit)-1])
	if !ok {
		return [4]string{}, false
	}
	return [4]string{category, p[0], p[1], p[2]}, true
}

// IsJustName reports whether mypkg carries no version. A default r0
// revision is always spelled out before splitting, so an explicit "-r0"
// suffix ends up doubled and the input reads as a bare name.
func IsJustName(mypkg string) bool {
	if GetSpmRevision(mypkg) == defaultRev {
		mypkg += "-" + defaultRev
	}
	_, ok := CatPkgSplit(mypkg)
	return !ok
}

// IsSpecific reports whether mydep pins a version.
func IsSpecific(mydep string) bool {
	mydep, _ = GetMatchInRepos(mydep)
	mydep = GetCpv(RemoveEntropyRevision(RemoveTag(RemoveUseDeps(mydep))))
	return mydep != "" && !IsJustName(mydep)
}

// RemovePackageOperators drops blocker marks and comparison operators.
func RemovePackageOperators(atom string) string {
	atom = strings.TrimLeft(atom, "!")
	return strings.TrimLeft(atom, operatorChars)
}

func splitOperator(atom string) (string, string) {
	for _, op := range operators {
		if strings.HasPrefix(atom, op) {
			return op, atom[len(op):]
		}
	}
	return "", atom
}

// GetCpv strips operators, wildcards and the slot, leaving category/name-version.
func GetCpv(mydep string) string {
	mydep = strings.TrimLeft(mydep, "!")
	mydep = strings.TrimPrefix(mydep, "*")
	_, mydep = splitOperator(mydep)
	if colon := strings.Index(mydep, slotSeparator); colon != -1 {
		mydep = mydep[:colon]
	}
	return strings.TrimSuffix(mydep, "*")
}

// GetKey returns category/name for any atom, or the cleaned input when it
// has no version to split off.
func GetKey(mydep string) string {
	if mydep == "" {
		return mydep
	}
	mydep, _ = GetMatchInRepos(mydep)
	mydep = RemoveTag(mydep)
	mydep = RemoveUseDeps(mydep)
	mydep = RemoveEntropyRevision(mydep)
	mydep = GetCpv(mydep)
	if mydep != "" && !IsJustName(mydep) {
		if mySplit, ok := CatPkgSplit(mydep); ok {
			return mySplit[0] + catSeparator + mySplit[1]
		}
	}
	return mydep
}

// segmentEnd returns the index in s where a suffix segment stops: the first
// character of any of the given separators, or len(s).
func segmentEnd(s, separators string) int {
	if i := strings.IndexAny(s, separators); i != -1 {
		return i
	}
	return len(s)
}

// GetSlot returns the slot, including any comma-appended sub-tag.
func GetSlot(mydep string) (string, bool) {
	mydep, _ = GetMatchInRepos(RemoveTag(mydep))
	colon := strings.Index(mydep, slotSeparator)
	if colon == -1 {
		return "", false
	}
	rest := mydep[colon+1:]
	return rest[:segmentEnd(rest, string(useOpen))], true
}

// RemoveSlot drops the ":slot" segment and keeps use deps and repositories.
func RemoveSlot(mydep string) string {
	colon := strings.Index(mydep, slotSeparator)
	if colon == -1 {
		return mydep
	}
	rest := mydep[colon+1:]
	return mydep[:colon] + rest[segmentEnd(rest, string(useOpen)+repoSeparator):]
}

// RemoveTagFromSlot drops the sub-tag after the last comma of a slot.
func RemoveTagFromSlot(slot string) string {
	if i := strings.LastIndex(slot, slotTagSeparator); i != -1 {
		return slot[:i]
	}
	return slot
}

// GetUseDeps parses the [..] groups of mydep. A single comma separated
// group and several single-flag groups are both accepted, a mix is not.
func GetUseDeps(depend string) ([]string, error) {
	var useList []string
	commaSeparated := false
	bracketCount := 0
	openBracket := strings.IndexByte(depend, useOpen)
	for openBracket != -1 {
		bracketCount++
		closeBracket := strings.IndexByte(depend[openBracket:], useClose)
		if closeBracket == -1 {
			return nil, exception.Raisef(exception.KindInvalidAtom, "USE Dependency with no closing bracket: %s", depend)
		}
		closeBracket += openBracket
		use := depend[openBracket+1 : closeBracket]
		if use == "" {
			return nil, exception.Raisef(exception.KindInvalidAtom, "USE Dependency with no use flag ([]): %s", depend)
		}
		if strings.IndexByte(use, useOpen) != -1 {
			return nil, exception.Raisef(exception.KindInvalidAtom, "USE Dependency with nested brackets: %s", depend)
		}
		if !commaSeparated {
			commaSeparated = strings.Contains(use, ",")
		}
		if commaSeparated && bracketCount > 1 {
			return nil, exception.Raisef(exception.KindInvalidAtom, "USE Dependency contains a mixture of comma and bracket separators: %s", depend)
		}
		if commaSeparated {
			for _, x := range strings.Split(use, ",") {
				if x == "" {
					return nil, exception.Raisef(exception.KindInvalidAtom, "USE Dependency with no use flag in comma-separated list: %s", depend)
				}
				useList = append(useList, x)
			}
		} else {
			useList = append(useList, use)
		}
		next := strings.IndexByte(depend[closeBracket+1:], useOpen)
		if next == -1 {
			break
		}
		openBracket = closeBracket + 1 + next
	}
	return useList, nil
}

// RemoveUseDeps drops everything inside brackets, tracking nesting depth.
func RemoveUseDeps(depend string) string {
	var b strings.Builder
	skip := 0
	for i := 0; i < len(depend); i++ {
		switch depend[i] {
		case useOpen:
			skip++
			continue
		case useClose:
			if skip > 0 {
				skip--
			}
			continue
		}
		if skip == 0 {
			b.WriteByte(depend[i])
		}
	}
	return b.String()
}

// GetSpmRevision returns the rN of the last dash segment, or r0.
func GetSpmRevision(mydep string) string {
	parts := strings.Split(mydep, "-")
	if rev := parts[len(parts)-1]; revRe.MatchString(rev) {
		return rev
	}
	return defaultRev
}

// RemoveRevision strips a trailing dash segment starting with "r", without
// checking that digits follow.
func RemoveRevision(ver string) string {
	myver := strings.Split(ver, "-")
	if last := myver[len(myver)-1]; len(myver) > 1 && strings.HasPrefix(last, "r") {
		return strings.Join(myver[:len(myver)-1], "-")
	}
	return ver
}

// GetTag returns the package tag between "#" and the next suffix separator.
func GetTag(mydep string) (string, bool) {
	mydep = RemoveEntropyRevision(mydep)
	i := strings.LastIndex(mydep, tagSeparator)
	if i == -1 {
		return "", false
	}
	tag := mydep[i+1:]
	tag = tag[:segmentEnd(tag, slotSeparator+string(useOpen)+repoSeparator)]
	if tag == "" {
		return "", false
	}
	return tag, true
}

// RemoveTag drops the "#tag" segment.
func RemoveTag(mydep string) string {
	i := strings.LastIndex(mydep, tagSeparator)
	if i == -1 {
		return mydep
	}
	rest := mydep[i+1:]
	return mydep[:i] + rest[segmentEnd(rest, slotSeparator+string(useOpen)+repoSeparator+entropyRevisionSeparator):]
}

func entropyRevisionSpan(mydep string) (int, int, bool) {
	body := RemovePackageOperators(mydep)
	offset := len(mydep) - len(body)
	i := strings.LastIndex(body, entropyRevisionSeparator)
	if i == -1 {
		return 0, 0, false
	}
	rest := body[i+1:]
	end := i + 1 + segmentEnd(rest, slotSeparator+string(useOpen)+repoSeparator+tagSeparator)
	return offset + i, offset + end, true
}

// GetEntropyRevision returns the number after the last "~". A non-numeric
// revision counts as absent.
func GetEntropyRevision(mydep string) (int, bool) {
	start, end, ok := entropyRevisionSpan(mydep)
	if !ok {
		return 0, false
	}
	rev := mydep[start+1 : end]
	if !digitsRe.MatchString(rev) {
		return 0, false
	}
	n, err := strconv.Atoi(rev)
	if err != nil {
		return 0, false
	}
	return n, true
}

// RemoveEntropyRevision drops the "~N" segment, keeping a leading "~" operator.
func RemoveEntropyRevision(mydep string) string {
	start, end, ok := entropyRevisionSpan(mydep)
	if !ok {
		return mydep
	}
	return mydep[:start] + mydep[end:]
}

// GetMatchInRepos splits off the "@repo[,repo]" pin.
func GetMatchInRepos(mydep string) (string, []string) {
	i := strings.LastIndex(mydep, repoSeparator)
	if i == -1 {
		return mydep, nil
	}
	var repos []string
	for _, r := range strings.Split(mydep[i+1:], repoListSeparator) {
		if r != "" {
			repos = append(repos, r)
		}
	}
	return mydep[:i], repos
}

// GetSha1 splits a trailing ".<40 hex digits>" content hash off mydep.
func GetSha1(mydep string) (string, string, bool) {
	m := sha1Re.FindStringSubmatch(mydep)
	if m == nil {
		return mydep, "", false
	}
	return m[1], m[2], true
}
