package versions

import (
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ppphp/entropago/pkg/exception"
)

const (
	v   = `(cvs\.)?(\d+)((\.\d+)*)([a-z]?)((_(pre|p|beta|alpha|rc)\d*)*)`
	rev = `\d+`
	vr  = v + `(-r(` + rev + `))?`
)

// Submatch indexes into verRegexp.
const (
	groupMajor    = 2
	groupMinors   = 3
	groupLetter   = 5
	groupSuffixes = 6
	groupRevision = 10
)

var (
	verRegexp    = regexp.MustCompile("^" + vr + "$")
	suffixRegexp = regexp.MustCompile(`^(alpha|beta|rc|pre|p)(\d*)$`)
)

type VersionStatus string

const (
	VersionStatusPre   VersionStatus = "pre"
	VersionStatusP     VersionStatus = "p"
	VersionStatusAlpha VersionStatus = "alpha"
	VersionStatusBeta  VersionStatus = "beta"
	VersionStatusRC    VersionStatus = "rc"
)

var suffixValue = map[VersionStatus]int{
	VersionStatusPre:   -2,
	VersionStatusP:     0,
	VersionStatusAlpha: -4,
	VersionStatusBeta:  -3,
	VersionStatusRC:    -1}

func VerVerify(myver string) bool {
	return verRegexp.MatchString(myver)
}

// Suffix is one `_kind[N]` element of a version.
type Suffix struct {
	Status VersionStatus
	Number string
}

func (s Suffix) number() int {
	n, err := strconv.Atoi(s.Number)
	if err != nil {
		return 0
	}
	return n
}

// neutralSuffix stands in for a missing suffix position.
var neutralSuffix = Suffix{Status: VersionStatusP, Number: "0"}

// VersionKey is the comparable projection of a version string. A key is
// built per comparison and never shared between version strings.
type VersionKey struct {
	Major    *big.Int
	Minors   []string
	Letter   string
	Suffixes []Suffix
	Revision int
}

func NewVersionKey(ver string) (*VersionKey, error) {
	m := verRegexp.FindStringSubmatch(ver)
	if m == nil {
		return nil, exception.Raisef(exception.KindInvalidVersion, "!!! syntax error in version: %s", ver)
	}
	k := &VersionKey{Letter: m[groupLetter]}
	k.Major, _ = new(big.Int).SetString(m[groupMajor], 10)
	if m[groupMinors] != "" {
		k.Minors = strings.Split(m[groupMinors][1:], ".")
	}
	if m[groupSuffixes] != "" {
		for _, s := range strings.Split(m[groupSuffixes], "_")[1:] {
			sm := suffixRegexp.FindStringSubmatch(s)
			k.Suffixes = append(k.Suffixes, Suffix{Status: VersionStatus(sm[1]), Number: sm[2]})
		}
	}
	if m[groupRevision] != "" {
		k.Revision, _ = strconv.Atoi(m[groupRevision])
	}
	return k, nil
}

// Cmp orders two keys. The sign is meaningful, the magnitude is not.
func (k *VersionKey) Cmp(o *VersionKey) int {
	if c := k.Major.Cmp(o.Major); c != 0 {
		return c
	}
	for i := 0; i < len(k.Minors) || i < len(o.Minors); i++ {
		var c int
		switch {
		case i >= len(k.Minors):
			// missing components rank below any present one, so 1.0 < 1.0.0
			c = -1
		case i >= len(o.Minors):
			c = 1
		default:
			c = cmpComponent(k.Minors[i], o.Minors[i])
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case k.Letter != "" && o.Letter != "":
		if k.Letter != o.Letter {
			return int(k.Letter[0]) - int(o.Letter[0])
		}
	case k.Letter != "":
		return 1
	case o.Letter != "":
		return -1
	}
	for i := 0; i < len(k.Suffixes) || i < len(o.Suffixes); i++ {
		s1, s2 := neutralSuffix, neutralSuffix
		if i < len(k.Suffixes) {
			s1 = k.Suffixes[i]
		}
		if i < len(o.Suffixes) {
			s2 = o.Suffixes[i]
		}
		if s1.Status != s2.Status {
			return suffixValue[s1.Status] - suffixValue[s2.Status]
		}
		if s1.Number != s2.Number {
			if c := s1.number() - s2.number(); c != 0 {
				return c
			}
		}
	}
	return k.Revision - o.Revision
}

// cmpComponent compares two dotted components. A leading zero on either
// side switches to decimal-fraction comparison, so 1.02 < 1.1.
func cmpComponent(a, b string) int {
	if a[0] != '0' && b[0] != '0' {
		x, _ := new(big.Int).SetString(a, 10)
		y, _ := new(big.Int).SetString(b, 10)
		return x.Cmp(y)
	}
	for len(a) < len(b) {
		a += "0"
	}
	for len(b) < len(a) {
		b += "0"
	}
	return strings.Compare(a, b)
}

// VerCmp compares two version strings. When a version does not parse the
// result is 0 if ver1 is the bad one and 1 if only ver2 is, together with
// an InvalidVersion error.
func VerCmp(ver1, ver2 string) (int, error) {
	if ver1 == ver2 {
		return 0, nil
	}
	k1, err := NewVersionKey(ver1)
	if err != nil {
		return 0, err
	}
	k2, err := NewVersionKey(ver2)
	if err != nil {
		return 1, err
	}
	return k1.Cmp(k2), nil
}

// GetNewerVersion sorts versions newest first. Unparseable versions sink to
// the end in their original order.
func GetNewerVersion(vers []string) []string {
	valid := make([]string, 0, len(vers))
	var invalid []string
	for _, ver := range vers {
		if VerVerify(ver) {
			valid = append(valid, ver)
		} else {
			invalid = append(invalid, ver)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		c, _ := VerCmp(valid[i], valid[j])
		return c > 0
	})
	return append(valid, invalid...)
}

func Best(myMatches []string) string {
	if len(myMatches) == 0 {
		return ""
	}
	return GetNewerVersion(myMatches)[0]
}
