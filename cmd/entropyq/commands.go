package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/ppphp/entropago/pkg/checksum"
	"github.com/ppphp/entropago/pkg/dep"
	"github.com/ppphp/entropago/pkg/env"
	"github.com/ppphp/entropago/pkg/pkgname"
	"github.com/ppphp/entropago/pkg/repository"
	"github.com/ppphp/entropago/pkg/util/msg"
	"github.com/ppphp/entropago/pkg/versions"
	"github.com/spf13/pflag"
)

func insufficient(q *query, argv []string, want int) bool {
	if len(argv) < want {
		q.errorf("insufficient parameters!")
		return true
	}
	return false
}

func sign(rc int) int {
	switch {
	case rc > 0:
		return 1
	case rc < 0:
		return -1
	}
	return 0
}

func vercmp(q *query, argv []string) int {
	if insufficient(q, argv, 2) {
		return exitUsage
	}
	rc, err := versions.VerCmp(argv[0], argv[1])
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	fmt.Fprintln(q.out, sign(rc))
	return exitOK
}

// parseEntropyVersion reads "version[#tag][~rev]".
func parseEntropyVersion(s string) (versions.EntropyVersion, error) {
	var ev versions.EntropyVersion
	if i := strings.LastIndex(s, "~"); i != -1 {
		rev, err := strconv.Atoi(s[i+1:])
		if err != nil || rev < 0 {
			return ev, fmt.Errorf("bad entropy revision in %q", s)
		}
		ev.Revision, s = rev, s[:i]
	}
	if i := strings.LastIndex(s, "#"); i != -1 {
		ev.Tag, s = s[i+1:], s[:i]
	}
	if !versions.VerVerify(s) {
		return ev, fmt.Errorf("invalid version %q", s)
	}
	ev.Version = s
	return ev, nil
}

func evercmp(q *query, argv []string) int {
	if insufficient(q, argv, 2) {
		return exitUsage
	}
	a, err := parseEntropyVersion(argv[0])
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	b, err := parseEntropyVersion(argv[1])
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	fmt.Fprintln(q.out, sign(versions.EntropyVerCmp(a, b)))
	return exitOK
}

func split(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	s, ok := dep.CatPkgSplit(argv[0])
	if !ok {
		q.errorf("cannot split %q", argv[0])
		return exitFalse
	}
	fmt.Fprintln(q.out, strings.Join(s[:], " "))
	return exitOK
}

func key(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	for _, a := range argv {
		fmt.Fprintln(q.out, dep.GetKey(a))
	}
	return exitOK
}

func slot(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	s, ok := dep.GetSlot(argv[0])
	if !ok {
		return exitFalse
	}
	fmt.Fprintln(q.out, s)
	return exitOK
}

func tag(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	t, ok := dep.GetTag(argv[0])
	if !ok {
		return exitFalse
	}
	fmt.Fprintln(q.out, t)
	return exitOK
}

func use(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	flags, err := dep.GetUseDeps(argv[0])
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	for _, f := range flags {
		fmt.Fprintln(q.out, f)
	}
	return exitOK
}

func printFields(q *query, fields [][2]string) {
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(q.out, "%s=%s\n", f[0], f[1])
		}
	}
}

func flag(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func explode(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	a, err := dep.ParseAtom(argv[0])
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	rev := ""
	if a.HasEntropyRevision {
		rev = strconv.Itoa(a.EntropyRevision)
	}
	printFields(q, [][2]string{
		{"blocker", flag(a.Blocker)},
		{"operator", a.Operator},
		{"category", a.Category},
		{"name", a.Name},
		{"version", a.Version},
		{"revision", a.Revision},
		{"star", flag(a.Star)},
		{"tag", a.Tag},
		{"sha1", a.Sha1},
		{"entropy_revision", rev},
		{"slot", a.Slot},
		{"use", strings.Join(a.UseDeps, ",")},
		{"repositories", strings.Join(a.Repositories, ",")},
		{"atom", a.String()},
	})
	return exitOK
}

func filename(q *query, argv []string) int {
	var (
		asPath bool
		sha1Of string
	)
	pf := pflag.NewFlagSet("filename", pflag.ContinueOnError)
	pf.SetOutput(q.err)
	pf.BoolVar(&asPath, "path", false, "print category/file instead of the flat file name")
	pf.StringVar(&sha1Of, "sha1-of", "", "embed the SHA1 of this file")
	if err := pf.Parse(argv); err != nil {
		return exitUsage
	}
	argv = pf.Args()
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	a, err := dep.ParseAtom(argv[0])
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	if a.Version == "" {
		q.errorf("%s has no version", argv[0])
		return exitError
	}
	p := pkgname.PackageFile{
		Category:    a.Category,
		Name:        a.Name,
		Version:     a.FullVersion(),
		Tag:         a.Tag,
		Sha1:        a.Sha1,
		Revision:    a.EntropyRevision,
		HasRevision: a.HasEntropyRevision,
	}
	if sha1Of != "" {
		if p.Sha1, err = checksum.Sha1File(sha1Of); err != nil {
			q.errorf("%v", err)
			return exitError
		}
	}
	if asPath {
		fmt.Fprintln(q.out, pkgname.RelativePath(p, q.conf.Packages.Extension))
	} else {
		fmt.Fprintln(q.out, pkgname.Encode(p, q.conf.Packages.Extension))
	}
	return exitOK
}

func decode(q *query, argv []string) int {
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	retval := exitOK
	for _, f := range argv {
		p, err := pkgname.DecodePathExt(f, q.conf.Packages.Extension)
		if err != nil {
			q.errorf("%v", err)
			retval = exitFalse
			continue
		}
		rev := ""
		if p.HasRevision {
			rev = strconv.Itoa(p.Revision)
		}
		verified := ""
		if p.Sha1 != "" {
			if st, err := os.Stat(f); err == nil && st.Mode().IsRegular() {
				ok, err := checksum.VerifySha1(f, p.Sha1)
				if err != nil {
					q.errorf("%v", err)
					return exitError
				}
				verified = strconv.FormatBool(ok)
				if !ok {
					retval = exitFalse
				}
			}
		}
		printFields(q, [][2]string{
			{"category", p.Category},
			{"name", p.Name},
			{"version", p.Version},
			{"tag", p.Tag},
			{"sha1", p.Sha1},
			{"sha1_verified", verified},
			{"entropy_revision", rev},
			{"atom", p.Atom()},
		})
	}
	return retval
}

func checksumCmd(q *query, argv []string) int {
	var hashes string
	pf := pflag.NewFlagSet("checksum", pflag.ContinueOnError)
	pf.SetOutput(q.err)
	pf.StringVar(&hashes, "hashes", "SHA1", "space separated hash names, \"*\" for all")
	if err := pf.Parse(argv); err != nil {
		return exitUsage
	}
	argv = pf.Args()
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	names := checksum.NewHashFilter(hashes).Apply()
	if len(names) == 0 {
		q.errorf("no supported hash in %q", hashes)
		return exitError
	}
	sums, err := checksum.PerformMultipleChecksums(argv[0], names)
	if err != nil {
		q.errorf("%v", err)
		return exitError
	}
	for _, name := range names {
		fmt.Fprintf(q.out, "%s %s\n", name, sums[name])
	}
	return exitOK
}

func packageAtom(c *repository.Catalogue, id int) string {
	if p, ok := c.Package(id); ok {
		return p.Atom.String()
	}
	return ""
}

func match(q *query, argv []string) int {
	var multi bool
	pf := pflag.NewFlagSet("match", pflag.ContinueOnError)
	pf.SetOutput(q.err)
	pf.BoolVar(&multi, "multi", false, "print every match")
	if err := pf.Parse(argv); err != nil {
		return exitUsage
	}
	argv = pf.Args()
	if insufficient(q, argv, 1) {
		return exitUsage
	}
	found := false
	for _, c := range q.catalogues {
		for _, m := range c.Match(argv[0], multi) {
			found = true
			fmt.Fprintf(q.out, "%s %d %s\n", m.RepositoryID, m.PackageID, packageAtom(c, m.PackageID))
		}
		if found && !multi {
			break
		}
	}
	if !found {
		return exitFalse
	}
	return exitOK
}

// bestMatch returns the best match for atom from the first repository that
// has one.
func bestMatch(q *query, atom string) (dep.PackageMatch, *repository.Catalogue, bool) {
	for _, c := range q.catalogues {
		if m := c.Match(atom, false); len(m) > 0 {
			return m[0], c, true
		}
	}
	return dep.PackageMatch{}, nil, false
}

func expand(q *query, argv []string) int {
	var (
		selected     []string
		selectedFile string
		list         string
		pkg          string
	)
	pf := pflag.NewFlagSet("expand", pflag.ContinueOnError)
	pf.SetOutput(q.err)
	pf.StringArrayVar(&selected, "selected", nil, "atom of an already selected package, may be repeated")
	pf.StringVar(&selectedFile, "selected-file", "", "file or directory listing already selected atoms, one per line")
	pf.StringVar(&list, "list", "", "shell quoted list of dependencies")
	pf.StringVar(&pkg, "package", "", "expand the dependencies of the best package matching this atom")
	if err := pf.Parse(argv); err != nil {
		return exitUsage
	}
	deps := pf.Args()
	if list != "" {
		words, err := shlex.Split(list)
		if err != nil {
			q.errorf("--list: %v", err)
			return exitUsage
		}
		deps = append(deps, words...)
	}
	if pkg != "" {
		m, c, ok := bestMatch(q, pkg)
		if !ok {
			q.errorf("no package matches %s", pkg)
			return exitFalse
		}
		p, _ := c.Package(m.PackageID)
		deps = append(deps, p.Dependencies...)
	}
	if len(deps) == 0 {
		q.errorf("insufficient parameters!")
		return exitUsage
	}

	if selectedFile != "" {
		atoms, errs := env.NewItemFileLoader(selectedFile, dep.IsValidAtom).Load()
		for f, lines := range errs {
			for _, e := range lines {
				msg.WriteMsgLevel(fmt.Sprintf("%s: %s", f, e), msg.LevelWarning, 0)
			}
		}
		selected = append(selected, atoms...)
	}

	var matches []dep.PackageMatch
	for _, s := range selected {
		m, _, ok := bestMatch(q, s)
		if !ok {
			q.errorf("selected atom %s matches nothing", s)
			return exitFalse
		}
		matches = append(matches, m)
	}
	for _, d := range dep.ExpandDependencyStrings(deps, q.repos(), matches) {
		fmt.Fprintln(q.out, d)
	}
	return exitOK
}
