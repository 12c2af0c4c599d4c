// Package pkgname converts between package atoms and the file names binary
// packages are stored under, "category:name-version[#tag][.sha1][~rev].tbz2".
package pkgname

import (
	"path"
	"strconv"
	"strings"

	"github.com/ppphp/entropago/pkg/dep"
	"github.com/ppphp/entropago/pkg/exception"
)

const (
	// DefaultExtension is appended when Encode gets no extension.
	DefaultExtension = ".tbz2"

	fileCatSeparator = ":"
	tagSeparator     = "#"
	sha1Separator    = "."
	revSeparator     = "~"
)

// PackageFile holds the fields encoded in a package file name.
type PackageFile struct {
	Category string
	Name     string
	Version  string
	Tag      string
	Sha1     string

	Revision    int
	HasRevision bool
}

func (pf PackageFile) suffix(ext string) string {
	var b strings.Builder
	b.WriteString(pf.Name + "-" + pf.Version)
	if pf.Tag != "" {
		b.WriteString(tagSeparator + pf.Tag)
	}
	if pf.Sha1 != "" {
		b.WriteString(sha1Separator + pf.Sha1)
	}
	if pf.HasRevision {
		b.WriteString(revSeparator + strconv.Itoa(pf.Revision))
	}
	if ext == "" {
		ext = DefaultExtension
	}
	b.WriteString(ext)
	return b.String()
}

// Encode builds the package file name. An empty ext means DefaultExtension.
func Encode(pf PackageFile, ext string) string {
	return pf.Category + fileCatSeparator + pf.suffix(ext)
}

// RelativePath is where a package file lives below a packages directory.
func RelativePath(pf PackageFile, ext string) string {
	return path.Join(pf.Category, pf.suffix(ext))
}

// CanonicalAtom renders category/name-version[#tag].
func CanonicalAtom(category, name, version, tag string) string {
	atom := category + "/" + name + "-" + version
	if tag != "" {
		atom += tagSeparator + tag
	}
	return atom
}

// StripExtension removes ext (DefaultExtension when empty) from the end of s.
func StripExtension(s, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return strings.TrimSuffix(s, ext)
}

// GetSha1 returns the content hash embedded in a package file name.
func GetSha1(filename string) (string, bool) {
	s := StripExtension(filename, "")
	s = dep.RemoveEntropyRevision(s)
	_, sha1, ok := dep.GetSha1(s)
	return sha1, ok
}

// Decode is the inverse of Encode for files with DefaultExtension. Suffixes
// are peeled right to left; anything that does not leave a valid
// category/name-version fails with exception.ErrInvalidPackageFileName.
func Decode(filename string) (PackageFile, error) {
	return DecodeExt(filename, DefaultExtension)
}

// DecodeExt is Decode for an arbitrary extension.
func DecodeExt(filename, ext string) (PackageFile, error) {
	var pf PackageFile
	s := StripExtension(filename, ext)
	s = strings.Replace(s, fileCatSeparator, "/", 1)
	s = StripExtension(s, ext)

	if strings.Contains(s, revSeparator) {
		rev, ok := dep.GetEntropyRevision(s)
		if !ok {
			return PackageFile{}, exception.Raisef(exception.KindInvalidPackageFileName, "invalid revision in package name: %s", filename)
		}
		pf.Revision, pf.HasRevision = rev, true
		s = dep.RemoveEntropyRevision(s)
	}

	s, pf.Sha1, _ = dep.GetSha1(s)

	if tag, ok := dep.GetTag(s); ok {
		pf.Tag = tag
	}
	s = dep.RemoveTag(s)

	if !strings.Contains(s, "/") {
		return PackageFile{}, exception.Raisef(exception.KindInvalidPackageFileName, "invalid package name passed: %s", filename)
	}
	split, ok := dep.CatPkgSplit(s)
	if !ok {
		return PackageFile{}, exception.Raisef(exception.KindInvalidPackageFileName, "invalid package name passed: %s", filename)
	}
	pf.Category, pf.Name, pf.Version = split[0], split[1], split[2]
	if split[3] != "r0" {
		pf.Version += "-" + split[3]
	}
	return pf, nil
}

// DecodePath decodes a package file path. Both the flat file name form and
// the RelativePath form, where the category is the parent directory, work.
func DecodePath(p string) (PackageFile, error) {
	return DecodePathExt(p, DefaultExtension)
}

// DecodePathExt is DecodePath for an arbitrary extension.
func DecodePathExt(p, ext string) (PackageFile, error) {
	base := path.Base(p)
	if !strings.Contains(base, fileCatSeparator) {
		if dir := path.Base(path.Dir(p)); dir != "." && dir != "/" {
			base = dir + fileCatSeparator + base
		}
	}
	return DecodeExt(base, ext)
}

// Atom returns the canonical atom of the package.
func (pf PackageFile) Atom() string {
	return CanonicalAtom(pf.Category, pf.Name, pf.Version, pf.Tag)
}
