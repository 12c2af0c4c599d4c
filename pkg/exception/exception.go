package exception

import "fmt"

// Kind classifies an Error. Two errors with the same Kind match under errors.Is.
type Kind string

const (
	KindInvalidAtom            Kind = "InvalidAtom"
	KindInvalidVersion         Kind = "InvalidVersion"
	KindMalformedDependency    Kind = "MalformedDependency"
	KindInvalidPackageFileName Kind = "InvalidPackageFileName"
	KindInvalidData            Kind = "InvalidData"
	KindDigest                 Kind = "DigestException"
	KindFileNotFound           Kind = "FileNotFound"
)

var (
	ErrInvalidAtom            = &PortageException{t: KindInvalidAtom, s: "not an atom"}
	ErrInvalidVersion         = &PortageException{t: KindInvalidVersion, s: "not a version"}
	ErrMalformedDependency    = &PortageException{t: KindMalformedDependency, s: "malformed dependency"}
	ErrInvalidPackageFileName = &PortageException{t: KindInvalidPackageFileName, s: "not a package file name"}
	ErrInvalidData            = &PortageException{t: KindInvalidData, s: "invalid data"}
	ErrDigest                 = &PortageException{t: KindDigest, s: "digest failure"}
	ErrFileNotFound           = &PortageException{t: KindFileNotFound, s: "file not found"}
)

type PortageException struct {
	s string
	t Kind
}

func (p *PortageException) Error() string {
	return p.s
}

func (p *PortageException) Kind() Kind {
	return p.t
}

// Is lets errors.Is compare by kind, so any Raise(KindInvalidAtom, ...) matches ErrInvalidAtom.
func (p *PortageException) Is(target error) bool {
	t, ok := target.(*PortageException)
	if !ok {
		return false
	}
	return ExceptionMatch(p, t)
}

func Raise(t Kind, msg string) *PortageException {
	return &PortageException{t: t, s: msg}
}

func Raisef(t Kind, format string, a ...interface{}) *PortageException {
	return Raise(t, fmt.Sprintf(format, a...))
}

func ExceptionMatch(a, b *PortageException) bool {
	return a.t == b.t
}
