// Package repository holds package catalogues that dependency strings are
// matched against.
package repository

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ppphp/entropago/pkg/dep"
	"github.com/ppphp/entropago/pkg/env"
	"github.com/ppphp/entropago/pkg/exception"
	"github.com/ppphp/entropago/pkg/util/msg"
	"github.com/ppphp/entropago/pkg/versions"
)

const (
	DefaultSlot      = "0"
	DefaultCacheSize = 1024

	dependencyKey = "dep"
)

var (
	repoNameSubRe = regexp.MustCompile(`[^\w-]`)

	_ dep.Repository = (*Catalogue)(nil)
)

// GenValidRepo turns name into a valid repository identifier.
func GenValidRepo(name string) string {
	name = repoNameSubRe.ReplaceAllString(strings.TrimSpace(name), " ")
	name = strings.Join(strings.Fields(name), "-")
	return strings.TrimLeft(name, "-")
}

// Package is one catalogue entry.
type Package struct {
	ID           int
	Atom         *dep.Atom
	Slot         string
	Dependencies []string
	Metadata     map[string]string
}

func (p *Package) entropyVersion() versions.EntropyVersion {
	return versions.EntropyVersion{
		Version:  p.Atom.FullVersion(),
		Tag:      p.Atom.Tag,
		Revision: p.Atom.EntropyRevision,
	}
}

// Catalogue is an in-memory package list implementing dep.Repository. It is
// safe for concurrent use.
type Catalogue struct {
	id string

	mu       sync.RWMutex
	packages []*Package
	byKey    map[string][]*Package

	cache *lru.Cache[string, []dep.PackageMatch]
}

// NewCatalogue creates an empty catalogue. cacheSize bounds the number of
// memoized Match results; values below one mean DefaultCacheSize.
func NewCatalogue(id string, cacheSize int) (*Catalogue, error) {
	if id == "" || GenValidRepo(id) != id {
		return nil, exception.Raisef(exception.KindInvalidData, "invalid repository id %q", id)
	}
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []dep.PackageMatch](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Catalogue{id: id, byKey: map[string][]*Package{}, cache: cache}, nil
}

// LoadCatalogue reads a catalogue file or directory. Lines that fail to
// parse are reported in the returned env.Errors and skipped.
func LoadCatalogue(id, fname string, cacheSize int) (*Catalogue, env.Errors, error) {
	c, err := NewCatalogue(id, cacheSize)
	if err != nil {
		return nil, nil, err
	}
	lines, errs := env.NewKeyListFileLoader(fname, env.PackagesFileValidator, nil).Load()
	for _, line := range lines {
		slot, deps, meta := DefaultSlot, []string(nil), map[string]string{}
		values := line.Values
		if len(values) > 0 && !strings.Contains(values[0], "=") {
			slot, values = values[0], values[1:]
		}
		for _, v := range values {
			kv := strings.SplitN(v, "=", 2)
			if len(kv) != 2 || kv[0] == "" {
				errs[line.File] = append(errs[line.File], "line "+strconv.Itoa(line.Num)+": malformed value "+v)
				continue
			}
			if kv[0] == dependencyKey {
				deps = append(deps, kv[1])
			} else {
				meta[kv[0]] = kv[1]
			}
		}
		if _, err := c.Add(line.Key, slot, deps, meta); err != nil {
			errs[line.File] = append(errs[line.File], "line "+strconv.Itoa(line.Num)+": "+err.Error())
		}
	}
	msg.WithField("repository", id).Debugf("loaded %d packages", c.Len())
	return c, errs, nil
}

// Add appends a package given as category/name-version[#tag][~N] and
// returns its id. Ids start at 1.
func (c *Catalogue) Add(atom, slot string, deps []string, metadata map[string]string) (int, error) {
	a, err := dep.ParseAtom(atom)
	if err != nil {
		return 0, err
	}
	if a.Version == "" || a.Operator != "" || a.Blocker || a.Star || len(a.UseDeps) > 0 ||
		len(a.Repositories) > 0 || a.Slot != "" {
		return 0, exception.Raisef(exception.KindInvalidAtom, "not a package: %s", atom)
	}
	if slot == "" {
		slot = DefaultSlot
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &Package{ID: len(c.packages) + 1, Atom: a, Slot: slot, Dependencies: deps, Metadata: metadata}
	c.packages = append(c.packages, p)
	c.byKey[a.Key()] = append(c.byKey[a.Key()], p)
	c.cache.Purge()
	return p.ID, nil
}

func (c *Catalogue) RepositoryID() string {
	return c.id
}

func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.packages)
}

// Package looks up a package by id.
func (c *Catalogue) Package(id int) (*Package, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 1 || id > len(c.packages) {
		return nil, false
	}
	return c.packages[id-1], true
}

// Match returns the packages satisfying atom. Without multi only the best
// one, by entropy version order, is returned. Invalid atoms and blockers
// match nothing. Use dependencies are not checked.
func (c *Catalogue) Match(atom string, multi bool) []dep.PackageMatch {
	key := atom + "|" + strconv.FormatBool(multi)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.cache.Get(key); ok {
		return append([]dep.PackageMatch(nil), m...)
	}
	m := c.match(atom, multi)
	c.cache.Add(key, m)
	return append([]dep.PackageMatch(nil), m...)
}

// match must be called with c.mu held.
func (c *Catalogue) match(atom string, multi bool) []dep.PackageMatch {
	a, err := dep.ParseAtom(atom)
	if err != nil {
		msg.WithField("repository", c.id).Debugf("cannot match %q: %v", atom, err)
		return nil
	}
	if a.Blocker {
		return nil
	}
	if len(a.Repositories) > 0 && !contains(a.Repositories, c.id) {
		return nil
	}

	var found []*Package
	for _, p := range c.byKey[a.Key()] {
		if packageMatches(a, p) {
			found = append(found, p)
		}
	}

	if len(found) == 0 {
		return nil
	}
	if !multi {
		best := found[0]
		for _, p := range found[1:] {
			if versions.EntropyVerCmp(p.entropyVersion(), best.entropyVersion()) > 0 {
				best = p
			}
		}
		found = []*Package{best}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	matches := make([]dep.PackageMatch, len(found))
	for i, p := range found {
		matches[i] = dep.PackageMatch{PackageID: p.ID, RepositoryID: c.id}
	}
	return matches
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func packageMatches(a *dep.Atom, p *Package) bool {
	// A plain slot also matches packages whose slot carries a sub-tag.
	if a.Slot != "" && a.Slot != p.Slot && a.Slot != dep.RemoveTagFromSlot(p.Slot) {
		return false
	}
	if a.Tag != "" && a.Tag != p.Atom.Tag {
		return false
	}
	if a.HasEntropyRevision && a.EntropyRevision != p.Atom.EntropyRevision {
		return false
	}
	if a.Version == "" {
		return true
	}
	return versionMatches(a, p.Atom)
}

func versionMatches(a, p *dep.Atom) bool {
	if a.Star {
		return strings.HasPrefix(p.FullVersion(), a.FullVersion())
	}
	if a.Operator == "~" {
		rc, err := versions.VerCmp(p.Version, a.Version)
		return err == nil && rc == 0
	}
	rc, err := versions.VerCmp(p.FullVersion(), a.FullVersion())
	if err != nil {
		return false
	}
	switch a.Operator {
	case "", "=":
		return rc == 0
	case ">":
		return rc > 0
	case ">=":
		return rc >= 0
	case "<":
		return rc < 0
	case "<=":
		return rc <= 0
	}
	return false
}
