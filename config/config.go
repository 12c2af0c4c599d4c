// Package config loads the query tool configuration from a TOML file.
package config

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ppphp/entropago/pkg/exception"
	"github.com/ppphp/entropago/pkg/pkgname"
	"github.com/ppphp/entropago/pkg/util/msg"
	"github.com/sirupsen/logrus"
)

type Conf struct {
	Log          Log              `toml:"log"`
	Packages     Packages         `toml:"packages"`
	Repositories []RepositoryConf `toml:"repository"`
	Cache        Cache            `toml:"cache"`
}

type Log struct {
	Level      string `toml:"level"`
	NoiseLimit int    `toml:"noise_limit"`
}

type Packages struct {
	Extension string `toml:"extension"`
}

// RepositoryConf names a catalogue file or directory. Repositories are
// searched in the order they appear.
type RepositoryConf struct {
	ID        string `toml:"id"`
	Catalogue string `toml:"catalogue"`
}

type Cache struct {
	MatchSize int `toml:"match_size"`
}

func Default() *Conf {
	return &Conf{
		Log:      Log{Level: "info"},
		Packages: Packages{Extension: pkgname.DefaultExtension},
		Cache:    Cache{MatchSize: 1024},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Relative catalogue paths are resolved against the directory of path.
func Load(path string) (*Conf, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, err
	}
	for _, key := range md.Undecoded() {
		msg.WithField("file", path).Warnf("unknown configuration key %s", key.String())
	}
	dir := filepath.Dir(path)
	for i, r := range c.Repositories {
		if r.Catalogue != "" && !filepath.IsAbs(r.Catalogue) {
			c.Repositories[i].Catalogue = filepath.Join(dir, r.Catalogue)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Conf) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return exception.Raisef(exception.KindInvalidData, "log.level: %v", err)
	}
	if !strings.HasPrefix(c.Packages.Extension, ".") {
		return exception.Raisef(exception.KindInvalidData, "packages.extension %q must start with a dot", c.Packages.Extension)
	}
	if c.Cache.MatchSize < 1 {
		return exception.Raisef(exception.KindInvalidData, "cache.match_size must be positive, got %d", c.Cache.MatchSize)
	}
	seen := map[string]bool{}
	for _, r := range c.Repositories {
		if r.ID == "" || r.Catalogue == "" {
			return exception.Raise(exception.KindInvalidData, "repository entries need an id and a catalogue")
		}
		if seen[r.ID] {
			return exception.Raisef(exception.KindInvalidData, "duplicate repository %q", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Apply configures process-wide logging.
func (c *Conf) Apply() error {
	if err := msg.SetLevel(c.Log.Level); err != nil {
		return err
	}
	msg.SetNoiseLimit(c.Log.NoiseLimit)
	return nil
}
