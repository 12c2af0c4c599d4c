package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runQuery(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := run(args, &stdout, &stderr)
	return rc, stdout.String(), stderr.String()
}

func setupRepos(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.list": "app-foo/bar-1.0\napp-foo/bar-2.0 0 'dep=(app-foo/baz | app-foo/qux)'\n",
		"overlay.list": "app-foo/baz-1.0#k1~2\n",
		"entropyq.toml": `[log]
level = "error"

[[repository]]
id = "main"
catalogue = "main.list"

[[repository]]
id = "overlay"
catalogue = "overlay.list"
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return filepath.Join(dir, "entropyq.toml")
}

func TestKernelCommands(t *testing.T) {
	for _, c := range []struct {
		args []string
		rc   int
		out  string
	}{
		{[]string{"vercmp", "1.0", "1.0_p1"}, exitOK, "-1\n"},
		{[]string{"vercmp", "1.0-r0", "1.0"}, exitOK, "0\n"},
		{[]string{"vercmp", "1.0", "bogus"}, exitError, ""},
		{[]string{"vercmp", "1.0"}, exitUsage, ""},
		{[]string{"evercmp", "1.0#k1~3", "1.0#k1~1"}, exitOK, "1\n"},
		{[]string{"evercmp", "1.0", "1.0#k1"}, exitOK, "-1\n"},
		{[]string{"split", "app-foo/bar-1.0-r2"}, exitOK, "app-foo bar 1.0 r2\n"},
		{[]string{"split", "app-foo/bar"}, exitFalse, ""},
		{[]string{"key", ">=app-foo/bar-1.0:2[ssl]@main", "app-foo/baz"}, exitOK, "app-foo/bar\napp-foo/baz\n"},
		{[]string{"slot", "app-foo/bar:2"}, exitOK, "2\n"},
		{[]string{"slot", "app-foo/bar"}, exitFalse, ""},
		{[]string{"tag", "app-foo/bar-1.0#k1:2"}, exitOK, "k1\n"},
		{[]string{"use", "app-foo/bar[ssl,-gtk]"}, exitOK, "ssl\n-gtk\n"},
		{[]string{"use", "app-foo/bar[]"}, exitError, ""},
		{[]string{"explode", "!>=app-foo/bar-1.0#k1~3:2@main"}, exitOK, "blocker=true\noperator=>=\ncategory=app-foo\nname=bar\nversion=1.0\nrevision=r0\ntag=k1\nentropy_revision=3\nslot=2\nrepositories=main\natom=!>=app-foo/bar-1.0#k1~3:2@main\n"},
		{[]string{"filename", "app-foo/bar-1.0-r1#k1~3"}, exitOK, "app-foo:bar-1.0-r1#k1~3.tbz2\n"},
		{[]string{"filename", "--path", "app-foo/bar-1.0"}, exitOK, "app-foo/bar-1.0.tbz2\n"},
		{[]string{"filename", "app-foo/bar"}, exitError, ""},
		{[]string{"decode", "app-foo:bar-1.0#k1~3.tbz2"}, exitOK, "category=app-foo\nname=bar\nversion=1.0\ntag=k1\nentropy_revision=3\natom=app-foo/bar-1.0#k1\n"},
		{[]string{"decode", "bar.tbz2"}, exitFalse, ""},
	} {
		rc, out, _ := runQuery(t, c.args...)
		assert.Equal(t, c.rc, rc, "%v", c.args)
		assert.Equal(t, c.out, out, "%v", c.args)
	}
}

func TestFilenameSha1(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "pkg")
	require.NoError(t, os.WriteFile(fname, nil, 0644))
	rc, out, _ := runQuery(t, "filename", "--sha1-of", fname, "app-foo/bar-1.0")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "app-foo:bar-1.0.da39a3ee5e6b4b0d3255bfef95601890afd80709.tbz2\n", out)

	rc, out, _ = runQuery(t, "checksum", "--hashes", "SHA1 MD5", fname)
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "MD5 d41d8cd98f00b204e9800998ecf8427e\nSHA1 da39a3ee5e6b4b0d3255bfef95601890afd80709\n", out)
}

func TestMatch(t *testing.T) {
	conf := setupRepos(t)

	rc, out, _ := runQuery(t, "--config", conf, "match", "app-foo/bar")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "main 2 app-foo/bar-2.0\n", out)

	rc, out, _ = runQuery(t, "-c", conf, "match", "--multi", "app-foo/bar")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "main 1 app-foo/bar-1.0\nmain 2 app-foo/bar-2.0\n", out)

	rc, out, _ = runQuery(t, "-c", conf, "match", "app-foo/baz#k1")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "overlay 1 app-foo/baz-1.0#k1~2\n", out)

	rc, _, _ = runQuery(t, "-c", conf, "match", "app-foo/bar@overlay")
	assert.Equal(t, exitFalse, rc)
}

func TestExpand(t *testing.T) {
	conf := setupRepos(t)

	rc, out, _ := runQuery(t, "-c", conf, "expand", "(app-foo/missing | app-foo/bar)", "plain/dep", "(app-foo/missing & app-foo/bar)")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "app-foo/bar\nplain/dep\n(app-foo/missing & app-foo/bar)\n", out)

	rc, out, _ = runQuery(t, "-c", conf, "expand", "--selected", "app-foo/bar", "--list", "'(app-foo/baz | app-foo/bar)' x/y")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "app-foo/bar\nx/y\n", out)

	rc, out, _ = runQuery(t, "-c", conf, "expand", "--package", "app-foo/bar")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "app-foo/baz\n", out)

	selected := filepath.Join(t.TempDir(), "selected")
	require.NoError(t, os.WriteFile(selected, []byte("# installed\napp-foo/bar\nnot-an-atom\n"), 0644))
	rc, out, _ = runQuery(t, "-c", conf, "expand", "--selected-file", selected, "(app-foo/baz | app-foo/bar)")
	assert.Equal(t, exitOK, rc)
	assert.Equal(t, "app-foo/bar\n", out)

	rc, _, _ = runQuery(t, "-c", conf, "expand")
	assert.Equal(t, exitUsage, rc)
}

func TestNoRepositories(t *testing.T) {
	t.Setenv("ENTROPYQ_CONFIG", "")
	rc, _, errOut := runQuery(t, "match", "app-foo/bar")
	assert.Equal(t, exitFalse, rc)
	assert.Contains(t, errOut, "WARNING: no repositories configured")
}

func TestDecodeVerifiesSha1(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "app-foo:bar-1.0.da39a3ee5e6b4b0d3255bfef95601890afd80709.tbz2")
	require.NoError(t, os.WriteFile(good, nil, 0644))
	rc, out, _ := runQuery(t, "decode", good)
	assert.Equal(t, exitOK, rc)
	assert.Contains(t, out, "sha1_verified=true\n")

	bad := filepath.Join(dir, "app-foo:bar-2.0.da39a3ee5e6b4b0d3255bfef95601890afd80709.tbz2")
	require.NoError(t, os.WriteFile(bad, []byte("payload"), 0644))
	rc, out, _ = runQuery(t, "decode", bad)
	assert.Equal(t, exitFalse, rc)
	assert.Contains(t, out, "sha1_verified=false\n")

	rc, out, _ = runQuery(t, "decode", "app-foo:bar-1.0.da39a3ee5e6b4b0d3255bfef95601890afd80709.tbz2")
	assert.Equal(t, exitOK, rc)
	assert.NotContains(t, out, "sha1_verified")
}

func TestUsage(t *testing.T) {
	rc, out, _ := runQuery(t, "--help")
	assert.Equal(t, exitOK, rc)
	assert.Contains(t, out, "expand")
	assert.Contains(t, out, "Resolves conditional dependencies")

	rc, _, errOut := runQuery(t, "frobnicate")
	assert.Equal(t, exitUsage, rc)
	assert.Contains(t, errOut, "Unknown command")

	rc, _, _ = runQuery(t)
	assert.Equal(t, exitUsage, rc)

	rc, _, _ = runQuery(t, "-c", filepath.Join(t.TempDir(), "missing.toml"), "vercmp", "1", "2")
	assert.Equal(t, exitError, rc)
}
