package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/ppphp/entropago/config"
	"github.com/ppphp/entropago/pkg/dep"
	"github.com/ppphp/entropago/pkg/output"
	"github.com/ppphp/entropago/pkg/repository"
	"github.com/ppphp/entropago/pkg/util/msg"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

const VERSION = "0.1.0"

const (
	exitOK    = 0
	exitFalse = 1
	exitError = 2
	exitUsage = 64
)

type command struct {
	F          func(q *query, argv []string) int
	NeedsRepos bool
	Docstrings string
}

var globalFunctions = map[string]command{
	"vercmp":   {vercmp, false, "<version1> <version2>\nPrints -1, 0 or 1 as version1 is older, equal or newer.\n"},
	"evercmp":  {evercmp, false, "<version[#tag][~rev]> <version[#tag][~rev]>\nLike vercmp, taking package tags and entropy revisions into account.\n"},
	"split":    {split, false, "<category/name-version>\nPrints category, name, version and revision.\n"},
	"key":      {key, false, "<atom>+\nPrints category/name of every atom.\n"},
	"slot":     {slot, false, "<atom>\nPrints the slot. Return code 1 if the atom has none.\n"},
	"tag":      {tag, false, "<atom>\nPrints the package tag. Return code 1 if the atom has none.\n"},
	"use":      {use, false, "<atom>\nPrints the use dependencies, one per line.\n"},
	"explode":  {explode, false, "<atom>\nPrints every field of a parsed atom.\n"},
	"filename": {filename, false, "[--path] [--sha1-of <file>] <category/name-version[#tag][~rev]>\nPrints the package file name.\n"},
	"decode":   {decode, false, "<package file>+\nPrints the fields encoded in package file names.\nAn embedded SHA1 is checked against the file when it exists, return code 1 on mismatch.\n"},
	"checksum": {checksumCmd, false, "[--hashes <filter>] <file>\nPrints the digests of a file.\n"},
	"match":    {match, true, "[--multi] <atom>\nPrints the repository, package id and atom of the best match, or of every match with --multi.\nReturn code 1 if nothing matches.\n"},
	"expand":   {expand, true, "[--selected <atom>]... [--selected-file <file>] [--list <deps>] [--package <atom>] [<dependency>...]\nResolves conditional dependencies against the configured repositories.\n"},
}

type query struct {
	conf       *config.Conf
	catalogues []*repository.Catalogue
	out, err   io.Writer
}

func (q *query) repos() []dep.Repository {
	repos := make([]dep.Repository, len(q.catalogues))
	for i, c := range q.catalogues {
		repos[i] = c
	}
	return repos
}

func (q *query) errorf(format string, a ...interface{}) {
	fmt.Fprintf(q.err, output.Bad("ERROR:")+" "+format+"\n", a...)
}

// loadRepositories opens every configured catalogue in order. Bad lines are
// logged and skipped.
func loadRepositories(conf *config.Conf) ([]*repository.Catalogue, error) {
	var out []*repository.Catalogue
	for _, r := range conf.Repositories {
		c, errs, err := repository.LoadCatalogue(r.ID, r.Catalogue, conf.Cache.MatchSize)
		if err != nil {
			return nil, err
		}
		files := make([]string, 0, len(errs))
		for f := range errs {
			files = append(files, f)
		}
		sort.Strings(files)
		for _, f := range files {
			for _, e := range errs[f] {
				msg.WriteMsgLevel(fmt.Sprintf("%s: %s: %s", r.ID, f, e), msg.LevelWarning, 0)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

type Opts struct {
	config, logLevel       string
	verbose, help, version bool
}

func run(argv []string, stdout, stderr io.Writer) int {
	var opts Opts
	pf := pflag.NewFlagSet("entropyq", pflag.ContinueOnError)
	pf.SetOutput(stderr)
	pf.SetInterspersed(false)
	pf.StringVarP(&opts.config, "config", "c", os.Getenv("ENTROPYQ_CONFIG"), "configuration file")
	pf.StringVarP(&opts.logLevel, "log-level", "", "", "override the configured log level")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose form")
	pf.BoolVarP(&opts.help, "help", "h", false, "help message")
	pf.BoolVarP(&opts.version, "version", "", false, "version")
	if err := pf.Parse(argv); err != nil {
		return exitUsage
	}
	args := pf.Args()

	f, isFile := stdout.(*os.File)
	output.SetColor(isFile && output.IsTerminal(int(f.Fd())) && !output.NoColorEnv())

	if opts.help {
		usage(stdout, true)
		return exitOK
	} else if opts.version {
		fmt.Fprintln(stdout, "entropyq", VERSION)
		return exitOK
	}
	if len(args) == 0 {
		usage(stderr, false)
		return exitUsage
	}
	function, ok := globalFunctions[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command '%s'\n", args[0])
		usage(stderr, false)
		return exitUsage
	}

	conf, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitError
	}
	if opts.logLevel != "" {
		conf.Log.Level = opts.logLevel
	} else if opts.verbose {
		conf.Log.Level = "debug"
	}
	if err := conf.Apply(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitError
	}

	q := &query{conf: conf, out: stdout, err: stderr}
	if function.NeedsRepos {
		if q.catalogues, err = loadRepositories(conf); err != nil {
			q.errorf("%v", err)
			return exitError
		}
		if len(q.catalogues) == 0 {
			fmt.Fprintln(stderr, output.Warn("WARNING:")+" no repositories configured")
		}
	}
	return function.F(q, args[1:])
}

func usage(w io.Writer, helpMode bool) {
	fmt.Fprintln(w, output.Good(">>>")+" Entropy package query tool")
	fmt.Fprintf(w, "%s %s\n", output.Good(">>>"), VERSION)
	fmt.Fprintln(w, output.Good(">>>")+" Usage: entropyq [--config <file>] <command> [<option> ...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, output.Bold("Available commands:"))
	names := make([]string, 0, len(globalFunctions))
	for name := range globalFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines := strings.Split(strings.TrimSuffix(globalFunctions[name].Docstrings, "\n"), "\n")
		fmt.Fprintln(w, "   "+output.Hilite(name)+" "+strings.TrimSpace(lines[0]))
		if helpMode {
			for _, line := range lines[1:] {
				fmt.Fprintln(w, "      "+strings.TrimSpace(line))
			}
		}
	}
	if !helpMode {
		fmt.Fprintln(w, "\nRun entropyq with --help for info")
	}
}

func main() {
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, unix.SIGINT, unix.SIGTERM)
		switch <-sigChan {
		case unix.SIGINT:
			os.Exit(128 + int(unix.SIGINT))
		default:
			os.Exit(128 + int(unix.SIGTERM))
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
