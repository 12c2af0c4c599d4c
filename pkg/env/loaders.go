package env

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/ppphp/entropago/pkg/exception"
	"github.com/ppphp/entropago/pkg/util/msg"
)

// RecursiveFileList returns fileName itself, or every regular file below it
// when it is a directory. Hidden entries, CVS directories and backup files
// ending in "~" are skipped.
func RecursiveFileList(fileName string) ([]string, error) {
	st, err := os.Stat(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, exception.Raise(exception.KindFileNotFound, fileName)
		}
		return nil, err
	}
	if !st.IsDir() {
		return []string{fileName}, nil
	}
	var files []string
	err = filepath.WalkDir(fileName, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != fileName && (name == "CVS" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// Line is one parsed, validated line of a data file.
type Line struct {
	File   string
	Num    int
	Key    string
	Values []string
}

// Errors collects per-file parse problems. A bad line never aborts a load.
type Errors map[string][]string

func (e Errors) add(fname string, lineNum int, format string, a ...interface{}) {
	e[fname] = append(e[fname], fmt.Sprintf("line %d: ", lineNum)+fmt.Sprintf(format, a...))
}

type fileLoader struct {
	fname    string
	validate func(string) bool
}

func newFileLoader(filename string, validator func(string) bool) fileLoader {
	f := fileLoader{fname: filename, validate: validator}
	if f.validate == nil {
		f.validate = func(string) bool {
			return true
		}
	}
	return f
}

// load feeds every line of every file through parse. Lines are split with
// shell rules so values may be quoted, and "#" starts a comment only at the
// beginning of a word.
func (f *fileLoader) load(parse func(fname string, lineNum int, fields []string, errors Errors)) Errors {
	errors := Errors{}
	files, err := RecursiveFileList(f.fname)
	if err != nil {
		errors[f.fname] = append(errors[f.fname], err.Error())
		return errors
	}
	for _, fn := range files {
		fd, err := os.Open(fn)
		if err != nil {
			errors[fn] = append(errors[fn], err.Error())
			continue
		}
		scanner := bufio.NewScanner(fd)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields, err := shlex.Split(line)
			if err != nil {
				errors.add(fn, lineNum, "malformed data: %s", line)
				continue
			}
			if len(fields) == 0 {
				continue
			}
			parse(fn, lineNum, fields, errors)
		}
		if err := scanner.Err(); err != nil {
			errors[fn] = append(errors[fn], err.Error())
		}
		fd.Close()
	}
	for fn, errs := range errors {
		for _, e := range errs {
			msg.WithField("file", fn).Debugf("%s", e)
		}
	}
	return errors
}

// ItemFileLoader reads files with one key per line.
type ItemFileLoader struct {
	fileLoader
}

func NewItemFileLoader(filename string, validator func(string) bool) *ItemFileLoader {
	return &ItemFileLoader{newFileLoader(filename, validator)}
}

// Load returns the valid keys in file order.
func (f *ItemFileLoader) Load() ([]string, Errors) {
	var data []string
	errors := f.load(func(fname string, lineNum int, fields []string, errors Errors) {
		if len(fields) != 1 {
			errors.add(fname, lineNum, "expected a single item, got %q", fields)
			return
		}
		if !f.validate(fields[0]) {
			errors.add(fname, lineNum, "validation failed for %s", fields[0])
			return
		}
		data = append(data, fields[0])
	})
	return data, errors
}

// KeyListFileLoader reads files whose lines are a key followed by values.
type KeyListFileLoader struct {
	fileLoader
	valueValidator func([]string) bool
}

func NewKeyListFileLoader(filename string, validator func(string) bool, valueValidator func([]string) bool) *KeyListFileLoader {
	f := &KeyListFileLoader{fileLoader: newFileLoader(filename, validator), valueValidator: valueValidator}
	if f.valueValidator == nil {
		f.valueValidator = func([]string) bool {
			return true
		}
	}
	return f
}

// Load returns every valid line in file order.
func (f *KeyListFileLoader) Load() ([]Line, Errors) {
	var data []Line
	errors := f.load(func(fname string, lineNum int, fields []string, errors Errors) {
		key, value := fields[0], fields[1:]
		if !f.validate(key) {
			errors.add(fname, lineNum, "key validation failed for %s", key)
			return
		}
		if !f.valueValidator(value) {
			errors.add(fname, lineNum, "value validation failed for %s", value)
			return
		}
		data = append(data, Line{File: fname, Num: lineNum, Key: key, Values: value})
	})
	return data, errors
}
