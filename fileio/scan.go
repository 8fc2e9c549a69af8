package fileio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/sirupsen/logrus"
)

// DefaultArchivePattern matches mod jars while skipping source, dev and api companion jars
const DefaultArchivePattern = `^.+(?<!-sources|-dev|-api)\.jar$`

const IgnoreFileName = ".mrbulkignore"

var ignoreDefaults = []string{
	// Defaults (can be overridden with a negating pattern preceded with !)

	// Exclude Git metadata
	".git/**",

	// Exclude partial downloads
	"*.part",

	// Exclude macOS metadata
	".DS_Store",
}

func readIgnoreFile(path string) (*gitignore.GitIgnore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return gitignore.CompileIgnoreLines(ignoreDefaults...), nil
		}
		return nil, err
	}

	s := strings.Split(string(data), "\n")
	var lines []string
	lines = append(lines, ignoreDefaults...)
	lines = append(lines, s...)
	return gitignore.CompileIgnoreLines(lines...), nil
}

// ScanArchives walks root and returns every file whose name matches pattern,
// honouring the ignore file at the root of the tree. Results are sorted.
func ScanArchives(root string, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultArchivePattern
	}
	expr, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, err
	}

	ignore, err := readIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.MatchesPath(rel) {
			logrus.Debugf("ignoring %s", rel)
			return nil
		}
		if ok, _ := expr.MatchString(d.Name()); ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}
