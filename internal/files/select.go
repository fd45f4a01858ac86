package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// Selection filters the files an input expansion yields.
type Selection struct {
	// IncludeGlobs and ExcludeGlobs are comma-separated doublestar patterns.
	// Includes, when set, act as a positive filter; excludes are subtracted last.
	IncludeGlobs string
	ExcludeGlobs string
	// MaxBytes skips larger files; 0 means no limit.
	MaxBytes int64
	// DefaultExcludes skips VCS, dependency and build directories and
	// well-known binary or generated files while walking directories.
	DefaultExcludes bool
}

// Expand turns command-line inputs into a sorted, de-duplicated list of file
// paths. An input is a file, a directory (walked recursively) or a glob
// pattern, where ** matches across directories.
func Expand(inputs []string, sel Selection) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, in := range inputs {
		if hasMeta(in) {
			matches, err := doublestar.FilepathGlob(in, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", in, err)
			}
			for _, m := range matches {
				if sel.allows(m, "") {
					add(m)
				}
			}
			continue
		}
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in, err)
		}
		if !info.IsDir() {
			add(in)
			continue
		}
		err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != in && sel.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			rel, _ := filepath.Rel(in, p)
			if !sel.allows(p, rel) {
				return nil
			}
			if sel.MaxBytes > 0 {
				if fi, err := d.Info(); err == nil && fi.Size() > sel.MaxBytes {
					return nil
				}
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasMeta(s string) bool { return strings.ContainsAny(s, "*?[{") }

func (sel Selection) allows(path, rel string) bool {
	if rel == "" {
		rel = path
	}
	rp := filepath.ToSlash(rel)
	if sel.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rp)) {
		return false
	}
	if includes := parseGlobsList(sel.IncludeGlobs); len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if excludes := parseGlobsList(sel.ExcludeGlobs); len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"coverage":     true,
}

// suffixes of non-text or generated artifacts
var defaultExcludeFileSuffixes = []string{
	".min.js", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp",
	".pdf", ".zip", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so",
	".wasm", ".pyc",
}

var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	".ds_store":         true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name] || strings.HasPrefix(name, ".git")
}

func isDefaultFileExcluded(lowerRel string) bool {
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	return defaultExcludeFileNames[filepath.Base(lowerRel)]
}
