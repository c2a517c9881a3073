package license

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Discover expands the configured globs relative to root and returns every file that should carry a license. The
// result keeps glob order and contains each file once.
func Discover(root string, cfg *Config) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to resolve %s", root)
	}

	expandCfg := expand.Config{
		ReadDir2: os.ReadDir,
		GlobStar: true,
		NullGlob: true,
		Env:      expand.ListEnviron("PWD=" + root),
	}

	parser := syntax.NewParser()
	seen := make(map[string]bool)
	result := []string{}

	for _, glob := range cfg.Globs {
		words := make([]*syntax.Word, 0)
		err = parser.Words(strings.NewReader(quotePattern(filepath.ToSlash(glob))), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to parse pattern %s", glob)
		}

		if len(words) != 1 {
			return nil, eris.Errorf("Pattern %s must be a single word", glob)
		}

		matches, err := expand.Fields(&expandCfg, words...)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to resolve pattern %s", glob)
		}

		for _, match := range matches {
			path := match
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, filepath.FromSlash(match))
			}

			if seen[path] {
				continue
			}
			seen[path] = true

			info, err := os.Stat(path)
			if err != nil {
				return nil, eris.Wrapf(err, "Failed to stat %s", path)
			}

			if info.IsDir() {
				continue
			}

			if _, ok := cfg.ResolveExtension(path); !ok {
				continue
			}

			if cfg.isIgnored(root, path) {
				continue
			}

			result = append(result, path)
		}
	}

	return result, nil
}

// quotePattern single-quotes everything except the glob characters * ? and [...] so spaces, $ and quotes in a
// pattern are matched literally
func quotePattern(glob string) string {
	var result, literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			result.WriteString("'" + strings.ReplaceAll(literal.String(), "'", `'\''`) + "'")
			literal.Reset()
		}
	}

	inClass := false
	for _, r := range glob {
		switch {
		case inClass:
			result.WriteRune(r)
			inClass = r != ']'
		case r == '*' || r == '?':
			flush()
			result.WriteRune(r)
		case r == '[':
			flush()
			result.WriteRune(r)
			inClass = true
		default:
			literal.WriteRune(r)
		}
	}
	flush()

	return result.String()
}

func (cfg *Config) isIgnored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = "/" + filepath.ToSlash(rel)

	for _, fragment := range cfg.Ignore {
		if strings.Contains(rel, fragment) {
			return true
		}
	}

	return false
}
