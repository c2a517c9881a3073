package license

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultHeader is the sentinel every generated license block starts with. It's also used to recognize existing
// license blocks.
const DefaultHeader = "The MIT License (MIT)"

// DefaultBaseYear is the first year of the copyright range
const DefaultBaseYear = 2023

// mitBody keeps the trailing spaces of the original notice so files stamped by earlier tooling stay up to date.
var mitBody = strings.Join([]string{
	"Permission is hereby granted, free of charge, to any person obtaining a copy ",
	"of this software and associated documentation files (the \"Software\"), to deal ",
	"in the Software without restriction, including without limitation the rights ",
	"to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies ",
	"of the Software, and to permit persons to whom the Software is furnished to do so, ",
	"subject to the following conditions:",
	"",
	"The above copyright notice and this permission notice shall be included in all ",
	"copies or substantial portions of the Software.",
	"",
	"THE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, ",
	"INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR ",
	"PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE ",
	"FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ",
	"ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.",
}, "\n")

// Config holds everything a stamper run depends on
type Config struct {
	BaseYear    int      `yaml:"baseYear"`
	CurrentYear int      `yaml:"-"`
	Header      string   `yaml:"header"`
	Holders     []string `yaml:"holders"`
	Body        string   `yaml:"body"`

	// Globs are expanded relative to the project root and support ** for recursive matches.
	Globs []string `yaml:"globs"`
	// Ignore drops every file whose root-relative path (with a leading /) contains one of these fragments.
	Ignore     []string                `yaml:"ignore"`
	Extensions []string                `yaml:"extensions"`
	Specials   map[string]string       `yaml:"specials"`
	Styles     map[string]CommentStyle `yaml:"styles"`
	// Fallbacks are tried in order when the detected encoding can't decode a file.
	Fallbacks []string `yaml:"fallbacks"`
}

// DefaultConfig returns the built-in configuration for the given point in time
func DefaultConfig(now time.Time) *Config {
	styles := make(map[string]CommentStyle, len(defaultStyles))
	for ext, style := range defaultStyles {
		styles[ext] = style
	}

	return &Config{
		BaseYear:    DefaultBaseYear,
		CurrentYear: now.Year(),
		Header:      DefaultHeader,
		Holders: []string{
			"Miguel Petersen",
			"Advanced Micro Devices, Inc",
			"Avalanche Studios Group",
		},
		Body: mitBody,
		Globs: []string{
			"Build/**/*.*",
			"Source/**/*.*",
			"ThirdParty/*.*",
			"*.*",
		},
		Ignore: []string{
			"/venv/",
			"/obj/",
			"/bin/",
			"/.idea/",
		},
		Extensions: []string{".h", ".cpp", ".hpp", ".inl", ".cs", ".hlsl", ".cmake", ".py", ".bat"},
		Specials: map[string]string{
			"CMakeLists.txt": ".cmake",
		},
		Styles:    styles,
		Fallbacks: []string{"UTF-8", "windows-1252"},
	}
}

// LoadConfig reads a YAML file and applies every field it sets on top of cfg
func LoadConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "Could not open file %s", path)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return eris.Wrapf(err, "Failed to parse %s", path)
	}

	for ext, style := range cfg.Styles {
		if style.Open == "" && !style.IsBlock() {
			style.Open = style.Prefix
			cfg.Styles[ext] = style
		}
	}

	return cfg.Validate()
}

// Validate checks the config for values that would produce broken templates
func (cfg *Config) Validate() error {
	if cfg.Header == "" {
		return eris.New("the license header must not be empty")
	}

	if cfg.BaseYear <= 0 {
		return eris.Errorf("invalid base year %d", cfg.BaseYear)
	}

	for ext, style := range cfg.Styles {
		if style.Prefix == "" && !style.IsBlock() {
			return eris.Errorf("the comment style for %s has no prefix", ext)
		}

		if style.Open == "" {
			return eris.Errorf("the comment style for %s has no opening token", ext)
		}
	}

	return nil
}

// YearRange returns "BASE" if the base year is the current year and "BASE - CURRENT" otherwise
func (cfg *Config) YearRange() string {
	if cfg.CurrentYear <= cfg.BaseYear {
		return strconv.Itoa(cfg.BaseYear)
	}

	return strconv.Itoa(cfg.BaseYear) + " - " + strconv.Itoa(cfg.CurrentYear)
}

// StyleFor returns the comment style for ext
func (cfg *Config) StyleFor(ext string) CommentStyle {
	style, ok := cfg.Styles[ext]
	if !ok {
		return DefaultStyle
	}

	return style
}

// ResolveExtension returns the extension used to pick a template for path. Special file names override the real
// extension. The second value is false if the file shouldn't be licensed at all.
func (cfg *Config) ResolveExtension(path string) (string, bool) {
	basename := filepath.Base(path)
	if ext, ok := cfg.Specials[basename]; ok {
		return ext, true
	}

	ext := filepath.Ext(path)
	for _, accepted := range cfg.Extensions {
		if ext == accepted {
			return ext, true
		}
	}

	return "", false
}
