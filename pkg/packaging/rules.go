// Package packaging assembles distributable package folders from build output.
package packaging

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Classification is the outcome of matching a file name against the rule tables
type Classification int

const (
	Ordinary Classification = iota
	Required
	Ignored
)

func (c Classification) String() string {
	switch c {
	case Ordinary:
		return "ordinary"
	case Required:
		return "required"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// PublishTarget is a sub-project that's published straight into every package. Command overrides
// DefaultPublishCommand.
type PublishTarget struct {
	Project string `yaml:"project"`
	Command string `yaml:"command,omitempty"`
}

// Rules holds the static tables that decide what ends up in a package
type Rules struct {
	// Require lists file names that are always copied
	Require []string `yaml:"require"`
	// Ignore lists name fragments. Files containing any of them are skipped unless required.
	Ignore []string `yaml:"ignore"`
	// Folders are copied recursively from the package's build output
	Folders []string `yaml:"folders"`
	// ExtraFolders are copied recursively from the project root
	ExtraFolders []string `yaml:"extraFolders"`
	// SymbolMarker routes matching files to the symbols folder. An empty marker disables routing.
	SymbolMarker string          `yaml:"symbolMarker"`
	SymbolsDir   string          `yaml:"symbolsDir"`
	Publish      []PublishTarget `yaml:"publish"`
}

// DefaultRules returns the built-in tables
func DefaultRules() *Rules {
	return &Rules{
		Require: []string{
			"GPUReshape.exe",
			"GRS.Backends.Vulkan.Layer.json",
			"GRS.Backends.DX12.Service.exe",
		},
		Ignore: []string{
			".pdb",
			".ilk",
			".exp",
			".lib",
			".iobj",
			".ipdb",
			"vulkan-1.dll",
			"Test",
		},
		Folders: []string{
			"Plugins",
			"Dependencies",
			"runtimes",
		},
		ExtraFolders: []string{
			"Documentation/Redist",
		},
		SymbolMarker: ".pdb",
		SymbolsDir:   "Symbols",
		Publish: []PublishTarget{
			{Project: "Source/UIX/Studio/Studio.csproj"},
		},
	}
}

// LoadRules reads a YAML file and applies every table it sets on top of rules
func LoadRules(rules *Rules, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "Could not open file %s", path)
	}

	err = yaml.Unmarshal(data, rules)
	if err != nil {
		return eris.Wrapf(err, "Failed to parse %s", path)
	}

	return rules.Validate()
}

// Validate checks for tables the packager can't work with
func (r *Rules) Validate() error {
	if r.SymbolMarker != "" && r.SymbolsDir == "" {
		return eris.New("a symbols folder is required when a symbol marker is set")
	}

	for _, target := range r.Publish {
		if target.Project == "" {
			return eris.New("publish targets need a project")
		}
	}

	return nil
}

// Classify matches name against the tables. Required takes precedence over Ignored.
func (r *Rules) Classify(name string) Classification {
	for _, item := range r.Require {
		if item == name {
			return Required
		}
	}

	for _, fragment := range r.Ignore {
		if strings.Contains(name, fragment) {
			return Ignored
		}
	}

	return Ordinary
}

// ShouldCopy reports whether name is required or not ignored
func (r *Rules) ShouldCopy(name string) bool {
	return r.Classify(name) != Ignored
}

// IsSymbol reports whether name should be routed to the symbols folder
func (r *Rules) IsSymbol(name string) bool {
	return r.SymbolMarker != "" && strings.Contains(name, r.SymbolMarker)
}
