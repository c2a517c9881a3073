package config

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// DefaultFile is loaded from the working directory if it exists
const DefaultFile = "buildtools.toml"

// Config describes all configuration options
type Config struct {
	Log struct {
		Level string `default:"info" toml:"level" env:"LEVEL" usage:"Minimum log level (debug, info, warn, error)"`
		JSON  bool   `default:"false" toml:"json" env:"JSON" usage:"Output JSONND instead of pretty console messages"`
		Trace bool   `default:"false" toml:"trace" env:"TRACE" usage:"Include stack traces in logged errors"`
	} `toml:"log" env:"LOG"`
	Package struct {
		BuildRoot   string `default:"Bin" toml:"build_root" env:"BUILD_ROOT" usage:"Directory containing the build output"`
		PackageRoot string `default:"Package" toml:"package_root" env:"PACKAGE_ROOT" usage:"Directory receiving the packages"`
		Rules       string `toml:"rules" env:"RULES" usage:"YAML file overriding the packaging rules"`
		Platform    string `default:"win-x64" toml:"platform" env:"PLATFORM" usage:"Runtime identifier for publish commands"`
		Symbols     bool   `default:"true" toml:"symbols" env:"SYMBOLS" usage:"Move debug symbols into a separate folder"`
	} `toml:"package" env:"PACKAGE"`
	License struct {
		BaseYear int    `default:"2023" toml:"base_year" env:"BASE_YEAR" usage:"First year of the copyright range"`
		Root     string `toml:"root" env:"ROOT" usage:"Directory the search globs are relative to"`
		Config   string `toml:"config" env:"CONFIG" usage:"YAML file overriding the license tables"`
	} `toml:"license" env:"LICENSE"`
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object. file is only read if it
// exists.
func Loader(file string) (*Config, *aconfig.Loader) {
	files := []string{}
	if file != "" {
		if _, err := os.Stat(file); err == nil {
			files = append(files, file)
		}
	}

	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "BUILDTOOLS",
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads defaults, the config file and the environment in that order and validates the result
func Load(file string) (*Config, error) {
	cfg, loader := Loader(file)
	err := loader.Load()
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to load config")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	if cfg.Package.BuildRoot == "" {
		return eris.New(`package.build_root must not be empty`)
	}

	if cfg.Package.PackageRoot == "" {
		return eris.New(`package.package_root must not be empty`)
	}

	if cfg.License.BaseYear <= 0 {
		return eris.Errorf(`Invalid value for license.base_year: %d`, cfg.License.BaseYear)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}

// ParseLogLevel converts a level name to a zerolog.Level
func ParseLogLevel(level string) (zerolog.Level, error) {
	result, ok := logLevels[level]
	if !ok {
		return zerolog.NoLevel, eris.Errorf("Invalid log level %s", level)
	}

	return result, nil
}
