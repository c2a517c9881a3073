package packaging

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/GPUOpen-Tools/GPU-Reshape/pkg/fsutil"
)

// ErrMissingSource is returned when a package's build output or one of its folders doesn't exist
var ErrMissingSource = eris.New("source directory not found")

// Packager copies build output into package folders
type Packager struct {
	BuildRoot   string
	PackageRoot string
	// ProjectRoot is the base for ExtraFolders
	ProjectRoot string
	Rules       *Rules
	// Publisher is skipped if nil
	Publisher Publisher
	Logger    zerolog.Logger
	// Progress receives a progress bar for every recursive copy. No bar is shown if it's nil.
	Progress io.Writer
}

// Run packages every name in order and stops at the first error
func (p *Packager) Run(ctx context.Context, names []string) error {
	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := p.Package(ctx, name)
		if err != nil {
			return eris.Wrapf(err, "Failed to package %s", name)
		}
	}

	return nil
}

// Destination returns the package folder for name
func (p *Packager) Destination(name string) string {
	return filepath.Join(p.PackageRoot, name)
}

// SymbolsDestination returns the folder that receives the debug symbols of name
func (p *Packager) SymbolsDestination(name string) string {
	return filepath.Join(p.PackageRoot, p.Rules.SymbolsDir, name)
}

func (p *Packager) requireDir(path string) error {
	isDir, err := fsutil.IsDir(path)
	if err != nil {
		return err
	}

	if !isDir {
		return eris.Wrapf(ErrMissingSource, "%s", path)
	}

	return nil
}

// Package rebuilds the package folder for a single name
func (p *Packager) Package(ctx context.Context, name string) error {
	logger := p.Logger.With().Str("package", name).Logger()
	source := filepath.Join(p.BuildRoot, name)
	dest := p.Destination(name)

	err := p.requireDir(source)
	if err != nil {
		return err
	}

	logger.Info().Str("path", dest).Msg("packaging")

	err = fsutil.Reset(dest)
	if err != nil {
		return err
	}

	routeSymbols := p.Rules.SymbolMarker != ""
	symbolsDest := p.SymbolsDestination(name)
	if routeSymbols {
		err = fsutil.Reset(symbolsDest)
		if err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return eris.Wrapf(err, "Failed to read dir %s", source)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fileName := entry.Name()
		isDir, err := isDirEntry(source, entry)
		if err != nil {
			return err
		}

		if isDir {
			continue
		}

		target := filepath.Join(dest, fileName)

		switch {
		case routeSymbols && p.Rules.IsSymbol(fileName):
			target = filepath.Join(symbolsDest, fileName)
			logger.Info().Str("file", fileName).Msg("symbols")
		case p.Rules.ShouldCopy(fileName):
			logger.Info().Str("file", fileName).Msg("copying")
		default:
			logger.Info().Str("file", fileName).Msg("ignored")
			continue
		}

		err = fsutil.CopyFile(filepath.Join(source, fileName), target, nil)
		if err != nil {
			return err
		}
	}

	for _, folder := range p.Rules.Folders {
		err = p.copyFolder(logger, filepath.Join(source, folder), filepath.Join(dest, folder))
		if err != nil {
			return err
		}
	}

	for _, folder := range p.Rules.ExtraFolders {
		err = p.copyFolder(logger, filepath.Join(p.ProjectRoot, folder), filepath.Join(dest, filepath.Base(folder)))
		if err != nil {
			return err
		}
	}

	if p.Publisher != nil {
		// publish commands may run in a different directory
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return eris.Wrapf(err, "Failed to resolve %s", dest)
		}

		configuration := filepath.Base(filepath.FromSlash(name))
		for _, target := range p.Rules.Publish {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			err = p.Publisher.Publish(ctx, target, configuration, absDest)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// isDirEntry also reports links and junctions that point to a directory
func isDirEntry(parent string, entry fs.DirEntry) (bool, error) {
	if entry.IsDir() {
		return true, nil
	}

	if entry.Type()&(fs.ModeSymlink|fs.ModeIrregular) == 0 {
		return false, nil
	}

	return fsutil.IsDir(filepath.Join(parent, entry.Name()))
}

func (p *Packager) copyFolder(logger zerolog.Logger, source, dest string) error {
	err := p.requireDir(source)
	if err != nil {
		return err
	}

	exists, err := fsutil.Exists(dest)
	if err != nil {
		return err
	}

	if exists {
		err = os.RemoveAll(dest)
		if err != nil {
			return eris.Wrapf(err, "Could not delete %s", dest)
		}
	}

	logger.Info().Str("path", source).Msg("copying folder")

	var progress io.Writer
	if p.Progress != nil {
		size, err := fsutil.TreeSize(source)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetDescription(filepath.Base(source)),
			progressbar.OptionSetWriter(p.Progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		progress = bar
	}

	return fsutil.CopyTree(source, dest, progress)
}
