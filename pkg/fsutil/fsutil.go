// Package fsutil contains the cross-platform file operations shared by the
// POSIX helper commands, the publish shell and the packager.
package fsutil

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
)

// DirMode is used for every directory these helpers create
const DirMode = os.FileMode(0o770)

// ExpandPatterns resolves glob patterns on Windows where the shell doesn't do it for us. On every other platform
// the arguments are returned unchanged. If allowMissing is set, patterns without matches are dropped instead of
// returning an error.
func ExpandPatterns(args []string, allowMissing bool) ([]string, error) {
	if runtime.GOOS != "windows" {
		return args, nil
	}

	items := []string{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to resolve pattern %s", arg)
		}

		if matches == nil {
			if allowMissing {
				continue
			}
			return nil, eris.Errorf("Pattern %s produced no matches", arg)
		}

		items = append(items, matches...)
	}

	return items, nil
}

// Exists reports whether path exists. Errors other than "not found" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if eris.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, eris.Wrapf(err, "Could not stat %s", path)
}

// IsDir reports whether path exists and is a directory
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, eris.Wrapf(err, "Could not stat %s", path)
	}

	return info.IsDir(), nil
}

// Remove deletes all items. Directories are only deleted if recursive is set. With force, missing items are ignored.
func Remove(items []string, recursive, force bool) error {
	for _, item := range items {
		info, err := os.Stat(item)
		if err != nil {
			if force && eris.Is(err, os.ErrNotExist) {
				continue
			}
			return eris.Wrapf(err, "Could not stat %s", item)
		}

		if info.IsDir() && !recursive {
			return eris.Errorf("%s is a directory but -r wasn't passed", item)
		}
	}

	for _, item := range items {
		err := os.RemoveAll(item)
		if err != nil && (!force || !eris.Is(err, os.ErrNotExist)) {
			return eris.Wrapf(err, "Could not delete %s", item)
		}
	}

	return nil
}

// MakeDirs creates each directory in items, including missing parents if parents is set
func MakeDirs(items []string, parents bool) error {
	for _, item := range items {
		var err error
		if parents {
			err = os.MkdirAll(item, DirMode)
		} else {
			err = os.Mkdir(item, DirMode)
		}

		if err != nil {
			return eris.Wrapf(err, "Failed to create %s", item)
		}
	}

	return nil
}

// Move moves items into dest. Moving more than one item requires dest to be an existing directory. A single item is
// moved into dest if dest is a directory and renamed to dest otherwise.
func Move(items []string, dest string) error {
	dest = filepath.Clean(dest)
	destParent := filepath.Dir(dest)
	info, err := os.Stat(destParent)
	if err != nil {
		return eris.Wrapf(err, "Could not find destination directory %s", destParent)
	}

	if !info.IsDir() {
		return eris.Errorf("%s is not a directory!", destParent)
	}

	destIsDir, err := IsDir(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to retrieve info about destination %s", dest)
	}

	if len(items) > 1 && !destIsDir {
		return eris.Errorf("Can't move multiple items to %s because it is not a directory!", dest)
	}

	for _, item := range items {
		itemDest := dest
		if destIsDir {
			itemDest = filepath.Join(dest, filepath.Base(item))
		}

		err = os.Rename(item, itemDest)
		if err != nil {
			return eris.Wrapf(err, "Failed to move %s to %s", item, itemDest)
		}
	}

	return nil
}

// Reset deletes dir if it exists and recreates it empty
func Reset(dir string) error {
	exists, err := Exists(dir)
	if err != nil {
		return err
	}

	if exists {
		err = os.RemoveAll(dir)
		if err != nil {
			return eris.Wrapf(err, "Could not delete %s", dir)
		}
	}

	err = os.MkdirAll(dir, DirMode)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dir)
	}

	return nil
}
