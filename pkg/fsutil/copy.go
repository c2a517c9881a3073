package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// CopyFile copies src to dst, keeping the permission bits of src. An existing dst is truncated.
func CopyFile(src, dst string, progress io.Writer) error {
	info, err := os.Stat(src)
	if err != nil {
		return eris.Wrapf(err, "Could not stat %s", src)
	}

	if info.IsDir() {
		return eris.Errorf("%s is a directory", src)
	}

	srcHandle, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open file %s", src)
	}
	defer srcHandle.Close()

	dstHandle, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return eris.Wrapf(err, "Failed to create file %s", dst)
	}

	var writer io.Writer = dstHandle
	if progress != nil {
		writer = io.MultiWriter(dstHandle, progress)
	}

	_, err = io.Copy(writer, srcHandle)
	if err != nil {
		dstHandle.Close()
		return eris.Wrapf(err, "Failed to copy %s to %s", src, dst)
	}

	err = dstHandle.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", dst)
	}

	return nil
}

// TreeSize returns the combined size of all regular files below dir
func TreeSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return eris.Wrapf(err, "Failed to read %s", path)
		}

		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return eris.Wrapf(err, "Could not stat %s", path)
			}
			total += info.Size()
		}
		return nil
	})

	return total, err
}

// CopyTree recursively copies the contents of src into dst. dst is created if necessary. Every copied file is
// written through progress as well (if it isn't nil).
func CopyTree(src, dst string, progress io.Writer) error {
	info, err := os.Stat(src)
	if err != nil {
		return eris.Wrapf(err, "Could not stat %s", src)
	}

	if !info.IsDir() {
		return eris.Errorf("%s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return eris.Wrapf(err, "Failed to read %s", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return eris.Wrapf(err, "Failed to determine relative path for %s", path)
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			err = os.MkdirAll(target, DirMode)
			if err != nil {
				return eris.Wrapf(err, "Failed to create directory %s", target)
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return eris.Wrapf(err, "Failed to read symlink %s", path)
			}

			err = os.Symlink(link, target)
			if err != nil {
				return eris.Wrapf(err, "Failed to create symlink %s pointing to %s", target, link)
			}
			return nil
		}

		return CopyFile(path, target, progress)
	})
}
