package fsutil

import (
	"io"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
)

// IsBuiltin reports whether RunBuiltin implements the named command
func IsBuiltin(name string) bool {
	switch name {
	case "rm", "mkdir", "mv":
		return true
	default:
		return false
	}
}

// RunBuiltin runs one of the cross-platform rm, mkdir or mv implementations with POSIX style arguments. Relative
// paths are resolved against dir.
func RunBuiltin(dir string, args []string) error {
	if len(args) == 0 || !IsBuiltin(args[0]) {
		return eris.Errorf("unknown builtin %v", args)
	}

	flags := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var recursive, force, parents *bool
	switch args[0] {
	case "rm":
		recursive = flags.BoolP("recursive", "r", false, "recursively delete directories")
		force = flags.BoolP("force", "f", false, "suppresses errors caused by missing files/folders")
	case "mkdir":
		parents = flags.BoolP("parents", "p", false, "create parent directories as needed")
	}

	err := flags.Parse(args[1:])
	if err != nil {
		return eris.Wrapf(err, "Invalid arguments for %s", args[0])
	}

	items := make([]string, flags.NArg())
	for idx, item := range flags.Args() {
		if !filepath.IsAbs(item) {
			item = filepath.Join(dir, item)
		}
		items[idx] = item
	}

	switch args[0] {
	case "rm":
		return Remove(items, *recursive, *force)
	case "mkdir":
		return MakeDirs(items, *parents)
	default:
		if len(items) < 2 {
			return eris.New("Not enough parameters")
		}
		return Move(items[:len(items)-1], items[len(items)-1])
	}
}
