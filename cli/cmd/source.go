package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ardnew/rts/log"
	"github.com/ardnew/rts/pkg"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is the text of one script together with where it came from.
type source struct {
	name string
	data []byte
	file bool
}

// loadScript returns the script named by arg. An argument ending in
// [pkg.ScriptExt] is a file path, "-" reads standard input, and anything
// else is the script text itself.
func loadScript(arg string) (source, error) {
	switch {
	case arg == stdinSource:
		data, err := readStdin()

		return source{name: stdinSource, data: data}, err

	case strings.HasSuffix(arg, pkg.ScriptExt):
		data, err := os.ReadFile(arg)
		if err != nil {
			return source{}, ErrReadSource.With(slog.String("file", arg)).Wrap(err)
		}

		return source{name: arg, data: data, file: true}, nil
	}

	return source{name: "inline", data: []byte(arg)}, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources reads each distinct file in paths once, in order.
//
// Paths naming the same file through symlinks or relative components are
// read once. Every "-" is replaced by a single read of standard input,
// placed last. Unreadable files are logged and skipped.
func readSources(ctx context.Context, paths []string) []source {
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[fileKey]struct{})
	srcs := make([]source, 0, len(paths))

	var stdinKey fileKey
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, _ = makeFileKey(info)
	}

	for _, path := range paths {
		if path == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		data, ok := readUniqueFile(path, seen)
		if !ok {
			log.DebugContext(ctx, "skip source", slog.String("file", path))

			continue
		}

		srcs = append(srcs, source{name: path, data: data, file: true})
	}

	// Stdin may have been named by "-" or by a path to the same file.
	if _, ok := seen[stdinKey]; ok {
		data, err := readStdin()
		if err != nil {
			log.DebugContext(ctx, "skip source", slog.Any("error", err))
		} else {
			srcs = append(srcs, source{name: stdinSource, data: data})
		}
	}

	return srcs
}

// readUniqueFile reads the file at path unless a file with the same device
// and inode is already in seen.
func readUniqueFile(path string, seen map[fileKey]struct{}) ([]byte, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, false
	}

	if _, dup := seen[key]; dup {
		return nil, false
	}

	seen[key] = struct{}{}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, false
	}

	return data, true
}

// makeFileKey returns the device and inode of info, or false when the
// platform does not report them.
func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
