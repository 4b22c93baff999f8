package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	contextKey     struct{}
	sourceFilesKey struct{}
	catalogsKey    struct{}
	depthKey       struct{}
	outputKey      struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithCatalogs returns a copy of ctx naming the template catalog files or
// directories commands register templates from.
func WithCatalogs(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, catalogsKey{}, paths)
}

func catalogsFrom(ctx context.Context) []string {
	paths, _ := ctx.Value(catalogsKey{}).([]string)

	return paths
}

// WithDepth returns a copy of ctx carrying the sanitizer depth limit.
func WithDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

func depthFrom(ctx context.Context) (int, bool) {
	depth, ok := ctx.Value(depthKey{}).(int)

	return depth, ok
}

// WithOutput returns a copy of ctx directing command output to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// SourceFiles is a deduplicated, ordered set of record sources.
type SourceFiles interface {
	IsZero() bool
	// Each calls fn with every source in order, stdin last.
	Each(fn func(name string, r io.Reader) error) error
}

type namedReader struct {
	name string
	r    io.Reader
}

type sourceFiles struct {
	read     []namedReader
	hasStdin bool
}

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

func (s *sourceFiles) Each(fn func(name string, r io.Reader) error) error {
	for _, nr := range s.read {
		err := fn(nr.name, nr.r)

		if c, ok := nr.r.(io.Closer); ok {
			_ = c.Close()
		}

		if err != nil {
			return err
		}
	}

	s.read = nil

	if s.hasStdin {
		return fn(stdinSource, os.Stdin)
	}

	return nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing the record
// sources read from the given paths.
//
// Sources are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" collapse into a single stdin source, read
// after every regular file.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	srcs.read = make([]namedReader, 0, len(sources))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		reader, ok := openUniqueFile(src, seen)
		if !ok {
			continue
		}

		srcs.read = append(srcs.read, namedReader{name: src, r: reader})
	}

	// Stdin may have been included via "-" or as a named file.
	_, srcs.hasStdin = seen[stdinKey]
	delete(seen, stdinKey)

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
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

	if _, exists := seen[key]; exists {
		return nil, false
	}

	seen[key] = struct{}{}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return file, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// sourceFilesFrom retrieves the sources stored in ctx by WithSourceFiles.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}
