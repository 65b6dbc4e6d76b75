package fsrename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Nomadcxx/namesink/internal/names"
	"github.com/Nomadcxx/namesink/internal/store"
)

var (
	ErrTargetExists = errors.New("target path already exists")
	ErrNoPath       = errors.New("source file has no path")
	ErrIsDirectory  = errors.New("path is a directory")
)

// Renamer renames files in place on the local filesystem.
// It is safe for concurrent use by the batch workers.
type Renamer struct {
	DryRun  bool
	Journal *Journal // optional, records every attempted rename

	mu      sync.Mutex
	claimed map[string]bool // targets being renamed onto, or taken by a dry run
}

// Rename moves src to candidate inside the same directory
func (r *Renamer) Rename(ctx context.Context, src store.SourceFile, candidate string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if src.Path == "" {
		return fmt.Errorf("%s: %w", src.Name, ErrNoPath)
	}

	// The store already validated, but this is the last stop before the disk
	if err := names.Validate(candidate).Err(); err != nil {
		return err
	}

	newPath := filepath.Join(filepath.Dir(src.Path), candidate)
	if newPath == src.Path {
		return nil
	}

	if !r.claim(newPath) {
		return fmt.Errorf("%s: %w", newPath, ErrTargetExists)
	}

	// Case-only renames on case-insensitive filesystems stat as existing
	if info, err := os.Stat(newPath); err == nil {
		srcInfo, srcErr := os.Stat(src.Path)
		if srcErr != nil || !os.SameFile(info, srcInfo) {
			r.release(newPath)
			return fmt.Errorf("%s: %w", newPath, ErrTargetExists)
		}
	}

	if r.DryRun {
		return nil
	}

	if err := os.Rename(src.Path, newPath); err != nil {
		r.release(newPath)
		if r.Journal != nil {
			r.Journal.Record(src.Path, newPath, false, err)
		}
		return fmt.Errorf("failed to rename %s: %w", src.Name, err)
	}

	if r.Journal != nil {
		r.Journal.Record(src.Path, newPath, true, nil)
	}

	// The file now occupies newPath, so the stat check guards it from here on
	r.release(newPath)
	return nil
}

// claim reserves newPath so two items of one batch cannot land on the same target
func (r *Renamer) claim(newPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed == nil {
		r.claimed = make(map[string]bool)
	}
	if r.claimed[newPath] {
		return false
	}
	r.claimed[newPath] = true
	return true
}

func (r *Renamer) release(newPath string) {
	r.mu.Lock()
	delete(r.claimed, newPath)
	r.mu.Unlock()
}

// SourceFromPath builds a SourceFile for a regular file on disk
func SourceFromPath(path string) (store.SourceFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return store.SourceFile{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return store.SourceFile{}, fmt.Errorf("file not accessible: %s: %w", path, err)
	}
	if info.IsDir() {
		return store.SourceFile{}, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	return store.SourceFile{
		Name: info.Name(),
		Size: info.Size(),
		Path: abs,
	}, nil
}

// SourcesFromPaths builds SourceFiles for every path, stopping at the first error
func SourcesFromPaths(paths []string) ([]store.SourceFile, error) {
	files := make([]store.SourceFile, 0, len(paths))
	for _, p := range paths {
		f, err := SourceFromPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
