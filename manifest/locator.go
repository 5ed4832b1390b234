package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/log"
)

// DiscoveryError is returned when the search root itself is missing or
// unreadable. Unreadable subdirectories below the root are skipped instead.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot scan %s for %s files: %s", e.Root, FileName, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Locator finds Package.resolved files under a root directory.
type Locator interface {
	Locate(root string) ([]string, error)
}

type locator struct {
	logger log.Logger
}

// NewLocator ...
func NewLocator(logger log.Logger) Locator {
	return locator{logger: logger}
}

// Locate walks root recursively and returns every Package.resolved path in
// lexical walk order. Zero matches is not an error; whether that is fatal is
// the caller's decision. Unreadable subdirectories are logged and skipped.
func (l locator) Locate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	var paths []string
	err = filepath.WalkDir(root, func(pth string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if pth == root {
				return walkErr
			}

			l.logger.Warnf("Skipping %s: %s", pth, walkErr)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			// Repository internals never hold a project manifest.
			if entry.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}

		if entry.Name() == FileName {
			l.logger.Debugf("Found manifest: %s", pth)
			paths = append(paths, pth)
		}
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	return paths, nil
}
