package loader

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
)

// Discover returns the schema files named by paths. Files are kept as given;
// directories are walked, respecting .gitignore, for files with one of the
// extensions. The result is sorted and free of duplicates.
func Discover(paths []string, extensions []string) ([]string, error) {
	var (
		mu    sync.Mutex
		found []string
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}

		if !info.IsDir() {
			found = append(found, path)
			continue
		}

		err = walkDir(path, extensions, func(file string) {
			mu.Lock()
			found = append(found, file)
			mu.Unlock()
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(found)

	return slices.Compact(found), nil
}

// walkDir walks a directory for schema files, respecting .gitignore.
func walkDir(root string, extensions []string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = trimDots(extensions)

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e
		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			callback(f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()

	return walkErr
}

func trimDots(extensions []string) []string {
	out := make([]string, len(extensions))
	for i, ext := range extensions {
		out[i] = strings.TrimPrefix(ext, ".")
	}

	return out
}
