// Package filesystem reads CSV source files from a local directory.
package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iho/txingest/internal/usecase"
)

const (
	csvExtension = ".csv"

	// maxLineSize bounds a single physical line.
	maxLineSize = 1 << 20
)

// Source lists *.csv files in a single directory.
type Source struct {
	dir string
}

// NewSource creates a new Source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the input directory.
func (s *Source) Dir() string {
	return s.dir
}

// Discover returns the CSV files in the input directory sorted by name.
// Subdirectories are not traversed.
func (s *Source) Discover(ctx context.Context) ([]usecase.SourceFile, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, false, fmt.Errorf("input path %q is not a directory", s.dir)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read input dir: %w", err)
	}

	files := make([]usecase.SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), csvExtension) {
			continue
		}
		files = append(files, usecase.SourceFile{
			Name: entry.Name(),
			Path: filepath.Join(s.dir, entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, true, nil
}

// Lines streams the file line by line. The file is opened when iteration
// starts and closed when it stops.
func (s *Source) Lines(file usecase.SourceFile) iter.Seq2[usecase.SourceLine, error] {
	return func(yield func(usecase.SourceLine, error) bool) {
		f, err := os.Open(file.Path)
		if err != nil {
			yield(usecase.SourceLine{}, err)
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		number := 0
		for scanner.Scan() {
			number++
			text := strings.TrimSuffix(scanner.Text(), "\r")
			if number == 1 {
				text = strings.TrimPrefix(text, "\ufeff")
			}
			if !yield(usecase.SourceLine{Text: text, Number: number}, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(usecase.SourceLine{}, err)
		}
	}
}
