// Package output writes a run's annotated documents and report.json to a
// directory on the local filesystem.
package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/fsutil"
)

// ReportFileName is the report written alongside the documents.
const ReportFileName = "report.json"

// Ensure Location implements the interface.
var _ driven.OutputLocation = (*Location)(nil)

// Location is an output directory. Files are written through a temporary
// file and renamed into place, so a name never holds a partial write.
type Location struct {
	dir string
}

// NewLocation creates a location for dir. Nothing is touched on disk until Prepare.
func NewLocation(dir string) *Location {
	return &Location{dir: filepath.Clean(dir)}
}

// Factory opens filesystem output locations.
func Factory(dir string) driven.OutputLocation {
	return NewLocation(dir)
}

// Prepare creates the directory and checks that it accepts writes.
func (l *Location) Prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	check, err := os.CreateTemp(l.dir, fsutil.TempPrefix+"check-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", l.dir, err)
	}
	name := check.Name()
	check.Close()
	return os.Remove(name)
}

// Dir returns the directory path.
func (l *Location) Dir() string {
	return l.dir
}

// PathFor returns the path a document with this name is written to.
func (l *Location) PathFor(name string) string {
	return filepath.Join(l.dir, filepath.Base(name))
}

// Exists reports whether a regular file with this name exists.
func (l *Location) Exists(name string) bool {
	info, err := os.Stat(l.PathFor(name))
	return err == nil && info.Mode().IsRegular()
}

// CopyIn copies src into the directory under name, replacing any existing file.
func (l *Location) CopyIn(ctx context.Context, src, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := l.PathFor(name)
	if same, err := samePath(src, dst); err == nil && same {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	return fsutil.WriteAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// WriteReport writes the report as indented JSON to report.json.
func (l *Location) WriteReport(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("%w: nil report", domain.ErrInvalidInput)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	return fsutil.WriteAtomic(filepath.Join(l.dir, ReportFileName), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// RemoveReport deletes report.json if present.
func (l *Location) RemoveReport(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.dir, ReportFileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove report: %w", err)
	}
	return nil
}

// List returns the document file names in the directory, sorted.
// The report and temporary files are excluded.
func (l *Location) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list output directory: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || name == ReportFileName || strings.HasPrefix(name, fsutil.TempPrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
