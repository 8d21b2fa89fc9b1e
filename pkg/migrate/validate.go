package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// File is one goose SQL migration on disk.
type File struct {
	Version int64
	Name    string
	Path    string
}

// ValidateDir reports every malformed migration in dir at once.
func ValidateDir(dir string) error {
	_, err := ListFiles(dir)
	return err
}

// ListFiles returns the migrations in dir ordered by version. Non-SQL files
// are ignored; an empty directory yields no files and no error.
func ListFiles(dir string) ([]File, error) {
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var (
		files     []File
		errs      error
		byVersion = map[int64]string{}
	)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		f, err := inspectFile(dir, e.Name())
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if prev, ok := byVersion[f.Version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %d in %q and %q", f.Version, prev, e.Name()))
			continue
		}
		byVersion[f.Version] = e.Name()
		files = append(files, f)
	}
	if errs != nil {
		return nil, errs
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

func inspectFile(dir, filename string) (File, error) {
	m := migrationFileRe.FindStringSubmatch(filename)
	if m == nil {
		return File{}, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", filename)
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return File{}, fmt.Errorf("migration %q: %w", filename, err)
	}

	path := filepath.Join(dir, filename)
	body, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read file %q: %w", path, err)
	}
	text := string(body)
	up := strings.Index(text, gooseUp)
	down := strings.Index(text, gooseDown)
	switch {
	case up < 0:
		return File{}, fmt.Errorf("migration %q missing %q", filename, gooseUp)
	case down < 0:
		return File{}, fmt.Errorf("migration %q missing %q", filename, gooseDown)
	case down < up:
		return File{}, fmt.Errorf("migration %q declares Down before Up", filename)
	}

	return File{Version: version, Name: m[2], Path: path}, nil
}
