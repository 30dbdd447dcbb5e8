// Package dataset serves the per-region tabular files (CSV and XLSX) that back
// the consumption charts and the raw data views.
//
// Files live at {root}/{region name}/{category}/{file}. Regions may be given
// by Korean name or slug; categories and file names are single path segments.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/cache"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
)

var (
	// ErrNotFound is returned when a category directory or file does not exist.
	ErrNotFound = errors.New("dataset not found")

	// ErrInvalidPath is returned for path segments that could escape the data root.
	ErrInvalidPath = errors.New("invalid dataset path")

	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Well-known category and file names used by the consumption charts.
const (
	CategoryConsumption    = "관광소비"
	FileConsumptionByAge   = "성연령별.csv"
	FileForeignConsumption = "외국인.csv"
)

const cacheSource = "csv"

// FileInfo describes one dataset file.
type FileInfo struct {
	Name     string    `json:"name"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Table is a parsed dataset: header columns in file order and one row map per
// data line.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    []domain.CSVRow `json:"rows"`
}

// Store reads datasets from a directory tree, caching parsed tables.
type Store struct {
	root   string
	cache  *cache.Cache[any]
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a store rooted at root. Parsed tables are kept in c for ttl;
// a nil cache disables caching.
func NewStore(root string, c *cache.Cache[any], ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{root: root, cache: c, ttl: ttl, logger: logger}
}

// List returns the dataset files in a region category, sorted by name.
func (s *Store) List(region, category string) ([]FileInfo, error) {
	dir, err := s.dir(region, category)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, region, category)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", region, category, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		format := formatOf(e.Name())
		if e.IsDir() || format == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     e.Name(),
			Format:   format,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Read parses a dataset file.
func (s *Store) Read(region, category, file string) (*Table, error) {
	dir, err := s.dir(region, category)
	if err != nil {
		return nil, err
	}
	if !validSegment(file) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, file)
	}
	format := formatOf(file)
	if format == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file)
	}

	path := filepath.Join(dir, file)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrNotFound, region, category, file)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", file, err)
	}

	// The modification time is part of the key so a replaced file is re-read.
	key := cache.Key(cacheSource, url.Values{
		"path":  {path},
		"mtime": {strconv.FormatInt(info.ModTime().UnixNano(), 10)},
	})
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if t, ok := v.(*Table); ok {
				return t, nil
			}
		}
	}

	var t *Table
	switch format {
	case FormatCSV:
		t, err = readCSVFile(path)
	case FormatXLSX:
		t, err = readXLSXFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	s.logger.Debug("dataset loaded", "region", region, "category", category, "file", file, "rows", len(t.Rows))
	if s.cache != nil {
		s.cache.Set(key, t, s.ttl)
	}
	return t, nil
}

// Invalidate drops every cached table.
func (s *Store) Invalidate() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix(cache.SourcePrefix(cacheSource))
}

func (s *Store) dir(region, category string) (string, error) {
	r, err := domain.LookupRegion(region)
	if err != nil {
		return "", err
	}
	if !validSegment(category) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, category)
	}
	return filepath.Join(s.root, r.Name, category), nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." &&
		!strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}
