// Package storage provides file-based persistence for the pipeline's CSV and JSON files.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/tabular"
)

// ErrNotFound is returned when a requested file does not exist.
var ErrNotFound = errors.New("not found")

// FileStore reads and writes files in the configured data directories.
type FileStore struct {
	dirs   map[interfaces.Area]string
	logger arbor.ILogger
}

var _ interfaces.DataStore = (*FileStore)(nil)

// NewFileStore creates a new FileStore and ensures all area directories exist.
func NewFileStore(logger arbor.ILogger, config *common.StorageConfig) (*FileStore, error) {
	fs := &FileStore{
		dirs: map[interfaces.Area]string{
			interfaces.AreaSource:    config.ResolvePath(config.SourceDir),
			interfaces.AreaProcessed: config.ResolvePath(config.ProcessedDir),
			interfaces.AreaHoldings:  config.ResolvePath(config.HoldingsDir),
			interfaces.AreaJSON:      config.ResolvePath(config.JSONDir),
		},
		logger: logger,
	}

	for _, dir := range fs.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger.Debug().Str("path", config.DataDir).Msg("FileStore opened")
	return fs, nil
}

// sanitizeKey makes a name safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func (fs *FileStore) sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// Path returns the full path for a file in an area.
func (fs *FileStore) Path(area interfaces.Area, name string) string {
	return filepath.Join(fs.dirs[area], fs.sanitizeKey(name))
}

// ReadFile reads a file, returning ErrNotFound when it is missing.
func (fs *FileStore) ReadFile(area interfaces.Area, name string) ([]byte, error) {
	path := fs.Path(area, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("'%s': %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes a file atomically: write to a temp file in the same
// directory, then rename over the target.
func (fs *FileStore) WriteFile(area interfaces.Area, name string, data []byte) error {
	dir := fs.dirs[area]
	target := fs.Path(area, name)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	fs.logger.Debug().Str("file", target).Int("bytes", len(data)).Msg("File written")
	return nil
}

// WriteJSON marshals v to indented JSON and writes it atomically.
func (fs *FileStore) WriteJSON(area interfaces.Area, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return fs.WriteFile(area, name, append(data, '\n'))
}

// ReadJSON reads a JSON file into v.
func (fs *FileStore) ReadJSON(area interfaces.Area, name string, v interface{}) error {
	data, err := fs.ReadFile(area, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// ReadFrame reads a date-indexed CSV.
func (fs *FileStore) ReadFrame(area interfaces.Area, name string) (*models.Frame, error) {
	data, err := fs.ReadFile(area, name)
	if err != nil {
		return nil, err
	}
	frame, err := tabular.ReadFrame(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return frame, nil
}

// WriteFrame writes a date-indexed CSV.
func (fs *FileStore) WriteFrame(area interfaces.Area, name string, frame *models.Frame) error {
	var buf bytes.Buffer
	if err := tabular.WriteFrame(&buf, frame); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return fs.WriteFile(area, name, buf.Bytes())
}

// ReadTable reads a CSV table.
func (fs *FileStore) ReadTable(area interfaces.Area, name string) (*models.Table, error) {
	data, err := fs.ReadFile(area, name)
	if err != nil {
		return nil, err
	}
	table, err := tabular.ReadTable(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return table, nil
}

// WriteTable writes a CSV table.
func (fs *FileStore) WriteTable(area interfaces.Area, name string, table *models.Table) error {
	var buf bytes.Buffer
	if err := tabular.WriteTable(&buf, table); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return fs.WriteFile(area, name, buf.Bytes())
}

// ReadJSONTable reads a table from the JSON mirror.
func (fs *FileStore) ReadJSONTable(name string) (*models.Table, time.Time, error) {
	data, err := fs.ReadFile(interfaces.AreaJSON, name)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(data) == 0 {
		return nil, time.Time{}, fmt.Errorf("'%s' is empty", name)
	}
	return tabular.TableFromJSON(data)
}

// WriteJSONTable writes a table to the JSON mirror.
func (fs *FileStore) WriteJSONTable(name string, table *models.Table, updated time.Time) error {
	data, err := tabular.TableToJSON(table, updated)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return fs.WriteFile(interfaces.AreaJSON, name, append(data, '\n'))
}

// Stat describes a file in an area.
func (fs *FileStore) Stat(area interfaces.Area, name string) models.FileStatus {
	status := models.FileStatus{Name: name}
	info, err := os.Stat(fs.Path(area, name))
	if err != nil {
		return status
	}
	status.Exists = true
	status.LastModified = info.ModTime()
	status.Size = info.Size()
	return status
}

// HoldingsFileName returns the dated holdings file name, MM_DD_YYYY_<suffix>.
func HoldingsFileName(date time.Time, suffix string) string {
	return date.Format("01_02_2006") + "_" + suffix
}

// HoldingsFileDate parses the date prefix of a holdings file name.
func HoldingsFileDate(name, suffix string) (time.Time, bool) {
	prefix, ok := strings.CutSuffix(name, "_"+suffix)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("01_02_2006", prefix)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HoldingsFiles lists holdings files with the given suffix, newest date first.
// Names without a parseable date are ignored.
func (fs *FileStore) HoldingsFiles(suffix string) ([]string, error) {
	dir := fs.dirs[interfaces.AreaHoldings]
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	type dated struct {
		name string
		date time.Time
	}
	var files []dated
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if d, ok := HoldingsFileDate(e.Name(), suffix); ok {
			files = append(files, dated{name: e.Name(), date: d})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].date.After(files[j].date) })

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}
