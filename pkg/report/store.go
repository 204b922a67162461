package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "tiktracker/pkg/errors"
	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
)

const (
	filePrefix = "report_"
	fileSuffix = ".json"
)

// Colons and periods are not filesystem-safe everywhere, so timestamps in
// filenames use dashes instead. Lexicographic order still matches
// chronological order.
var filenameSanitizer = strings.NewReplacer(":", "-", ".", "-")

// Store persists reports as timestamped JSON documents in one directory.
type Store struct {
	dir string
	log logger.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on
// first save, not here.
func NewStore(dir string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{dir: dir, log: log}
}

// Filename returns the report filename for a given timestamp string.
func Filename(timestamp string) string {
	return filePrefix + filenameSanitizer.Replace(timestamp) + fileSuffix
}

// Save writes the report atomically (temp file plus rename) and returns
// the full path. A failure here loses the run's results, so it is the one
// persistence error treated as fatal by callers.
func (s *Store) Save(rep *models.Report) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypePersist, "create reports directory", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypePersist, "marshal report", err)
	}

	path := filepath.Join(s.dir, Filename(rep.Timestamp))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypePersist, "write report file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", apperrors.Wrap(apperrors.ErrorTypePersist, "finalize report file", err)
	}

	s.log.InfoWithFields("report persisted", map[string]interface{}{
		"path":    path,
		"results": len(rep.Results),
	})
	return path, nil
}

// Latest loads the most recent valid report, or nil when none exists.
// Filenames embed ISO-8601 timestamps, so the lexicographically greatest
// name is the newest; documents without a parseable timestamp are skipped
// in favor of the next-most-recent.
func (s *Store) Latest() (*models.Report, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names {
		path := filepath.Join(s.dir, name)
		rep, err := s.load(path)
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("skipping unreadable report")
			continue
		}
		return rep, nil
	}
	return nil, nil
}

// List returns every report filename, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Load reads one report file by name.
func (s *Store) Load(name string) (*models.Report, error) {
	return s.load(filepath.Join(s.dir, name))
}

func (s *Store) load(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rep models.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if _, err := time.Parse(time.RFC3339, rep.Timestamp); err != nil {
		return nil, fmt.Errorf("report timestamp invalid: %w", err)
	}
	return &rep, nil
}
