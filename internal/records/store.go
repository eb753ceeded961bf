package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"brokerconf/pkg/logging"
)

// Store keeps emergency overrides as one file per config name in a single
// directory. Each file holds the literal value.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the record directory.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName rejects names that cannot be used as a file in the record
// directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("config name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid config name %q", name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("config name %q contains a path separator", name)
	case strings.HasPrefix(name, tmpPrefix):
		return fmt.Errorf("config name %q uses a reserved prefix", name)
	}
	return nil
}

const tmpPrefix = ".brokerconf-"

// Record stores value for name, replacing any earlier record. The write goes
// through a temp file and a rename so readers never see a partial value.
func (s *Store) Record(name, value string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create record directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", s.dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write record %s: %w", name, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on record %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close record %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write record %s: %w", path, err)
	}

	logging.Info("Records", "Recorded %s in %s", name, s.dir)
	return nil
}

// Load returns the recorded value for name.
func (s *Store) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("no record for %s in %s: %w", name, s.dir, err)
		}
		return "", fmt.Errorf("failed to read record %s: %w", name, err)
	}
	return string(data), nil
}

// Read returns every record in the directory. The directory must exist.
// Subdirectories and in-flight temp files are ignored.
func (s *Store) Read() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("record directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("record path %s is not a directory", s.dir)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list record directory %s: %w", s.dir, err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", e.Name(), err)
		}
		out[e.Name()] = string(data)
	}

	logging.Debug("Records", "Read %d records from %s", len(out), s.dir)
	return out, nil
}

// List returns the recorded config names, sorted.
func (s *Store) List() ([]string, error) {
	records, err := s.Read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Cleanup deletes the record for name. A missing record is not an error.
// It reports whether a record was actually removed.
func (s *Store) Cleanup(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Records", "No record for %s in %s", name, s.dir)
			return false, nil
		}
		return false, fmt.Errorf("failed to delete record %s: %w", path, err)
	}

	logging.Info("Records", "Deleted record %s from %s", name, s.dir)
	return true, nil
}
