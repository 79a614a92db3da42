package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when a profile id does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrLastProfile is returned when deleting the only profile.
	ErrLastProfile = errors.New("cannot delete the last profile")
)

// Document is the persisted profile set plus the active profile id
type Document struct {
	ActiveID string     `yaml:"active_id"`
	Profiles []*Profile `yaml:"profiles"`
}

// Store persists the profile document between runs
type Store interface {
	// Load reads the document. A missing store yields an empty document,
	// not an error.
	Load() (*Document, error)

	// Save writes the document
	Save(*Document) error
}

// FileStore persists the document as a YAML file under a directory
type FileStore struct {
	path string
}

// NewFileStore creates a store writing dir/profiles.yaml
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "profiles.yaml")}
}

// Load reads and parses the document file
func (s *FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return &doc, nil
}

// Save writes the document file, creating the directory if needed.
// The write goes through a temp file so a crash cannot corrupt the
// existing document.
func (s *FileStore) Save(doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace profiles: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store. Test double.
type MemStore struct {
	Doc *Document
}

// Load returns the stored document or an empty one
func (m *MemStore) Load() (*Document, error) {
	if m.Doc == nil {
		return &Document{}, nil
	}
	return m.Doc, nil
}

// Save keeps the document in memory
func (m *MemStore) Save(doc *Document) error {
	m.Doc = doc
	return nil
}
