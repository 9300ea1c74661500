// Package profile persists the user's saved connection profiles in a
// local yaml file. The registries never consult it; callers pass full
// configurations to connect. It only feeds the presentation layer's
// connection picker.
package profile

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dbdeck/dbdeck/internal/core"
)

// Profile is one saved connection.
type Profile struct {
	// Name is the unique display name of the profile.
	Name string `yaml:"name" json:"name"`

	// Kind selects which config field is populated.
	Kind core.SessionKind `yaml:"kind" json:"kind"`

	// Database is set for relational profiles.
	Database *core.DatabaseConfig `yaml:"database,omitempty" json:"database,omitempty"`

	// KV is set for key-value profiles.
	KV *core.KVConfig `yaml:"kv,omitempty" json:"kv,omitempty"`
}

// Store reads and writes the profile file. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store over the given file path. The file is created
// on the first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns every saved profile. A missing file yields an empty list.
func (s *Store) List() ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add saves a profile, replacing any existing profile with the same name.
func (s *Store) Add(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	switch p.Kind {
	case core.KindRelational:
		if p.Database == nil {
			return fmt.Errorf("relational profile %q has no database config", p.Name)
		}
	case core.KindKeyValue:
		if p.KV == nil {
			return fmt.Errorf("key-value profile %q has no kv config", p.Name)
		}
	default:
		return fmt.Errorf("unknown profile kind: %q", p.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range profiles {
		if profiles[i].Name == p.Name {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}
	return s.save(profiles)
}

// Remove deletes a profile by name. Removing an absent profile is a
// no-op.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}

	kept := profiles[:0]
	for _, p := range profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(profiles) {
		return nil
	}
	return s.save(kept)
}

func (s *Store) load() ([]Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var profiles []Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) save(profiles []Profile) error {
	data, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}
