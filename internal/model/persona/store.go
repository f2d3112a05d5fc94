package persona

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPersonaNotFound is returned when a persona id is unknown.
var ErrPersonaNotFound = errors.New("persona not found")

// Store exposes persona retrieval for handlers and the simulation runner.
type Store interface {
	Clients() []ClientProfile
	Therapists() []TherapistProfile
	FindClient(id string) (ClientProfile, bool)
	FindTherapist(id string) (TherapistProfile, bool)
}

// MemoryStore implements Store with in-memory slices.
type MemoryStore struct {
	clients    []ClientProfile
	therapists []TherapistProfile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(clients []ClientProfile, therapists []TherapistProfile) *MemoryStore {
	return &MemoryStore{
		clients:    append([]ClientProfile(nil), clients...),
		therapists: append([]TherapistProfile(nil), therapists...),
	}
}

// Clients returns the client list.
func (s *MemoryStore) Clients() []ClientProfile {
	return append([]ClientProfile(nil), s.clients...)
}

// Therapists returns the therapist list.
func (s *MemoryStore) Therapists() []TherapistProfile {
	return append([]TherapistProfile(nil), s.therapists...)
}

// FindClient looks up a client by identifier. The returned profile is a deep copy.
func (s *MemoryStore) FindClient(id string) (ClientProfile, bool) {
	for _, item := range s.clients {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return ClientProfile{}, false
}

// FindTherapist looks up a therapist by identifier.
func (s *MemoryStore) FindTherapist(id string) (TherapistProfile, bool) {
	for _, item := range s.therapists {
		if item.ID == id {
			return item, true
		}
	}
	return TherapistProfile{}, false
}

// LoadClients reads client profiles from a JSON or YAML file. The file may hold
// a single profile or a list. Profiles without an ID get "<file>-<index>".
func LoadClients(path string) ([]ClientProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client data: %w", err)
	}

	var profiles []ClientProfile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &profiles); err != nil {
			var single ClientProfile
			if errSingle := yaml.Unmarshal(raw, &single); errSingle != nil {
				return nil, fmt.Errorf("parse client data %s: %w", path, err)
			}
			profiles = []ClientProfile{single}
		}
	default:
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "{") {
			var single ClientProfile
			if err := json.Unmarshal(raw, &single); err != nil {
				return nil, fmt.Errorf("parse client data %s: %w", path, err)
			}
			profiles = []ClientProfile{single}
		} else if err := json.Unmarshal(raw, &profiles); err != nil {
			return nil, fmt.Errorf("parse client data %s: %w", path, err)
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := range profiles {
		if profiles[i].ID == "" {
			profiles[i].ID = fmt.Sprintf("%s-%d", base, i)
		}
		if profiles[i].AgentType == "" {
			profiles[i].AgentType = "consistentmi"
		}
	}
	return profiles, nil
}
