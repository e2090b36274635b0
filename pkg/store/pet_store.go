package store

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"furrykids/pkg/domain"
)

// ErrPetNotFound indicates the referenced pet is not in the store.
var ErrPetNotFound = errors.New("pet not found")

// PetUpdate carries partial profile edits; nil fields are left untouched.
type PetUpdate struct {
	Name      *string
	Avatar    *string
	Signature *string
	Mood      *string
	Status    *domain.PetStatus
}

// PetStore owns the pet roster and the currently selected pet.
type PetStore struct {
	logger *slog.Logger
	obs    observers

	mu      sync.Mutex
	pets    []domain.Pet
	current int
}

// NewPetStore seeds the store. An empty seed list gets the sample roster;
// the first pet starts selected.
func NewPetStore(pets []domain.Pet, logger *slog.Logger) *PetStore {
	if logger == nil {
		logger = slog.Default()
	}
	if len(pets) == 0 {
		pets = domain.SamplePets()
	}
	owned := make([]domain.Pet, len(pets))
	copy(owned, pets)
	return &PetStore{logger: logger, pets: owned}
}

// Subscribe registers a callback invoked synchronously after each mutation.
func (s *PetStore) Subscribe(fn func()) {
	s.obs.subscribe(fn)
}

// CurrentPet returns a copy of the selected pet.
func (s *PetStore) CurrentPet() domain.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePet(s.pets[s.current])
}

// Pets returns a copy of the roster.
func (s *PetStore) Pets() []domain.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Pet, len(s.pets))
	for i, p := range s.pets {
		out[i] = clonePet(p)
	}
	return out
}

// SetCurrentPet selects a pet by ID.
func (s *PetStore) SetCurrentPet(id uuid.UUID) error {
	s.mu.Lock()
	for i, p := range s.pets {
		if p.ID == id {
			s.current = i
			s.mu.Unlock()
			s.obs.notify()
			return nil
		}
	}
	s.mu.Unlock()
	return ErrPetNotFound
}

// UpdatePet applies a partial edit to the selected pet.
func (s *PetStore) UpdatePet(update PetUpdate) {
	s.mu.Lock()
	pet := &s.pets[s.current]
	if update.Name != nil {
		pet.Name = *update.Name
	}
	if update.Avatar != nil {
		pet.Avatar = *update.Avatar
	}
	if update.Signature != nil {
		pet.Signature = *update.Signature
	}
	if update.Mood != nil {
		pet.Mood = *update.Mood
	}
	if update.Status != nil {
		pet.Status = *update.Status
	}
	s.mu.Unlock()
	s.obs.notify()
}

// UpdateMood sets the selected pet's mood tag.
func (s *PetStore) UpdateMood(mood string) {
	s.UpdatePet(PetUpdate{Mood: &mood})
}

// AddExperience grants experience to the selected pet. Negative amounts
// are ignored so experience never drops below zero. A single level-up
// check runs per call: leftover experience above the new cap waits for
// the next grant.
func (s *PetStore) AddExperience(amount int) {
	if amount < 0 {
		return
	}
	s.mu.Lock()
	pet := &s.pets[s.current]
	pet.Experience += amount
	if pet.Experience >= pet.ExperienceCap {
		pet.Level++
		pet.Experience -= pet.ExperienceCap
		pet.ExperienceCap = int(float64(pet.ExperienceCap) * 1.5)
		s.logger.Debug("pet leveled up", "pet", pet.Name, "level", pet.Level, "cap", pet.ExperienceCap)
	}
	s.mu.Unlock()
	s.obs.notify()
}

func clonePet(p domain.Pet) domain.Pet {
	out := p
	out.Personality = append([]string(nil), p.Personality...)
	return out
}
