package persona

// Store exposes persona retrieval for handlers and services.
type Store interface {
	List() []Persona
	FindByType(personaType string) (Persona, bool)
}

// MemoryStore implements Store over a fixed slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns a copy of the personas.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByType looks up a persona by its type key.
func (s *MemoryStore) FindByType(personaType string) (Persona, bool) {
	for _, item := range s.items {
		if item.Type == personaType {
			return item, true
		}
	}
	return Persona{}, false
}
