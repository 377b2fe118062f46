package config

import (
	"sync"
)

const (
	// SectionIDMemory is the identifier for the memory settings section
	SectionIDMemory = "memory"

	// DefaultMaxFacts is the default cap on facts extracted per exchange
	DefaultMaxFacts = 3
)

// MemorySection manages long-term memory subsystem settings.
type MemorySection struct {
	Dir      string // store directory; empty means ~/.recall/memory
	MaxFacts int    // maximum facts extracted per exchange
	Disabled bool   // disable the memory pipeline entirely
	mu       sync.RWMutex
}

// NewMemorySection creates a new memory section with default settings.
func NewMemorySection() *MemorySection {
	return &MemorySection{
		MaxFacts: DefaultMaxFacts,
	}
}

// ID returns the section identifier.
func (s *MemorySection) ID() string {
	return SectionIDMemory
}

// Title returns the section title.
func (s *MemorySection) Title() string {
	return "Memory Settings"
}

// Description returns the section description.
func (s *MemorySection) Description() string {
	return "Configure the long-term memory store. dir is the store directory; max_facts caps how many facts one exchange may contribute; disabled turns the pipeline off."
}

// Data returns the current configuration data.
func (s *MemorySection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"dir":       s.Dir,
		"max_facts": s.MaxFacts,
		"disabled":  s.Disabled,
	}
}

// SetData updates the configuration from the provided data.
func (s *MemorySection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir, ok := data["dir"].(string); ok {
		s.Dir = dir
	}

	// JSON numbers decode as float64
	if maxFacts, ok := data["max_facts"].(float64); ok && maxFacts > 0 {
		s.MaxFacts = int(maxFacts)
	}

	if disabled, ok := data["disabled"].(bool); ok {
		s.Disabled = disabled
	}

	return nil
}

// GetDir returns the configured store directory.
func (s *MemorySection) GetDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dir
}

// GetMaxFacts returns the per-exchange fact cap.
func (s *MemorySection) GetMaxFacts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.MaxFacts <= 0 {
		return DefaultMaxFacts
	}
	return s.MaxFacts
}

// IsDisabled returns true if the memory pipeline is disabled.
func (s *MemorySection) IsDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Disabled
}
