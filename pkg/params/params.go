package params

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Store is the manager's parameter table. Names are case-insensitive and the
// spelling first seen for a name is kept for display. Entries are never removed.
type Store struct {
	entries map[string]entry
}

type entry struct {
	name  string
	value string
}

// New creates an empty store
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// FromMap creates a store seeded with the given parameters
func FromMap(values map[string]string) *Store {
	s := New()
	s.Merge(values, true)
	return s
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Set stores value under name, replacing any existing value
func (s *Store) Set(name, value string) {
	k := key(name)
	if k == "" {
		return
	}
	if existing, ok := s.entries[k]; ok {
		existing.value = value
		s.entries[k] = existing
		return
	}
	s.entries[k] = entry{name: strings.TrimSpace(name), value: value}
}

// SetIfAbsent stores value only when name is not yet present.
// It reports whether the value was stored.
func (s *Store) SetIfAbsent(name, value string) bool {
	k := key(name)
	if k == "" {
		return false
	}
	if _, ok := s.entries[k]; ok {
		return false
	}
	s.entries[k] = entry{name: strings.TrimSpace(name), value: value}
	return true
}

// Merge copies values into the store and returns the number of entries written.
// With overwrite false, names already present keep their current value.
func (s *Store) Merge(values map[string]string, overwrite bool) int {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		if overwrite {
			if key(name) == "" {
				continue
			}
			s.Set(name, values[name])
			written++
			continue
		}
		if s.SetIfAbsent(name, values[name]) {
			written++
		}
	}
	return written
}

// Get returns the value for name
func (s *Store) Get(name string) (string, bool) {
	e, ok := s.entries[key(name)]
	return e.value, ok
}

// Has reports whether name is present
func (s *Store) Has(name string) bool {
	_, ok := s.entries[key(name)]
	return ok
}

// GetString returns the value for name, or def when absent or blank
func (s *Store) GetString(name, def string) string {
	v, ok := s.Get(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// GetBool parses the value for name as a boolean, returning def when absent
// or unparsable
func (s *Store) GetBool(name string, def bool) bool {
	v, ok := s.Get(name)
	if !ok {
		return def
	}
	b, err := ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// GetInt parses the value for name as an integer, returning def when absent
// or unparsable
func (s *Store) GetInt(name string, def int) int {
	v, ok := s.Get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetFloat parses the value for name as a float, returning def when absent
// or unparsable
func (s *Store) GetFloat(name string, def float64) float64 {
	v, ok := s.Get(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// Len returns the number of parameters
func (s *Store) Len() int {
	return len(s.entries)
}

// Names returns the display names of all parameters, sorted case-insensitively
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.name)
	}
	sort.Slice(names, func(i, j int) bool {
		return key(names[i]) < key(names[j])
	})
	return names
}

// Snapshot returns a copy of the parameters keyed by display name
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		out[e.name] = e.value
	}
	return out
}

// Equal reports whether both stores hold the same names and values.
// Name comparison is case-insensitive.
func (s *Store) Equal(other *Store) bool {
	if other == nil || len(s.entries) != len(other.entries) {
		return false
	}
	for k, e := range s.entries {
		o, ok := other.entries[k]
		if !ok || o.value != e.value {
			return false
		}
	}
	return true
}

// ParseBool accepts true/false, yes/no, on/off and 1/0, case-insensitively
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1", "y", "t":
		return true, nil
	case "false", "no", "off", "0", "n", "f":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %q", v)
}
