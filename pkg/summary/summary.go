package summary

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one line of the run summary
type Entry struct {
	Time    time.Time
	Level   zerolog.Level
	Message string
	Fields  map[string]string
}

// Summary collects the notable outcomes of a manager run, such as which
// plugin classes were loaded, for writing next to the job results.
type Summary struct {
	mu      sync.Mutex
	runID   string
	entries []Entry
	now     func() time.Time
}

// New creates an empty summary for a run
func New(runID string) *Summary {
	return &Summary{runID: runID, now: time.Now}
}

// RunID returns the run identifier
func (s *Summary) RunID() string {
	return s.runID
}

// Add appends an entry. fields are key/value pairs; an odd trailing key is ignored.
func (s *Summary) Add(level zerolog.Level, msg string, fields ...string) {
	e := Entry{
		Time:    s.now(),
		Level:   level,
		Message: msg,
	}
	if len(fields) >= 2 {
		e.Fields = make(map[string]string, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			e.Fields[fields[i]] = fields[i+1]
		}
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// Entries returns a copy of the collected entries
func (s *Summary) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries
func (s *Summary) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// WriteFile appends the entries to path as JSON lines
func (s *Summary) WriteFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open summary file: %w", err)
	}
	defer f.Close()

	w := zerolog.New(f)
	for _, e := range s.Entries() {
		ev := w.WithLevel(e.Level).
			Time("time", e.Time).
			Str("run_id", s.runID)
		for k, v := range e.Fields {
			ev = ev.Str(k, v)
		}
		ev.Msg(e.Message)
	}
	return f.Sync()
}
