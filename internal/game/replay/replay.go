// Package replay records the lifecycle events of an effect player so a resolution can
// be stepped through or compared after the fact.
package replay

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/magefree/effect-engine/internal/game/rules"
)

// Entry is one recorded engine event.
type Entry struct {
	Seq         int
	Type        rules.EventType
	EffectID    string
	Description string
	Kind        string
	Stage       string
	Reason      rules.DropReason
	Depth       int
	Source      string
	Target      string
	Timestamp   time.Time
}

// EntryFromEvent flattens event into an entry. Source and target are kept by their
// printed form.
func EntryFromEvent(event rules.Event) Entry {
	return Entry{
		Type:        event.Type,
		EffectID:    event.EffectID,
		Description: event.Description,
		Kind:        event.Kind,
		Stage:       event.Stage,
		Reason:      event.Reason,
		Depth:       event.Depth,
		Source:      describe(event.Source),
		Target:      describe(event.Target),
		Timestamp:   event.Timestamp,
	}
}

func describe(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Replay is the event log of one scene with a playback cursor.
type Replay struct {
	SceneID string

	mu      sync.RWMutex
	entries []Entry
	cursor  int
}

// New creates an empty replay.
func New(sceneID string) *Replay {
	return &Replay{SceneID: sceneID}
}

// Record appends an entry, numbering it.
func (r *Replay) Record(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.Seq = len(r.entries)
	r.entries = append(r.entries, entry)
}

// Start rewinds the cursor.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = 0
}

// Next returns the entry under the cursor and advances it.
func (r *Replay) Next() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor >= len(r.entries) {
		return Entry{}, false
	}
	e := r.entries[r.cursor]
	r.cursor++
	return e, true
}

// Previous steps the cursor back and returns the entry there.
func (r *Replay) Previous() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor == 0 {
		return Entry{}, false
	}
	r.cursor--
	return r.entries[r.cursor], true
}

// Skip moves the cursor by count, clamped to the log.
func (r *Replay) Skip(count int) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return Entry{}, false
	}
	r.cursor = min(max(r.cursor+count, 0), len(r.entries)-1)
	return r.entries[r.cursor], true
}

// Size returns the number of entries.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// At returns the entry at index.
func (r *Replay) At(index int) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[index], true
}

// Entries returns a copy of the log.
func (r *Replay) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

const formatVersion = 1

type metadata struct {
	SceneID    string
	Timestamp  time.Time
	Version    int
	EntryCount int
}

func fileName(directory, sceneID string) string {
	return filepath.Join(directory, sceneID+".replay")
}

// SaveToFile writes the replay to <directory>/<scene>.replay, gzipped.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fileName(directory, r.SceneID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)

	meta := metadata{
		SceneID:    r.SceneID,
		Timestamp:  time.Now(),
		Version:    formatVersion,
		EntryCount: len(r.entries),
	}
	if err := encoder.Encode(&meta); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range r.entries {
		if err := encoder.Encode(&r.entries[i]); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadFromFile reads a replay written by SaveToFile.
func LoadFromFile(directory, sceneID string) (*Replay, error) {
	file, err := os.Open(fileName(directory, sceneID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)
	var meta metadata
	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}

	r := New(meta.SceneID)
	r.entries = make([]Entry, 0, meta.EntryCount)
	for i := 0; i < meta.EntryCount; i++ {
		var e Entry
		if err := decoder.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		r.entries = append(r.entries, e)
	}
	return r, nil
}
