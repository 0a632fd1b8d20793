package replay

import (
	"fmt"
	"sync"

	"github.com/magefree/effect-engine/internal/game/rules"
	"go.uber.org/zap"
)

// Recorder records the event bus of every attached scene.
type Recorder struct {
	logger  *zap.Logger
	saveDir string

	mu        sync.RWMutex
	replays   map[string]*Replay
	listeners map[string]listener
}

type listener struct {
	bus    *rules.EventBus
	handle int
}

// NewRecorder creates a recorder saving under saveDir.
func NewRecorder(logger *zap.Logger, saveDir string) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		logger:    logger,
		saveDir:   saveDir,
		replays:   make(map[string]*Replay),
		listeners: make(map[string]listener),
	}
}

// Attach starts recording bus as sceneID, replacing any earlier recording of it.
func (rr *Recorder) Attach(sceneID string, bus *rules.EventBus) *Replay {
	r := New(sceneID)
	handle := bus.Subscribe(func(e rules.Event) { r.Record(EntryFromEvent(e)) })

	rr.mu.Lock()
	if old, ok := rr.listeners[sceneID]; ok {
		old.bus.Unsubscribe(old.handle)
	}
	rr.replays[sceneID] = r
	rr.listeners[sceneID] = listener{bus: bus, handle: handle}
	rr.mu.Unlock()

	rr.logger.Info("started replay recording", zap.String("scene", sceneID))
	return r
}

// Detach stops recording sceneID and keeps what was recorded.
func (rr *Recorder) Detach(sceneID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if l, ok := rr.listeners[sceneID]; ok {
		l.bus.Unsubscribe(l.handle)
		delete(rr.listeners, sceneID)
		rr.logger.Info("stopped replay recording", zap.String("scene", sceneID))
	}
}

// IsRecording reports whether sceneID is attached.
func (rr *Recorder) IsRecording(sceneID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	_, ok := rr.listeners[sceneID]
	return ok
}

// Get returns the replay of sceneID.
func (rr *Recorder) Get(sceneID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	r, ok := rr.replays[sceneID]
	return r, ok
}

// Save detaches sceneID, writes its replay to disk and forgets it.
func (rr *Recorder) Save(sceneID string) error {
	rr.Detach(sceneID)

	rr.mu.Lock()
	r, ok := rr.replays[sceneID]
	delete(rr.replays, sceneID)
	rr.mu.Unlock()
	if !ok {
		return fmt.Errorf("no replay found for scene %s", sceneID)
	}

	if err := r.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	rr.logger.Info("saved replay to disk",
		zap.String("scene", sceneID),
		zap.Int("entries", r.Size()),
		zap.String("directory", rr.saveDir))
	return nil
}

// Load reads a saved replay.
func (rr *Recorder) Load(sceneID string) (*Replay, error) {
	r, err := LoadFromFile(rr.saveDir, sceneID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk", zap.String("scene", sceneID), zap.Int("entries", r.Size()))
	return r, nil
}

// Clear detaches sceneID and drops its replay without saving.
func (rr *Recorder) Clear(sceneID string) {
	rr.Detach(sceneID)
	rr.mu.Lock()
	delete(rr.replays, sceneID)
	rr.mu.Unlock()
	rr.logger.Debug("cleared replay from memory", zap.String("scene", sceneID))
}
