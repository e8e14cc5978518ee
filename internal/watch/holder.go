package watch

import (
	"sync/atomic"
	"time"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
)

// Snapshot is one loaded version of the preview metadata file.
type Snapshot struct {
	Path     string
	Timeline metadata.Timeline
	LoadedAt time.Time
}

// Holder publishes the latest Snapshot to concurrent readers.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Store replaces the current snapshot.
func (h *Holder) Store(s Snapshot) {
	h.current.Store(&s)
}

// Load returns the current snapshot, if any has been stored.
func (h *Holder) Load() (Snapshot, bool) {
	s := h.current.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// Timeline returns the current timeline, or an empty one.
func (h *Holder) Timeline() (metadata.Timeline, bool) {
	s, ok := h.Load()
	if !ok {
		return metadata.Timeline{}, false
	}
	return s.Timeline, true
}
