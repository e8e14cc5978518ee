package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
)

// DefaultFileName is the settings file written next to the burn-in engine.
const DefaultFileName = "burnin_web_settings.json"

// Store persists burn-in settings.
type Store interface {
	// Load returns the stored settings. found is false when nothing has been
	// saved yet; that is not an error.
	Load(ctx context.Context) (settings overlay.Settings, found bool, err error)
	Save(ctx context.Context, settings overlay.Settings) error
	Path() string
}

// FileStore keeps settings in a single JSON file. Reads accept comments and
// trailing commas; writes go to a temporary file that is renamed over the
// target so readers never see a partial document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the settings file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the settings file.
func (s *FileStore) Load(ctx context.Context) (overlay.Settings, bool, error) {
	if err := ctx.Err(); err != nil {
		return overlay.Settings{}, false, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return overlay.DefaultSettings(), false, nil
	}
	if err != nil {
		return overlay.Settings{}, false, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	settings, err := overlay.DecodeSettings(jsonc.ToJSON(data))
	if err != nil {
		return overlay.Settings{}, false, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	return settings, true, nil
}

// Save writes settings as indented JSON.
func (s *FileStore) Save(ctx context.Context, settings overlay.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if settings.Elements == nil {
		settings.Elements = []overlay.Element{}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode settings: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: create %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}
