package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ErrUnsupportedFormat is returned by Load for file extensions no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger *log.Logger

	modelCache map[string]model.Model
	// sources maps the absolute path of each file-backed entry to its cache key.
	sources map[string]string
	watcher *fsnotify.Watcher

	backend loaderBackend
	gltf    loaderBackend
}

// Loader imports animation assets and keeps them in an explicit, instance-owned cache.
// Cached models are immutable, so evicting an entry never disturbs players still holding it.
type Loader interface {
	// Load imports a model file and caches the result under the cleaned path.
	// A cached model is returned without touching the file.
	//
	// Parameters:
	//   - path: the file path to the model file (.gltf or .glb)
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat for unknown extensions, or the import error
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a stream and caches it under key.
	//
	// Parameters:
	//   - key: the cache key, also used as the model name when the asset has none
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(key string, r io.Reader, isGLB bool) (model.Model, error)

	// Get retrieves a cached model by key. Returns nil if not found.
	Get(key string) model.Model

	// Models returns a snapshot of the cache keyed by name.
	Models() map[string]model.Model

	// Evict drops a cached model so the next Load re-imports it.
	//
	// Returns:
	//   - bool: true if an entry was removed
	Evict(key string) bool

	// Watch evicts file-backed entries when their file is written, created, renamed or removed.
	// It blocks until ctx is done or Close is called.
	//
	// Parameters:
	//   - ctx: cancels the watch
	//
	// Returns:
	//   - error: error if the file watcher could not be started
	Watch(ctx context.Context) error

	// Close evicts every entry and stops a running Watch.
	Close() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the given stream backend and options applied.
// File loads pick their backend from the file extension.
//
// Parameters:
//   - backendType: the backend used by LoadReader (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader with an empty cache, or one seeded by WithModel
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:     common.NopLogger(),
		modelCache: make(map[string]model.Model),
		sources:    make(map[string]string),
		gltf:       newGLTFLoaderBackend(),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = l.gltf
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	key := filepath.Clean(path)

	l.mu.RLock()
	if cached, ok := l.modelCache[key]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(key)
	if err != nil {
		return nil, err
	}

	m, err := backend.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	abs, err := filepath.Abs(key)
	if err != nil {
		abs = key
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		return cached, nil
	}
	l.modelCache[key] = m
	l.sources[abs] = key
	if l.watcher != nil {
		if err := l.watcher.Add(filepath.Dir(abs)); err != nil {
			l.logger.Error("failed to watch model directory", "path", abs, "err", err)
		}
	}

	l.logger.Info("model loaded", "key", key, "model", m.Name())
	l.logger.Debug("model stats", "key", key,
		"nodes", m.Skeleton().NodeCount(),
		"bones", m.Skeleton().BoneCount(),
		"clips", m.AnimationCount())
	return m, nil
}

func (l *loader) LoadReader(key string, r io.Reader, isGLB bool) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[key]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if l.backend == nil {
		return nil, fmt.Errorf("%w: no stream backend configured", ErrUnsupportedFormat)
	}

	m, err := l.backend.LoadReader(key, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		return cached, nil
	}
	l.modelCache[key] = m
	l.logger.Info("model loaded", "key", key, "model", m.Name())
	return m, nil
}

func (l *loader) Get(key string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[key]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.modelCache)
}

func (l *loader) Evict(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evictLocked(key)
}

// evictLocked removes key and its source path. l.mu must be held for writing.
func (l *loader) evictLocked(key string) bool {
	if _, ok := l.modelCache[key]; !ok {
		return false
	}
	delete(l.modelCache, key)
	for abs, k := range l.sources {
		if k == key {
			delete(l.sources, abs)
		}
	}
	l.logger.Info("model evicted", "key", key)
	return true
}

func (l *loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key := range l.modelCache {
		l.evictLocked(key)
	}

	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	l.watcher = nil
	if err != nil {
		return fmt.Errorf("failed to close model watcher: %w", err)
	}
	return nil
}

// resolveBackend selects a loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.gltf, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
