package codec

import (
	"path/filepath"
	"strings"
	"sync"
)

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or extension
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Codec),
	}
}

var defaultRegistry = NewRegistry()

// Register registers a codec using both its name and extension
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or extension
func Get(nameOrExt string) (Codec, error) {
	return defaultRegistry.Get(nameOrExt)
}

// ForPath retrieves the codec registered for the extension of path
func ForPath(path string) (Codec, error) {
	return defaultRegistry.ForPath(path)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec using both its name and extension
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	r.codecs[strings.ToLower(codec.Extension())] = codec
}

// Get retrieves a codec by name or extension
func (r *Registry) Get(nameOrExt string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[nameOrExt]
	if !ok {
		codec, ok = r.codecs[strings.ToLower(nameOrExt)]
	}
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// ForPath retrieves the codec registered for the extension of path
func (r *Registry) ForPath(path string) (Codec, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, ErrCodecNotFound
	}
	return r.Get(ext)
}

// List returns all registered codecs (deduplicated)
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Codec]bool)
	codecs := make([]Codec, 0)

	for _, codec := range r.codecs {
		if !seen[codec] {
			seen[codec] = true
			codecs = append(codecs, codec)
		}
	}

	return codecs
}
