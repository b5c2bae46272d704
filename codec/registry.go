package codec

import (
	"sort"
	"sync"
)

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or media type
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

var defaultRegistry = NewRegistry()

// Register registers a codec using both its name and media type
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or media type
func Get(nameOrMediaType string) (Codec, error) {
	return defaultRegistry.Get(nameOrMediaType)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Detect returns the registered codec whose signature matches data
func Detect(data []byte) (Codec, error) {
	return defaultRegistry.Detect(data)
}

// Register registers a codec using both its name and media type
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	r.codecs[codec.MediaType()] = codec
}

// Get retrieves a codec by name or media type
func (r *Registry) Get(nameOrMediaType string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[nameOrMediaType]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// List returns all registered codecs (deduplicated, ordered by name)
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

	sort.Slice(codecs, func(i, j int) bool {
		return codecs[i].Name() < codecs[j].Name()
	})
	return codecs
}

// Detect returns the first codec, in name order, that recognizes data
func (r *Registry) Detect(data []byte) (Codec, error) {
	for _, codec := range r.List() {
		if codec.Recognize(data) {
			return codec, nil
		}
	}
	return nil, ErrCodecNotFound
}
