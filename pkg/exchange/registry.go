package exchange

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"userstream/pkg/core"
)

// Registry is a thread-safe in-memory StreamRegistry.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]core.Credentials
}

// NewRegistry creates and returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		streams: make(map[string]core.Credentials),
	}
}

// NewStreamID returns a random stream identifier.
func NewStreamID() string {
	return uuid.NewString()
}

// Add registers creds under a fresh stream id and returns the id.
func (r *Registry) Add(creds core.Credentials) string {
	id := NewStreamID()
	r.Register(id, creds)
	return id
}

// Register stores creds under streamID.
// If the stream already exists, it will be overwritten.
func (r *Registry) Register(streamID string, creds core.Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[streamID] = creds
}

// SetListenKey records the listen key of an existing stream.
func (r *Registry) SetListenKey(streamID, listenKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	creds, exists := r.streams[streamID]
	if !exists {
		return unknownStream(streamID)
	}
	creds.ListenKey = listenKey
	r.streams[streamID] = creds
	return nil
}

// StreamCredentials implements StreamRegistry.
func (r *Registry) StreamCredentials(streamID string) (core.Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creds, exists := r.streams[streamID]
	if !exists {
		return core.Credentials{}, unknownStream(streamID)
	}
	return creds, nil
}

// IDs returns the registered stream ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered streams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

// Unregister removes a stream.
func (r *Registry) Unregister(streamID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, streamID)
}

// Clear removes all streams.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = make(map[string]core.Credentials)
}

// Exists checks whether streamID is registered.
func (r *Registry) Exists(streamID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.streams[streamID]
	return exists
}

func unknownStream(streamID string) error {
	return core.NewError(core.ErrorTypeUnknownStream, "stream is not registered").
		WithOp("registry").
		WithStream(streamID)
}
