package compress

import (
	"strings"
	"sync"
)

// Type identifies a compression algorithm in handshake negotiation.
type Type int

// Known compression types. None means no compressor is applied.
const (
	None    Type = 0
	Zstd    Type = 1
	LZ4     Type = 2
	Deflate Type = 3
)

// Compressor is a per-session compression context. The registered
// prototype acts as a factory: Create returns a fresh instance with its
// own internal state, or nil when the backend cannot be initialized.
//
// Compress and Decompress return nil on failure. Instances are not safe
// for concurrent use; each session owns its own.
type Compressor interface {
	Name() string
	Type() Type
	Create() Compressor

	Compress(src []byte) []byte
	Decompress(src []byte) []byte
}

// Registry maps compressor names to types and holds the prototype for each
// registered algorithm. Registration happens at startup; lookups afterwards
// are read-only and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []Type
	names  map[string]Type
	protos map[Type]Compressor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names:  make(map[string]Type),
		protos: make(map[Type]Compressor),
	}
}

// Register adds a prototype. Registration order determines the order of
// names advertised in the handshake. Re-registering a type replaces the
// prototype but keeps its original position.
func (r *Registry) Register(proto Compressor) {
	if proto.Name() == "" {
		panic("compress: empty compressor name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.protos[proto.Type()]; !ok {
		r.order = append(r.order, proto.Type())
	}
	r.names[proto.Name()] = proto.Type()
	r.protos[proto.Type()] = proto
}

// Supported returns the registered names joined with ";" in registration
// order. An empty string means no compression is available.
func (r *Registry) Supported() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, t := range r.order {
		names = append(names, r.protos[t].Name())
	}

	return strings.Join(names, ";")
}

// SupportedOf returns the names of the given types joined with ";" in the
// given order. Unregistered types are skipped.
func (r *Registry) SupportedOf(types []Type) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(types))
	for _, t := range types {
		if proto, ok := r.protos[t]; ok {
			names = append(names, proto.Name())
		}
	}

	return strings.Join(names, ";")
}

// TypesOf parses a ";"-separated name list and returns the types of the
// locally registered names, preserving the list order. Unknown names are
// skipped.
func (r *Registry) TypesOf(message string) []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []Type
	for _, name := range strings.Split(message, ";") {
		if t, ok := r.names[name]; ok {
			types = append(types, t)
		}
	}

	return types
}

// New returns a fresh per-session instance of the given type, or nil when
// the type is not registered or the backend fails to initialize.
func (r *Registry) New(t Type) Compressor {
	r.mu.RLock()
	proto, ok := r.protos[t]
	r.mu.RUnlock()

	if !ok {
		return nil
	}

	return proto.Create()
}

var defaultRegistry = NewRegistry()

func init() {
	Register(&zstdCompressor{})
	Register(&lz4Compressor{})
	Register(&deflateCompressor{})
}

// Register adds a prototype to the process-wide registry.
func Register(proto Compressor) { defaultRegistry.Register(proto) }

// Supported returns the process-wide registry's advertised name list.
func Supported() string { return defaultRegistry.Supported() }

// SupportedOf filters the given types through the process-wide registry.
func SupportedOf(types []Type) string { return defaultRegistry.SupportedOf(types) }

// TypesOf parses a handshake name list against the process-wide registry.
func TypesOf(message string) []Type { return defaultRegistry.TypesOf(message) }

// New creates a per-session compressor from the process-wide registry.
func New(t Type) Compressor { return defaultRegistry.New(t) }
