package mapping

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gobeam/stringy"

	"github.com/roach88/reqkey/internal/reqerr"
)

// Resolver resolves a type to its mapped table name.
// Implementations must be deterministic and return a reqerr UnmappedType
// error for types they cannot resolve.
type Resolver interface {
	Resolve(t reflect.Type) (string, error)
}

// Tabler is implemented by types that name their own table.
type Tabler interface {
	TableName() string
}

// NamingFunc derives a table name from a Go type name.
type NamingFunc func(typeName string) string

// Identity keeps the Go type name unchanged.
func Identity(typeName string) string { return typeName }

// SnakeCase converts a Go type name to lower snake_case ("OrderLine" → "order_line").
func SnakeCase(typeName string) string {
	return stringy.New(typeName).SnakeCase().ToLower()
}

// NameCache is a Resolver that caches resolved names per type.
//
// Resolution order:
//  1. Names registered with Add
//  2. TableName() on the type (value or pointer receiver)
//  3. The naming function applied to the type name
//
// Thread-safety: NameCache is safe for concurrent use.
type NameCache struct {
	mu     sync.RWMutex
	names  map[reflect.Type]string
	naming NamingFunc
}

// Option configures a NameCache.
type Option func(*NameCache)

// WithNaming sets the naming function used for types without a registered
// or self-declared name.
func WithNaming(fn NamingFunc) Option {
	return func(c *NameCache) {
		if fn != nil {
			c.naming = fn
		}
	}
}

// NewNameCache creates a NameCache. The default naming is Identity.
func NewNameCache(opts ...Option) *NameCache {
	c := &NameCache{
		names:  make(map[reflect.Type]string),
		naming: Identity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers an explicit name for t, overriding any derived name.
func (c *NameCache) Add(t reflect.Type, name string) error {
	if t == nil {
		return reqerr.InvalidArgument("cannot map a nil type")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return reqerr.InvalidArgument("mapped name for %s is empty", t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[deref(t)] = name
	return nil
}

// Resolve returns the mapped name for t.
func (c *NameCache) Resolve(t reflect.Type) (string, error) {
	if t == nil {
		return "", reqerr.UnmappedType("<nil>", errors.New("nil type"))
	}
	t = deref(t)

	c.mu.RLock()
	name, ok := c.names[t]
	c.mu.RUnlock()
	if ok {
		return name, nil
	}

	name, err := c.derive(t)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.names[t]; ok {
		return existing, nil
	}
	c.names[t] = name
	return name, nil
}

func (c *NameCache) derive(t reflect.Type) (string, error) {
	tablerType := reflect.TypeOf((*Tabler)(nil)).Elem()
	if reflect.PointerTo(t).Implements(tablerType) {
		name := strings.TrimSpace(reflect.New(t).Interface().(Tabler).TableName())
		if name == "" {
			return "", reqerr.UnmappedType(t.String(), errors.New("TableName returned an empty name"))
		}
		return name, nil
	}

	if t.Kind() != reflect.Struct {
		return "", reqerr.UnmappedType(t.String(), errors.New("only struct types map to tables"))
	}
	if t.Name() == "" {
		return "", reqerr.UnmappedType(t.String(), errors.New("anonymous struct has no name"))
	}

	name := strings.TrimSpace(c.naming(t.Name()))
	if name == "" {
		return "", reqerr.UnmappedType(t.String(), errors.New("naming function returned an empty name"))
	}
	return name, nil
}

// DefaultResolver is the process-wide cache with Identity naming.
var DefaultResolver Resolver = NewNameCache()

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
