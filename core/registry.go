package core

import (
	"context"
	"fmt"
	"sync"

	version "github.com/hashicorp/go-version"
)

// Operation is a callable (method, endpoint) pair.
type Operation struct {
	Key  OperationKey
	Name string
	// MinVersion is the first server version that supports the operation, if known.
	MinVersion *version.Version

	invoke invokeFunc
}

type invokeFunc func(ctx context.Context, op *Operation, opts CallOptions) (*Response, error)

// Call executes the operation.
func (op *Operation) Call(ctx context.Context, opts CallOptions) (*Response, error) {
	return op.invoke(ctx, op, opts)
}

func (op *Operation) String() string {
	return op.Name
}

// Registry maps operation keys and names to operations. Names that were not
// registered up front are decomposed into "{method}_{endpoint}" on first use
// and cached.
type Registry struct {
	mu          sync.RWMutex
	byKey       map[OperationKey]*Operation
	byName      map[string]*Operation
	minVersions map[string]*version.Version
	invoke      invokeFunc
}

func newRegistry(invoke invokeFunc, minVersions map[string]*version.Version) *Registry {
	return &Registry{
		byKey:       make(map[OperationKey]*Operation),
		byName:      make(map[string]*Operation),
		minVersions: minVersions,
		invoke:      invoke,
	}
}

// Register returns the operation for (method, endpoint), creating it if needed.
func (r *Registry) Register(method Method, endpoint string) *Operation {
	key := OperationKey{Method: method, Endpoint: endpoint}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(key, key.Name())
}

func (r *Registry) registerLocked(key OperationKey, name string) *Operation {
	if op, ok := r.byKey[key]; ok {
		// "update_posts" and "patch_posts" share one operation
		if _, named := r.byName[name]; !named {
			r.byName[name] = op
		}
		return op
	}
	op := &Operation{
		Key:        key,
		Name:       name,
		MinVersion: r.minVersions[name],
		invoke:     r.invoke,
	}
	if op.MinVersion == nil {
		op.MinVersion = r.minVersions[key.Name()]
	}
	r.byKey[key] = op
	r.byName[name] = op
	return op
}

// Get returns the operation registered for key.
func (r *Registry) Get(key OperationKey) (*Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.byKey[key]
	return op, ok
}

// Lookup resolves an operation by name, e.g. "get_posts". Unknown names with
// a recognised method prefix are registered on first use.
func (r *Registry) Lookup(name string) (*Operation, error) {
	r.mu.RLock()
	op, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return op, nil
	}

	method, endpoint, ok := splitOperationName(name)
	if !ok {
		return nil, &ConfigError{
			Op:     name,
			Reason: fmt.Sprintf("cannot resolve operation: expected {method}_{endpoint} with method one of %s", knownPrefixes()),
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(OperationKey{Method: method, Endpoint: endpoint}, name), nil
}

// Operations returns the keys of all registered operations, sorted.
func (r *Registry) Operations() []OperationKey {
	r.mu.RLock()
	keys := make([]OperationKey, 0, len(r.byKey))
	for key := range r.byKey {
		keys = append(keys, key)
	}
	r.mu.RUnlock()
	sortKeys(keys)
	return keys
}

func knownPrefixes() string {
	return "get, post, put, patch, delete, head, options, update"
}
