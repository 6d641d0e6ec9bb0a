// Package di provides a small lazy dependency injection container with
// type-safe tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves registered services by name.
type ServiceRegistry interface {
	Get(name string) any
	Has(name string) bool
}

// Container is a ServiceRegistry that also accepts registrations.
type Container interface {
	ServiceRegistry
	Register(name string, instance any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	factory  func(ServiceRegistry) any
	instance any
	once     sync.Once
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		entries: make(map[string]*entry),
	}
}

// Register stores an already-built instance.
func (c *container) Register(name string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{instance: instance}
	e.once.Do(func() {})
	c.entries[name] = e
}

// RegisterFactory stores a factory that is invoked once, on first Get.
func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = &entry{factory: factory}
}

// Get resolves a service, building it on first access.
// Panics if the name was never registered.
func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	e.once.Do(func() {
		e.instance = e.factory(c)
	})

	return e.instance
}

// Has reports whether a service name is registered.
func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[name]
	return ok
}

// Token is a typed service key.
type Token[T any] struct {
	name string
}

// NewToken creates a token for a service of type T.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registration name.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory under the token's name.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	v := sr.Get(token.name)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has type %T", token.name, v))
	}
	return typed
}
