package asset

import (
	"fmt"
	"sync"
)

type registryKey struct {
	id     AssetID
	symbol string
}

// Registry is a thread-safe registry of known assets.
// Entries are keyed by (AssetID, symbol) because a single token contract
// can back more than one reward stream.
type Registry struct {
	byKey    map[registryKey]*Asset
	bySymbol map[string][]*Asset // symbol -> assets (can have multiple on different chains)
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:    make(map[registryKey]*Asset),
		bySymbol: make(map[string][]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if the same asset is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}
	if !r.tryRegister(a) {
		panic(fmt.Sprintf("asset: %s/%s already registered", a.ID(), a.Symbol()))
	}
}

// Ensure registers a if absent and returns the registered instance.
func (r *Registry) Ensure(a *Asset) *Asset {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.RLock()
	existing, ok := r.byKey[registryKey{a.ID(), a.Symbol()}]
	r.mu.RUnlock()
	if ok {
		return existing
	}

	r.tryRegister(a)
	return r.mustLookup(a.ID(), a.Symbol())
}

func (r *Registry) tryRegister(a *Asset) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{a.ID(), a.Symbol()}
	if _, exists := r.byKey[key]; exists {
		return false
	}

	r.byKey[key] = a
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
	return true
}

func (r *Registry) mustLookup(id AssetID, symbol string) *Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[registryKey{id, symbol}]
}

// GetBySymbolAndChain retrieves an asset by symbol and chain ID.
func (r *Registry) GetBySymbolAndChain(symbol string, chainID uint64) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.bySymbol[symbol] {
		if a.ChainID() == chainID {
			return a, true
		}
	}
	return nil, false
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}
