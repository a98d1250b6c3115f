// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the scorers available to an evaluation pipeline.
//
// Description:
//
//	The Registry provides a central location for registering and looking up
//	scorers by name, so pipelines can select metrics from configuration
//	without compile-time knowledge of every implementation.
//
// Thread Safety: Safe for concurrent use via read-write mutex.
type Registry struct {
	mu      sync.RWMutex
	scorers map[string]Scorer
	hooks   []RegistrationHook
}

// RegistrationHook is called when a scorer is registered or unregistered.
type RegistrationHook func(name string, scorer Scorer, registered bool)

// NewRegistry creates a new empty registry.
//
// Outputs:
//   - *Registry: The new registry. Never nil.
//
// Example:
//
//	registry := eval.NewRegistry()
//	registry.Register(sdt.NewScorer())
func NewRegistry() *Registry {
	return &Registry{
		scorers: make(map[string]Scorer),
		hooks:   make([]RegistrationHook, 0),
	}
}

// Register adds a scorer to the registry.
//
// Description:
//
//	Registers the scorer under its Name(). The name must be unique
//	within the registry.
//
// Inputs:
//   - scorer: The scorer to register. Must not be nil.
//
// Outputs:
//   - error: nil on success, ErrNilScorer if scorer is nil,
//     ErrAlreadyRegistered if name is already taken.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Register(scorer Scorer) error {
	if scorer == nil {
		return ErrNilScorer
	}

	name := scorer.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scorers[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	r.scorers[name] = scorer

	// Notify hooks
	for _, hook := range r.hooks {
		hook(name, scorer, true)
	}

	return nil
}

// MustRegister registers a scorer and panics on error.
//
// Description:
//
//	Convenience method for registration during initialization.
//	Should only be used during startup, not at runtime.
//
// Inputs:
//   - scorer: The scorer to register. Must not be nil.
//
// Thread Safety: Safe for concurrent use.
//
// Example:
//
//	func init() {
//	    eval.MustRegister(sdt.NewScorer())
//	}
func (r *Registry) MustRegister(scorer Scorer) {
	if err := r.Register(scorer); err != nil {
		panic(fmt.Sprintf("eval: failed to register %v: %v", scorer.Name(), err))
	}
}

// Unregister removes a scorer from the registry.
//
// Inputs:
//   - name: The name of the scorer to unregister.
//
// Outputs:
//   - error: nil on success, ErrNotFound if not registered.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scorer, exists := r.scorers[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	delete(r.scorers, name)

	// Notify hooks
	for _, hook := range r.hooks {
		hook(name, scorer, false)
	}

	return nil
}

// Get retrieves a scorer by name.
//
// Inputs:
//   - name: The name of the scorer to retrieve.
//
// Outputs:
//   - Scorer: The scorer, or nil if not found.
//   - bool: true if found, false otherwise.
//
// Thread Safety: Safe for concurrent use.
//
// Example:
//
//	if scorer, ok := registry.Get("dprime"); ok {
//	    value, err := scorer.Score(labels, predictions)
//	}
func (r *Registry) Get(name string) (Scorer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scorer, exists := r.scorers[name]
	return scorer, exists
}

// MustGet retrieves a scorer by name, panicking if not found.
//
// Inputs:
//   - name: The name of the scorer to retrieve.
//
// Outputs:
//   - Scorer: The scorer. Panics if not found.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) MustGet(name string) Scorer {
	scorer, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("eval: scorer not found: %s", name))
	}
	return scorer
}

// List returns all registered scorer names.
//
// Outputs:
//   - []string: Sorted list of scorer names.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scorers))
	for name := range r.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered scorers.
//
// Outputs:
//   - map[string]Scorer: Copy of the scorers map.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) All() map[string]Scorer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Scorer, len(r.scorers))
	for name, scorer := range r.scorers {
		result[name] = scorer
	}
	return result
}

// Count returns the number of registered scorers.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scorers)
}

// Clear removes all scorers from the registry.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Notify hooks for each scorer
	for name, scorer := range r.scorers {
		for _, hook := range r.hooks {
			hook(name, scorer, false)
		}
	}

	r.scorers = make(map[string]Scorer)
}

// AddHook adds a registration hook.
//
// Description:
//
//	Hooks are called when scorers are registered or unregistered.
//	They receive the scorer name, the scorer, and a boolean indicating
//	whether it was registered (true) or unregistered (false).
//
// Inputs:
//   - hook: The hook function to add.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) AddHook(hook RegistrationHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// -----------------------------------------------------------------------------
// Default Registry
// -----------------------------------------------------------------------------

// DefaultRegistry is the global registry instance.
// Scorers can register themselves during init() using MustRegister.
var DefaultRegistry = NewRegistry()

// Register registers a scorer with the default registry.
func Register(scorer Scorer) error {
	return DefaultRegistry.Register(scorer)
}

// MustRegister registers a scorer with the default registry, panicking on error.
func MustRegister(scorer Scorer) {
	DefaultRegistry.MustRegister(scorer)
}

// Get retrieves a scorer from the default registry.
func Get(name string) (Scorer, bool) {
	return DefaultRegistry.Get(name)
}

// List returns all scorer names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}
