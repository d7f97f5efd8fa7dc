// SPDX-License-Identifier: GPL-2.0-or-later

package msh

import (
	"sort"
	"sync"
)

// Builder aggregates the segments decoded for one base model name. All
// methods serialize on an internal mutex so segment processors running on
// different goroutines can deposit into the same builder.
type Builder struct {
	mu     sync.Mutex
	bbox   Bbox
	models []Model
}

// SetBbox records the model's derived bounding box.
func (b *Builder) SetBbox(bbox Bbox) {
	b.mu.Lock()
	b.bbox = bbox
	b.mu.Unlock()
}

// Bbox returns the last recorded bounding box.
func (b *Builder) Bbox() Bbox {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bbox
}

// AddModel appends a finished model. Insertion order is preserved.
func (b *Builder) AddModel(m Model) {
	b.mu.Lock()
	b.models = append(b.models, m)
	b.mu.Unlock()
}

// Models returns a snapshot of the deposited models.
func (b *Builder) Models() []Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Model, len(b.models))
	copy(out, b.models)
	return out
}

// BuilderMap maps base model names to their builders. It is safe for
// concurrent use.
type BuilderMap struct {
	mu       sync.Mutex
	builders map[string]*Builder
}

func NewBuilderMap() *BuilderMap {
	return &BuilderMap{builders: make(map[string]*Builder)}
}

// Get returns the builder for name, creating it on first use.
func (m *BuilderMap) Get(name string) *Builder {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.builders[name]
	if !ok {
		b = &Builder{}
		m.builders[name] = b
	}
	return b
}

// Len returns the number of distinct base names seen.
func (m *BuilderMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.builders)
}

// Names returns the base names in sorted order.
func (m *BuilderMap) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.builders))
	for name := range m.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
