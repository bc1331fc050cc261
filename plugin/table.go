/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/plugin-shmem/api"
)

// ErrNoSuchTable is returned by TableRegistry.Lookup for unknown names.
var ErrNoSuchTable = errors.New("no such array")

// Table is an in-memory api.Table.
type Table struct {
	name    string
	data    []float32
	redraws atomic.Int64
	// OnRedraw, when set, is called after every Redraw.
	OnRedraw func(t *Table)
}

// NewTable returns a zeroed table of size elements.
func NewTable(name string, size int) *Table {
	if size < 0 {
		size = 0
	}
	return &Table{name: name, data: make([]float32, size)}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Floats() []float32 { return t.data }

// Redraw counts the notification and forwards it to OnRedraw.
func (t *Table) Redraw() {
	t.redraws.Add(1)
	if t.OnRedraw != nil {
		t.OnRedraw(t)
	}
}

// Redraws returns how many times the table was redrawn.
func (t *Table) Redraws() int64 { return t.redraws.Load() }

// TableRegistry is an api.TableResolver over in-memory tables, safe for
// concurrent use.
type TableRegistry struct {
	tables cmap.ConcurrentMap[string, api.Table]
}

// NewTableRegistry returns an empty registry.
func NewTableRegistry() *TableRegistry {
	return &TableRegistry{tables: cmap.New[api.Table]()}
}

// Define creates a table and registers it, replacing any table of the same name.
func (r *TableRegistry) Define(name string, size int) *Table {
	t := NewTable(name, size)
	r.tables.Set(name, t)
	return t
}

// Add registers a host owned table.
func (r *TableRegistry) Add(t api.Table) {
	r.tables.Set(t.Name(), t)
}

// Remove unregisters a table.
func (r *TableRegistry) Remove(name string) {
	r.tables.Remove(name)
}

// Lookup implements api.TableResolver.
func (r *TableRegistry) Lookup(name string) (api.Table, error) {
	t, ok := r.tables.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSuchTable)
	}
	return t, nil
}

// Names returns the registered table names, sorted.
func (r *TableRegistry) Names() []string {
	names := r.tables.Keys()
	sort.Strings(names)
	return names
}
