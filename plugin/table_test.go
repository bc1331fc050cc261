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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRegistry(t *testing.T) {
	r := NewTableRegistry()
	a := r.Define("a", 4)
	r.Add(NewTable("b", 2))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Len(t, a.Floats(), 4)

	got, err := r.Lookup("a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, ErrNoSuchTable)
	assert.Contains(t, err.Error(), "missing")

	r.Remove("a")
	_, err = r.Lookup("a")
	assert.ErrorIs(t, err, ErrNoSuchTable)
}

func TestTableRedraw(t *testing.T) {
	tab := NewTable("t", -3)
	assert.Empty(t, tab.Floats())

	var seen *Table
	tab.OnRedraw = func(t *Table) { seen = t }
	tab.Redraw()
	tab.Redraw()
	assert.Equal(t, int64(2), tab.Redraws())
	assert.Same(t, tab, seen)
}
