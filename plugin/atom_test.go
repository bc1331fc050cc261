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
)

func TestParseAtoms(t *testing.T) {
	atoms := ParseAtoms("  memset 2 tab -1.5e1 ")
	assert.Equal(t, []Atom{Symbol("memset"), Float(2), Symbol("tab"), Float(-15)}, atoms)
	assert.Empty(t, ParseAtoms(""))
}

func TestAtomString(t *testing.T) {
	assert.Equal(t, "tab", Symbol("tab").String())
	assert.Equal(t, "0.5", Float(0.5).String())
	assert.Equal(t, "float", AtomFloat.String())
	assert.Equal(t, "symbol", AtomSymbol.String())
	assert.Equal(t, "AtomType(9)", AtomType(9).String())
}

func TestArgAccessors(t *testing.T) {
	args := []Atom{Float(3), Symbol("x")}

	assert.Equal(t, 3.0, floatArg(args, 0))
	assert.Equal(t, 0.0, floatArg(args, 1))
	assert.Equal(t, 0.0, floatArg(args, 5))
	assert.Equal(t, 0.0, floatArg(args, -1))

	assert.Equal(t, "x", symbolArg(args, 1))
	assert.Equal(t, "", symbolArg(args, 0))

	assert.True(t, isFloat(args, 0))
	assert.False(t, isFloat(args, 1))
	assert.True(t, isSymbol(args, 1))
	assert.False(t, isSymbol(args, 2))
}
