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
	"strconv"
	"strings"
)

// AtomType tells whether an Atom holds a float or a symbol.
type AtomType uint8

const (
	AtomFloat AtomType = iota
	AtomSymbol
)

func (t AtomType) String() string {
	switch t {
	case AtomFloat:
		return "float"
	case AtomSymbol:
		return "symbol"
	default:
		return "AtomType(" + strconv.Itoa(int(t)) + ")"
	}
}

// Atom is one message argument.
type Atom struct {
	Type   AtomType
	Float  float64
	Symbol string
}

// Float returns a float atom.
func Float(f float64) Atom { return Atom{Type: AtomFloat, Float: f} }

// Symbol returns a symbol atom.
func Symbol(s string) Atom { return Atom{Type: AtomSymbol, Symbol: s} }

func (a Atom) String() string {
	if a.Type == AtomSymbol {
		return a.Symbol
	}
	return strconv.FormatFloat(a.Float, 'g', -1, 64)
}

// ParseAtoms splits a message on whitespace. Words that parse as numbers
// become floats, everything else becomes a symbol.
func ParseAtoms(s string) []Atom {
	fields := strings.Fields(s)
	atoms := make([]Atom, 0, len(fields))
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			atoms = append(atoms, Float(v))
			continue
		}
		atoms = append(atoms, Symbol(f))
	}
	return atoms
}

// floatArg returns args[i] as a float, 0 when missing or not a float.
func floatArg(args []Atom, i int) float64 {
	if i < 0 || i >= len(args) || args[i].Type != AtomFloat {
		return 0
	}
	return args[i].Float
}

// symbolArg returns args[i] as a symbol, "" when missing or not a symbol.
func symbolArg(args []Atom, i int) string {
	if i < 0 || i >= len(args) || args[i].Type != AtomSymbol {
		return ""
	}
	return args[i].Symbol
}

func isFloat(args []Atom, i int) bool {
	return i >= 0 && i < len(args) && args[i].Type == AtomFloat
}

func isSymbol(args []Atom, i int) bool {
	return i >= 0 && i < len(args) && args[i].Type == AtomSymbol
}
