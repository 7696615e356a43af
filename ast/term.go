// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast contains the term, atom, interval and rule representations
// used by the temporal forward-chaining reasoner.
package ast

import (
	"fmt"
	"hash/fnv"
)

// Term is either a Variable or a Constant. Unlike a general first-order-logic
// term, there are no function symbols: every term is a leaf.
//
// Terms are distinguished at parse time by the convention that a leading
// lowercase letter marks a variable, and anything else (uppercase, digit,
// underscore, symbol) marks a constant. The convention only matters for
// NewTerm / parsing; once constructed, a Term is a plain tagged value.
type Term interface {
	// Marker method.
	isTerm()

	// String returns the textual form of the term.
	String() string

	// Equals reports structural equality.
	Equals(Term) bool

	// Hash returns a structural hash code.
	Hash() uint64
}

// Variable represents an unbound placeholder, scoped to a single rule.
type Variable struct {
	Symbol string
}

func (Variable) isTerm() {}

// String returns the variable name.
func (v Variable) String() string { return v.Symbol }

// Equals reports whether other is the same variable.
func (v Variable) Equals(other Term) bool {
	o, ok := other.(Variable)
	return ok && v.Symbol == o.Symbol
}

// Hash returns a structural hash code for the variable.
func (v Variable) Hash() uint64 {
	return hashString("var:" + v.Symbol)
}

// Constant represents a ground symbol: a name, number literal, or any other
// token that isn't a variable under the lowercase-initial convention.
type Constant struct {
	Symbol string
}

func (Constant) isTerm() {}

// String returns the constant's symbol.
func (c Constant) String() string { return c.Symbol }

// Equals reports whether other is the same constant.
func (c Constant) Equals(other Term) bool {
	o, ok := other.(Constant)
	return ok && c.Symbol == o.Symbol
}

// Hash returns a structural hash code for the constant.
func (c Constant) Hash() uint64 {
	return hashString("const:" + c.Symbol)
}

// IsVariableSymbol reports whether s, under the parsing convention, denotes a
// variable: a non-empty string whose first byte is an ASCII lowercase letter
// (a-z).
func IsVariableSymbol(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'a' && r <= 'z'
}

// NewTerm constructs a Term from its textual representation, applying the
// lowercase-initial-means-variable convention.
func NewTerm(s string) Term {
	if IsVariableSymbol(s) {
		return Variable{s}
	}
	return Constant{s}
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Subst maps variables to constants. It is the result of unification and is
// treated functionally: Extend returns a new Subst, leaving the receiver
// unmodified, so callers can backtrack by discarding extensions.
type Subst struct {
	// bindings is nil for the empty substitution; Extend copies-on-write.
	bindings map[Variable]Constant
}

// EmptySubst returns the substitution with no bindings.
func EmptySubst() Subst {
	return Subst{}
}

// Get returns the constant bound to v, and whether v is bound.
func (s Subst) Get(v Variable) (Constant, bool) {
	if s.bindings == nil {
		return Constant{}, false
	}
	c, ok := s.bindings[v]
	return c, ok
}

// Extend returns a new substitution with v bound to c, in addition to all
// bindings already present in s. The receiver is not modified.
func (s Subst) Extend(v Variable, c Constant) Subst {
	next := make(map[Variable]Constant, len(s.bindings)+1)
	for k, val := range s.bindings {
		next[k] = val
	}
	next[v] = c
	return Subst{next}
}

// Domain returns the variables bound by this substitution.
func (s Subst) Domain() []Variable {
	vars := make([]Variable, 0, len(s.bindings))
	for v := range s.bindings {
		vars = append(vars, v)
	}
	return vars
}

// String returns a debug representation of the substitution.
func (s Subst) String() string {
	return fmt.Sprintf("%v", s.bindings)
}
