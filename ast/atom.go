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

package ast

import "strings"

// PredicateSym identifies a predicate by name and arity. A bare predicate
// name with no parentheses denotes arity 0.
type PredicateSym struct {
	Symbol string
	Arity  int
}

func (p PredicateSym) String() string {
	return p.Symbol
}

// Atom is a predicate symbol applied to a sequence of terms. Arity is
// len(Args). Two atoms are equal iff predicates match and arguments are
// pointwise equal.
type Atom struct {
	Predicate PredicateSym
	Args      []Term
}

// NewAtom is a convenience constructor.
func NewAtom(predicate string, args ...Term) Atom {
	return Atom{PredicateSym{predicate, len(args)}, args}
}

// String returns the canonical textual form "pred(a1,a2,...)", or just
// "pred" for arity 0.
func (a Atom) String() string {
	if len(a.Args) == 0 {
		return a.Predicate.Symbol
	}
	var sb strings.Builder
	sb.WriteString(a.Predicate.Symbol)
	sb.WriteRune('(')
	for i, arg := range a.Args {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteRune(')')
	return sb.String()
}

// Equals reports structural equality between atoms.
func (a Atom) Equals(o Atom) bool {
	if a.Predicate != o.Predicate || len(a.Args) != len(o.Args) {
		return false
	}
	for i, arg := range a.Args {
		if !arg.Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// Hash returns a structural hash code for the atom.
func (a Atom) Hash() uint64 {
	h := hashString(a.Predicate.Symbol)
	for _, arg := range a.Args {
		h = h*1099511628211 ^ arg.Hash()
	}
	return h
}

// IsGround reports whether every argument is a Constant.
func (a Atom) IsGround() bool {
	for _, arg := range a.Args {
		if _, ok := arg.(Constant); !ok {
			return false
		}
	}
	return true
}

// ApplySubst returns a copy of the atom with every variable argument bound
// in s replaced by its constant. Variables not in the domain of s are left
// unchanged.
func (a Atom) ApplySubst(s Subst) Atom {
	newArgs := make([]Term, len(a.Args))
	for i, arg := range a.Args {
		switch t := arg.(type) {
		case Variable:
			if c, ok := s.Get(t); ok {
				newArgs[i] = c
				continue
			}
			newArgs[i] = t
		default:
			newArgs[i] = arg
		}
	}
	return Atom{a.Predicate, newArgs}
}

// Literal is an atom, possibly negated. Negated literals are evaluated by
// negation-as-failure against a snapshot of facts (see the unify package),
// never by unification directly.
type Literal struct {
	Atom    Atom
	Negated bool
}

// String returns the textual form, e.g. "p(X)" or "not p(X)".
func (l Literal) String() string {
	if l.Negated {
		return "not " + l.Atom.String()
	}
	return l.Atom.String()
}

// ApplySubst applies a substitution to the underlying atom, preserving the
// negation flag.
func (l Literal) ApplySubst(s Subst) Literal {
	return Literal{l.Atom.ApplySubst(s), l.Negated}
}
