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

// Package unify matches rule bodies, one literal at a time, against the
// facts holding at a single timestep. Since facts are always ground (no
// function symbols, no recursive term structure), matching a pattern atom
// against a fact atom never requires a full union-find: each variable is
// resolved to a constant on first sight and checked for consistency on
// every subsequent occurrence, extending ast.Subst functionally so callers
// can backtrack by discarding failed branches.
package unify

import "github.com/temporalfacts/tdreasoner/ast"

// Atom attempts to unify pattern against the ground fact, extending subst.
// It reports the extended substitution and whether unification succeeded;
// on failure the original subst is returned unmodified.
func Atom(pattern, fact ast.Atom, subst ast.Subst) (ast.Subst, bool) {
	orig := subst
	if pattern.Predicate != fact.Predicate {
		return orig, false
	}
	for i, arg := range pattern.Args {
		factArg, ok := fact.Args[i].(ast.Constant)
		if !ok {
			return orig, false
		}
		switch t := arg.(type) {
		case ast.Constant:
			if t.Symbol != factArg.Symbol {
				return orig, false
			}
		case ast.Variable:
			if bound, ok := subst.Get(t); ok {
				if bound.Symbol != factArg.Symbol {
					return orig, false
				}
				continue
			}
			subst = subst.Extend(t, factArg)
		}
	}
	return subst, true
}

// FactLookup returns the ground facts that hold, at the current timestep,
// for a given predicate. Implemented by the engine's snapshot of the fact
// store so that body-literal matching need only scan candidates with a
// matching predicate symbol.
type FactLookup func(pred ast.PredicateSym) []ast.Atom

// Solutions finds every substitution extending base under which every
// literal in body is satisfied: positive literals are matched against
// lookup(pred) via Atom, negative literals are evaluated by negation as
// failure (true iff no fact unifies), checked only once every variable it
// shares with earlier literals is already bound -- matching the safety
// assumption that negated literals contain no variable absent from an
// earlier positive literal.
func Solutions(body []ast.Literal, lookup FactLookup, base ast.Subst) []ast.Subst {
	results := []ast.Subst{base}
	for _, lit := range body {
		var next []ast.Subst
		if lit.Negated {
			for _, s := range results {
				ground := lit.Atom.ApplySubst(s)
				if !factExists(ground, lookup) {
					next = append(next, s)
				}
			}
		} else {
			for _, s := range results {
				pattern := lit.Atom
				for _, cand := range lookup(pattern.Predicate) {
					if extended, ok := Atom(pattern, cand, s); ok {
						next = append(next, extended)
					}
				}
			}
		}
		results = next
		if len(results) == 0 {
			return nil
		}
	}
	return results
}

func factExists(ground ast.Atom, lookup FactLookup) bool {
	for _, cand := range lookup(ground.Predicate) {
		if _, ok := Atom(ground, cand, ast.EmptySubst()); ok {
			return true
		}
	}
	return false
}
