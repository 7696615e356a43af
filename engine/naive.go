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

package engine

import (
	"fmt"

	"github.com/temporalfacts/tdreasoner/ast"
	"github.com/temporalfacts/tdreasoner/provenance"
	"github.com/temporalfacts/tdreasoner/unify"
)

// Interpretation is the result of a full reasoning run: the set of ground
// atoms true at every timestep in [0, T].
type Interpretation struct {
	TMax        int
	FactsByTime [][]ast.Atom
}

// FactsAt returns the atoms true at timestep t.
func (in *Interpretation) FactsAt(t int) []ast.Atom {
	if t < 0 || t > in.TMax {
		return nil
	}
	return in.FactsByTime[t]
}

// NaiveReasoner is the reference implementation: a dense factsByTime[0..T]
// array, re-matching every active rule against every timestep on every
// iteration until nothing changes. It exists primarily as an oracle that
// OptimizedReasoner's semi-naive evaluation is checked against.
type NaiveReasoner struct {
	tMax  int
	rules []ast.Rule
	facts map[int]map[uint64]ast.Atom
	prov  *provenance.Store
}

// NewNaiveReasoner constructs a reasoner over the bounded timeline [0, tMax].
func NewNaiveReasoner(tMax int) (*NaiveReasoner, error) {
	if err := checkTimeRange(tMax); err != nil {
		return nil, err
	}
	facts := make(map[int]map[uint64]ast.Atom, tMax+1)
	for t := 0; t <= tMax; t++ {
		facts[t] = make(map[uint64]ast.Atom)
	}
	return &NaiveReasoner{
		tMax:  tMax,
		facts: facts,
		prov:  provenance.New(),
	}, nil
}

// AddRule appends a rule to the reasoner's program.
func (r *NaiveReasoner) AddRule(rule ast.Rule) error {
	if rule.Delay < 0 {
		return fmt.Errorf("%w: rule %q has negative delay", ast.ErrInvalidRuleSyntax, rule.Name)
	}
	r.rules = append(r.rules, rule)
	return nil
}

// AddFact inserts a TimedFact's atom into every timestep of its clamped
// intervals.
func (r *NaiveReasoner) AddFact(f ast.TimedFact) error {
	if !f.Atom.IsGround() {
		return fmt.Errorf("%w: fact atom %v is not ground", ast.ErrNullArgument, f.Atom)
	}
	for _, iv := range f.Intervals {
		c := iv.Clamp(r.tMax)
		if c.Empty() {
			continue
		}
		for t := c.Start; t <= c.End; t++ {
			r.facts[t][f.Atom.Hash()] = f.Atom
		}
	}
	return nil
}

// Provenance returns the provenance store accumulated by the last Reason
// call.
func (r *NaiveReasoner) Provenance() *provenance.Store {
	return r.prov
}

// Reason runs the fixed-point loop to completion and returns the resulting
// interpretation.
func (r *NaiveReasoner) Reason() (*Interpretation, error) {
	changed := true
	for changed {
		changed = false
		for t := 0; t <= r.tMax; t++ {
			factsAtT := r.atomsAt(t)
			lookup := lookupFrom(factsAtT)
			for _, rule := range r.rules {
				if !rule.IsActiveAt(t) {
					continue
				}
				base := t + rule.Delay
				if base > r.tMax {
					continue
				}
				substs := unify.Solutions(rule.Body, lookup, ast.EmptySubst())
				for _, subst := range substs {
					headGround := rule.GroundHead(subst)
					if !headGround.IsGround() {
						return nil, &EngineError{Op: "Reason", Err: fmt.Errorf("rule %q head %v not ground after substitution", rule.Name, rule.Head)}
					}
					for _, dt := range rule.Offsets() {
						tt := base + dt
						if tt < 0 || tt > r.tMax {
							continue
						}
						key := headGround.Hash()
						if _, exists := r.facts[tt][key]; exists {
							continue
						}
						r.facts[tt][key] = headGround
						changed = true
						r.recordSources(rule, t, subst, headGround, tt)
					}
				}
			}
		}
	}
	return r.interpretation(), nil
}

func (r *NaiveReasoner) recordSources(rule ast.Rule, t int, subst ast.Subst, head ast.Atom, tt int) {
	sources := make([]provenance.AtomTime, 0, len(rule.Body))
	for _, lit := range rule.Body {
		if lit.Negated {
			continue
		}
		sources = append(sources, provenance.AtomTime{Atom: lit.Atom.ApplySubst(subst), Time: t})
	}
	r.prov.Record(head, tt, provenance.Info{RuleName: rule.Name, Subst: subst, Sources: sources})
}

func (r *NaiveReasoner) atomsAt(t int) []ast.Atom {
	shard := r.facts[t]
	out := make([]ast.Atom, 0, len(shard))
	for _, a := range shard {
		out = append(out, a)
	}
	return out
}

func (r *NaiveReasoner) interpretation() *Interpretation {
	factsByTime := make([][]ast.Atom, r.tMax+1)
	for t := 0; t <= r.tMax; t++ {
		factsByTime[t] = r.atomsAt(t)
	}
	return &Interpretation{TMax: r.tMax, FactsByTime: factsByTime}
}

func lookupFrom(atoms []ast.Atom) unify.FactLookup {
	byPred := make(map[ast.PredicateSym][]ast.Atom)
	for _, a := range atoms {
		byPred[a.Predicate] = append(byPred[a.Predicate], a)
	}
	return func(pred ast.PredicateSym) []ast.Atom {
		return byPred[pred]
	}
}
