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
	"github.com/temporalfacts/tdreasoner/factstore"
	"github.com/temporalfacts/tdreasoner/provenance"
	"github.com/temporalfacts/tdreasoner/unify"
)

// IncrementalReasoner is the higher-level sibling of StreamingReasoner:
// Reason runs a full semi-naive-style fixed point over everything added so
// far; AddFact followed by IncrementalReason propagates only the facts
// added since the previous Reason/IncrementalReason call, batched over every
// pending fact rather than one at a time. Propagation is the same
// per-timestep delta sweep Reason uses (not StreamingReasoner's work
// queue), seeded only with the pending facts' timesteps. RetractFact has no incremental counterpart: truth
// maintenance on removal is out of scope, so it simply rebuilds the store
// from the remaining facts and reruns Reason from scratch.
type IncrementalReasoner struct {
	tMax  int
	store *factstore.SparseStore
	rules []ast.Rule
	prov  *provenance.Store

	allFacts []ast.TimedFact
	pending  []ast.TimedFact
}

// NewIncrementalReasoner constructs an incremental reasoner over [0, tMax].
func NewIncrementalReasoner(tMax int) (*IncrementalReasoner, error) {
	if err := checkTimeRange(tMax); err != nil {
		return nil, err
	}
	return &IncrementalReasoner{
		tMax:  tMax,
		store: factstore.New(tMax),
		prov:  provenance.New(),
	}, nil
}

// AddRule appends a rule to the program. Rules may only be added before the
// first Reason call; the reasoner does not support changing rules mid-run.
func (r *IncrementalReasoner) AddRule(rule ast.Rule) error {
	if rule.Delay < 0 {
		return fmt.Errorf("%w: rule %q has negative delay", ast.ErrInvalidRuleSyntax, rule.Name)
	}
	r.rules = append(r.rules, rule)
	return nil
}

// AddFact records f as pending: it will be loaded into the store, and
// propagated, on the next Reason or IncrementalReason call.
func (r *IncrementalReasoner) AddFact(f ast.TimedFact) error {
	if !f.Atom.IsGround() {
		return fmt.Errorf("%w: fact atom %v is not ground", ast.ErrNullArgument, f.Atom)
	}
	r.allFacts = append(r.allFacts, f)
	r.pending = append(r.pending, f)
	return nil
}

// Store returns the underlying SparseStore.
func (r *IncrementalReasoner) Store() *factstore.SparseStore {
	return r.store
}

// Provenance returns the provenance store accumulated so far.
func (r *IncrementalReasoner) Provenance() *provenance.Store {
	return r.prov
}

// Reason loads every pending fact and runs a full semi-naive fixed point,
// seeding each timestep's delta with every fact already true at that
// timestep -- including facts loaded by earlier calls -- so that rules
// whose bodies are satisfied purely by old or static facts still fire.
func (r *IncrementalReasoner) Reason() (*factstore.SparseStore, error) {
	for _, f := range r.pending {
		r.store.Load(f)
	}
	r.pending = nil

	delta := make(map[int][]ast.Atom, r.tMax+1)
	for t := 0; t <= r.tMax; t++ {
		delta[t] = r.store.FactsAt(t)
	}
	if _, err := r.propagate(delta); err != nil {
		return nil, err
	}
	return r.store, nil
}

// IncrementalReason loads only the facts added since the previous
// Reason/IncrementalReason call and propagates them with a delta sweep over
// the timesteps they hold at, returning every newly derived (atom, t) pair.
func (r *IncrementalReasoner) IncrementalReason() ([]AtomTime, error) {
	delta := make(map[int][]ast.Atom, r.tMax+1)
	for _, f := range r.pending {
		r.store.Load(f)
		for _, iv := range f.Intervals {
			c := iv.Clamp(r.tMax)
			if c.Empty() {
				continue
			}
			for t := c.Start; t <= c.End; t++ {
				delta[t] = append(delta[t], f.Atom)
			}
		}
	}
	r.pending = nil
	return r.propagate(delta)
}

// RetractFact removes f from the set of known facts and fully recomputes:
// a fresh store is loaded from the remaining facts and Reason runs from
// scratch, including a fresh provenance store, since partial truth
// maintenance on retraction is explicitly out of scope.
func (r *IncrementalReasoner) RetractFact(f ast.TimedFact) (*factstore.SparseStore, error) {
	remaining := r.allFacts[:0:0]
	for _, existing := range r.allFacts {
		if existing.ID == f.ID && existing.Atom.Equals(f.Atom) {
			continue
		}
		remaining = append(remaining, existing)
	}
	r.allFacts = remaining
	r.pending = nil
	r.store = factstore.New(r.tMax)
	r.prov = provenance.New()
	for _, existing := range r.allFacts {
		r.store.Load(existing)
	}

	delta := make(map[int][]ast.Atom, r.tMax+1)
	for t := 0; t <= r.tMax; t++ {
		delta[t] = r.store.FactsAt(t)
	}
	if _, err := r.propagate(delta); err != nil {
		return nil, err
	}
	return r.store, nil
}

// propagate drives delta to a fixed point, mutating r.store and r.prov in
// place, and returns every newly derived (atom, t) pair across the whole
// run.
func (r *IncrementalReasoner) propagate(delta map[int][]ast.Atom) ([]AtomTime, error) {
	var allDerived []AtomTime
	changed := true
	for changed {
		changed = false
		for t := 0; t <= r.tMax; t++ {
			if len(delta[t]) == 0 {
				continue
			}
			delta[t] = nil

			lookup := func(pred ast.PredicateSym) []ast.Atom {
				return r.store.FactsByPredAt(pred, t)
			}
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
						return allDerived, &EngineError{Op: "propagate", Err: fmt.Errorf("rule %q head %v not ground after substitution", rule.Name, rule.Head)}
					}
					for _, dt := range rule.Offsets() {
						tt := base + dt
						if tt < 0 || tt > r.tMax {
							continue
						}
						if !r.store.AddDerived(headGround, tt) {
							continue
						}
						sources := make([]provenance.AtomTime, 0, len(rule.Body))
						for _, lit := range rule.Body {
							if lit.Negated {
								continue
							}
							sources = append(sources, provenance.AtomTime{Atom: lit.Atom.ApplySubst(subst), Time: t})
						}
						r.prov.Record(headGround, tt, provenance.Info{RuleName: rule.Name, Subst: subst, Sources: sources})
						delta[tt] = append(delta[tt], headGround)
						allDerived = append(allDerived, AtomTime{Atom: headGround, Time: tt})
						changed = true
					}
				}
			}
		}
	}
	return allDerived, nil
}
