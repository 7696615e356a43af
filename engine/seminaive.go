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
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/temporalfacts/tdreasoner/ast"
	"github.com/temporalfacts/tdreasoner/factstore"
	"github.com/temporalfacts/tdreasoner/provenance"
	"github.com/temporalfacts/tdreasoner/unify"
)

// OptimizedReasoner is the semi-naive evaluator: rather than re-matching
// every rule against every timestep on every outer iteration, it tracks,
// per timestep, the facts that newly appeared since the last iteration
// (delta) and only re-evaluates a timestep whose delta is non-empty.
//
// The very first delta seeded for each t is the full factsAt(t), not an
// empty set: a rule whose entire body is satisfied purely by facts that
// were already present at t=0 (most commonly static facts, which never
// "arrive" at any later iteration) must still be allowed to fire once.
// Omitting statics from the first delta silently loses those derivations;
// see TestOptimizedReasonerSeedsDeltaWithStaticFacts for the regression
// this guards.
type OptimizedReasoner struct {
	tMax  int
	store *factstore.SparseStore
	rules []ast.Rule
	prov  *provenance.Store
}

// NewOptimizedReasoner constructs a semi-naive reasoner over [0, tMax].
func NewOptimizedReasoner(tMax int) (*OptimizedReasoner, error) {
	if err := checkTimeRange(tMax); err != nil {
		return nil, err
	}
	return &OptimizedReasoner{
		tMax:  tMax,
		store: factstore.New(tMax),
		prov:  provenance.New(),
	}, nil
}

// AddRule appends a rule to the program.
func (r *OptimizedReasoner) AddRule(rule ast.Rule) error {
	if rule.Delay < 0 {
		return fmt.Errorf("%w: rule %q has negative delay", ast.ErrInvalidRuleSyntax, rule.Name)
	}
	r.rules = append(r.rules, rule)
	return nil
}

// AddFact loads a TimedFact into the underlying SparseStore.
func (r *OptimizedReasoner) AddFact(f ast.TimedFact) error {
	if !f.Atom.IsGround() {
		return fmt.Errorf("%w: fact atom %v is not ground", ast.ErrNullArgument, f.Atom)
	}
	r.store.Load(f)
	return nil
}

// Store returns the underlying SparseStore, queryable after Reason.
func (r *OptimizedReasoner) Store() *factstore.SparseStore {
	return r.store
}

// Provenance returns the provenance store accumulated by the last Reason
// call.
func (r *OptimizedReasoner) Provenance() *provenance.Store {
	return r.prov
}

// Reason runs the semi-naive fixed-point loop to completion.
func (r *OptimizedReasoner) Reason() (*factstore.SparseStore, error) {
	delta := make(map[int][]ast.Atom, r.tMax+1)
	for t := 0; t <= r.tMax; t++ {
		delta[t] = r.store.FactsAt(t)
	}

	changed := true
	for changed {
		changed = false
		for t := 0; t <= r.tMax; t++ {
			if len(delta[t]) == 0 {
				continue
			}
			delta[t] = nil

			var activeRules []ast.Rule
			for _, rule := range r.rules {
				if !rule.IsActiveAt(t) {
					continue
				}
				if t+rule.Delay > r.tMax {
					continue
				}
				activeRules = append(activeRules, rule)
			}
			if len(activeRules) == 0 {
				continue
			}

			derivedAt, err := r.evalRulesAt(t, activeRules)
			if err != nil {
				return nil, err
			}
			for _, at := range derivedAt {
				delta[at.Time] = append(delta[at.Time], at.Atom)
				changed = true
			}
		}
	}
	return r.store, nil
}

// evalRulesAt evaluates every rule in activeRules against factsAt(t),
// dispatching to the concurrent path once the rule count reaches
// parallelRuleThreshold.
func (r *OptimizedReasoner) evalRulesAt(t int, activeRules []ast.Rule) ([]provenance.AtomTime, error) {
	lookup := func(pred ast.PredicateSym) []ast.Atom {
		return r.store.FactsByPredAt(pred, t)
	}

	if len(activeRules) < parallelRuleThreshold {
		var derived []provenance.AtomTime
		for _, rule := range activeRules {
			d, err := r.evalOneRule(rule, t, lookup)
			if err != nil {
				return nil, err
			}
			derived = append(derived, d...)
		}
		return derived, nil
	}

	var mu sync.Mutex
	var derived []provenance.AtomTime
	var g errgroup.Group
	for _, rule := range activeRules {
		rule := rule
		g.Go(func() error {
			d, err := r.evalOneRule(rule, t, lookup)
			if err != nil {
				return err
			}
			if len(d) > 0 {
				mu.Lock()
				derived = append(derived, d...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return derived, nil
}

// evalOneRule matches a single rule against factsAt(t) and inserts its
// grounded head into the store at every in-range offset timestep. The
// store's AddDerived performs the check-then-insert atomically, and
// provenance is only recorded for the goroutine whose insert actually won.
func (r *OptimizedReasoner) evalOneRule(rule ast.Rule, t int, lookup unify.FactLookup) ([]provenance.AtomTime, error) {
	base := t + rule.Delay
	substs := unify.Solutions(rule.Body, lookup, ast.EmptySubst())
	var derived []provenance.AtomTime
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
			derived = append(derived, provenance.AtomTime{Atom: headGround, Time: tt})
		}
	}
	return derived, nil
}
