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

	"github.com/temporalfacts/tdreasoner/ast"
	"github.com/temporalfacts/tdreasoner/factstore"
	"github.com/temporalfacts/tdreasoner/provenance"
	"github.com/temporalfacts/tdreasoner/unify"
)

// StreamingReasoner ingests TimedFacts one at a time into a live
// SparseStore, propagating each new fact through the rule set via a
// breadth-first work queue and notifying registered observers as new
// derivations are recorded. Concurrent calls to AddFactIncremental are
// serialized through a single writer lock; readers (Query, GetAllFactsAt)
// do not take that lock, only the store's own store-wide read lock, which
// each single insert into the store holds exclusively.
type StreamingReasoner struct {
	tMax  int
	store *factstore.SparseStore
	rules []ast.Rule
	prov  *provenance.Store

	writeMu sync.Mutex

	obsMu           sync.RWMutex
	predObservers   map[ast.PredicateSym][]Observer
	globalObservers []GlobalObserver
}

// NewStreamingReasoner constructs a streaming reasoner over [0, tMax] with
// a fixed rule set, fixed for the reasoner's lifetime.
func NewStreamingReasoner(tMax int, rules []ast.Rule) (*StreamingReasoner, error) {
	if err := checkTimeRange(tMax); err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if rule.Delay < 0 {
			return nil, fmt.Errorf("%w: rule %q has negative delay", ast.ErrInvalidRuleSyntax, rule.Name)
		}
	}
	return &StreamingReasoner{
		tMax:          tMax,
		store:         factstore.New(tMax),
		rules:         append([]ast.Rule(nil), rules...),
		prov:          provenance.New(),
		predObservers: make(map[ast.PredicateSym][]Observer),
	}, nil
}

// OnNewFact registers an observer invoked once for every newly derived atom
// of the given predicate, in the order derivations are first recorded.
func (r *StreamingReasoner) OnNewFact(pred ast.PredicateSym, obs Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.predObservers[pred] = append(r.predObservers[pred], obs)
}

// OnAnyNewFact registers an observer invoked for every newly derived
// (atom, t) pair, regardless of predicate.
func (r *StreamingReasoner) OnAnyNewFact(obs GlobalObserver) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.globalObservers = append(r.globalObservers, obs)
}

// Query returns the atoms of the given predicate true at timestep t.
func (r *StreamingReasoner) Query(pred ast.PredicateSym, t int) []ast.Atom {
	return r.store.FactsByPredAt(pred, t)
}

// GetAllFactsAt returns every atom true at timestep t.
func (r *StreamingReasoner) GetAllFactsAt(t int) []ast.Atom {
	return r.store.FactsAt(t)
}

// Provenance returns the provenance store accumulated so far.
func (r *StreamingReasoner) Provenance() *provenance.Store {
	return r.prov
}

// AddFactIncremental inserts f into the store and propagates it through the
// rule set via breadth-first search, returning every newly derived
// (atom, t) pair. Observer callbacks run synchronously on the caller's
// goroutine, in derivation order; a panicking observer is recovered, logged,
// and does not interrupt propagation.
func (r *StreamingReasoner) AddFactIncremental(f ast.TimedFact) ([]AtomTime, error) {
	if !f.Atom.IsGround() {
		return nil, fmt.Errorf("%w: fact atom %v is not ground", ast.ErrNullArgument, f.Atom)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.store.Load(f)

	var queue []provenance.AtomTime
	for _, iv := range f.Intervals {
		c := iv.Clamp(r.tMax)
		if c.Empty() {
			continue
		}
		for t := c.Start; t <= c.End; t++ {
			queue = append(queue, provenance.AtomTime{Atom: f.Atom, Time: t})
		}
	}

	var newlyDerived []AtomTime
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		lookup := func(pred ast.PredicateSym) []ast.Atom {
			return r.store.FactsByPredAt(pred, cur.Time)
		}
		for _, rule := range r.rules {
			if !rule.IsActiveAt(cur.Time) {
				continue
			}
			base := cur.Time + rule.Delay
			if base > r.tMax {
				continue
			}
			substs := unify.Solutions(rule.Body, lookup, ast.EmptySubst())
			for _, subst := range substs {
				headGround := rule.GroundHead(subst)
				if !headGround.IsGround() {
					return newlyDerived, &EngineError{Op: "AddFactIncremental", Err: fmt.Errorf("rule %q head %v not ground after substitution", rule.Name, rule.Head)}
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
						sources = append(sources, provenance.AtomTime{Atom: lit.Atom.ApplySubst(subst), Time: cur.Time})
					}
					r.prov.Record(headGround, tt, provenance.Info{RuleName: rule.Name, Subst: subst, Sources: sources})

					newlyDerived = append(newlyDerived, AtomTime{Atom: headGround, Time: tt})
					queue = append(queue, provenance.AtomTime{Atom: headGround, Time: tt})
					r.notify(headGround, tt)
				}
			}
		}
	}
	return newlyDerived, nil
}

func (r *StreamingReasoner) notify(atom ast.Atom, t int) {
	r.obsMu.RLock()
	predObs := append([]Observer(nil), r.predObservers[atom.Predicate]...)
	globalObs := append([]GlobalObserver(nil), r.globalObservers...)
	r.obsMu.RUnlock()

	for _, obs := range predObs {
		obs := obs
		runObserver(fmt.Sprintf("predicate:%s", atom.Predicate), func() { obs(atom, t) })
	}
	for _, obs := range globalObs {
		obs := obs
		runObserver("global", func() { obs(atom, t) })
	}
}
