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

// Package factstore holds the SparseStore, a two-tier index of timed facts
// over a bounded discrete timeline [0, T]. Facts whose validity interval
// spans the whole timeline are promoted to a static tier held once, rather
// than being duplicated into every per-timestep bucket; everything else
// lives in a dynamic tier keyed by timestep.
package factstore

import (
	"sync"

	"github.com/temporalfacts/tdreasoner/ast"
)

// SparseStore is safe for concurrent use. A single sync.RWMutex guards both
// tiers: reads share it and never block on other reads, while each write
// holds it exclusively, so writes for different predicates or timesteps do
// not proceed in parallel and a write briefly blocks every reader.
type SparseStore struct {
	tMax int

	mu      sync.RWMutex
	static  map[ast.PredicateSym]map[uint64]ast.Atom
	dynamic map[int]map[ast.PredicateSym]map[uint64]ast.Atom
}

// New constructs an empty store over the timeline [0, tMax].
func New(tMax int) *SparseStore {
	return &SparseStore{
		tMax:    tMax,
		static:  make(map[ast.PredicateSym]map[uint64]ast.Atom),
		dynamic: make(map[int]map[ast.PredicateSym]map[uint64]ast.Atom),
	}
}

// TMax returns the store's timeline bound.
func (s *SparseStore) TMax() int {
	return s.tMax
}

// Load classifies and inserts every interval of fact into the store,
// following the static/dynamic classification rule: a fact is static iff
// it carries exactly one interval which, once clamped to [0, tMax], equals
// [0, tMax] exactly; otherwise each timestep covered by each clamped
// interval receives its own dynamic entry.
func (s *SparseStore) Load(fact ast.TimedFact) {
	if len(fact.Intervals) == 1 && fact.Intervals[0].SpansWholeTimeline(s.tMax) {
		s.addStatic(fact.Atom)
		return
	}
	for _, iv := range fact.Intervals {
		c := iv.Clamp(s.tMax)
		if c.Empty() {
			continue
		}
		for t := c.Start; t <= c.End; t++ {
			s.addDynamic(t, fact.Atom)
		}
	}
}

// AddDerived inserts a single atom as true at exactly timestep t. It is the
// entry point used by the reasoner to record newly derived facts, and
// performs an atomic check-then-insert: the returned bool reports whether
// the atom was new at t, which callers rely on to fence provenance
// recording (exactly one derivation is attached per (atom,t)).
func (s *SparseStore) AddDerived(atom ast.Atom, t int) bool {
	if t < 0 || t > s.tMax {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.dynamic[t]
	if !ok {
		bucket = make(map[ast.PredicateSym]map[uint64]ast.Atom)
		s.dynamic[t] = bucket
	}
	shard, ok := bucket[atom.Predicate]
	if !ok {
		shard = make(map[uint64]ast.Atom)
		bucket[atom.Predicate] = shard
	}
	key := atom.Hash()
	if _, exists := shard[key]; exists {
		return false
	}
	if _, exists := s.static[atom.Predicate][key]; exists {
		return false
	}
	shard[key] = atom
	return true
}

func (s *SparseStore) addStatic(atom ast.Atom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shard, ok := s.static[atom.Predicate]
	if !ok {
		shard = make(map[uint64]ast.Atom)
		s.static[atom.Predicate] = shard
	}
	shard[atom.Hash()] = atom
}

func (s *SparseStore) addDynamic(t int, atom ast.Atom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.dynamic[t]
	if !ok {
		bucket = make(map[ast.PredicateSym]map[uint64]ast.Atom)
		s.dynamic[t] = bucket
	}
	shard, ok := bucket[atom.Predicate]
	if !ok {
		shard = make(map[uint64]ast.Atom)
		bucket[atom.Predicate] = shard
	}
	shard[atom.Hash()] = atom
}

// FactsAt returns every atom true at timestep t: the union of the static
// tier and the dynamic tier's bucket for t. The returned slice is a fresh
// copy; callers may not mutate the store through it.
func (s *SparseStore) FactsAt(t int) []ast.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ast.Atom
	for _, shard := range s.static {
		for _, a := range shard {
			out = append(out, a)
		}
	}
	for _, shard := range s.dynamic[t] {
		for _, a := range shard {
			out = append(out, a)
		}
	}
	return out
}

// FactsByPredAt returns every atom of the given predicate true at timestep
// t.
func (s *SparseStore) FactsByPredAt(pred ast.PredicateSym, t int) []ast.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ast.Atom
	for _, a := range s.static[pred] {
		out = append(out, a)
	}
	if bucket, ok := s.dynamic[t]; ok {
		for _, a := range bucket[pred] {
			out = append(out, a)
		}
	}
	return out
}

// Contains reports whether atom holds at timestep t.
func (s *SparseStore) Contains(atom ast.Atom, t int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := atom.Hash()
	if _, ok := s.static[atom.Predicate][key]; ok {
		return true
	}
	if bucket, ok := s.dynamic[t]; ok {
		if _, ok := bucket[atom.Predicate][key]; ok {
			return true
		}
	}
	return false
}

// Predicates lists every predicate symbol with at least one fact in the
// store, across both tiers.
func (s *SparseStore) Predicates() []ast.PredicateSym {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[ast.PredicateSym]bool)
	for p := range s.static {
		seen[p] = true
	}
	for _, bucket := range s.dynamic {
		for p := range bucket {
			seen[p] = true
		}
	}
	preds := make([]ast.PredicateSym, 0, len(seen))
	for p := range seen {
		preds = append(preds, p)
	}
	return preds
}

// EstimateFactCount returns the approximate number of (atom, validity)
// entries in the store -- static facts are counted once, dynamic facts once
// per timestep they hold at.
func (s *SparseStore) EstimateFactCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := 0
	for _, shard := range s.static {
		c += len(shard)
	}
	for _, bucket := range s.dynamic {
		for _, shard := range bucket {
			c += len(shard)
		}
	}
	return c
}
