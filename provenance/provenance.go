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

// Package provenance records, for every derived (atom, t) pair, the rule and
// substitution that first produced it, and reconstructs derivation trees on
// demand. Recording is write-once: the first derivation recorded for a key
// wins, matching the semi-naive and naive reasoners' "exactly one derivation
// info per (atom,t)" discipline.
package provenance

import (
	"fmt"
	"sync"

	"github.com/temporalfacts/tdreasoner/ast"
)

// AtomTime identifies a fact at a specific timestep.
type AtomTime struct {
	Atom ast.Atom
	Time int
}

func (at AtomTime) key() string {
	return fmt.Sprintf("%d#%s", at.Time, at.Atom.String())
}

// String renders "atom@t".
func (at AtomTime) String() string {
	return fmt.Sprintf("%s@%d", at.Atom, at.Time)
}

// Info is the derivation record attached to one derived (atom, t): which
// rule fired, under what substitution, and from which earlier facts.
type Info struct {
	RuleName string
	Subst    ast.Subst
	Sources  []AtomTime
}

// Store holds provenance entries for derived facts. Base facts (loaded
// directly, not derived by any rule) have no entry; GetDerivationTree treats
// a missing entry as a leaf. Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Info
}

// New constructs an empty provenance store.
func New() *Store {
	return &Store{entries: make(map[string]Info)}
}

// Record attaches info to (atom, t), unless an entry already exists, in
// which case Record is a no-op and reports false. Callers fence this call
// behind a successful insert of (atom, t), e.g. SparseStore.AddDerived, so that exactly one Info is ever
// attached per key.
func (s *Store) Record(atom ast.Atom, t int, info Info) bool {
	key := AtomTime{atom, t}.key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false
	}
	s.entries[key] = info
	return true
}

// Get returns the recorded Info for (atom, t), if any.
func (s *Store) Get(atom ast.Atom, t int) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.entries[AtomTime{atom, t}.key()]
	return info, ok
}

// Tree is a node in a reconstructed derivation tree: a leaf if RuleName is
// empty (a base fact, or a cut-off revisit), else an internal node with one
// Children entry per source the recorded rule consumed.
type Tree struct {
	Atom     ast.Atom
	Time     int
	RuleName string
	Children []*Tree
}

// GetDerivationTree reconstructs the derivation tree rooted at (atom, t).
// Revisiting the same (atom, t) within one recursive descent is cut off and
// rendered as a leaf, since the engine does not guarantee acyclicity when
// caller-supplied rules derive an atom from itself within a single
// iteration; this keeps tree depth finite regardless.
func (s *Store) GetDerivationTree(atom ast.Atom, t int) *Tree {
	return s.buildTree(atom, t, make(map[string]bool))
}

func (s *Store) buildTree(atom ast.Atom, t int, onPath map[string]bool) *Tree {
	key := AtomTime{atom, t}.key()
	if onPath[key] {
		return &Tree{Atom: atom, Time: t}
	}
	info, ok := s.Get(atom, t)
	if !ok {
		return &Tree{Atom: atom, Time: t}
	}
	onPath[key] = true
	defer delete(onPath, key)

	node := &Tree{Atom: atom, Time: t, RuleName: info.RuleName}
	for _, src := range info.Sources {
		node.Children = append(node.Children, s.buildTree(src.Atom, src.Time, onPath))
	}
	return node
}
