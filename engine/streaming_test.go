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
	"testing"

	"github.com/temporalfacts/tdreasoner/ast"
)

// TestStreamingReasonerS6 implements scenario S6: inserting user(u1) then
// suspended(u1) then user(u2) against the S2 rule set triggers the "active"
// observer exactly twice.
func TestStreamingReasonerS6(t *testing.T) {
	rule := mustRule(t, "r_active", "active(x) <-0 user(x), not suspended(x)")
	r, err := NewStreamingReasoner(0, []ast.Rule{rule})
	if err != nil {
		t.Fatal(err)
	}
	var activeCount int
	r.OnNewFact(ast.PredicateSym{Symbol: "active", Arity: 1}, func(atom ast.Atom, t int) {
		activeCount++
	})
	var globalCount int
	r.OnAnyNewFact(func(atom ast.Atom, t int) {
		globalCount++
	})

	if _, err := r.AddFactIncremental(mustFact(t, "user(u1)", "f1", 0, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddFactIncremental(mustFact(t, "suspended(u1)", "f2", 0, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddFactIncremental(mustFact(t, "user(u2)", "f3", 0, 0)); err != nil {
		t.Fatal(err)
	}

	if activeCount != 2 {
		t.Errorf("active observer called %d times, want 2", activeCount)
	}
	if globalCount != 2 {
		t.Errorf("global observer called %d times, want 2", globalCount)
	}
	if !containsAtom(r.GetAllFactsAt(0), "active(u1)") {
		t.Error("active(u1) should remain present (retraction is out of scope)")
	}
}

func TestStreamingReasonerReturnsNewDerivations(t *testing.T) {
	rule := mustRule(t, "r_base", "reach(x,y) <-0 friend(x,y)")
	r, err := NewStreamingReasoner(5, []ast.Rule{rule})
	if err != nil {
		t.Fatal(err)
	}
	derived, err := r.AddFactIncremental(mustFact(t, "friend(a,b)", "f1", 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(derived) != 6 {
		t.Fatalf("len(derived) = %d, want 6 (one reach(a,b) per t in [0,5])", len(derived))
	}
}

func TestStreamingReasonerObserverPanicIsIsolated(t *testing.T) {
	rule := mustRule(t, "r_base", "reach(x,y) <-0 friend(x,y)")
	r, err := NewStreamingReasoner(0, []ast.Rule{rule})
	if err != nil {
		t.Fatal(err)
	}
	r.OnAnyNewFact(func(atom ast.Atom, t int) {
		panic("boom")
	})
	called := false
	r.OnAnyNewFact(func(atom ast.Atom, t int) {
		called = true
	})
	if _, err := r.AddFactIncremental(mustFact(t, "friend(a,b)", "f1", 0, 0)); err != nil {
		t.Fatalf("AddFactIncremental should not fail even if an observer panics: %v", err)
	}
	if !called {
		t.Error("second observer should still run after the first panics")
	}
}

func TestStreamingReasonerQueryIsConsistentSnapshot(t *testing.T) {
	r, err := NewStreamingReasoner(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddFactIncremental(mustFact(t, "user(u1)", "f1", 0, 0)); err != nil {
		t.Fatal(err)
	}
	got := r.Query(ast.PredicateSym{Symbol: "user", Arity: 1}, 0)
	if !containsAtom(got, "user(u1)") {
		t.Errorf("Query() = %v, want user(u1)", got)
	}
}
