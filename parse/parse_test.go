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

package parse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/temporalfacts/tdreasoner/ast"
)

func TestAtomRoundTrip(t *testing.T) {
	tests := []string{
		"friend(a,b)",
		"flag",
		"reach(x,z)",
		"p(A,B,c)",
	}
	for _, in := range tests {
		got, err := Atom(in)
		if err != nil {
			t.Errorf("Atom(%q) failed: %v", in, err)
			continue
		}
		if got.String() != in {
			t.Errorf("Atom(%q).String() = %q, want %q", in, got.String(), in)
		}
	}
}

func TestAtomRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"foo(",
		"foo(a,)",
		"foo(,a)",
		"foo bar(a)",
	}
	for _, in := range tests {
		if _, err := Atom(in); err == nil {
			t.Errorf("Atom(%q) succeeded, want error", in)
		}
	}
}

func TestLiteralNegation(t *testing.T) {
	tests := []struct {
		in      string
		negated bool
	}{
		{"not suspended(u2)", true},
		{"~suspended(u2)", true},
		{"suspended(u2)", false},
	}
	for _, test := range tests {
		got, err := Literal(test.in)
		if err != nil {
			t.Fatalf("Literal(%q) failed: %v", test.in, err)
		}
		if got.Negated != test.negated {
			t.Errorf("Literal(%q).Negated = %v, want %v", test.in, got.Negated, test.negated)
		}
	}
}

func TestRuleBasic(t *testing.T) {
	r, err := Rule("r_reach_base", "reach(x,y) <-0 friend(x,y)")
	if err != nil {
		t.Fatalf("Rule() failed: %v", err)
	}
	wantHead := ast.NewAtom("reach", ast.Variable{"x"}, ast.Variable{"y"})
	if !r.Head.Equals(wantHead) {
		t.Errorf("Head = %v, want %v", r.Head, wantHead)
	}
	if r.Delay != 0 {
		t.Errorf("Delay = %d, want 0", r.Delay)
	}
	if len(r.Body) != 1 {
		t.Fatalf("len(Body) = %d, want 1", len(r.Body))
	}
}

func TestRuleWithDelayAndNegation(t *testing.T) {
	r, err := Rule("r_active", "active(x) <-0 user(x), not suspended(x)")
	if err != nil {
		t.Fatalf("Rule() failed: %v", err)
	}
	if len(r.Body) != 2 {
		t.Fatalf("len(Body) = %d, want 2", len(r.Body))
	}
	if !r.Body[1].Negated {
		t.Error("second body literal should be negated")
	}
}

func TestRuleDefaultDelayIsZero(t *testing.T) {
	r, err := Rule("r", "h(x) <- b(x)")
	if err != nil {
		t.Fatalf("Rule() failed: %v", err)
	}
	if r.Delay != 0 {
		t.Errorf("Delay = %d, want 0", r.Delay)
	}
}

func TestRuleWithExplicitDelay(t *testing.T) {
	r, err := Rule("r_transitive", "reach(x,z) <-1 reach(x,y), friend(y,z)")
	if err != nil {
		t.Fatalf("Rule() failed: %v", err)
	}
	if r.Delay != 1 {
		t.Errorf("Delay = %d, want 1", r.Delay)
	}
	if len(r.Body) != 2 {
		t.Fatalf("len(Body) = %d, want 2", len(r.Body))
	}
}

func TestRuleWithActiveIntervals(t *testing.T) {
	r, err := Rule("r", "h(x) : [0,5];[10,12] <-0 b(x)")
	if err != nil {
		t.Fatalf("Rule() failed: %v", err)
	}
	if len(r.ActiveIntervals) != 2 {
		t.Fatalf("len(ActiveIntervals) = %d, want 2", len(r.ActiveIntervals))
	}
	want := []ast.Interval{{Start: 0, End: 5}, {Start: 10, End: 12}}
	if diff := cmp.Diff(want, r.ActiveIntervals); diff != "" {
		t.Errorf("ActiveIntervals mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleRejectsMissingArrow(t *testing.T) {
	if _, err := Rule("r", "h(x) b(x)"); err == nil {
		t.Error("Rule() with no \"<-\" succeeded, want error")
	}
}

func TestRuleAcceptsEmptyBody(t *testing.T) {
	r, err := Rule("r_fact_like", "h(x) <-0")
	if err != nil {
		t.Fatalf("Rule() failed: %v", err)
	}
	if len(r.Body) != 0 {
		t.Errorf("len(Body) = %d, want 0", len(r.Body))
	}
}

func TestIntervalsParsesMultiple(t *testing.T) {
	got, err := Intervals("[0,5];[10,12]")
	if err != nil {
		t.Fatalf("Intervals() failed: %v", err)
	}
	want := []ast.Interval{{Start: 0, End: 5}, {Start: 10, End: 12}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}
}

func TestIntervalsRejectsMalformed(t *testing.T) {
	if _, err := Intervals("[0,5"); err == nil {
		t.Error("Intervals() with unbalanced bracket succeeded, want error")
	}
}

func TestFactsLoadsCSV(t *testing.T) {
	csv := strings.Join([]string{
		"# a comment",
		"",
		"friend(a,b),f1,0,5",
		"friend(b,c),f2,0,5",
		"spike(s1),f3,0,2",
		"spike(s1),f3,5,5",
	}, "\n")
	facts, err := Facts(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Facts() failed: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("len(facts) = %d, want 3", len(facts))
	}
	spike := facts[2]
	if spike.ID != "f3" || len(spike.Intervals) != 2 {
		t.Errorf("spike fact = %+v, want ID f3 with 2 intervals", spike)
	}
	if !spike.HoldsAt(0) || spike.HoldsAt(3) || !spike.HoldsAt(5) {
		t.Errorf("spike.HoldsAt mismatch for %+v", spike)
	}
}

func TestFactsRejectsReusedNameDifferentAtom(t *testing.T) {
	csv := "friend(a,b),f1,0,5\nfriend(a,c),f1,6,7\n"
	if _, err := Facts(strings.NewReader(csv)); err == nil {
		t.Error("Facts() with reused fact_name and different atom succeeded, want error")
	}
}

func TestFactsRejectsWrongFieldCount(t *testing.T) {
	if _, err := Facts(strings.NewReader("friend(a,b),f1,0\n")); err == nil {
		t.Error("Facts() with 3 fields succeeded, want error")
	}
}
