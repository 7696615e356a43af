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

import (
	"testing"
)

func TestNewTermConvention(t *testing.T) {
	tests := []struct {
		symbol string
		wantVar bool
	}{
		{"x", true},
		{"xyz", true},
		{"X", false},
		{"/foo", false},
		{"123", false},
		{"_", false},
	}
	for _, test := range tests {
		term := NewTerm(test.symbol)
		_, isVar := term.(Variable)
		if isVar != test.wantVar {
			t.Errorf("NewTerm(%q) variable = %v, want %v", test.symbol, isVar, test.wantVar)
		}
	}
}

func TestAtomEquals(t *testing.T) {
	a := NewAtom("friend", Constant{"a"}, Constant{"b"})
	b := NewAtom("friend", Constant{"a"}, Constant{"b"})
	c := NewAtom("friend", Constant{"a"}, Constant{"c"})
	if !a.Equals(b) {
		t.Errorf("%v.Equals(%v) = false, want true", a, b)
	}
	if a.Equals(c) {
		t.Errorf("%v.Equals(%v) = true, want false", a, c)
	}
}

func TestAtomIsGround(t *testing.T) {
	ground := NewAtom("p", Constant{"a"})
	notGround := NewAtom("p", Variable{"X"})
	if !ground.IsGround() {
		t.Errorf("%v.IsGround() = false, want true", ground)
	}
	if notGround.IsGround() {
		t.Errorf("%v.IsGround() = true, want false", notGround)
	}
}

func TestAtomApplySubst(t *testing.T) {
	pattern := NewAtom("reach", Variable{"x"}, Variable{"y"})
	subst := EmptySubst().Extend(Variable{"x"}, Constant{"a"}).Extend(Variable{"y"}, Constant{"b"})
	got := pattern.ApplySubst(subst)
	want := NewAtom("reach", Constant{"a"}, Constant{"b"})
	if !got.Equals(want) {
		t.Errorf("ApplySubst() = %v, want %v", got, want)
	}
}

func TestAtomStringArityZero(t *testing.T) {
	a := NewAtom("flag")
	if got, want := a.String(), "flag"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLiteralString(t *testing.T) {
	pos := Literal{NewAtom("p", Constant{"a"}), false}
	neg := Literal{NewAtom("p", Constant{"a"}), true}
	if got, want := pos.String(), "p(a)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := neg.String(), "not p(a)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIntervalContains(t *testing.T) {
	iv, err := NewInterval(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	for t2 := 0; t2 <= 7; t2++ {
		want := t2 >= 2 && t2 <= 5
		if got := iv.Contains(t2); got != want {
			t.Errorf("Contains(%d) = %v, want %v", t2, got, want)
		}
	}
}

func TestNewIntervalRejectsBackwards(t *testing.T) {
	if _, err := NewInterval(5, 2); err == nil {
		t.Error("NewInterval(5, 2) succeeded, want error")
	}
}

func TestIntervalSpansWholeTimeline(t *testing.T) {
	whole, _ := NewInterval(0, 10)
	partial, _ := NewInterval(2, 10)
	if !whole.SpansWholeTimeline(10) {
		t.Errorf("%v.SpansWholeTimeline(10) = false, want true", whole)
	}
	if partial.SpansWholeTimeline(10) {
		t.Errorf("%v.SpansWholeTimeline(10) = true, want false", partial)
	}
}

func TestTimedFactHoldsAt(t *testing.T) {
	iv1, _ := NewInterval(0, 2)
	iv2, _ := NewInterval(5, 5)
	fact, err := NewTimedFact(NewAtom("spike", Constant{"s1"}), "f1", iv1, iv2)
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		t    int
		want bool
	}{
		{0, true}, {2, true}, {3, false}, {5, true}, {6, false},
	} {
		if got := fact.HoldsAt(tc.t); got != tc.want {
			t.Errorf("HoldsAt(%d) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestNewTimedFactRejectsNonGround(t *testing.T) {
	iv, _ := NewInterval(0, 1)
	if _, err := NewTimedFact(NewAtom("p", Variable{"x"}), "f", iv); err == nil {
		t.Error("NewTimedFact with non-ground atom succeeded, want error")
	}
}

func TestNewTimedFactRejectsNoIntervals(t *testing.T) {
	if _, err := NewTimedFact(NewAtom("p", Constant{"a"}), "f"); err == nil {
		t.Error("NewTimedFact with no intervals succeeded, want error")
	}
}

func TestRuleIsActiveAt(t *testing.T) {
	iv, _ := NewInterval(2, 4)
	r, err := NewRuleWithOffsets("r1", NewAtom("h"), nil, 0, 0, 0, []Interval{iv})
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		t    int
		want bool
	}{
		{1, false}, {2, true}, {4, true}, {5, false},
	} {
		if got := r.IsActiveAt(tc.t); got != tc.want {
			t.Errorf("IsActiveAt(%d) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestRuleAlwaysActiveWhenNoIntervalsGiven(t *testing.T) {
	r, err := NewRule("r1", NewAtom("h"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsActiveAt(1000) {
		t.Error("rule with no ActiveIntervals should be active everywhere")
	}
}

func TestRuleRejectsNegativeDelay(t *testing.T) {
	if _, err := NewRule("r1", NewAtom("h"), nil, -1); err == nil {
		t.Error("NewRule with negative delay succeeded, want error")
	}
}

func TestRuleRejectsInvertedOffsets(t *testing.T) {
	if _, err := NewRuleWithOffsets("r1", NewAtom("h"), nil, 0, 3, 1, nil); err == nil {
		t.Error("NewRuleWithOffsets with endOffset < startOffset succeeded, want error")
	}
}

func TestRuleOffsets(t *testing.T) {
	r, err := NewRuleWithOffsets("r1", NewAtom("h"), nil, 0, 0, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := r.Offsets()
	want := []int{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Offsets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Offsets()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSubstExtendDoesNotMutateReceiver(t *testing.T) {
	base := EmptySubst().Extend(Variable{"x"}, Constant{"a"})
	extended := base.Extend(Variable{"y"}, Constant{"b"})
	if _, ok := base.Get(Variable{"y"}); ok {
		t.Error("Extend mutated the receiver")
	}
	if c, ok := extended.Get(Variable{"x"}); !ok || c.Symbol != "a" {
		t.Errorf("extended.Get(x) = %v, %v, want a, true", c, ok)
	}
}
