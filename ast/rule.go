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
	"fmt"
	"strings"
)

// Rule is a Horn clause with a lookback delay and an optional head-validity
// offset window: at trigger timestep t, when every Body literal is
// simultaneously satisfied by a substitution over factsAt(t), Head is
// grounded and asserted at each tt = t + Delay + dt, for dt ranging over
// [HeadStartOffset, HeadEndOffset], provided 0 <= tt <= T.
//
// Name is supplied by the caller (not part of the textual syntax) and is
// used purely for provenance labeling.
type Rule struct {
	Name            string
	Head            Atom
	Body            []Literal
	Delay           int
	HeadStartOffset int
	HeadEndOffset   int

	// ActiveIntervals restricts the timesteps at which the rule may fire.
	// Empty means the rule is active at every t.
	ActiveIntervals []Interval
}

// NewRule constructs a rule with the default head offset window [0,0] and no
// active-interval restriction, validating delay and offsets.
func NewRule(name string, head Atom, body []Literal, delay int) (Rule, error) {
	return NewRuleWithOffsets(name, head, body, delay, 0, 0, nil)
}

// NewRuleWithOffsets constructs a fully-specified rule.
func NewRuleWithOffsets(name string, head Atom, body []Literal, delay, startOffset, endOffset int, activeIntervals []Interval) (Rule, error) {
	if delay < 0 {
		return Rule{}, fmt.Errorf("%w: rule %q has negative delay %d", ErrInvalidRuleSyntax, name, delay)
	}
	if endOffset < startOffset {
		return Rule{}, fmt.Errorf("%w: rule %q has headEndOffset %d < headStartOffset %d", ErrInvalidRuleSyntax, name, endOffset, startOffset)
	}
	return Rule{
		Name:            name,
		Head:            head,
		Body:            body,
		Delay:           delay,
		HeadStartOffset: startOffset,
		HeadEndOffset:   endOffset,
		ActiveIntervals: activeIntervals,
	}, nil
}

// IsActiveAt reports whether the rule may fire at timestep t.
func (r Rule) IsActiveAt(t int) bool {
	if len(r.ActiveIntervals) == 0 {
		return true
	}
	for _, iv := range r.ActiveIntervals {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// Offsets returns the inclusive range of head-offset deltas.
func (r Rule) Offsets() []int {
	offsets := make([]int, 0, r.HeadEndOffset-r.HeadStartOffset+1)
	for dt := r.HeadStartOffset; dt <= r.HeadEndOffset; dt++ {
		offsets = append(offsets, dt)
	}
	return offsets
}

// GroundHead applies subst to the head atom.
func (r Rule) GroundHead(subst Subst) Atom {
	return r.Head.ApplySubst(subst)
}

// String renders the rule in its textual form,
// "HEAD [: intervals] <-DELAY b1, b2, ...".
func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.Head.String())
	if len(r.ActiveIntervals) > 0 {
		sb.WriteString(": ")
		for i, iv := range r.ActiveIntervals {
			if i > 0 {
				sb.WriteString(";")
			}
			sb.WriteString(iv.String())
		}
	}
	sb.WriteString(fmt.Sprintf(" <-%d ", r.Delay))
	for i, lit := range r.Body {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(lit.String())
	}
	return sb.String()
}

// Vars returns the set of variables appearing anywhere in the rule (head and
// body), in first-occurrence order.
func (r Rule) Vars() []Variable {
	seen := make(map[Variable]bool)
	var vars []Variable
	add := func(a Atom) {
		for _, arg := range a.Args {
			if v, ok := arg.(Variable); ok && !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	add(r.Head)
	for _, lit := range r.Body {
		add(lit.Atom)
	}
	return vars
}
