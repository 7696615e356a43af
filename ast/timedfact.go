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

import "fmt"

// TimedFact pairs a ground atom with a non-empty list of validity intervals
// and an opaque identifier used by callers for cross-referencing. The
// engine never interprets ID; it is pure provenance bookkeeping for the
// producer of the fact.
type TimedFact struct {
	Atom      Atom
	ID        string
	Intervals []Interval
}

// NewTimedFact validates and constructs a TimedFact. The atom must be
// ground and at least one interval must be given.
func NewTimedFact(atom Atom, id string, intervals ...Interval) (TimedFact, error) {
	if !atom.IsGround() {
		return TimedFact{}, fmt.Errorf("%w: atom %v is not ground", ErrNullArgument, atom)
	}
	if len(intervals) == 0 {
		return TimedFact{}, fmt.Errorf("%w: TimedFact %v has no intervals", ErrNullArgument, atom)
	}
	return TimedFact{atom, id, intervals}, nil
}

// HoldsAt reports whether the atom is asserted at timestep t: the
// disjunction of its intervals.
func (f TimedFact) HoldsAt(t int) bool {
	for _, iv := range f.Intervals {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// String returns a debug representation.
func (f TimedFact) String() string {
	return fmt.Sprintf("%s#%s%v", f.Atom, f.ID, f.Intervals)
}
