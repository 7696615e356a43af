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

// Interval is a closed discrete range [Start, End] of timesteps, with
// 0 <= Start <= End. Unlike the metric, continuous-time intervals of a
// general temporal logic, bounds here are plain integers: the reasoner's
// timeline is always bounded and discretized to [0, T].
type Interval struct {
	Start int
	End   int
}

// NewInterval constructs an interval, returning ErrInvalidInterval if
// end < start.
func NewInterval(start, end int) (Interval, error) {
	if end < start {
		return Interval{}, fmt.Errorf("%w: end %d < start %d", ErrInvalidInterval, end, start)
	}
	return Interval{start, end}, nil
}

// Contains reports whether t falls within the closed interval.
func (iv Interval) Contains(t int) bool {
	return iv.Start <= t && t <= iv.End
}

// Clamp returns iv restricted to [0, tMax], the reasoner's timeline. The
// result may be empty (Start > End), which the caller should check with
// Empty.
func (iv Interval) Clamp(tMax int) Interval {
	start := iv.Start
	if start < 0 {
		start = 0
	}
	end := iv.End
	if end > tMax {
		end = tMax
	}
	return Interval{start, end}
}

// Empty reports whether the interval contains no timesteps.
func (iv Interval) Empty() bool {
	return iv.End < iv.Start
}

// SpansWholeTimeline reports whether iv, once clamped, equals [0, tMax] --
// the classification rule that promotes a fact to static storage.
func (iv Interval) SpansWholeTimeline(tMax int) bool {
	c := iv.Clamp(tMax)
	return !c.Empty() && c.Start == 0 && c.End == tMax
}

// String renders the interval as "[start,end]".
func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d]", iv.Start, iv.End)
}

// Equals reports interval equality.
func (iv Interval) Equals(o Interval) bool {
	return iv.Start == o.Start && iv.End == o.End
}
