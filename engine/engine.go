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

// Package engine implements the forward-chaining reasoners: a reference
// NaiveReasoner, a semi-naive OptimizedReasoner, and the StreamingReasoner /
// IncrementalReasoner pair used for live ingestion. All four share the same
// rule semantics: at trigger timestep t, a rule active at t whose body is
// satisfied by a substitution over factsAt(t) asserts its grounded head at
// every tt = t + delay + dt, dt ranging over the rule's head-offset window.
package engine

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/temporalfacts/tdreasoner/ast"
)

// largeTimeRangeWarningThreshold is the T beyond which every reasoner
// constructor (via checkTimeRange) logs a warning, but still proceeds,
// about the size of the timeline.
const largeTimeRangeWarningThreshold = 10000

// parallelRuleThreshold is the minimum number of rules active at a single
// timestep before OptimizedReasoner evaluates them concurrently.
const parallelRuleThreshold = 8

// EngineError marks an invariant violation distinct from an ordinary
// input-validation rejection: a bug, not a malformed caller input. The
// wrapped error is preserved for post-mortem inspection.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func checkTimeRange(t int) error {
	if t < 0 {
		return fmt.Errorf("%w: T=%d", ast.ErrInvalidTimeRange, t)
	}
	if t > largeTimeRangeWarningThreshold {
		log.Warningf("engine: large time range T=%d, this reasoner allocates a dense [0,T] timeline", t)
	}
	return nil
}

// AtomTime identifies a derived fact at a specific timestep, returned from
// the streaming and incremental entry points.
type AtomTime struct {
	Atom ast.Atom
	Time int
}

// Observer is called once for each newly derived atom matching a registered
// predicate.
type Observer func(atom ast.Atom, t int)

// GlobalObserver is called once for every newly derived (atom, t) pair,
// regardless of predicate.
type GlobalObserver func(atom ast.Atom, t int)

func runObserver(label string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("engine: observer %s panicked: %v", label, r)
		}
	}()
	fn()
}
