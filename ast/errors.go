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

import "errors"

// Sentinel errors reported to callers, per the input-validation taxonomy:
// reject with a typed error at call time, never panic and never silently
// swallow a malformed definition.
var (
	// ErrInvalidAtomSyntax is returned by parse.Atom/parse.Literal on malformed
	// textual atoms (unbalanced parens, empty arguments, ...).
	ErrInvalidAtomSyntax = errors.New("ast: invalid atom syntax")

	// ErrInvalidRuleSyntax is returned by the rule parser on malformed rule
	// text (missing "<-", unparsable delay, ...).
	ErrInvalidRuleSyntax = errors.New("ast: invalid rule syntax")

	// ErrInvalidInterval is returned when end < start.
	ErrInvalidInterval = errors.New("ast: invalid interval")

	// ErrInvalidTimeRange is returned when a reasoner is asked to evaluate a
	// negative or otherwise nonsensical timeline bound T.
	ErrInvalidTimeRange = errors.New("ast: invalid time range")

	// ErrNullArgument is returned when a required argument is nil or zero-valued
	// in a way that cannot be a legitimate fact or rule (e.g. a TimedFact with
	// no intervals).
	ErrNullArgument = errors.New("ast: null argument")
)
