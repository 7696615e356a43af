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

// Package parse provides methods to parse rules, atoms and CSV fact files
// for the temporal reasoner. The grammar is deliberately small -- a single
// level of parentheses, no nested compound terms -- so parsing is hand
// rolled rather than generated.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temporalfacts/tdreasoner/ast"
)

// Atom parses a single textual atom, e.g. "friend(a,b)" or the arity-0
// "flag". Returns ErrInvalidAtomSyntax on malformed input.
func Atom(s string) (ast.Atom, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ast.Atom{}, fmt.Errorf("%w: empty atom", ast.ErrInvalidAtomSyntax)
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if !isIdent(s) {
			return ast.Atom{}, fmt.Errorf("%w: malformed predicate name %q", ast.ErrInvalidAtomSyntax, s)
		}
		return ast.NewAtom(s), nil
	}
	if !strings.HasSuffix(s, ")") {
		return ast.Atom{}, fmt.Errorf("%w: unbalanced parens in %q", ast.ErrInvalidAtomSyntax, s)
	}
	pred := strings.TrimSpace(s[:open])
	if !isIdent(pred) {
		return ast.Atom{}, fmt.Errorf("%w: malformed predicate name %q", ast.ErrInvalidAtomSyntax, pred)
	}
	argsStr := s[open+1 : len(s)-1]
	argStrs := splitTopLevel(argsStr, ',')
	args := make([]ast.Term, 0, len(argStrs))
	for _, a := range argStrs {
		a = strings.TrimSpace(a)
		if a == "" {
			return ast.Atom{}, fmt.Errorf("%w: empty argument in %q", ast.ErrInvalidAtomSyntax, s)
		}
		args = append(args, ast.NewTerm(a))
	}
	return ast.NewAtom(pred, args...), nil
}

// Literal parses a single literal, with an optional "not " or "~" negation
// prefix.
func Literal(s string) (ast.Literal, error) {
	s = strings.TrimSpace(s)
	negated := false
	switch {
	case strings.HasPrefix(s, "not "):
		negated = true
		s = strings.TrimSpace(s[len("not "):])
	case strings.HasPrefix(s, "~"):
		negated = true
		s = strings.TrimSpace(s[1:])
	}
	a, err := Atom(s)
	if err != nil {
		return ast.Literal{}, err
	}
	return ast.Literal{Atom: a, Negated: negated}, nil
}

// Rule parses the textual rule form
//
//	HEAD [: [s1,e1];[s2,e2]] <-DELAY b1, b2, ...
//
// Name is supplied by the caller, since the textual syntax carries none.
func Rule(name, s string) (ast.Rule, error) {
	s = strings.TrimSpace(s)
	arrow := strings.Index(s, "<-")
	if arrow < 0 {
		return ast.Rule{}, fmt.Errorf("%w: rule %q missing \"<-\"", ast.ErrInvalidRuleSyntax, s)
	}
	headPart := strings.TrimSpace(s[:arrow])
	rest := s[arrow+2:]

	headText := headPart
	var intervals []ast.Interval
	if colon := strings.Index(headPart, ":"); colon >= 0 {
		headText = strings.TrimSpace(headPart[:colon])
		var err error
		intervals, err = Intervals(headPart[colon+1:])
		if err != nil {
			return ast.Rule{}, fmt.Errorf("%w: rule %q: %v", ast.ErrInvalidRuleSyntax, s, err)
		}
	}
	head, err := Atom(headText)
	if err != nil {
		return ast.Rule{}, fmt.Errorf("%w: rule %q head: %v", ast.ErrInvalidRuleSyntax, s, err)
	}

	delay := 0
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 {
		delay, err = strconv.Atoi(rest[:i])
		if err != nil {
			return ast.Rule{}, fmt.Errorf("%w: rule %q: bad delay: %v", ast.ErrInvalidRuleSyntax, s, err)
		}
	}
	bodyText := strings.TrimSpace(rest[i:])

	var body []ast.Literal
	if bodyText != "" {
		for _, litStr := range splitTopLevel(bodyText, ',') {
			litStr = strings.TrimSpace(litStr)
			if litStr == "" {
				return ast.Rule{}, fmt.Errorf("%w: rule %q: empty body literal", ast.ErrInvalidRuleSyntax, s)
			}
			lit, err := Literal(litStr)
			if err != nil {
				return ast.Rule{}, fmt.Errorf("%w: rule %q: %v", ast.ErrInvalidRuleSyntax, s, err)
			}
			body = append(body, lit)
		}
	}
	return ast.NewRuleWithOffsets(name, head, body, delay, 0, 0, intervals)
}

// Intervals parses a ";"-separated list of "[start,end]" intervals.
func Intervals(s string) ([]ast.Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []ast.Interval
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
			return nil, fmt.Errorf("%w: malformed interval %q", ast.ErrInvalidInterval, part)
		}
		inner := part[1 : len(part)-1]
		bounds := strings.Split(inner, ",")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("%w: malformed interval %q", ast.ErrInvalidInterval, part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed interval %q", ast.ErrInvalidInterval, part)
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed interval %q", ast.ErrInvalidInterval, part)
		}
		iv, err := ast.NewInterval(start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

// splitTopLevel splits s on sep, ignoring any sep found inside balanced
// parentheses -- there is exactly one nesting level in this grammar, but
// splitTopLevel is written to tolerate depth in case a future extension adds
// compound terms.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '/' || c == '-' || c == '.'
		if !isAlnum {
			return false
		}
	}
	return true
}
