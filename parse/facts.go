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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/temporalfacts/tdreasoner/ast"
)

// Facts reads the optional CSV fact loader format from r:
//
//	predicate(args),fact_name,start_time,end_time
//
// Lines starting with "#" and blank lines are ignored. Every argument of a
// fact atom is read as a constant, whatever its case. Distinct lines
// sharing the same fact_name contribute additional intervals to the same
// TimedFact.
func Facts(r io.Reader) ([]ast.TimedFact, error) {
	type accum struct {
		atom      ast.Atom
		intervals []ast.Interval
	}
	order := make([]string, 0)
	byName := make(map[string]*accum)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitTopLevel(line, ',')
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %d: expected 4 fields, got %d: %q", ast.ErrInvalidAtomSyntax, lineNo, len(fields), line)
		}
		atom, err := Atom(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		for i, arg := range atom.Args {
			atom.Args[i] = ast.Constant{Symbol: arg.String()}
		}
		name := strings.TrimSpace(fields[1])
		start, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad start_time: %v", ast.ErrInvalidTimeRange, lineNo, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad end_time: %v", ast.ErrInvalidTimeRange, lineNo, err)
		}
		iv, err := ast.NewInterval(start, end)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		a, ok := byName[name]
		if !ok {
			a = &accum{atom: atom}
			byName[name] = a
			order = append(order, name)
		} else if !a.atom.Equals(atom) {
			return nil, fmt.Errorf("%w: line %d: fact_name %q reused with a different atom", ast.ErrInvalidAtomSyntax, lineNo, name)
		}
		a.intervals = append(a.intervals, iv)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	facts := make([]ast.TimedFact, 0, len(order))
	for _, name := range order {
		a := byName[name]
		f, err := ast.NewTimedFact(a.atom, name, a.intervals...)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}
