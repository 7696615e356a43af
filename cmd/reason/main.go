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

// Command reason loads a rule file and a CSV fact file, runs a reasoner
// over [0, T], and prints the resulting facts (optionally restricted to one
// predicate).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/golang/glog"
	"go.uber.org/multierr"

	"github.com/temporalfacts/tdreasoner/ast"
	"github.com/temporalfacts/tdreasoner/engine"
	"github.com/temporalfacts/tdreasoner/parse"
)

var (
	rulesPath = flag.String("rules", "", "path to a file with one rule per non-blank, non-comment line")
	factsPath = flag.String("facts", "", "path to a CSV fact file: predicate(args),fact_name,start_time,end_time")
	tMax      = flag.Int("t", 10, "the reasoner's timeline bound T")
	mode      = flag.String("mode", "optimized", "which reasoner to run: \"naive\" or \"optimized\"")
	query     = flag.String("query", "", "if non-empty, restrict output to this predicate")
)

func main() {
	flag.Parse()
	if *rulesPath == "" || *factsPath == "" {
		log.Exit("both --rules and --facts are required")
	}

	rules, err := loadRules(*rulesPath)
	if err != nil {
		log.Exitf("loading rules from %s: %v", *rulesPath, err)
	}
	facts, err := loadFacts(*factsPath)
	if err != nil {
		log.Exitf("loading facts from %s: %v", *factsPath, err)
	}

	factsByTime, err := run(rules, facts, *tMax, *mode)
	if err != nil {
		log.Exitf("reasoning failed: %v", err)
	}

	printFacts(factsByTime, *query)
}

// loadRules parses every non-comment line of path as a rule. Malformed lines
// don't stop the scan: their errors are collected and joined so a caller
// fixing a rule file sees every mistake in one pass rather than one per run.
func loadRules(path string) ([]ast.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []ast.Rule
	var errs error
	scanner := bufio.NewScanner(f)
	i := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := parse.Rule(fmt.Sprintf("r%d", i), line)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			i++
			continue
		}
		rules = append(rules, rule)
		i++
	}
	errs = multierr.Append(errs, scanner.Err())
	if errs != nil {
		return nil, errs
	}
	return rules, nil
}

func loadFacts(path string) ([]ast.TimedFact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse.Facts(f)
}

func run(rules []ast.Rule, facts []ast.TimedFact, tMax int, mode string) ([][]ast.Atom, error) {
	switch mode {
	case "naive":
		r, err := engine.NewNaiveReasoner(tMax)
		if err != nil {
			return nil, err
		}
		for _, rule := range rules {
			if err := r.AddRule(rule); err != nil {
				return nil, err
			}
		}
		for _, f := range facts {
			if err := r.AddFact(f); err != nil {
				return nil, err
			}
		}
		interp, err := r.Reason()
		if err != nil {
			return nil, err
		}
		return interp.FactsByTime, nil
	case "optimized":
		r, err := engine.NewOptimizedReasoner(tMax)
		if err != nil {
			return nil, err
		}
		for _, rule := range rules {
			if err := r.AddRule(rule); err != nil {
				return nil, err
			}
		}
		for _, f := range facts {
			if err := r.AddFact(f); err != nil {
				return nil, err
			}
		}
		store, err := r.Reason()
		if err != nil {
			return nil, err
		}
		factsByTime := make([][]ast.Atom, tMax+1)
		for t := 0; t <= tMax; t++ {
			factsByTime[t] = store.FactsAt(t)
		}
		return factsByTime, nil
	default:
		return nil, fmt.Errorf("unknown --mode %q, want \"naive\" or \"optimized\"", mode)
	}
}

func printFacts(factsByTime [][]ast.Atom, predicateFilter string) {
	for t, atoms := range factsByTime {
		var lines []string
		for _, a := range atoms {
			if predicateFilter != "" && a.Predicate.Symbol != predicateFilter {
				continue
			}
			lines = append(lines, a.String())
		}
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Printf("%d\t%s\n", t, line)
		}
	}
}
