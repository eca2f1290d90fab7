/*
Copyright © 2019 the PFR authors.
This file is part of PFR.

PFR is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PFR is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PFR.  If not, see <http://www.gnu.org/licenses/>.
*/

package pfr

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
	"github.com/tealeg/xlsx"
)

// Outputter writes the results of a simulation to a file.
// outputVariables maps the names of the variables to be written to
// expressions that define how they are calculated from the profile
// variables (species names, "u", "rho", "p", "T" and "x"), user-defined
// variables and functions. If outputVariables is empty, all profile
// variables are written as they are.
//
// modelVariables is automatically generated based on the profile
// variables that are required to calculate the requested output
// variables.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction

	// MoleFractions, if true, causes species variables to be evaluated as
	// mole fractions rather than mass fractions.
	MoleFractions bool
}

// defaultFunctions returns the functions available in expressions:
// 'exp(x)', 'log(x)' (natural logarithm) and 'sqrt(x)'.
func defaultFunctions() map[string]govaluate.ExpressionFunction {
	unary := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("pfr: got %d arguments for function '%s', but needs 1", len(arg), name)
			}
			v, ok := arg[0].(float64)
			if !ok {
				return nil, fmt.Errorf("pfr: argument %v to function '%s' is not a number", arg[0], name)
			}
			return f(v), nil
		}
	}
	return map[string]govaluate.ExpressionFunction{
		"exp":  unary("exp", math.Exp),
		"log":  unary("log", math.Log),
		"sqrt": unary("sqrt", math.Sqrt),
	}
}

// NewOutputter initializes a new Outputter that writes to fileName. The
// output format is chosen by the file extension: ".csv", ".xlsx" or ".nc"
// (netCDF). outputFunctions are added to the default functions listed
// for defaultFunctions.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".xlsx", ".nc":
	default:
		return nil, fmt.Errorf("pfr: unsupported output file extension %q", ext)
	}
	funcs := defaultFunctions()
	for key, val := range outputFunctions {
		funcs[key] = val
	}
	o := &Outputter{
		fileName:        fileName,
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: funcs,
	}
	for k, v := range outputVariables {
		o.outputVariables[k] = v
	}
	if err := o.checkForDerivatives(len(o.outputVariables) + 1); err != nil {
		return nil, err
	}
	return o, nil
}

// checkForDerivatives replaces user-defined output variables that appear
// in other output variable expressions with their defining expressions,
// and sets modelVariables to the unique profile variables that are
// required. Definitions may be nested up to depth levels.
func (o *Outputter) checkForDerivatives(depth int) error {
	o.modelVariables = o.modelVariables[:0]
	changed := false
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("pfr: output variable %s: %w", key, err)
		}
		for _, v := range removeDuplicates(expression.Vars()) {
			def, ok := o.outputVariables[v]
			if ok && def != v {
				val = replaceVariable(val, v, "("+def+")")
				changed = true
				continue
			}
			o.modelVariables = append(o.modelVariables, v)
		}
		o.outputVariables[key] = val
	}
	if changed {
		if depth == 0 {
			return fmt.Errorf("pfr: circular output variable definitions in %v", o.outputVariables)
		}
		return o.checkForDerivatives(depth - 1)
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	sort.Strings(o.modelVariables)
	return nil
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// replaceVariable replaces the instances of name in expr that are not part
// of a longer variable name. For example, 'H2' is not a standalone
// variable in an expression if it appears as 'C2H2'.
func replaceVariable(expr, name, with string) string {
	var b strings.Builder
	for {
		i := strings.Index(expr, name)
		if i < 0 {
			b.WriteString(expr)
			return b.String()
		}
		end := i + len(name)
		standalone := (i == 0 || !isIdentChar(expr[i-1])) && (end == len(expr) || !isIdentChar(expr[end]))
		b.WriteString(expr[:i])
		if standalone {
			b.WriteString(with)
		} else {
			b.WriteString(name)
		}
		expr = expr[end:]
	}
}

// CheckOutputVars returns a function that ensures the output variables
// can be calculated from the variables of the simulated reactor.
func (o *Outputter) CheckOutputVars() SimulationManipulator {
	return func(s *Simulation) error {
		available := map[string]bool{"x": true}
		for _, n := range s.Reactor.VariableNames() {
			available[n] = true
		}
		for _, v := range o.modelVariables {
			if !available[v] {
				return fmt.Errorf("pfr: undefined variable name '%s'", v)
			}
		}
		return nil
	}
}

// Results calculates the output variables for every position in p. If no
// output variables were specified, all the variables of p are returned.
func (o *Outputter) Results(p *Profile) (map[string][]float64, error) {
	if o.MoleFractions {
		p = p.MoleFractions()
	}
	vars := o.outputVariables
	if len(vars) == 0 {
		vars = make(map[string]string, len(p.Names))
		for _, n := range p.Names {
			vars[n] = n
		}
	}
	results := make(map[string][]float64, len(vars))
	for name, exprStr := range vars {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("pfr: output variable %s: %w", name, err)
		}
		cols := make(map[string][]float64)
		for _, v := range expr.Vars() {
			if cols[v], err = p.Column(v); err != nil {
				return nil, fmt.Errorf("pfr: output variable %s: %w", name, err)
			}
		}
		vals := make([]float64, p.Len())
		params := make(map[string]interface{}, len(cols))
		for i := range vals {
			for v, col := range cols {
				params[v] = col[i]
			}
			r, err := expr.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("pfr: output variable %s at x=%g: %w", name, p.X[i], err)
			}
			f, ok := r.(float64)
			if !ok {
				return nil, fmt.Errorf("pfr: output variable %s at x=%g: result %v is not a number", name, p.X[i], r)
			}
			vals[i] = f
		}
		results[name] = vals
	}
	return results, nil
}

// Output returns a function that writes the output variables of the
// simulation profile to the output file.
func (o *Outputter) Output() SimulationManipulator {
	return func(s *Simulation) error {
		results, err := o.Results(s.Profile)
		if err != nil {
			return err
		}
		names := columnOrder(s.Profile.Names, results)

		f, err := os.Create(o.fileName)
		if err != nil {
			return fmt.Errorf("pfr: creating output file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(o.fileName)) {
		case ".csv":
			err = writeCSV(f, names, results, s.Profile.X)
		case ".xlsx":
			err = writeXLSX(f, names, results, s.Profile.X)
		case ".nc":
			err = writeNetCDF(f, names, results, s.Profile.X, o.outputVariables)
		}
		if err != nil {
			f.Close()
			return fmt.Errorf("pfr: writing %s: %w", o.fileName, err)
		}
		return f.Close()
	}
}

// columnOrder returns the names of results with the profile variables
// first, in state order, followed by the other names sorted.
func columnOrder(profileNames []string, results map[string][]float64) []string {
	names := make([]string, 0, len(results))
	for _, n := range profileNames {
		if _, ok := results[n]; ok {
			names = append(names, n)
		}
	}
	var other []string
	for n := range results {
		if !contains(profileNames, n) {
			other = append(other, n)
		}
	}
	sort.Strings(other)
	return append(names, other...)
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func writeCSV(f *os.File, names []string, results map[string][]float64, x []float64) error {
	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string(nil), names...), "x")); err != nil {
		return err
	}
	rec := make([]string, len(names)+1)
	for i := range x {
		for j, n := range names {
			rec[j] = formatFloat(results[n][i])
		}
		rec[len(names)] = formatFloat(x[i])
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(f *os.File, names []string, results map[string][]float64, x []float64) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("profile")
	if err != nil {
		return err
	}
	row := sheet.AddRow()
	for _, n := range append(append([]string(nil), names...), "x") {
		row.AddCell().SetString(n)
	}
	for i := range x {
		row = sheet.AddRow()
		for _, n := range names {
			row.AddCell().SetFloat(results[n][i])
		}
		row.AddCell().SetFloat(x[i])
	}
	return file.Write(f)
}

// variableUnits are the units of the reactor variables that are not
// species.
var variableUnits = map[string]string{
	"x":   "m",
	"u":   "m s-1",
	"rho": "kg m-3",
	"p":   "Pa",
	"T":   "K",
}

func writeNetCDF(f *os.File, names []string, results map[string][]float64, x []float64, expressions map[string]string) error {
	h := cdf.NewHeader([]string{"x"}, []int{len(x)})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "description", "Axial position")
	h.AddAttribute("x", "units", variableUnits["x"])
	for _, n := range names {
		h.AddVariable(n, []string{"x"}, []float64{0})
		if u, ok := variableUnits[n]; ok {
			h.AddAttribute(n, "units", u)
		}
		if e, ok := expressions[n]; ok {
			h.AddAttribute(n, "expression", e)
		}
	}
	h.Define()
	for _, err := range h.Check() {
		return err
	}
	cf, err := cdf.Create(f, h)
	if err != nil {
		return err
	}
	w := cf.Writer("x", []int{0}, []int{len(x)})
	if _, err := w.Write(x); err != nil {
		return fmt.Errorf("variable x: %w", err)
	}
	for _, n := range names {
		w := cf.Writer(n, []int{0}, []int{len(x)})
		if _, err := w.Write(results[n]); err != nil {
			return fmt.Errorf("variable %s: %w", n, err)
		}
	}
	return nil
}
