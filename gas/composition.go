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

package gas

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var colonSpace = regexp.MustCompile(`\s*:\s*`)

// ParseComposition parses a composition string such as
// "N2:0.64, C2H2:0.3528" into a slice ordered like names. Entries may be
// separated by commas or white space. Species not mentioned are zero.
// The values are returned as given, without normalization.
func ParseComposition(composition string, names []string) ([]float64, error) {
	index := make(map[string]int, len(names))
	for k, n := range names {
		index[n] = k
	}
	v := make([]float64, len(names))
	seen := make(map[string]bool)
	normalized := colonSpace.ReplaceAllString(composition, ":")
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("gas: empty composition: %w", ErrComposition)
	}
	var total float64
	for _, f := range fields {
		i := strings.LastIndex(f, ":")
		if i <= 0 || i == len(f)-1 {
			return nil, fmt.Errorf("gas: composition entry %q: %w", f, ErrComposition)
		}
		name, val := f[:i], f[i+1:]
		k, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("gas: composition: %w %q", ErrUnknownSpecies, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("gas: composition lists %s twice: %w", name, ErrComposition)
		}
		seen[name] = true
		x, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("gas: composition entry %q: %v: %w", f, err, ErrComposition)
		}
		if x < 0 {
			return nil, fmt.Errorf("gas: negative amount of %s: %w", name, ErrComposition)
		}
		v[k] = x
		total += x
	}
	if !(total > 0) {
		return nil, fmt.Errorf("gas: composition %q sums to zero: %w", composition, ErrComposition)
	}
	return v, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
