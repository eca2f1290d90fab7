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
	"encoding/gob"
	"fmt"
	"io"
	"strconv"
)

// Profile holds the reactor state at a series of axial positions.
type Profile struct {
	// Names are the state variable names. The first NSpecies are species.
	Names    []string
	NSpecies int

	// MolecularWeights are the species molecular weights [kg/kmol].
	MolecularWeights []float64

	// X are the axial positions [m] and Y[i] is the state at X[i].
	X []float64
	Y [][]float64
}

// NewProfile returns an empty profile for the state variables of r.
func NewProfile(r Reactor) *Profile {
	c := r.Tube()
	return &Profile{
		Names:            r.VariableNames(),
		NSpecies:         r.NSpecies(),
		MolecularWeights: append([]float64(nil), c.mw...),
	}
}

// Append adds a copy of state y at position x.
func (p *Profile) Append(x float64, y []float64) {
	if len(y) != len(p.Names) {
		panic(fmt.Errorf("pfr: state has %d values but profile has %d variables", len(y), len(p.Names)))
	}
	p.X = append(p.X, x)
	p.Y = append(p.Y, append([]float64(nil), y...))
}

// Len returns the number of positions in the profile.
func (p *Profile) Len() int { return len(p.X) }

// Index returns the state vector index of the named variable.
func (p *Profile) Index(name string) (int, error) {
	for i, n := range p.Names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("pfr: profile has no variable %q", name)
}

// Column returns the values of the named variable at every position. The
// name "x" returns the positions.
func (p *Profile) Column(name string) ([]float64, error) {
	if name == "x" {
		return append([]float64(nil), p.X...), nil
	}
	i, err := p.Index(name)
	if err != nil {
		return nil, err
	}
	v := make([]float64, len(p.Y))
	for j, y := range p.Y {
		v[j] = y[i]
	}
	return v, nil
}

// MoleFractions returns a copy of the profile with the species mass
// fractions converted to mole fractions.
func (p *Profile) MoleFractions() *Profile {
	o := &Profile{
		Names:            append([]string(nil), p.Names...),
		NSpecies:         p.NSpecies,
		MolecularWeights: append([]float64(nil), p.MolecularWeights...),
		X:                append([]float64(nil), p.X...),
		Y:                make([][]float64, len(p.Y)),
	}
	for i, y := range p.Y {
		v := append([]float64(nil), y...)
		var sum float64
		for k := 0; k < p.NSpecies; k++ {
			v[k] = y[k] / p.MolecularWeights[k]
			sum += v[k]
		}
		for k := 0; k < p.NSpecies; k++ {
			v[k] /= sum
		}
		o.Y[i] = v
	}
	return o
}

// WriteCSV writes the profile as comma separated values with a header of
// the variable names followed by "x".
func (p *Profile) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string(nil), p.Names...), "x")); err != nil {
		return fmt.Errorf("pfr: writing CSV header: %w", err)
	}
	rec := make([]string, len(p.Names)+1)
	for i, y := range p.Y {
		for j, v := range y {
			rec[j] = formatFloat(v)
		}
		rec[len(y)] = formatFloat(p.X[i])
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("pfr: writing CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'e', 15, 64) }

// Save writes the profile in gob format.
func (p *Profile) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("pfr: saving profile: %w", err)
	}
	return nil
}

// LoadProfile reads a profile written by Save.
func LoadProfile(r io.Reader) (*Profile, error) {
	p := new(Profile)
	if err := gob.NewDecoder(r).Decode(p); err != nil {
		return nil, fmt.Errorf("pfr: loading profile: %w", err)
	}
	return p, nil
}
