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
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// GasConstant is the universal gas constant [J/kmol/K].
	GasConstant = 8314.462618

	// OneAtm is one standard atmosphere [Pa].
	OneAtm = 101325.0
)

// Solution is an ideal gas mixture at a thermodynamic state. A Solution
// is not safe for concurrent use; independent simulations should each
// create their own.
type Solution struct {
	phase  string
	names  []string
	index  map[string]int
	mw     []float64
	thermo []*nasa7
	lj     []*TransportData

	// transportErr is non-nil if transport properties cannot be
	// calculated for this phase.
	transportErr error

	rxns []*reaction

	t, p   float64
	y, x   []float64
	meanMW float64

	// Species properties at thermoT.
	thermoT       float64
	cpR, hRT, sR  []float64
	conc, rop, kc []float64
	kf            []float64
}

// Load reads the mechanism at path and returns a Solution for the named
// phase. An empty phase name selects the first phase.
func Load(path, phase string) (*Solution, error) {
	m, err := LoadMechanism(path)
	if err != nil {
		return nil, err
	}
	return NewSolution(m, phase)
}

// NewSolution creates a Solution for the named phase of m. The initial
// state is 298.15 K and one atmosphere, with the first species in the
// phase at unit mole fraction.
func NewSolution(m *Mechanism, phase string) (*Solution, error) {
	ph, err := m.Phase(phase)
	if err != nil {
		return nil, err
	}
	ns := len(ph.Species)
	s := &Solution{
		phase:  ph.Name,
		names:  make([]string, ns),
		index:  make(map[string]int, ns),
		mw:     make([]float64, ns),
		thermo: make([]*nasa7, ns),
		lj:     make([]*TransportData, ns),
		y:      make([]float64, ns),
		x:      make([]float64, ns),
		cpR:    make([]float64, ns),
		hRT:    make([]float64, ns),
		sR:     make([]float64, ns),
		conc:   make([]float64, ns),
	}
	for k, name := range ph.Species {
		if _, ok := s.index[name]; ok {
			return nil, fmt.Errorf("gas: phase %s lists species %s twice", ph.Name, name)
		}
		sp, _ := m.speciesData(name)
		s.names[k] = name
		s.index[name] = k
		if s.mw[k], err = molecularWeight(sp.Composition); err != nil {
			return nil, fmt.Errorf("gas: species %s: %w", name, err)
		}
		if s.thermo[k], err = newNASA7(sp.Thermo); err != nil {
			return nil, fmt.Errorf("gas: species %s: %w", name, err)
		}
		s.lj[k] = sp.Transport
	}

	switch ph.Transport {
	case "mixture-averaged":
		for k, t := range s.lj {
			if t == nil {
				s.transportErr = fmt.Errorf("gas: species %s has no transport data: %w", s.names[k], ErrTransportUnavailable)
				break
			}
		}
	default:
		s.transportErr = fmt.Errorf("gas: phase %s has no transport model: %w", ph.Name, ErrTransportUnavailable)
	}

	if ph.Kinetics != "none" {
		for _, rd := range m.Reactions {
			r, ok, err := s.newReaction(rd)
			if err != nil {
				return nil, err
			}
			if ok {
				s.rxns = append(s.rxns, r)
			}
		}
	}
	s.rop = make([]float64, len(s.rxns))
	s.kf = make([]float64, len(s.rxns))
	s.kc = make([]float64, len(s.rxns))

	s.t, s.p = 298.15, OneAtm
	s.thermoT = math.NaN()
	x := make([]float64, ns)
	x[0] = 1
	if err := s.SetMoleFractions(x); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the name of the phase.
func (s *Solution) Name() string { return s.phase }

// NSpecies returns the number of species in the phase.
func (s *Solution) NSpecies() int { return len(s.names) }

// NReactions returns the number of reactions in the phase.
func (s *Solution) NReactions() int { return len(s.rxns) }

// SpeciesNames returns the names of the species in the phase.
func (s *Solution) SpeciesNames() []string {
	return append([]string(nil), s.names...)
}

// SpeciesName returns the name of species k.
func (s *Solution) SpeciesName(k int) string { return s.names[k] }

// SpeciesIndex returns the index of the named species.
func (s *Solution) SpeciesIndex(name string) (int, error) {
	k, ok := s.index[name]
	if !ok {
		return -1, fmt.Errorf("gas: %w %q in phase %s", ErrUnknownSpecies, name, s.phase)
	}
	return k, nil
}

// MolecularWeights returns the species molecular weights [kg/kmol].
func (s *Solution) MolecularWeights() []float64 {
	return append([]float64(nil), s.mw...)
}

// Temperature returns the temperature [K].
func (s *Solution) Temperature() float64 { return s.t }

// Pressure returns the pressure [Pa].
func (s *Solution) Pressure() float64 { return s.p }

// SetTP sets the temperature [K] and pressure [Pa], holding composition
// fixed.
func (s *Solution) SetTP(t, p float64) error {
	if !(t > 0) || !(p > 0) || math.IsInf(t, 0) || math.IsInf(p, 0) {
		return fmt.Errorf("gas: T=%g K, p=%g Pa: %w", t, p, ErrInvalidState)
	}
	s.t, s.p = t, p
	return nil
}

// SetMassFractionsNoNorm sets the mass fractions without normalizing them
// or clipping negative values. The mean molecular weight and mole
// fractions are calculated from the values as given.
func (s *Solution) SetMassFractionsNoNorm(y []float64) error {
	if len(y) < len(s.y) {
		return fmt.Errorf("gas: have %d mass fractions, want %d: %w", len(y), len(s.y), ErrComposition)
	}
	var sum float64
	for k := range s.y {
		s.y[k] = y[k]
		sum += y[k] / s.mw[k]
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return fmt.Errorf("gas: mass fractions %v: %w", y[:len(s.y)], ErrComposition)
	}
	s.meanMW = 1 / sum
	for k := range s.x {
		s.x[k] = s.y[k] / s.mw[k] * s.meanMW
	}
	return nil
}

// SetMassFractions sets the mass fractions after clipping negative values
// to zero and normalizing the sum to one.
func (s *Solution) SetMassFractions(y []float64) error {
	if len(y) != len(s.y) {
		return fmt.Errorf("gas: have %d mass fractions, want %d: %w", len(y), len(s.y), ErrComposition)
	}
	v := make([]float64, len(y))
	for k, val := range y {
		v[k] = math.Max(val, 0)
	}
	sum := floats.Sum(v)
	if !(sum > 0) {
		return fmt.Errorf("gas: mass fractions sum to %g: %w", sum, ErrComposition)
	}
	floats.Scale(1/sum, v)
	return s.SetMassFractionsNoNorm(v)
}

// SetMoleFractions sets the mole fractions after clipping negative values
// to zero and normalizing the sum to one.
func (s *Solution) SetMoleFractions(x []float64) error {
	if len(x) != len(s.x) {
		return fmt.Errorf("gas: have %d mole fractions, want %d: %w", len(x), len(s.x), ErrComposition)
	}
	var sum float64
	for _, v := range x {
		sum += math.Max(v, 0)
	}
	if !(sum > 0) {
		return fmt.Errorf("gas: mole fractions sum to %g: %w", sum, ErrComposition)
	}
	s.meanMW = 0
	for k, v := range x {
		s.x[k] = math.Max(v, 0) / sum
		s.meanMW += s.x[k] * s.mw[k]
	}
	for k := range s.y {
		s.y[k] = s.x[k] * s.mw[k] / s.meanMW
	}
	return nil
}

// SetMoleFractionsString sets the mole fractions from a composition string
// of the form "A:0.5, B:0.5". Species that are not mentioned are set to
// zero and the result is normalized.
func (s *Solution) SetMoleFractionsString(composition string) error {
	x, err := ParseComposition(composition, s.names)
	if err != nil {
		return err
	}
	return s.SetMoleFractions(x)
}

// SetTPX sets temperature [K], pressure [Pa] and mole fractions given as
// a composition string.
func (s *Solution) SetTPX(t, p float64, composition string) error {
	if err := s.SetMoleFractionsString(composition); err != nil {
		return err
	}
	return s.SetTP(t, p)
}

// MassFractions returns the species mass fractions.
func (s *Solution) MassFractions() []float64 {
	return append([]float64(nil), s.y...)
}

// MoleFractions returns the species mole fractions.
func (s *Solution) MoleFractions() []float64 {
	return append([]float64(nil), s.x...)
}

// MeanMolecularWeight returns the mean molecular weight [kg/kmol].
func (s *Solution) MeanMolecularWeight() float64 { return s.meanMW }

// Density returns the ideal gas mass density [kg/m³].
func (s *Solution) Density() float64 {
	return s.p * s.meanMW / (GasConstant * s.t)
}

// MolarDensity returns the total molar concentration [kmol/m³].
func (s *Solution) MolarDensity() float64 {
	return s.p / (GasConstant * s.t)
}

// Concentrations writes the species molar concentrations [kmol/m³] to dst.
func (s *Solution) Concentrations(dst []float64) {
	rho := s.Density()
	for k := range s.y {
		dst[k] = rho * s.y[k] / s.mw[k]
	}
}

// updateThermo evaluates the species polynomials at the current
// temperature if it has changed.
func (s *Solution) updateThermo() {
	if s.t == s.thermoT {
		return
	}
	for k, th := range s.thermo {
		s.cpR[k], s.hRT[k], s.sR[k] = th.eval(s.t)
	}
	s.thermoT = s.t
}

// CpMole returns the mixture heat capacity at constant pressure [J/kmol/K].
func (s *Solution) CpMole() float64 {
	s.updateThermo()
	return GasConstant * floats.Dot(s.x, s.cpR)
}

// CpMass returns the mixture heat capacity at constant pressure [J/kg/K].
func (s *Solution) CpMass() float64 {
	return s.CpMole() / s.meanMW
}

// EnthalpyMole returns the mixture enthalpy [J/kmol].
func (s *Solution) EnthalpyMole() float64 {
	s.updateThermo()
	return GasConstant * s.t * floats.Dot(s.x, s.hRT)
}

// EnthalpyMass returns the mixture enthalpy [J/kg].
func (s *Solution) EnthalpyMass() float64 {
	return s.EnthalpyMole() / s.meanMW
}

// IntEnergyMole returns the mixture internal energy [J/kmol].
func (s *Solution) IntEnergyMole() float64 {
	return s.EnthalpyMole() - GasConstant*s.t
}

// IntEnergyMass returns the mixture internal energy [J/kg].
func (s *Solution) IntEnergyMass() float64 {
	return s.IntEnergyMole() / s.meanMW
}

// PartialMolarEnthalpies writes the species partial molar enthalpies
// [J/kmol] to dst. For an ideal gas these equal the pure-species molar
// enthalpies.
func (s *Solution) PartialMolarEnthalpies(dst []float64) {
	s.updateThermo()
	rt := GasConstant * s.t
	for k, h := range s.hRT {
		dst[k] = rt * h
	}
}

// PartialMolarCp writes the species molar heat capacities [J/kmol/K] to dst.
func (s *Solution) PartialMolarCp(dst []float64) {
	s.updateThermo()
	for k, cp := range s.cpR {
		dst[k] = GasConstant * cp
	}
}
