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
)

// term is a species participating in a reaction.
type term struct {
	k     int
	nu    float64 // stoichiometric coefficient
	order float64 // reaction order, forward direction only
}

// reaction is an elementary reaction bound to the species indices of a
// Solution.
type reaction struct {
	label      string
	reactants  []term
	products   []term
	reversible bool
	a, b, ea   float64
	dn         float64 // change in moles, products minus reactants
}

// newReaction binds rd to the species of s. Reactions that involve species
// outside the phase are skipped and ok is false.
func (s *Solution) newReaction(rd ReactionData) (r *reaction, ok bool, err error) {
	r = &reaction{
		label:      rd.Equation,
		reversible: rd.Reversible,
		a:          rd.Rate.A,
		b:          rd.Rate.B,
		ea:         rd.Rate.Ea,
	}
	for _, name := range sortedKeys(rd.Reactants) {
		k, in := s.index[name]
		if !in {
			return nil, false, nil
		}
		nu := rd.Reactants[name]
		order := nu
		if o, set := rd.Orders[name]; set {
			if r.reversible {
				return nil, false, fmt.Errorf("gas: reaction %s: non-stoichiometric orders are not allowed for reversible reactions", rd.Equation)
			}
			order = o
		}
		r.reactants = append(r.reactants, term{k: k, nu: nu, order: order})
		r.dn -= nu
	}
	for _, name := range sortedKeys(rd.Products) {
		k, in := s.index[name]
		if !in {
			return nil, false, nil
		}
		nu := rd.Products[name]
		r.products = append(r.products, term{k: k, nu: nu, order: nu})
		r.dn += nu
	}
	return r, true, nil
}

// power returns c^e, using repeated multiplication for small integer
// exponents and clipping negative concentrations for fractional ones.
func power(c, e float64) float64 {
	switch e {
	case 1:
		return c
	case 2:
		return c * c
	case 3:
		return c * c * c
	case 0:
		return 1
	}
	if e == math.Trunc(e) {
		return math.Pow(c, e)
	}
	return math.Pow(math.Max(c, 0), e)
}

// updateRates calculates the rate constants and rates of progress of all
// reactions at the current state.
func (s *Solution) updateRates() {
	s.updateThermo()
	s.Concentrations(s.conc)
	rt := GasConstant * s.t
	logT := math.Log(s.t)
	pRT := math.Log(OneAtm / rt)
	for i, r := range s.rxns {
		kf := r.a * math.Exp(r.b*logT-r.ea/rt)
		s.kf[i] = kf
		fwd := kf
		for _, t := range r.reactants {
			fwd *= power(s.conc[t.k], t.order)
		}
		s.rop[i] = fwd
		if !r.reversible {
			s.kc[i] = math.Inf(1)
			continue
		}
		// ΔG°/RT = Σν(h/RT − s/R)
		var dg float64
		for _, t := range r.products {
			dg += t.nu * (s.hRT[t.k] - s.sR[t.k])
		}
		for _, t := range r.reactants {
			dg -= t.nu * (s.hRT[t.k] - s.sR[t.k])
		}
		kc := math.Exp(-dg + r.dn*pRT)
		s.kc[i] = kc
		rev := kf / kc
		for _, t := range r.products {
			rev *= power(s.conc[t.k], t.nu)
		}
		s.rop[i] -= rev
	}
}

// NetProductionRates writes the species net molar production rates
// [kmol/m³/s] at the current state to dst.
func (s *Solution) NetProductionRates(dst []float64) {
	for k := range s.names {
		dst[k] = 0
	}
	if len(s.rxns) == 0 {
		return
	}
	s.updateRates()
	for i, r := range s.rxns {
		q := s.rop[i]
		for _, t := range r.reactants {
			dst[t.k] -= t.nu * q
		}
		for _, t := range r.products {
			dst[t.k] += t.nu * q
		}
	}
}

// NetRatesOfProgress writes the net rate of progress [kmol/m³/s] of each
// reaction to dst.
func (s *Solution) NetRatesOfProgress(dst []float64) {
	if len(s.rxns) == 0 {
		return
	}
	s.updateRates()
	copy(dst, s.rop)
}

// ForwardRateConstants writes the forward rate constant of each reaction
// to dst.
func (s *Solution) ForwardRateConstants(dst []float64) {
	if len(s.rxns) == 0 {
		return
	}
	s.updateRates()
	copy(dst, s.kf)
}

// EquilibriumConstants writes the concentration-based equilibrium constant
// of each reaction to dst. Irreversible reactions have an infinite
// equilibrium constant.
func (s *Solution) EquilibriumConstants(dst []float64) {
	if len(s.rxns) == 0 {
		return
	}
	s.updateRates()
	copy(dst, s.kc)
}

// ReactionLabel returns the equation label of reaction i.
func (s *Solution) ReactionLabel(i int) string { return s.rxns[i].label }
