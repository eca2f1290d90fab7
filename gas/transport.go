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
	"math"
)

// omega22 is the Neufeld et al. (1972) fit to the collision integral for
// viscosity as a function of reduced temperature.
func omega22(tStar float64) float64 {
	return 1.16145*math.Pow(tStar, -0.14874) +
		0.52487*math.Exp(-0.77320*tStar) +
		2.16178*math.Exp(-2.43787*tStar)
}

// omega11 is the Neufeld et al. (1972) fit to the collision integral for
// diffusion as a function of reduced temperature.
func omega11(tStar float64) float64 {
	return 1.06036*math.Pow(tStar, -0.15610) +
		0.19300*math.Exp(-0.47635*tStar) +
		1.03587*math.Exp(-1.52996*tStar) +
		1.76474*math.Exp(-3.89411*tStar)
}

// TransportAvailable returns nil if transport properties can be
// calculated for this phase and an error wrapping ErrTransportUnavailable
// otherwise.
func (s *Solution) TransportAvailable() error { return s.transportErr }

// speciesViscosities returns the Chapman-Enskog pure-species viscosities
// [Pa·s] at the current temperature.
func (s *Solution) speciesViscosities() []float64 {
	mu := make([]float64, len(s.names))
	for k, lj := range s.lj {
		tStar := s.t / lj.WellDepth
		mu[k] = 2.6693e-6 * math.Sqrt(s.mw[k]*s.t) / (lj.Diameter * lj.Diameter * omega22(tStar))
	}
	return mu
}

// wilke returns the Wilke interaction parameter φ_ij.
func (s *Solution) wilke(mu []float64, i, j int) float64 {
	a := 1 + math.Sqrt(mu[i]/mu[j])*math.Pow(s.mw[j]/s.mw[i], 0.25)
	return a * a / math.Sqrt(8*(1+s.mw[i]/s.mw[j]))
}

// Viscosity returns the mixture dynamic viscosity [Pa·s] using Wilke's
// mixing rule.
func (s *Solution) Viscosity() (float64, error) {
	if s.transportErr != nil {
		return math.NaN(), s.transportErr
	}
	mu := s.speciesViscosities()
	var v float64
	for i := range mu {
		if s.x[i] == 0 {
			continue
		}
		var d float64
		for j := range mu {
			d += s.x[j] * s.wilke(mu, i, j)
		}
		v += s.x[i] * mu[i] / d
	}
	return v, nil
}

// ThermalConductivity returns the mixture thermal conductivity [W/m/K].
// Pure-species values use a modified Eucken correlation and are combined
// with the Mathur-Saxena average.
func (s *Solution) ThermalConductivity() (float64, error) {
	if s.transportErr != nil {
		return math.NaN(), s.transportErr
	}
	s.updateThermo()
	mu := s.speciesViscosities()
	var sum, inv float64
	for k := range mu {
		if s.x[k] == 0 {
			continue
		}
		lambda := mu[k] * GasConstant / s.mw[k] * (s.cpR[k] + 1.25)
		sum += s.x[k] * lambda
		inv += s.x[k] / lambda
	}
	return 0.5 * (sum + 1/inv), nil
}

// BinaryDiffCoeff returns the binary diffusion coefficient [m²/s] of
// species i and j at the current temperature and pressure.
func (s *Solution) BinaryDiffCoeff(i, j int) (float64, error) {
	if s.transportErr != nil {
		return math.NaN(), s.transportErr
	}
	return s.binaryDiff(i, j), nil
}

func (s *Solution) binaryDiff(i, j int) float64 {
	li, lj := s.lj[i], s.lj[j]
	sigma := (li.Diameter + lj.Diameter) / 2
	eps := math.Sqrt(li.WellDepth * lj.WellDepth)
	mij := 2 / (1/s.mw[i] + 1/s.mw[j])
	return 0.0266 * math.Pow(s.t, 1.5) / (s.p * math.Sqrt(mij) * sigma * sigma * omega11(s.t/eps))
}

// MixDiffCoeffs writes the mixture-averaged diffusion coefficients [m²/s]
// of each species into the mixture to dst.
func (s *Solution) MixDiffCoeffs(dst []float64) error {
	if s.transportErr != nil {
		return s.transportErr
	}
	for k := range s.names {
		var d float64
		for j := range s.names {
			if j == k {
				continue
			}
			d += s.x[j] / s.binaryDiff(k, j)
		}
		if d == 0 {
			dst[k] = s.binaryDiff(k, k)
			continue
		}
		dst[k] = (1 - s.y[k]) / d
	}
	return nil
}
