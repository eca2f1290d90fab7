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

package dae

import "math"

// derivativeWeights returns the weights α such that Σ α_j·y(t_j) is the
// derivative at t[0] of the polynomial interpolating y at the nodes t.
func derivativeWeights(t []float64) []float64 {
	a := make([]float64, len(t))
	for m := 1; m < len(t); m++ {
		a[0] += 1 / (t[0] - t[m])
	}
	for j := 1; j < len(t); j++ {
		num, den := 1.0, t[j]-t[0]
		for m := 1; m < len(t); m++ {
			if m == j {
				continue
			}
			num *= t[0] - t[m]
			den *= t[j] - t[m]
		}
		a[j] = num / den
	}
	return a
}

// extrapolate evaluates at x the polynomial through the points (t_j, y_j)
// and writes the result to dst.
func extrapolate(dst []float64, x float64, t []float64, y [][]float64) {
	for i := range dst {
		dst[i] = 0
	}
	for j := range t {
		l := 1.0
		for m := range t {
			if m != j {
				l *= (x - t[m]) / (t[j] - t[m])
			}
		}
		for i, v := range y[j] {
			dst[i] += l * v
		}
	}
}

// errorConstant returns the factor that converts the difference between
// the corrected and predicted solutions of an order k step from x to
// x+h into an estimate of the local truncation error. psi holds the
// distances from x+h back to previous solution points, and must hold at
// least k+1 values for the variable step form to be used.
func errorConstant(k int, h float64, psi []float64) float64 {
	if len(psi) < k+1 {
		return 1 / float64(k+1)
	}
	var alpha0, alphas float64
	for j := 1; j <= k; j++ {
		alpha0 -= h / psi[j-1]
		alphas -= 1 / float64(j)
	}
	return math.Abs(h/psi[k] + alphas - alpha0)
}

// weightedNorm returns the weighted root-mean-square norm of v.
func weightedNorm(v, w []float64) float64 {
	var sum float64
	for i, x := range v {
		x *= w[i]
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(v)))
}
