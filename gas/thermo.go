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

// nasa7 is a NASA 7-coefficient polynomial parameterization of the
// standard-state heat capacity, enthalpy and entropy of a species.
type nasa7 struct {
	tmin, tmid, tmax float64
	low, high        [7]float64
}

func newNASA7(d ThermoData) (*nasa7, error) {
	if d.Model != "NASA7" {
		return nil, fmt.Errorf("unsupported thermo model %q", d.Model)
	}
	t := d.TemperatureRanges
	if len(t) < 2 || len(t) > 3 || len(d.Data) != len(t)-1 {
		return nil, fmt.Errorf("thermo needs 2 or 3 temperature bounds and one polynomial per range; have %d and %d", len(t), len(d.Data))
	}
	for i := 1; i < len(t); i++ {
		if !(t[i] > t[i-1]) {
			return nil, fmt.Errorf("thermo temperature ranges must increase: %v", t)
		}
	}
	n := new(nasa7)
	for i, c := range d.Data {
		if len(c) != 7 {
			return nil, fmt.Errorf("NASA7 polynomial %d has %d coefficients", i, len(c))
		}
	}
	n.tmin = t[0]
	copy(n.low[:], d.Data[0])
	if len(t) == 2 {
		n.tmid, n.tmax = t[1], t[1]
		n.high = n.low
	} else {
		n.tmid, n.tmax = t[1], t[2]
		copy(n.high[:], d.Data[1])
	}
	return n, nil
}

func (n *nasa7) coeffs(t float64) *[7]float64 {
	if t < n.tmid {
		return &n.low
	}
	return &n.high
}

// eval returns cp/R, h/(R·T) and s/R at temperature t.
func (n *nasa7) eval(t float64) (cpR, hRT, sR float64) {
	a := n.coeffs(t)
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	cpR = a[0] + a[1]*t + a[2]*t2 + a[3]*t3 + a[4]*t4
	hRT = a[0] + a[1]*t/2 + a[2]*t2/3 + a[3]*t3/4 + a[4]*t4/5 + a[5]/t
	sR = a[0]*math.Log(t) + a[1]*t + a[2]*t2/2 + a[3]*t3/3 + a[4]*t4/4 + a[6]
	return
}
