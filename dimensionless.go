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
	"fmt"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/pfr/gas"
)

// laminarLimit is the Reynolds number above which pipe flow is not
// assumed to be laminar.
const laminarLimit = 2300.

const gravity = 9.80665 // m/s²

var (
	pascalSecond           = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -1}
	wattPerMeterKelvin     = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 1, unit.TimeDim: -3, unit.TemperatureDim: -1}
	joulePerKilogramKelvin = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2, unit.TemperatureDim: -1}
	meter2PerSecond        = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	perKelvin              = unit.Dimensions{unit.TemperatureDim: -1}
)

// Properties holds transport properties that override the values
// calculated from the mechanism. Zero values are not used.
type Properties struct {
	Viscosity    float64 // [Pa s]
	Conductivity float64 // [W/m/K]
	Diffusivity  float64 // [m²/s]
}

// Numbers holds dimensionless groups for flow in the tube.
type Numbers struct {
	Reynolds   float64
	Prandtl    float64
	Schmidt    float64
	PecletHeat float64 // Reynolds·Prandtl
	PecletMass float64 // Reynolds·Schmidt
	Grashof    float64
	Rayleigh   float64 // Grashof·Prandtl
}

func reynolds(rho, u, d, mu float64) (float64, error) {
	re := unit.Div(unit.Mul(unit.New(rho, unit.KilogramPerMeter3),
		unit.New(u, unit.MeterPerSecond), unit.New(d, unit.Meter)),
		unit.New(mu, pascalSecond))
	if err := re.Check(unit.Dimless); err != nil {
		return 0, fmt.Errorf("pfr: Reynolds number: %w", err)
	}
	return re.Value(), nil
}

// Dimensionless calculates dimensionless numbers at the current gas state
// for velocity u [m/s]. deltaT [K] is the wall to gas temperature
// difference used for the Grashof number, with the thermal expansion
// coefficient of an ideal gas. The thermal conductivity and diffusivity
// come from p if set, or else from the gas. The diffusivity from the gas
// is the mole-fraction weighted mixture-averaged diffusion coefficient.
// If a property is unavailable the returned error wraps
// gas.ErrTransportUnavailable.
func (c *ConstArea) Dimensionless(u, deltaT float64, p Properties) (Numbers, error) {
	var n Numbers
	muV := p.Viscosity
	if muV == 0 {
		var err error
		if muV, err = c.Viscosity(); err != nil {
			return n, fmt.Errorf("pfr: viscosity: %w", err)
		}
	}
	kV := p.Conductivity
	if kV == 0 {
		var err error
		if kV, err = c.gas.ThermalConductivity(); err != nil {
			return n, fmt.Errorf("pfr: thermal conductivity: %w", err)
		}
	}
	dV := p.Diffusivity
	if dV == 0 {
		var err error
		if dV, err = c.meanDiffusivity(); err != nil {
			return n, fmt.Errorf("pfr: diffusivity: %w", err)
		}
	}

	rho := unit.New(c.gas.Density(), unit.KilogramPerMeter3)
	vel := unit.New(u, unit.MeterPerSecond)
	d := unit.New(c.diameter, unit.Meter)
	mu := unit.New(muV, pascalSecond)
	k := unit.New(kV, wattPerMeterKelvin)
	diff := unit.New(dV, meter2PerSecond)
	cp := unit.New(c.gas.CpMass(), joulePerKilogramKelvin)
	beta := unit.New(1/c.gas.Temperature(), perKelvin)
	g := unit.New(gravity, unit.MeterPerSecond2)
	dT := unit.New(deltaT, unit.Kelvin)

	groups := []struct {
		v   *unit.Unit
		dst *float64
	}{
		{unit.Div(unit.Mul(rho, vel, d), mu), &n.Reynolds},
		{unit.Div(unit.Mul(cp, mu), k), &n.Prandtl},
		{unit.Div(mu, unit.Mul(rho, diff)), &n.Schmidt},
		{unit.Div(unit.Mul(g, beta, dT, d, d, d, rho, rho), unit.Mul(mu, mu)), &n.Grashof},
	}
	for _, grp := range groups {
		if err := grp.v.Check(unit.Dimless); err != nil {
			return n, fmt.Errorf("pfr: dimensionless number: %w", err)
		}
		*grp.dst = grp.v.Value()
	}
	n.PecletHeat = n.Reynolds * n.Prandtl
	n.PecletMass = n.Reynolds * n.Schmidt
	n.Rayleigh = n.Grashof * n.Prandtl
	return n, nil
}

func (c *ConstArea) meanDiffusivity() (float64, error) {
	dk := make([]float64, c.ns)
	if err := c.gas.MixDiffCoeffs(dk); err != nil {
		return 0, err
	}
	x := c.gas.MoleFractions()
	var d float64
	for k := range dk {
		d += x[k] * dk[k]
	}
	if !(d > 0) {
		return 0, fmt.Errorf("mean diffusivity is %g: %w", d, gas.ErrTransportUnavailable)
	}
	return d, nil
}
