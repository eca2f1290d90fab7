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

// Package pfr simulates steady-state, one-dimensional plug-flow reactors
// with finite-rate gas-phase chemistry. A reactor is a semi-explicit
// differential-algebraic system in the axial coordinate whose state holds
// the species mass fractions, the axial velocity, the density, the
// pressure and, for non-isothermal reactors, the temperature.
package pfr

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pfr/dae"
	"github.com/spatialmodel/pfr/gas"
	"gonum.org/v1/gonum/floats"
)

// Version gives the version number.
const Version = "1.0.0"

const (
	// DefaultRefTemperature is the temperature [K] at which volumetric
	// flows in sccm are specified.
	DefaultRefTemperature = 273.15

	// FallbackViscosity [Pa s] is used when the mechanism has no
	// transport data.
	FallbackViscosity = 3.957996309582866e-5

	// sccmToM3PerS converts cm³/min to m³/s.
	sccmToM3PerS = 1 / 6.e7
)

// Offsets of the flow variables from the end of the species block.
const (
	offVelocity = iota
	offDensity
	offPressure
	offTemperature
)

// ViscosityFunc returns the dynamic viscosity [Pa s] of the gas at its
// current state.
type ViscosityFunc func(g *gas.Solution) (float64, error)

// TransportViscosity returns the mixture-averaged viscosity of g.
func TransportViscosity(g *gas.Solution) (float64, error) { return g.Viscosity() }

// ConstantViscosity returns a ViscosityFunc that always returns mu.
func ConstantViscosity(mu float64) ViscosityFunc {
	return func(*gas.Solution) (float64, error) { return mu, nil }
}

// Config holds the parameters shared by all reactor types.
type Config struct {
	// Mechanism is the path to a TOML mechanism file and Phase is the
	// name of the phase within it. An empty Phase selects the first one.
	Mechanism string
	Phase     string

	Diameter    float64 // inner tube diameter [m]
	Temperature float64 // inlet temperature [K]
	Pressure    float64 // inlet pressure [Pa]

	// Composition is the inlet composition as mole fractions, for
	// example "N2:0.64, C2H2:0.36".
	Composition string

	// Flow is the inlet volumetric flow [sccm] at the reference state.
	Flow float64

	// RefTemperature [K] and RefPressure [Pa] define the standard state
	// of Flow. Zero values select 273.15 K and one atmosphere.
	RefTemperature, RefPressure float64

	// Viscosity overrides the viscosity source. If nil, transport
	// properties from the mechanism are used, or FallbackViscosity if the
	// mechanism has none.
	Viscosity ViscosityFunc

	// Log receives diagnostics. If nil, the logrus standard logger is used.
	Log logrus.FieldLogger
}

// Reactor is implemented by the plug-flow reactor models.
type Reactor interface {
	dae.System

	// NSpecies returns the number of species in the gas phase.
	NSpecies() int

	// SpeciesIndex returns the index of the named species in the state
	// vector and SpeciesName is its inverse.
	SpeciesIndex(name string) (int, error)
	SpeciesName(k int) string

	// VariableNames returns the names of the state variables in order.
	VariableNames() []string

	// Temperature returns the temperature [K] for the state y.
	Temperature(y []float64) float64

	// Tube returns the constant-area flow model shared by all reactor
	// types.
	Tube() *ConstArea
}

// ConstArea holds the gas, inlet state and geometry of a circular tube
// of constant cross section, and evaluates the mass, momentum and state
// equations common to all reactor types.
type ConstArea struct {
	gas   *gas.Solution
	ns    int
	neq   int
	mw    []float64
	names []string

	rhoRef    float64
	viscosity ViscosityFunc
	log       logrus.FieldLogger

	t0, p0, rho0 float64
	y0           []float64

	diameter, area, u0 float64

	wdot, hk []float64
}

func newConstArea(cfg Config, ne int) (*ConstArea, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	tRef, pRef := cfg.RefTemperature, cfg.RefPressure
	if tRef == 0 {
		tRef = DefaultRefTemperature
	}
	if pRef == 0 {
		pRef = gas.OneAtm
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"diameter", cfg.Diameter},
		{"temperature", cfg.Temperature},
		{"pressure", cfg.Pressure},
		{"flow", cfg.Flow},
		{"reference temperature", tRef},
		{"reference pressure", pRef},
	} {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return nil, fmt.Errorf("%w: %s must be > 0; have %g", ErrConstruction, p.name, p.v)
		}
	}

	g, err := gas.Load(cfg.Mechanism, cfg.Phase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	if err = g.SetTPX(tRef, pRef, cfg.Composition); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	rhoRef := g.Density()
	if err = g.SetTPX(cfg.Temperature, cfg.Pressure, cfg.Composition); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}

	ns := g.NSpecies()
	c := &ConstArea{
		gas:      g,
		ns:       ns,
		neq:      ns + ne,
		mw:       g.MolecularWeights(),
		names:    g.SpeciesNames(),
		rhoRef:   rhoRef,
		log:      log,
		t0:       cfg.Temperature,
		p0:       cfg.Pressure,
		rho0:     g.Density(),
		y0:       g.MassFractions(),
		diameter: cfg.Diameter,
		area:     math.Pi * cfg.Diameter * cfg.Diameter / 4,
		wdot:     make([]float64, ns),
		hk:       make([]float64, ns),
	}
	c.u0 = c.rhoRef / c.rho0 * cfg.Flow * sccmToM3PerS / c.area

	switch {
	case cfg.Viscosity != nil:
		c.viscosity = cfg.Viscosity
	case g.TransportAvailable() != nil:
		log.WithFields(logrus.Fields{
			"cause":     g.TransportAvailable(),
			"viscosity": unit.New(FallbackViscosity, pascalSecond),
		}).Warn("pfr: transport unavailable; using constant viscosity")
		c.viscosity = ConstantViscosity(FallbackViscosity)
	default:
		c.viscosity = TransportViscosity
	}
	mu, err := c.viscosity(g)
	if err != nil {
		return nil, fmt.Errorf("%w: viscosity: %w", ErrConstruction, err)
	}

	re, err := reynolds(c.rho0, c.u0, c.diameter, mu)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	if re > laminarLimit {
		log.WithField("Re", re).Warn("pfr: inlet flow is not laminar; viscous loss assumes Hagen-Poiseuille flow")
	}

	log.WithFields(logrus.Fields{
		"phase":     g.Name(),
		"species":   ns,
		"equations": c.neq,
		"D":         unit.New(c.diameter, unit.Meter),
		"T0":        unit.New(c.t0, unit.Kelvin),
		"p0":        unit.New(c.p0, unit.Pascal),
		"rho0":      unit.New(c.rho0, unit.KilogramPerMeter3),
		"u0":        unit.New(c.u0, unit.MeterPerSecond),
		"Q0":        unit.New(c.u0*c.area, unit.Meter3PerSecond),
		"Re":        re,
	}).Info("pfr: created reactor")
	return c, nil
}

// Tube returns c.
func (c *ConstArea) Tube() *ConstArea { return c }

// Gas returns the gas phase owned by the reactor. Its state is
// overwritten by every residual evaluation.
func (c *ConstArea) Gas() *gas.Solution { return c.gas }

// NEquations returns the length of the state vector.
func (c *ConstArea) NEquations() int { return c.neq }

// NSpecies returns the number of species.
func (c *ConstArea) NSpecies() int { return c.ns }

// SpeciesIndex returns the index of the named species.
func (c *ConstArea) SpeciesIndex(name string) (int, error) {
	k, err := c.gas.SpeciesIndex(name)
	if err != nil {
		return -1, fmt.Errorf("pfr: %w", err)
	}
	return k, nil
}

// SpeciesName returns the name of species k.
func (c *ConstArea) SpeciesName(k int) string { return c.names[k] }

// VariableNames returns the species names followed by "u", "rho", "p"
// and, for non-isothermal reactors, "T".
func (c *ConstArea) VariableNames() []string {
	names := append(make([]string, 0, c.neq), c.names...)
	names = append(names, "u", "rho", "p")
	if c.energy() {
		names = append(names, "T")
	}
	return names
}

func (c *ConstArea) energy() bool { return c.neq > c.ns+offTemperature }

// Temperature returns the temperature [K] of state y.
func (c *ConstArea) Temperature(y []float64) float64 {
	if c.energy() {
		return y[c.ns+offTemperature]
	}
	return c.t0
}

// Diameter returns the tube diameter [m].
func (c *ConstArea) Diameter() float64 { return c.diameter }

// Area returns the tube cross-sectional area [m²].
func (c *ConstArea) Area() float64 { return c.area }

// InletVelocity returns the inlet velocity [m/s].
func (c *ConstArea) InletVelocity() float64 { return c.u0 }

// InletDensity returns the inlet density [kg/m³].
func (c *ConstArea) InletDensity() float64 { return c.rho0 }

// InletTemperature returns the inlet temperature [K].
func (c *ConstArea) InletTemperature() float64 { return c.t0 }

// InletPressure returns the inlet pressure [Pa].
func (c *ConstArea) InletPressure() float64 { return c.p0 }

// ReferenceDensity returns the density [kg/m³] of the inlet mixture at
// the reference state.
func (c *ConstArea) ReferenceDensity() float64 { return c.rhoRef }

// MassFlowRate returns the inlet mass flow rate [kg/s].
func (c *ConstArea) MassFlowRate() float64 { return c.rho0 * c.u0 * c.area }

// IntEnergyMass returns the specific internal energy [J/kg] of the gas
// at its current state.
func (c *ConstArea) IntEnergyMass() float64 { return c.gas.IntEnergyMass() }

// SetViscosity replaces the viscosity source.
func (c *ConstArea) SetViscosity(f ViscosityFunc) { c.viscosity = f }

// Viscosity returns the viscosity [Pa s] at the current gas state.
func (c *ConstArea) Viscosity() (float64, error) { return c.viscosity(c.gas) }

// ViscousLoss returns the Hagen-Poiseuille wall friction 8πμu/A [Pa/m]
// at velocity u and the current gas state.
func (c *ConstArea) ViscousLoss(u float64) (float64, error) {
	mu, err := c.viscosity(c.gas)
	if err != nil {
		return math.NaN(), err
	}
	return 8 * math.Pi * mu * u / c.area, nil
}

// GasDensity returns the ideal gas density [kg/m³] at the temperature,
// pressure and composition of state y.
func (c *ConstArea) GasDensity(y []float64) (float64, error) {
	if err := c.setState(y, c.Temperature(y)); err != nil {
		return math.NaN(), err
	}
	return c.gas.Density(), nil
}

func (c *ConstArea) setState(y []float64, t float64) error {
	if err := c.gas.SetMassFractionsNoNorm(y[:c.ns]); err != nil {
		return err
	}
	return c.gas.SetTP(t, y[c.ns+offPressure])
}

// flowResiduals fills the species, continuity, momentum and state
// residuals. The gas must already be at the state of y.
func (c *ConstArea) flowResiduals(y, yp, r []float64) error {
	ns := c.ns
	u, rho := y[ns+offVelocity], y[ns+offDensity]
	c.gas.NetProductionRates(c.wdot)
	for k := 0; k < ns; k++ {
		r[k] = u*rho*yp[k] - c.wdot[k]*c.mw[k]
	}
	r[ns+offVelocity] = rho*yp[ns+offVelocity] + u*yp[ns+offDensity]
	loss, err := c.ViscousLoss(u)
	if err != nil {
		return err
	}
	r[ns+offDensity] = u*rho*yp[ns+offVelocity] + yp[ns+offPressure] + loss
	r[ns+offPressure] = c.gas.Density() - rho
	return nil
}

// energyResidual fills the energy residual given the wall heat flux
// qw [W/m³]. flowResiduals must have been called for the same state.
func (c *ConstArea) energyResidual(y, yp, r []float64, qw float64) {
	ns := c.ns
	u, rho := y[ns+offVelocity], y[ns+offDensity]
	r[ns+offTemperature] = rho*u*c.gas.CpMass()*yp[ns+offTemperature] + c.heatRelease() - qw
}

// heatRelease returns Σ ω̇_k·h̄_k [W/m³] using the production rates from
// the last call to flowResiduals or initialDerivatives.
func (c *ConstArea) heatRelease() float64 {
	c.gas.PartialMolarEnthalpies(c.hk)
	return floats.Dot(c.wdot, c.hk)
}

// residual evaluates the equations at temperature t with wall heat flux
// qw. qw is ignored for isothermal reactors.
func (c *ConstArea) residual(x float64, y, yp, r []float64, t, qw float64) error {
	if err := c.setState(y, t); err != nil {
		return fmt.Errorf("pfr: x=%g: %w", x, err)
	}
	if err := c.flowResiduals(y, yp, r); err != nil {
		return fmt.Errorf("pfr: x=%g: %w", x, err)
	}
	if c.energy() {
		c.energyResidual(y, yp, r, qw)
	}
	return nil
}
