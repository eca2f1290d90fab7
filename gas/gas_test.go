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
	"bytes"
	"errors"
	"math"
	"testing"
)

const mechanismFile = "../testdata/acetylene.toml"

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func loadGas(t *testing.T, phase string) *Solution {
	s, err := Load(mechanismFile, phase)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSpeciesIndex(t *testing.T) {
	s := loadGas(t, "gas")
	if s.NSpecies() != 8 {
		t.Fatalf("have %d species, want 8", s.NSpecies())
	}
	for k, name := range s.SpeciesNames() {
		i, err := s.SpeciesIndex(name)
		if err != nil {
			t.Fatal(err)
		}
		if i != k {
			t.Errorf("%s: have index %d, want %d", name, i, k)
		}
		if s.SpeciesName(k) != name {
			t.Errorf("have name %s, want %s", s.SpeciesName(k), name)
		}
	}
	if _, err := s.SpeciesIndex("O2"); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("have error %v, want %v", err, ErrUnknownSpecies)
	}
}

func TestUnknownPhase(t *testing.T) {
	if _, err := Load(mechanismFile, "liquid"); !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("have error %v, want %v", err, ErrUnknownPhase)
	}
}

func TestDefaultState(t *testing.T) {
	s := loadGas(t, "")
	if s.Name() != "gas" {
		t.Errorf("default phase: have %s, want gas", s.Name())
	}
	if s.Temperature() != 298.15 || s.Pressure() != OneAtm {
		t.Errorf("have T=%g p=%g", s.Temperature(), s.Pressure())
	}
	if x := s.MoleFractions(); x[0] != 1 {
		t.Errorf("first species mole fraction: have %g, want 1", x[0])
	}
}

func TestThermo(t *testing.T) {
	s := loadGas(t, "gas")
	if err := s.SetTPX(300, OneAtm, "N2:1"); err != nil {
		t.Fatal(err)
	}
	const (
		cpWant = 29075.482277646166 // J/kmol/K
		hWant  = 55215.4219356438   // J/kmol
	)
	if cp := s.CpMole(); different(cp, cpWant, 1.e-10) {
		t.Errorf("cp: have %g, want %g", cp, cpWant)
	}
	if cp := s.CpMass(); different(cp, cpWant/28.014, 1.e-10) {
		t.Errorf("cp mass: have %g, want %g", cp, cpWant/28.014)
	}
	if h := s.EnthalpyMole(); different(h, hWant, 1.e-10) {
		t.Errorf("h: have %g, want %g", h, hWant)
	}
	u := s.IntEnergyMass()
	uWant := (hWant - GasConstant*300) / 28.014
	if different(u, uWant, 1.e-10) {
		t.Errorf("u: have %g, want %g", u, uWant)
	}
	hk := make([]float64, s.NSpecies())
	s.PartialMolarEnthalpies(hk)
	if different(hk[0], hWant, 1.e-10) {
		t.Errorf("partial molar enthalpy: have %g, want %g", hk[0], hWant)
	}

	// Enthalpy must change when temperature does.
	if err := s.SetTP(1000, OneAtm); err != nil {
		t.Fatal(err)
	}
	if s.EnthalpyMole() <= hWant {
		t.Errorf("enthalpy did not increase with temperature: %g", s.EnthalpyMole())
	}
}

func TestDensity(t *testing.T) {
	s := loadGas(t, "gas")
	if err := s.SetTPX(1173, 5000, "N2:0.64, C2H2:0.3528, CH3COCH3:6.48e-03, CH4:7.2e-04"); err != nil {
		t.Fatal(err)
	}
	want := 5000 * s.MeanMolecularWeight() / (GasConstant * 1173)
	if rho := s.Density(); different(rho, want, 1.e-14) {
		t.Errorf("have %g, want %g", rho, want)
	}
	c := make([]float64, s.NSpecies())
	s.Concentrations(c)
	var sum float64
	for _, v := range c {
		sum += v
	}
	if different(sum, s.MolarDensity(), 1.e-12) {
		t.Errorf("total concentration: have %g, want %g", sum, s.MolarDensity())
	}
}

func TestMassMoleFractions(t *testing.T) {
	s := loadGas(t, "gas")
	if err := s.SetMoleFractionsString("N2 : 0.5 C2H2:0.5"); err != nil {
		t.Fatal(err)
	}
	y := s.MassFractions()
	mw := s.MolecularWeights()
	wbar := 0.5*mw[0] + 0.5*mw[3]
	if different(y[0], 0.5*mw[0]/wbar, 1.e-12) {
		t.Errorf("have %g, want %g", y[0], 0.5*mw[0]/wbar)
	}
	if different(s.MeanMolecularWeight(), wbar, 1.e-12) {
		t.Errorf("mean molecular weight: have %g, want %g", s.MeanMolecularWeight(), wbar)
	}

	// Setting mass fractions without normalization keeps the given values.
	y2 := []float64{0.6, 0, 0, 0.5, 0, 0, 0, 0}
	if err := s.SetMassFractionsNoNorm(y2); err != nil {
		t.Fatal(err)
	}
	if have := s.MassFractions(); have[0] != 0.6 || have[3] != 0.5 {
		t.Errorf("have %v", have)
	}
	wantW := 1 / (0.6/mw[0] + 0.5/mw[3])
	if different(s.MeanMolecularWeight(), wantW, 1.e-12) {
		t.Errorf("have %g, want %g", s.MeanMolecularWeight(), wantW)
	}

	if err := s.SetMassFractions([]float64{-0.1, 0, 0, 2, 0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if have := s.MassFractions(); have[0] != 0 || have[3] != 1 {
		t.Errorf("clipped and normalized: have %v", have)
	}
}

func TestParseComposition(t *testing.T) {
	names := []string{"N2", "C2H2", "CH4"}
	x, err := ParseComposition("N2:0.64, C2H2 :0.3528,CH4: 7.2e-04", names)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.64, 0.3528, 7.2e-04}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("%s: have %g, want %g", names[i], x[i], want[i])
		}
	}
	bad := map[string]error{
		"O2:1":       ErrUnknownSpecies,
		"N2:1, N2:2": ErrComposition,
		"N2:-1":      ErrComposition,
		"N2:0":       ErrComposition,
		"N2":         ErrComposition,
		"N2:abc":     ErrComposition,
		"":           ErrComposition,
	}
	for c, wantErr := range bad {
		if _, err := ParseComposition(c, names); !errors.Is(err, wantErr) {
			t.Errorf("%q: have error %v, want %v", c, err, wantErr)
		}
	}
}

func TestSetTPInvalid(t *testing.T) {
	s := loadGas(t, "gas")
	for _, tp := range [][2]float64{{0, 1}, {300, -1}, {math.NaN(), 1}, {300, math.Inf(1)}} {
		if err := s.SetTP(tp[0], tp[1]); !errors.Is(err, ErrInvalidState) {
			t.Errorf("T=%g p=%g: have error %v", tp[0], tp[1], err)
		}
	}
}

func TestViscosity(t *testing.T) {
	s := loadGas(t, "gas")
	if err := s.SetTPX(300, OneAtm, "N2:1"); err != nil {
		t.Fatal(err)
	}
	mu, err := s.Viscosity()
	if err != nil {
		t.Fatal(err)
	}
	const want = 1.8075004765988316e-05
	if different(mu, want, 1.e-10) {
		t.Errorf("have %g, want %g", mu, want)
	}
	// Measured value is 1.79e-5 Pa s.
	if different(mu, 1.79e-5, 0.02) {
		t.Errorf("have %g, want about 1.79e-5", mu)
	}

	// A mixture lies between its components.
	if err := s.SetMoleFractionsString("N2:0.5, H2:0.5"); err != nil {
		t.Fatal(err)
	}
	mix, err := s.Viscosity()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetMoleFractionsString("H2:1"); err != nil {
		t.Fatal(err)
	}
	h2, _ := s.Viscosity()
	if !(mix < mu && mix > h2) {
		t.Errorf("mixture viscosity %g not between %g and %g", mix, h2, mu)
	}
}

func TestThermalConductivityDiffusion(t *testing.T) {
	s := loadGas(t, "gas")
	if err := s.SetTPX(300, OneAtm, "N2:0.9, C2H2:0.1"); err != nil {
		t.Fatal(err)
	}
	k, err := s.ThermalConductivity()
	if err != nil {
		t.Fatal(err)
	}
	// Nitrogen is about 0.026 W/m/K at 300 K.
	if k < 0.015 || k > 0.04 {
		t.Errorf("thermal conductivity %g out of range", k)
	}
	d, err := s.BinaryDiffCoeff(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	// N2-C2H2 is about 1.5e-5 m²/s at 300 K and 1 atm.
	if d < 1.e-5 || d > 2.5e-5 {
		t.Errorf("binary diffusion coefficient %g out of range", d)
	}
	dkm := make([]float64, s.NSpecies())
	if err := s.MixDiffCoeffs(dkm); err != nil {
		t.Fatal(err)
	}
	for i, v := range dkm {
		if !(v > 0) {
			t.Errorf("%s: mixture diffusion coefficient %g", s.SpeciesName(i), v)
		}
	}
	// Diffusion scales inversely with pressure.
	if err := s.SetTP(300, OneAtm/2); err != nil {
		t.Fatal(err)
	}
	d2, _ := s.BinaryDiffCoeff(0, 3)
	if different(d2, 2*d, 1.e-12) {
		t.Errorf("have %g, want %g", d2, 2*d)
	}
}

func TestTransportUnavailable(t *testing.T) {
	s := loadGas(t, "gas-notransport")
	if _, err := s.Viscosity(); !errors.Is(err, ErrTransportUnavailable) {
		t.Errorf("have error %v, want %v", err, ErrTransportUnavailable)
	}
	if _, err := s.ThermalConductivity(); !errors.Is(err, ErrTransportUnavailable) {
		t.Errorf("have error %v, want %v", err, ErrTransportUnavailable)
	}
	if err := s.TransportAvailable(); !errors.Is(err, ErrTransportUnavailable) {
		t.Errorf("have error %v, want %v", err, ErrTransportUnavailable)
	}
}

func TestNetProductionRates(t *testing.T) {
	s := loadGas(t, "gas")
	if s.NReactions() != 3 {
		t.Fatalf("have %d reactions, want 3", s.NReactions())
	}
	if err := s.SetTPX(1173, 5000, "N2:0.64, C2H2:0.3528, CH3COCH3:6.48e-03, CH4:7.2e-04"); err != nil {
		t.Fatal(err)
	}
	wdot := make([]float64, s.NSpecies())
	s.NetProductionRates(wdot)
	c := make([]float64, s.NSpecies())
	s.Concentrations(c)
	kf := 1.e9 * math.Exp(-1.42e8/(GasConstant*1173))
	want := -2 * kf * c[3] * c[3]
	if different(wdot[3], want, 1.e-12) {
		t.Errorf("C2H2: have %g, want %g", wdot[3], want)
	}
	if wdot[0] != 0 {
		t.Errorf("N2 is inert but has rate %g", wdot[0])
	}
	if wdot[1] != 0 {
		t.Errorf("no C4H4 present but H2 rate is %g", wdot[1])
	}
	// Mass is conserved by each reaction.
	mw := s.MolecularWeights()
	var sum, scale float64
	for k, w := range wdot {
		sum += w * mw[k]
		scale += math.Abs(w * mw[k])
	}
	if math.Abs(sum) > 1.e-12*scale {
		t.Errorf("net mass production %g", sum)
	}

	inert := loadGas(t, "inert")
	if err := inert.SetTPX(1173, 5000, "N2:0.64, C2H2:0.36"); err != nil {
		t.Fatal(err)
	}
	inert.NetProductionRates(wdot)
	for k, w := range wdot {
		if w != 0 {
			t.Errorf("%s: rate %g in phase without kinetics", inert.SpeciesName(k), w)
		}
	}
}

func TestEquilibrium(t *testing.T) {
	s, err := Load("../testdata/dimer.toml", "")
	if err != nil {
		t.Fatal(err)
	}
	const T = 1173.
	if err := s.SetTPX(T, OneAtm, "N2:0.9, C2H2:0.1"); err != nil {
		t.Fatal(err)
	}
	kc := make([]float64, 1)
	s.EquilibriumConstants(kc)
	const kcWant = 194.50418088561312
	if different(kc[0], kcWant, 1.e-8) {
		t.Errorf("Kc: have %g, want %g", kc[0], kcWant)
	}
	ctot := s.MolarDensity()
	x4 := kc[0] * (0.1 * ctot) * (0.1 * ctot) / ctot
	if err := s.SetMoleFractions([]float64{0.9 - x4, 0.1, x4}); err != nil {
		t.Fatal(err)
	}
	wdot := make([]float64, 3)
	s.NetProductionRates(wdot)
	kf := make([]float64, 1)
	s.ForwardRateConstants(kf)
	c := make([]float64, 3)
	s.Concentrations(c)
	fwd := 2 * kf[0] * c[1] * c[1]
	if math.Abs(wdot[1])/fwd > 1.e-9 {
		t.Errorf("rate at equilibrium is %g of forward rate", math.Abs(wdot[1])/fwd)
	}
}

func TestFilterWrite(t *testing.T) {
	m, err := LoadMechanism(mechanismFile)
	if err != nil {
		t.Fatal(err)
	}
	f, err := m.Filter([]string{"N2", "C2H2", "C4H4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Species) != 3 {
		t.Errorf("have %d species, want 3", len(f.Species))
	}
	if len(f.Reactions) != 1 || f.Reactions[0].Equation != "2 C2H2 => C4H4" {
		t.Errorf("have reactions %+v", f.Reactions)
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	m2, err := ReadMechanism(buf)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSolution(m2, "gas")
	if err != nil {
		t.Fatal(err)
	}
	if s.NSpecies() != 3 || s.NReactions() != 1 {
		t.Errorf("have %d species and %d reactions", s.NSpecies(), s.NReactions())
	}
	if _, err := m.Filter([]string{"O2"}); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("have error %v, want %v", err, ErrUnknownSpecies)
	}
}

func TestUnbalancedReaction(t *testing.T) {
	const mech = `
[[phases]]
name = "gas"
species = ["H2", "C2H2"]

[[species]]
name = "H2"
composition = {H = 2}
[species.thermo]
model = "NASA7"
temperature-ranges = [200.0, 3500.0]
data = [[3.5, 0.0, 0.0, 0.0, 0.0, -1000.0, 0.0]]

[[species]]
name = "C2H2"
composition = {C = 2, H = 2}
[species.thermo]
model = "NASA7"
temperature-ranges = [200.0, 3500.0]
data = [[4.0, 0.0, 0.0, 0.0, 0.0, 26000.0, 0.0]]

[[reactions]]
equation = "C2H2 => H2"
reactants = {C2H2 = 1}
products = {H2 = 1}
rate-constant = {A = 1.0, b = 0.0, Ea = 0.0}
`
	if _, err := ReadMechanism(bytes.NewBufferString(mech)); err == nil {
		t.Error("unbalanced reaction should cause an error")
	}
}
