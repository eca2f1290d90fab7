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

package pfrutil

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
)

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	cfg.Set("json", `{"MassFlux": "rho*u"}`)
	cfg.Set("map", map[string]interface{}{"MassFlux": "rho*u"})
	cfg.Set("empty", "")
	cfg.Set("bad", `{"MassFlux": `)
	cfg.Set("int", 3)

	want := map[string]string{"MassFlux": "rho*u"}
	for _, name := range []string{"json", "map"} {
		have, err := GetStringMapString(name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: have %v, want %v", name, have, want)
		}
	}
	for _, name := range []string{"empty", "missing"} {
		have, err := GetStringMapString(name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(have) != 0 {
			t.Errorf("%s: have %v, want empty map", name, have)
		}
	}
	for _, name := range []string{"bad", "int"} {
		if _, err := GetStringMapString(name, cfg); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestWallTemperature(t *testing.T) {
	for _, test := range []struct {
		s    string
		x    float64
		want float64
	}{
		{s: "1000", x: 0.3, want: 1000},
		{s: " 1173.5 ", x: 0, want: 1173.5},
		{s: "300 + 100*x", x: 1, want: 400},
	} {
		w, err := wallTemperature(test.s)
		if err != nil {
			t.Fatalf("%q: %v", test.s, err)
		}
		if have := w(test.x); have != test.want {
			t.Errorf("%q at x=%g: have %g, want %g", test.s, test.x, have, test.want)
		}
	}

	w, err := wallTemperature("Furnace:1073")
	if err != nil {
		t.Fatal(err)
	}
	if tw := w(0.2); math.IsNaN(tw) || tw < 273 || tw > 1400 {
		t.Errorf("furnace wall temperature out of range: %g", tw)
	}

	for _, s := range []string{"", "furnace:hot", "furnace:100"} {
		if _, err := wallTemperature(s); err == nil {
			t.Errorf("%q: expected an error", s)
		}
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"", filepath.Join(dir, "out.csv"), filepath.Join(dir, "out.XLSX"), filepath.Join(dir, "out.nc")} {
		if _, err := checkOutputFile(f); err != nil {
			t.Errorf("%q: %v", f, err)
		}
	}
	for _, f := range []string{filepath.Join(dir, "out.txt"), filepath.Join(dir, "missing", "out.csv")} {
		if _, err := checkOutputFile(f); err == nil {
			t.Errorf("%q: expected an error", f)
		}
	}
}

func TestCheckLogFile(t *testing.T) {
	if have, want := checkLogFile("", "results/pfr.nc"), "results/pfr.log"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
	if have, want := checkLogFile("run.log", "results/pfr.nc"), "run.log"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
	if have := checkLogFile("", ""); have != "" {
		t.Errorf("have %q, want no log file", have)
	}
}

func TestCheckOutputVars(t *testing.T) {
	os.Setenv("PFR_TEST_SPECIES", "C2H2")
	defer os.Unsetenv("PFR_TEST_SPECIES")
	have, err := checkOutputVars(map[string]string{"Y": "${PFR_TEST_SPECIES}\n*2 "})
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]string{"Y": "C2H2 *2"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if _, err := checkOutputVars(map[string]string{"Y": " "}); err == nil {
		t.Error("expected an error for an empty expression")
	}
}

func testViper(t *testing.T) *viper.Viper {
	cfg := viper.New()
	cfg.SetConfigFile("testdata/config.toml")
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	cfg.Set("OutputFile", filepath.Join(t.TempDir(), "pfr.csv"))
	cfg.Set("RelTol", 1.e-9)
	cfg.Set("AbsTol", 1.e-15)
	cfg.Set("MaxSteps", 10000)
	cfg.Set("InitialStep", 1.e-5)
	cfg.Set("MaxOrder", 5)
	cfg.Set("Retries", 2)
	cfg.Set("CheckTolerance", 1.e-6)
	return cfg
}

func TestLoadConfig(t *testing.T) {
	cfg := testViper(t)
	c, err := LoadConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Model != Isothermal || c.Temperature != 1173 || c.Length != 0.1 {
		t.Errorf("settings not loaded: %+v", c)
	}
	if want := map[string]string{"MassFlux": "rho*u", "C2H2": "C2H2"}; !reflect.DeepEqual(c.OutputVariables, want) {
		t.Errorf("output variables: have %v, want %v", c.OutputVariables, want)
	}
	if want := []string{"C2H2", "H2"}; !reflect.DeepEqual(c.PlotVariables, want) {
		t.Errorf("plot variables: have %v, want %v", c.PlotVariables, want)
	}
	if want := c.OutputFile[:len(c.OutputFile)-len(".csv")] + ".log"; c.LogFile != want {
		t.Errorf("log file: have %q, want %q", c.LogFile, want)
	}
	if c.Solver.MaxOrder != 5 || c.Solver.RelTol != 1.e-9 {
		t.Errorf("solver settings not loaded: %+v", c.Solver)
	}

	for name, v := range map[string]interface{}{
		"Model":           "plasma",
		"Mechanism":       "testdata/missing.toml",
		"Length":          0.0,
		"OutputStep":      -1.0,
		"Retries":         -1,
		"OutputFile":      "pfr.dat",
		"OutputVariables": `{"a": `,
	} {
		cfg := testViper(t)
		cfg.Set(name, v)
		if _, err := LoadConfig(cfg); err == nil {
			t.Errorf("%s=%v: expected an error", name, v)
		}
	}

	cfg = testViper(t)
	cfg.Set("Model", "HeatWall")
	cfg.Set("WallTemperature", "")
	if _, err := LoadConfig(cfg); err == nil {
		t.Error("expected an error for a missing wall temperature")
	}
}

func TestSetParameter(t *testing.T) {
	c := &Config{}
	for _, p := range []struct{ name, value string }{
		{"Temperature", "1123"},
		{"pressure", "6000"},
		{"Composition", "N2:1"},
		{"Model", "Adiabatic"},
		{"WallTemperature", "furnace:873"},
	} {
		if err := SetParameter(c, p.name, p.value); err != nil {
			t.Fatalf("%s: %v", p.name, err)
		}
	}
	want := &Config{Temperature: 1123, Pressure: 6000, Composition: "N2:1",
		Model: Adiabatic, WallTemperature: "furnace:873"}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("have %+v, want %+v", c, want)
	}
	for _, p := range []struct{ name, value string }{
		{"OutputFile", "x.csv"},
		{"Temperature", "hot"},
		{"WallTemperature", "furnace:"},
	} {
		if err := SetParameter(c, p.name, p.value); err == nil {
			t.Errorf("%s=%s: expected an error", p.name, p.value)
		}
	}
}

func TestLoadReactorConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Mechanism", "../testdata/acetylene.toml")
	cfg.Set("Model", "Adiabatic")
	cfg.Set("Temperature", 1173.0)
	c, err := LoadReactorConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Model != Adiabatic || c.Temperature != 1173 || c.Length != 0 {
		t.Errorf("have %+v", c)
	}
	if _, err := LoadConfig(cfg); err == nil {
		t.Error("expected an error for missing simulation settings")
	}
}
