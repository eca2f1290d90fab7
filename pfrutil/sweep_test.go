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
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSweepCmd(t *testing.T) {
	dir := t.TempDir()
	Cfg.Set("config", "testdata/config.toml")
	Cfg.Set("OutputFile", filepath.Join(dir, "pfr.csv"))
	Cfg.Set("Sweep.OutputDir", filepath.Join(dir, "sweep"))
	Root.SetOutput(io.Discard)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"sweep"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Temperature_1123.csv", "Temperature_1173.csv"} {
		if _, err := os.Stat(filepath.Join(dir, "sweep", name)); err != nil {
			t.Error(err)
		}
	}
}

func TestSweep(t *testing.T) {
	c, err := LoadConfig(testViper(t))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	values := []string{"1123", "1173", "1123"}
	profiles, err := Sweep(context.Background(), io.Discard, c, "Temperature", values, dir, cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	final := func(i int) float64 {
		y, err := profiles[i].Column("C2H2")
		if err != nil {
			t.Fatal(err)
		}
		return y[len(y)-1]
	}
	if final(0) != final(2) {
		t.Errorf("repeated cases differ: %g != %g", final(0), final(2))
	}
	if !(final(1) < final(0)) {
		t.Errorf("acetylene should be consumed faster at higher temperature: %g >= %g", final(1), final(0))
	}
	cached, err := filepath.Glob(filepath.Join(cacheDir, "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 2 {
		t.Errorf("have %d cached results, want 2", len(cached))
	}

	// A second sweep reads the results from the disk cache.
	again, err := Sweep(context.Background(), io.Discard, c, "Temperature", values[:2], dir, cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range again {
		if p.Len() != profiles[i].Len() {
			t.Errorf("case %d: have %d positions, want %d", i, p.Len(), profiles[i].Len())
		}
	}

	if _, err := Sweep(context.Background(), io.Discard, c, "Temperature", nil, dir, ""); err == nil {
		t.Error("expected an error for no values")
	}
	if _, err := Sweep(context.Background(), io.Discard, c, "OutputStep", []string{"1"}, dir, ""); err == nil {
		t.Error("expected an error for a parameter that cannot be swept")
	}
	profiles, err = Sweep(context.Background(), io.Discard, c, "Composition", []string{"N2:1", "Xe:1"}, dir, "")
	if err == nil {
		t.Error("expected an error for an unknown species")
	}
	if profiles[0] == nil || profiles[1] != nil {
		t.Errorf("have profiles %v, want only the first", profiles)
	}
}

func TestSweepInvalidValue(t *testing.T) {
	c, err := LoadConfig(testViper(t))
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "sweep")
	cacheDir := filepath.Join(dir, "cache")
	_, err = Sweep(context.Background(), io.Discard, c, "Temperature", []string{"1123", "hot"}, dir, cacheDir)
	if err == nil {
		t.Fatal("expected an error for a non-numeric temperature")
	}
	// No case should have started.
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("output directory should not exist: %v", err)
	}
}

func TestSimulationSettingsKey(t *testing.T) {
	c, err := LoadConfig(testViper(t))
	if err != nil {
		t.Fatal(err)
	}
	other := *c
	other.OutputFile = "other.nc"
	other.PlotVariables = []string{"H2"}
	a, b := simulationSettings(c), simulationSettings(&other)
	if a.OutputFile != "" || b.PlotVariables != nil {
		t.Errorf("output settings not cleared: %+v", a)
	}
	if c.OutputFile == "" {
		t.Error("original settings modified")
	}
}
