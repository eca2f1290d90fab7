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
	"math"
	"testing"
)

func TestFurnaceFit(t *testing.T) {
	f, err := FurnaceFit(1173)
	if err != nil {
		t.Fatal(err)
	}
	x := 0.1
	heat := 1 - math.Exp(-math.Pow(x/0.02492942, 0.78913918))
	cool := 1 - math.Exp(-math.Pow(x/0.40810172, 11.91548263))
	want := 0.97 * (300 + 873*heat - 773*cool)
	if have := f.Temperature(x); different(have, want, 1.e-14) {
		t.Errorf("have %g, want %g", have, want)
	}
	if have := f.Temperature(0); different(have, 291, 1.e-14) {
		t.Errorf("inlet: have %g, want 291", have)
	}
	// The heated zone is close to the set point and the exit cools.
	if tw := f.Temperature(0.2); math.Abs(tw-0.97*1173) > 20 {
		t.Errorf("core: have %g", tw)
	}
	if f.Temperature(0.45) > f.Temperature(0.3) {
		t.Error("wall does not cool toward the exit")
	}

	cores := FurnaceCores()
	if len(cores) != 9 || cores[0] != 773 || cores[8] != 1273 {
		t.Errorf("cores: %v", cores)
	}
	for _, c := range cores {
		if _, err := FurnaceProfile(c); err != nil {
			t.Error(err)
		}
	}
	if _, err := FurnaceProfile(1000); err == nil {
		t.Error("missing core temperature should cause an error")
	}
}

func TestWallExpression(t *testing.T) {
	w, err := WallExpression("300 + 800*(1 - exp(-x/0.05))")
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{0, 0.01, 0.1, 1} {
		want := 300 + 800*(1-math.Exp(-x/0.05))
		if have := w(x); different(have, want, 1.e-14) && x != 0 {
			t.Errorf("x=%g: have %g, want %g", x, have, want)
		}
	}
	if w(0) != 300 {
		t.Errorf("inlet: have %g, want 300", w(0))
	}
	if w, err := WallExpression("1173"); err != nil || w(0.3) != 1173 {
		t.Errorf("constant expression: %v", err)
	}
	for _, expr := range []string{"300 + y", "300 +", "exp(x, 2)"} {
		if _, err := WallExpression(expr); err == nil {
			t.Errorf("%q should cause an error", expr)
		}
	}
	if ConstantWall(500)(12) != 500 {
		t.Error("constant wall")
	}
}
