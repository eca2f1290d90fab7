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
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

// WallTemperature returns the wall temperature [K] at axial position x [m].
type WallTemperature func(x float64) float64

// ConstantWall returns a WallTemperature that is t everywhere.
func ConstantWall(t float64) WallTemperature {
	return func(float64) float64 { return t }
}

// WallExpression returns a WallTemperature calculated from an expression
// in the variable x, for example "300 + 800*(1 - exp(-x/0.05))". The
// functions exp, log and sqrt are available. If the expression cannot be
// evaluated at some position the returned temperature is NaN.
func WallExpression(expression string) (WallTemperature, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, defaultFunctions())
	if err != nil {
		return nil, fmt.Errorf("pfr: wall temperature expression %q: %w", expression, err)
	}
	for _, v := range expr.Vars() {
		if v != "x" {
			return nil, fmt.Errorf("pfr: wall temperature expression %q: undefined variable %q", expression, v)
		}
	}
	eval := func(x float64) (float64, error) {
		v, err := expr.Evaluate(map[string]interface{}{"x": x})
		if err != nil {
			return math.NaN(), err
		}
		f, ok := v.(float64)
		if !ok {
			return math.NaN(), fmt.Errorf("result %v is not a number", v)
		}
		return f, nil
	}
	if _, err := eval(0); err != nil {
		return nil, fmt.Errorf("pfr: wall temperature expression %q: %w", expression, err)
	}
	return func(x float64) float64 {
		t, _ := eval(x)
		return t
	}, nil
}

// Furnace is a fit of the wall temperature of a tubular furnace as the sum
// of a heating and a cooling Weibull curve:
//
//	Tw(x) = Scale·(Ambient + (Core-Ambient)·(1-exp(-(x/X1)^M1)) - (Core-Exit)·(1-exp(-(x/X2)^M2)))
type Furnace struct {
	Ambient float64 // inlet temperature [K]
	Core    float64 // set point of the heated zone [K]
	Exit    float64 // outlet temperature [K]
	X1, M1  float64 // heating curve scale [m] and shape
	X2, M2  float64 // cooling curve scale [m] and shape
	Scale   float64
}

// Temperature returns the wall temperature [K] at x [m].
func (f Furnace) Temperature(x float64) float64 {
	heat := 1 - math.Exp(-math.Pow(x/f.X1, f.M1))
	cool := 1 - math.Exp(-math.Pow(x/f.X2, f.M2))
	return f.Scale * (f.Ambient + (f.Core-f.Ambient)*heat - (f.Core-f.Exit)*cool)
}

// furnaceFits are measured fit parameters {X1, X2, M1, M2} by core
// temperature [K].
var furnaceFits = map[float64][4]float64{
	773:  {0.04132785, 0.36586941, 1.92089872, 12.41516606},
	873:  {0.03457862, 0.39032227, 1.41582889, 9.79102679},
	973:  {0.02537489, 0.39703098, 0.99659743, 9.77523826},
	1023: {0.02528152, 0.40339555, 0.88494798, 10.55513796},
	1073: {0.02507178, 0.40847247, 0.81631547, 11.98899245},
	1123: {0.02497517, 0.40832661, 0.80065655, 11.97005813},
	1173: {0.02492942, 0.40810172, 0.78913918, 11.91548263},
	1223: {0.02596356, 0.40572591, 0.85168097, 11.01722351},
	1273: {0.02682903, 0.40342913, 0.91051192, 10.36909121},
}

// FurnaceCores returns the core temperatures for which FurnaceFit has
// parameters, in increasing order.
func FurnaceCores() []float64 {
	cores := make([]float64, 0, len(furnaceFits))
	for c := range furnaceFits {
		cores = append(cores, c)
	}
	sort.Float64s(cores)
	return cores
}

// FurnaceFit returns the fitted furnace profile for the given core
// temperature [K], with an ambient temperature of 300 K, an exit
// temperature of 400 K and a scale of 0.97.
func FurnaceFit(core float64) (Furnace, error) {
	p, ok := furnaceFits[core]
	if !ok {
		return Furnace{}, fmt.Errorf("pfr: no furnace fit for core temperature %g K; available: %v", core, FurnaceCores())
	}
	return Furnace{
		Ambient: 300,
		Core:    core,
		Exit:    400,
		X1:      p[0],
		X2:      p[1],
		M1:      p[2],
		M2:      p[3],
		Scale:   0.97,
	}, nil
}

// FurnaceProfile returns the WallTemperature of FurnaceFit(core).
func FurnaceProfile(core float64) (WallTemperature, error) {
	f, err := FurnaceFit(core)
	if err != nil {
		return nil, err
	}
	return f.Temperature, nil
}
