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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pfr"
	"github.com/spatialmodel/pfr/dae"
	"github.com/spf13/cast"
)

// Reactor models.
const (
	Isothermal = "isothermal"
	Adiabatic  = "adiabatic"
	HeatWall   = "heatwall"
)

// Config holds the settings of a single simulation.
type Config struct {
	// Reactor settings. See pfr.Config for their meanings.
	Mechanism, Phase, Model string
	Diameter                float64
	Temperature, Pressure   float64
	Composition             string
	Flow                    float64
	RefTemperature          float64
	RefPressure             float64

	// HeatTransferCoefficient [W/(m² K)] and WallTemperature are used by
	// the heat wall model. WallTemperature is a temperature in K, an
	// expression in the axial position x, or "furnace:<core temperature>".
	HeatTransferCoefficient float64
	WallTemperature         string

	// InitialWallExchange specifies whether the wall heat flux is
	// included in the initial derivatives of the heat wall model.
	InitialWallExchange bool

	// Viscosity [Pa s], if > 0, replaces the mechanism viscosity.
	Viscosity float64

	// Length [m] of the tube and OutputStep [m] between reported
	// positions.
	Length, OutputStep float64

	Solver dae.Config

	// Retries is the number of times a failed integration is repeated
	// with a smaller initial step.
	Retries int

	// CheckTolerance is the relative tolerance for the density and mass
	// flow checks at each reported position. Zero disables the checks.
	CheckTolerance float64

	// Output settings.
	OutputFile, LogFile, PlotFile string
	OutputVariables               map[string]string
	PlotVariables                 []string
	MoleFractions                 bool
}

// LoadReactorConfig reads the settings that specify the reactor from cfg,
// leaving the simulation and output settings unset.
func LoadReactorConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		Mechanism:               os.ExpandEnv(cfg.GetString("Mechanism")),
		Phase:                   os.ExpandEnv(cfg.GetString("Phase")),
		Model:                   strings.ToLower(os.ExpandEnv(cfg.GetString("Model"))),
		Diameter:                cfg.GetFloat64("Diameter"),
		Temperature:             cfg.GetFloat64("Temperature"),
		Pressure:                cfg.GetFloat64("Pressure"),
		Composition:             os.ExpandEnv(cfg.GetString("Composition")),
		Flow:                    cfg.GetFloat64("Flow"),
		RefTemperature:          cfg.GetFloat64("RefTemperature"),
		RefPressure:             cfg.GetFloat64("RefPressure"),
		HeatTransferCoefficient: cfg.GetFloat64("HeatTransferCoefficient"),
		WallTemperature:         os.ExpandEnv(cfg.GetString("WallTemperature")),
		InitialWallExchange:     cfg.GetBool("InitialWallExchange"),
		Viscosity:               cfg.GetFloat64("Viscosity"),
	}
	if err := c.checkReactor(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads the simulation settings from cfg.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	vars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	c, err := LoadReactorConfig(cfg)
	if err != nil {
		return nil, err
	}
	c.Length = cfg.GetFloat64("Length")
	c.OutputStep = cfg.GetFloat64("OutputStep")
	c.Solver = dae.Config{
		RelTol:      cfg.GetFloat64("RelTol"),
		AbsTol:      cfg.GetFloat64("AbsTol"),
		MaxSteps:    cfg.GetInt("MaxSteps"),
		InitialStep: cfg.GetFloat64("InitialStep"),
		MaxStep:     cfg.GetFloat64("MaxStep"),
		MaxOrder:    cfg.GetInt("MaxOrder"),
	}
	c.Retries = cfg.GetInt("Retries")
	c.CheckTolerance = cfg.GetFloat64("CheckTolerance")
	c.OutputFile = os.ExpandEnv(cfg.GetString("OutputFile"))
	c.PlotFile = os.ExpandEnv(cfg.GetString("PlotFile"))
	c.PlotVariables = expandStringSlice(cfg.GetStringSlice("PlotVariables"))
	c.MoleFractions = cfg.GetBool("MoleFractions")

	if c.OutputVariables, err = checkOutputVars(vars); err != nil {
		return nil, err
	}
	if c.OutputFile, err = checkOutputFile(c.OutputFile); err != nil {
		return nil, err
	}
	c.LogFile = checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), c.OutputFile)
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkReactor makes sure the reactor settings that are not checked by
// the reactor constructors are valid.
func (c *Config) checkReactor() error {
	if c.Mechanism == "" {
		return fmt.Errorf("pfrutil: you need to specify a mechanism file in the 'Mechanism' configuration variable")
	}
	if _, err := os.Stat(c.Mechanism); err != nil {
		return fmt.Errorf("pfrutil: the Mechanism file is not accessible: %w", err)
	}
	switch c.Model {
	case Isothermal, Adiabatic, HeatWall:
	default:
		return fmt.Errorf("pfrutil: the Model variable needs to be set to either %s, %s, or %s, but is currently set to `%s`",
			Isothermal, Adiabatic, HeatWall, c.Model)
	}
	if c.Model == HeatWall {
		if _, err := wallTemperature(c.WallTemperature); err != nil {
			return err
		}
	}
	return nil
}

// check makes sure the simulation settings are valid.
func (c *Config) check() error {
	vars := []float64{c.Length, c.OutputStep}
	varNames := []string{"Length", "OutputStep"}
	for i, v := range vars {
		if !(v > 0) {
			return fmt.Errorf("pfrutil: %s=%g but should be >0", varNames[i], v)
		}
	}
	if c.Retries < 0 {
		return fmt.Errorf("pfrutil: Retries=%d but should be >=0", c.Retries)
	}
	return nil
}

// reactorConfig returns the pfr reactor configuration.
func (c *Config) reactorConfig(log logrus.FieldLogger) pfr.Config {
	rc := pfr.Config{
		Mechanism:      c.Mechanism,
		Phase:          c.Phase,
		Diameter:       c.Diameter,
		Temperature:    c.Temperature,
		Pressure:       c.Pressure,
		Composition:    c.Composition,
		Flow:           c.Flow,
		RefTemperature: c.RefTemperature,
		RefPressure:    c.RefPressure,
		Log:            log,
	}
	if c.Viscosity > 0 {
		rc.Viscosity = pfr.ConstantViscosity(c.Viscosity)
	}
	return rc
}

// NewReactor creates the reactor specified by c.
func NewReactor(c *Config, log logrus.FieldLogger) (pfr.Reactor, error) {
	rc := c.reactorConfig(log)
	switch c.Model {
	case Isothermal:
		return pfr.NewIsothermal(rc)
	case Adiabatic:
		return pfr.NewAdiabatic(rc)
	case HeatWall:
		wall, err := wallTemperature(c.WallTemperature)
		if err != nil {
			return nil, err
		}
		r, err := pfr.NewHeatWall(rc, c.HeatTransferCoefficient, wall)
		if err != nil {
			return nil, err
		}
		r.AdiabaticStart = !c.InitialWallExchange
		return r, nil
	default:
		return nil, fmt.Errorf("pfrutil: invalid model %q", c.Model)
	}
}

// furnacePrefix introduces a fitted furnace wall temperature profile.
const furnacePrefix = "furnace:"

// wallTemperature parses a wall temperature specification.
func wallTemperature(s string) (pfr.WallTemperature, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("pfrutil: you need to specify the WallTemperature configuration variable for the %s model", HeatWall)
	}
	if t, err := cast.ToFloat64E(s); err == nil {
		return pfr.ConstantWall(t), nil
	}
	if strings.HasPrefix(strings.ToLower(s), furnacePrefix) {
		core, err := cast.ToFloat64E(strings.TrimSpace(s[len(furnacePrefix):]))
		if err != nil {
			return nil, fmt.Errorf("pfrutil: parsing furnace core temperature in WallTemperature: %w", err)
		}
		return pfr.FurnaceProfile(core)
	}
	return pfr.WallExpression(s)
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		k, v = os.ExpandEnv(k), strings.TrimSpace(os.ExpandEnv(v))
		if v == "" {
			return nil, fmt.Errorf("pfrutil: output variable %s has an empty expression", k)
		}
		o[k] = v
	}
	return o, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the directory of the output file, if one
// is specified, exists, and that its format is supported.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return f, nil
	}
	switch ext := strings.ToLower(filepath.Ext(f)); ext {
	case ".csv", ".xlsx", ".nc":
	default:
		return f, fmt.Errorf("pfrutil: the OutputFile extension needs to be .csv, .xlsx, or .nc, but is `%s`", ext)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("pfrutil: the OutputFile directory doesn't exist: %w", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" && outputFile != "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("pfrutil: parsing %s: %w", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("pfrutil: invalid type for %s: %#v", varName, i)
	}
}
