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
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pfr"
	"github.com/spatialmodel/pfr/internal/hash"
	"github.com/spf13/cast"
)

func init() {
	gob.Register(&pfr.Profile{})
}

// sweepParameters are the settings that can be varied in a sweep.
var sweepParameters = map[string]func(c *Config, v string) error{
	"mechanism":   func(c *Config, v string) error { c.Mechanism = v; return nil },
	"phase":       func(c *Config, v string) error { c.Phase = v; return nil },
	"model":       func(c *Config, v string) error { c.Model = strings.ToLower(v); return nil },
	"composition": func(c *Config, v string) error { c.Composition = v; return nil },
	"walltemperature": func(c *Config, v string) error {
		c.WallTemperature = v
		_, err := wallTemperature(v)
		return err
	},
	"diameter":                floatSetter(func(c *Config) *float64 { return &c.Diameter }),
	"temperature":             floatSetter(func(c *Config) *float64 { return &c.Temperature }),
	"pressure":                floatSetter(func(c *Config) *float64 { return &c.Pressure }),
	"flow":                    floatSetter(func(c *Config) *float64 { return &c.Flow }),
	"reftemperature":          floatSetter(func(c *Config) *float64 { return &c.RefTemperature }),
	"refpressure":             floatSetter(func(c *Config) *float64 { return &c.RefPressure }),
	"heattransfercoefficient": floatSetter(func(c *Config) *float64 { return &c.HeatTransferCoefficient }),
	"viscosity":               floatSetter(func(c *Config) *float64 { return &c.Viscosity }),
	"length":                  floatSetter(func(c *Config) *float64 { return &c.Length }),
}

func floatSetter(field func(c *Config) *float64) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

// SetParameter sets the named setting of c from a string value.
func SetParameter(c *Config, name, value string) error {
	set, ok := sweepParameters[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("pfrutil: parameter %q cannot be swept", name)
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("pfrutil: setting %s to %q: %w", name, value, err)
	}
	return nil
}

// sweepCase is a request to simulate one value of a sweep.
type sweepCase struct {
	cfg *Config
	log logrus.FieldLogger
}

// simulationSettings returns a copy of c without the settings that only
// affect output.
func simulationSettings(c *Config) *Config {
	o := *c
	o.OutputFile, o.LogFile, o.PlotFile = "", "", ""
	o.OutputVariables, o.PlotVariables, o.MoleFractions = nil, nil, false
	return &o
}

// Sweep runs the simulation specified by c once for each of values of the
// named parameter, running simulations in parallel. Results are written
// to files in outputDir named after the parameter value, in the formats of
// c.OutputFile and c.PlotFile. If cacheDir is not empty, profiles are
// cached there and simulations whose settings have already been run are
// not repeated. Cases with identical settings are simulated once. The
// returned profiles are in the same order as values and
// are nil for failed simulations.
func Sweep(ctx context.Context, w io.Writer, c *Config, parameter string, values []string, outputDir, cacheDir string) ([]*pfr.Profile, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("pfrutil: no values specified for sweep parameter %s", parameter)
	}
	if outputDir == "" {
		outputDir = "."
	}

	// Every value is checked before any case is started.
	cases := make([]*Config, len(values))
	sims := make([]*Config, len(values))
	keys := make([]string, len(values))
	for i, v := range values {
		cc := *c
		if err := SetParameter(&cc, parameter, v); err != nil {
			return nil, err
		}
		name := hash.Sanitize(parameter + "_" + v)
		if c.OutputFile != "" {
			cc.OutputFile = filepath.Join(outputDir, name+filepath.Ext(c.OutputFile))
		}
		if c.PlotFile != "" {
			cc.PlotFile = filepath.Join(outputDir, name+filepath.Ext(c.PlotFile))
		}
		cases[i] = &cc
		sims[i] = simulationSettings(&cc)
		keys[i] = hash.Key(parameter, sims[i])
	}

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("pfrutil: creating sweep output directory: %w", err)
	}
	log, closeLog, err := newLogger(w, c.LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	cacheFuncs := []requestcache.CacheFunc{requestcache.Memory(len(values))}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("pfrutil: creating sweep cache directory: %w", err)
		}
		cacheFuncs = append(cacheFuncs, requestcache.Disk(cacheDir, requestcache.MarshalGob, requestcache.UnmarshalGob))
	}
	cache := requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		sc := request.(sweepCase)
		return Simulate(ctx, sc.cfg, sc.log)
	}, runtime.GOMAXPROCS(-1), cacheFuncs...)

	type result struct {
		p   *pfr.Profile
		err error
	}
	results := make(map[string]*result)
	var wg sync.WaitGroup
	for i, v := range values {
		if _, ok := results[keys[i]]; ok {
			continue // Identical cases are only simulated once.
		}
		res := new(result)
		results[keys[i]] = res
		req := cache.NewRequest(ctx, sweepCase{
			cfg: sims[i],
			log: log.WithField("case", parameter+"="+v),
		}, keys[i])
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := req.Result()
			if err != nil {
				res.err = err
				return
			}
			res.p = r.(*pfr.Profile)
		}()
	}
	wg.Wait()

	profiles := make([]*pfr.Profile, len(values))
	var errs []error
	for i, key := range keys {
		res := results[key]
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s=%s: %w", parameter, values[i], res.err))
			continue
		}
		if err := writeOutputs(cases[i], res.p); err != nil {
			errs = append(errs, fmt.Errorf("%s=%s: %w", parameter, values[i], err))
			continue
		}
		profiles[i] = res.p
		log.WithFields(logrus.Fields{
			"case":       parameter + "=" + values[i],
			"outputFile": cases[i].OutputFile,
		}).Info("pfrutil: sweep case complete")
	}
	return profiles, errors.Join(errs...)
}
