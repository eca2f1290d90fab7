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

// Package pfrutil contains the command-line interface for the PFR
// plug-flow reactor model.
package pfrutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pfr"
	"github.com/spatialmodel/pfr/gas"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// reactorFlags are the flag sets of the commands that create a reactor.
	reactorFlags := []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags(), dimensionlessCmd.Flags()}
	simFlags := []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()}

	// Options are the configuration options available to PFR.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Mechanism",
			usage: `
              Mechanism is the path to the TOML file holding the species,
              thermodynamic, transport and reaction data. It can include
              environment variables.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   append(reactorFlags, filterCmd.Flags()),
		},
		{
			name: "Phase",
			usage: `
              Phase is the name of the gas phase within the mechanism file.`,
			defaultVal: "gas",
			flagsets:   reactorFlags,
		},
		{
			name: "Model",
			usage: `
              Model is the energy treatment of the reactor: 'isothermal',
              'adiabatic', or 'heatwall'.`,
			defaultVal: Isothermal,
			flagsets:   reactorFlags,
		},
		{
			name: "Diameter",
			usage: `
              Diameter is the inner diameter of the tube [m].`,
			defaultVal: 0.028,
			flagsets:   reactorFlags,
		},
		{
			name: "Temperature",
			usage: `
              Temperature is the inlet temperature [K].`,
			shorthand:  "T",
			defaultVal: 1173.0,
			flagsets:   reactorFlags,
		},
		{
			name: "Pressure",
			usage: `
              Pressure is the inlet pressure [Pa].`,
			shorthand:  "p",
			defaultVal: 5000.0,
			flagsets:   reactorFlags,
		},
		{
			name: "Composition",
			usage: `
              Composition is the inlet composition as mole fractions in the
              format "A:0.5, B:0.5". Fractions are normalized.`,
			shorthand:  "X",
			defaultVal: "N2:1",
			flagsets:   reactorFlags,
		},
		{
			name: "Flow",
			usage: `
              Flow is the volumetric flow rate at the reference temperature
              and pressure [cm³/min].`,
			defaultVal: 222.0,
			flagsets:   reactorFlags,
		},
		{
			name: "RefTemperature",
			usage: `
              RefTemperature is the temperature [K] at which Flow is given.`,
			defaultVal: pfr.DefaultRefTemperature,
			flagsets:   reactorFlags,
		},
		{
			name: "RefPressure",
			usage: `
              RefPressure is the pressure [Pa] at which Flow is given.`,
			defaultVal: gas.OneAtm,
			flagsets:   reactorFlags,
		},
		{
			name: "HeatTransferCoefficient",
			usage: `
              HeatTransferCoefficient is the wall heat transfer coefficient
              [W/(m² K)] of the heatwall model.`,
			defaultVal: 10.0,
			flagsets:   reactorFlags,
		},
		{
			name: "WallTemperature",
			usage: `
              WallTemperature is the wall temperature of the heatwall model.
              It is either a temperature [K], an expression in the axial
              position x [m] such as "300 + 800*(1 - exp(-x/0.05))", or
              "furnace:<core temperature>" for a fitted tubular furnace
              profile with core temperatures from 773 to 1273 K.`,
			defaultVal: "1173",
			flagsets:   reactorFlags,
		},
		{
			name: "InitialWallExchange",
			usage: `
              InitialWallExchange specifies whether the wall heat flux at
              the inlet is included when calculating the initial
              temperature gradient of the heatwall model.`,
			defaultVal: true,
			flagsets:   reactorFlags,
		},
		{
			name: "Viscosity",
			usage: `
              Viscosity, if > 0, is a constant gas viscosity [Pa s] that
              replaces the viscosity calculated from the mechanism.`,
			defaultVal: 0.0,
			flagsets:   reactorFlags,
		},
		{
			name: "Length",
			usage: `
              Length is the length of the tube [m].`,
			shorthand:  "L",
			defaultVal: 0.4,
			flagsets:   simFlags,
		},
		{
			name: "OutputStep",
			usage: `
              OutputStep is the distance between reported positions [m].`,
			defaultVal: 0.01,
			flagsets:   simFlags,
		},
		{
			name: "RelTol",
			usage: `
              RelTol is the relative error tolerance of the integrator.`,
			defaultVal: 1.e-9,
			flagsets:   simFlags,
		},
		{
			name: "AbsTol",
			usage: `
              AbsTol is the absolute error tolerance of the integrator.`,
			defaultVal: 1.e-15,
			flagsets:   simFlags,
		},
		{
			name: "MaxSteps",
			usage: `
              MaxSteps is the maximum number of integrator steps between
              reported positions.`,
			defaultVal: 10000,
			flagsets:   simFlags,
		},
		{
			name: "InitialStep",
			usage: `
              InitialStep is the first integrator step size to try [m].`,
			defaultVal: 1.e-5,
			flagsets:   simFlags,
		},
		{
			name: "MaxStep",
			usage: `
              MaxStep is the largest integrator step [m]. Zero means no
              limit.`,
			defaultVal: 0.0,
			flagsets:   simFlags,
		},
		{
			name: "MaxOrder",
			usage: `
              MaxOrder is the highest integration order, between 1 and 5.`,
			defaultVal: 5,
			flagsets:   simFlags,
		},
		{
			name: "Retries",
			usage: `
              Retries is the number of times a simulation that fails to
              converge is repeated, with the initial step reduced tenfold
              each time.`,
			defaultVal: 2,
			flagsets:   simFlags,
		},
		{
			name: "CheckTolerance",
			usage: `
              CheckTolerance is the relative tolerance for checking the
              equation of state and the mass flow rate at every reported
              position. Zero disables the checks.`,
			defaultVal: 1.e-6,
			flagsets:   simFlags,
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the results are written. The
              format is chosen by the extension: .csv, .xlsx or .nc. It can
              include environment variables.`,
			shorthand:  "o",
			defaultVal: "pfr.csv",
			flagsets:   simFlags,
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If it is
              not specified, the log is written next to OutputFile.`,
			defaultVal: "",
			flagsets:   simFlags,
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies the variables to write to OutputFile
              as a map of names to expressions of the reactor variables
              (species names, u, rho, p, T and x), for example
              {"MassFlux": "rho*u", "YC2H2": "C2H2"}. If it is empty, all
              reactor variables are written.`,
			defaultVal: map[string]string{},
			flagsets:   simFlags,
		},
		{
			name: "MoleFractions",
			usage: `
              MoleFractions specifies whether species are written as mole
              fractions instead of mass fractions.`,
			defaultVal: false,
			flagsets:   simFlags,
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile, if not empty, is the path of a PNG plot of the
              results.`,
			defaultVal: "",
			flagsets:   simFlags,
		},
		{
			name: "PlotVariables",
			usage: `
              PlotVariables are the variables shown in PlotFile. If empty,
              the species are plotted.`,
			defaultVal: []string{},
			flagsets:   simFlags,
		},
		{
			name: "Sweep.Parameter",
			usage: `
              Sweep.Parameter is the name of the setting to vary, for
              example Temperature or Composition.`,
			defaultVal: "Temperature",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Values",
			usage: `
              Sweep.Values are the values of Sweep.Parameter to simulate.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.OutputDir",
			usage: `
              Sweep.OutputDir is the directory where the results of each
              sweep case are written.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.CacheDir",
			usage: `
              Sweep.CacheDir, if not empty, is a directory where simulation
              results are cached so that repeated cases are not run again.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Species",
			usage: `
              Species are the species to keep in the filtered mechanism.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{filterCmd.Flags()},
		},
		{
			name: "FilteredMechanism",
			usage: `
              FilteredMechanism is the path where the filtered mechanism is
              written.`,
			defaultVal: "filtered.toml",
			flagsets:   []*pflag.FlagSet{filterCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PFR")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(sweepCmd)
	Root.AddCommand(mechanismCmd)
	mechanismCmd.AddCommand(filterCmd)
	Root.AddCommand(dimensionlessCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("pfr: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "pfr",
	Short: "A plug-flow reactor model.",
	Long: `PFR simulates steady-state, one-dimensional plug-flow reactors with
finite-rate gas-phase chemistry. Use the subcommands specified below to access
the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PFR_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PFR.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PFR v%s\n", pfr.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a single simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run simulates the reactor specified by the configuration along the
tube and writes the state at every OutputStep to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(context.Background(), cmd.OutOrStderr(), c)
	},
	DisableAutoGenTag: true,
}

// sweepCmd is a command that runs a simulation for each of a list of
// parameter values.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the model for a range of parameter values.",
	Long: `sweep runs a simulation for each of the values in Sweep.Values of the
setting named by Sweep.Parameter, in parallel, and writes the results of each
to Sweep.OutputDir. Settings that can be swept are Mechanism, Phase, Model,
Composition, WallTemperature, Diameter, Temperature, Pressure, Flow,
RefTemperature, RefPressure, HeatTransferCoefficient, Viscosity and Length.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		_, err = Sweep(context.Background(), cmd.OutOrStderr(), c,
			Cfg.GetString("Sweep.Parameter"),
			expandStringSlice(Cfg.GetStringSlice("Sweep.Values")),
			os.ExpandEnv(Cfg.GetString("Sweep.OutputDir")),
			os.ExpandEnv(Cfg.GetString("Sweep.CacheDir")),
		)
		return err
	},
	DisableAutoGenTag: true,
}

var mechanismCmd = &cobra.Command{
	Use:   "mechanism",
	Short: "Work with mechanism files.",
	Long:  `mechanism contains tools for working with mechanism files.`,
	DisableAutoGenTag: true,
}

// filterCmd is a command that writes a reduced mechanism.
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Write a reduced mechanism.",
	Long: `filter writes a mechanism that holds only the species listed in
Species and the reactions among them to FilteredMechanism.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return FilterMechanism(
			os.ExpandEnv(Cfg.GetString("Mechanism")),
			os.ExpandEnv(Cfg.GetString("FilteredMechanism")),
			Cfg.GetStringSlice("Species"),
		)
	},
	DisableAutoGenTag: true,
}

// dimensionlessCmd is a command that prints the inlet dimensionless
// numbers.
var dimensionlessCmd = &cobra.Command{
	Use:   "dimensionless",
	Short: "Print the inlet dimensionless numbers.",
	Long: `dimensionless prints the Reynolds, Prandtl, Schmidt, Péclet, Grashof
and Rayleigh numbers of the reactor at the inlet. For the heatwall model the
temperature difference is that between the wall at the inlet and the gas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadReactorConfig(Cfg)
		if err != nil {
			return err
		}
		n, err := Dimensionless(c)
		if err != nil {
			return err
		}
		cmd.Printf("Reynolds:    %g\n", n.Reynolds)
		cmd.Printf("Prandtl:     %g\n", n.Prandtl)
		cmd.Printf("Schmidt:     %g\n", n.Schmidt)
		cmd.Printf("Péclet heat: %g\n", n.PecletHeat)
		cmd.Printf("Péclet mass: %g\n", n.PecletMass)
		cmd.Printf("Grashof:     %g\n", n.Grashof)
		cmd.Printf("Rayleigh:    %g\n", n.Rayleigh)
		return nil
	},
	DisableAutoGenTag: true,
}
