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
	"fmt"
	"io"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

// Mechanism holds the contents of a gas-phase reaction mechanism file.
// Mechanism files are TOML documents; reaction stoichiometry is given as
// tables rather than as equation strings, so the Equation field of a
// reaction is only a label.
type Mechanism struct {
	Description string         `toml:"description,omitempty"`
	Phases      []PhaseData    `toml:"phases"`
	Species     []SpeciesData  `toml:"species"`
	Reactions   []ReactionData `toml:"reactions,omitempty"`
}

// PhaseData describes a gas phase within a mechanism.
type PhaseData struct {
	Name    string   `toml:"name"`
	Species []string `toml:"species"`

	// Kinetics is either "gas" (the default) or "none".
	Kinetics string `toml:"kinetics,omitempty"`

	// Transport is either "mixture-averaged" or "none". It defaults
	// to "none".
	Transport string `toml:"transport,omitempty"`
}

// SpeciesData describes a single species.
type SpeciesData struct {
	Name        string             `toml:"name"`
	Composition map[string]float64 `toml:"composition"`
	Thermo      ThermoData         `toml:"thermo"`
	Transport   *TransportData     `toml:"transport,omitempty"`
}

// ThermoData holds NASA 7-coefficient polynomial data. TemperatureRanges
// holds either two values (one polynomial) or three values (a low and a
// high temperature polynomial, split at the middle value).
type ThermoData struct {
	Model             string      `toml:"model"`
	TemperatureRanges []float64   `toml:"temperature-ranges"`
	Data              [][]float64 `toml:"data"`
}

// TransportData holds Lennard-Jones parameters for a species.
type TransportData struct {
	Geometry  string  `toml:"geometry"`
	Diameter  float64 `toml:"diameter"`   // collision diameter [Å]
	WellDepth float64 `toml:"well-depth"` // ε/k_B [K]
}

// ReactionData describes an elementary reaction with a modified Arrhenius
// rate constant.
type ReactionData struct {
	Equation   string             `toml:"equation"`
	Reactants  map[string]float64 `toml:"reactants"`
	Products   map[string]float64 `toml:"products"`
	Orders     map[string]float64 `toml:"orders,omitempty"`
	Reversible bool               `toml:"reversible"`
	Rate       ArrheniusData      `toml:"rate-constant"`
}

// ArrheniusData holds the parameters of k = A·T^b·exp(−Ea/(R·T)), with A in
// kmol, m³, s units and Ea in J/kmol.
type ArrheniusData struct {
	A  float64 `toml:"A"`
	B  float64 `toml:"b"`
	Ea float64 `toml:"Ea"`
}

// LoadMechanism reads and validates the mechanism file at path.
func LoadMechanism(path string) (*Mechanism, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gas: opening mechanism: %w", err)
	}
	defer f.Close()
	m, err := ReadMechanism(f)
	if err != nil {
		return nil, fmt.Errorf("gas: mechanism %s: %w", path, err)
	}
	return m, nil
}

// ReadMechanism reads and validates a TOML mechanism from r.
func ReadMechanism(r io.Reader) (*Mechanism, error) {
	m := new(Mechanism)
	md, err := toml.NewDecoder(r).Decode(m)
	if err != nil {
		return nil, fmt.Errorf("decoding TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unrecognized mechanism keys: %v", undecoded)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Write encodes the mechanism as TOML.
func (m *Mechanism) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(m)
}

// Phase returns the phase with the given name. An empty name selects the
// first phase in the mechanism.
func (m *Mechanism) Phase(name string) (*PhaseData, error) {
	if len(m.Phases) == 0 {
		return nil, fmt.Errorf("gas: mechanism has no phases: %w", ErrUnknownPhase)
	}
	if name == "" {
		return &m.Phases[0], nil
	}
	for i := range m.Phases {
		if m.Phases[i].Name == name {
			return &m.Phases[i], nil
		}
	}
	return nil, fmt.Errorf("gas: phase %q: %w", name, ErrUnknownPhase)
}

func (m *Mechanism) speciesData(name string) (*SpeciesData, bool) {
	for i := range m.Species {
		if m.Species[i].Name == name {
			return &m.Species[i], true
		}
	}
	return nil, false
}

// validate checks the internal consistency of the mechanism.
func (m *Mechanism) validate() error {
	seen := make(map[string]bool)
	for _, sp := range m.Species {
		if sp.Name == "" {
			return fmt.Errorf("species with empty name")
		}
		if seen[sp.Name] {
			return fmt.Errorf("duplicate species %s", sp.Name)
		}
		seen[sp.Name] = true
		if _, err := molecularWeight(sp.Composition); err != nil {
			return fmt.Errorf("species %s: %w", sp.Name, err)
		}
		if _, err := newNASA7(sp.Thermo); err != nil {
			return fmt.Errorf("species %s: %w", sp.Name, err)
		}
		if t := sp.Transport; t != nil && (!(t.Diameter > 0) || !(t.WellDepth > 0)) {
			return fmt.Errorf("species %s: Lennard-Jones parameters must be > 0", sp.Name)
		}
	}
	for _, ph := range m.Phases {
		if len(ph.Species) == 0 {
			return fmt.Errorf("phase %s has no species", ph.Name)
		}
		for _, name := range ph.Species {
			if !seen[name] {
				return fmt.Errorf("phase %s: undefined species %s", ph.Name, name)
			}
		}
		switch ph.Kinetics {
		case "", "gas", "none":
		default:
			return fmt.Errorf("phase %s: invalid kinetics model %q", ph.Name, ph.Kinetics)
		}
		switch ph.Transport {
		case "", "none", "mixture-averaged":
		default:
			return fmt.Errorf("phase %s: invalid transport model %q", ph.Name, ph.Transport)
		}
	}
	for i, r := range m.Reactions {
		if err := m.checkReaction(r); err != nil {
			return fmt.Errorf("reaction %d (%s): %w", i+1, r.Equation, err)
		}
	}
	return nil
}

// checkReaction makes sure all species in r are defined and that
// elements are conserved.
func (m *Mechanism) checkReaction(r ReactionData) error {
	if len(r.Reactants) == 0 || len(r.Products) == 0 {
		return fmt.Errorf("reactants and products must both be specified")
	}
	balance := make(map[string]float64)
	add := func(side map[string]float64, sign float64) error {
		for name, nu := range side {
			sp, ok := m.speciesData(name)
			if !ok {
				return fmt.Errorf("undefined species %s", name)
			}
			if !(nu > 0) {
				return fmt.Errorf("stoichiometric coefficient of %s must be > 0", name)
			}
			for el, n := range sp.Composition {
				balance[el] += sign * nu * n
			}
		}
		return nil
	}
	if err := add(r.Reactants, -1); err != nil {
		return err
	}
	if err := add(r.Products, 1); err != nil {
		return err
	}
	for el, v := range balance {
		if math.Abs(v) > 1.e-8 {
			return fmt.Errorf("element %s is not balanced (%g)", el, v)
		}
	}
	for name := range r.Orders {
		if _, ok := r.Reactants[name]; !ok {
			return fmt.Errorf("reaction order given for non-reactant %s", name)
		}
	}
	if r.Rate.A < 0 {
		return fmt.Errorf("pre-exponential factor must be >= 0")
	}
	return nil
}

// Filter returns a reduced copy of the mechanism that contains only the
// given species. Reactions are kept only if all of their reactants and
// products are retained. Phases keep the retained subset of their species.
func (m *Mechanism) Filter(species []string) (*Mechanism, error) {
	keep := make(map[string]bool)
	for _, s := range species {
		if _, ok := m.speciesData(s); !ok {
			return nil, fmt.Errorf("gas: filtering mechanism: %w: %s", ErrUnknownSpecies, s)
		}
		keep[s] = true
	}
	o := &Mechanism{Description: m.Description}
	for _, sp := range m.Species {
		if keep[sp.Name] {
			o.Species = append(o.Species, sp)
		}
	}
	for _, ph := range m.Phases {
		p := ph
		p.Species = nil
		for _, s := range ph.Species {
			if keep[s] {
				p.Species = append(p.Species, s)
			}
		}
		if len(p.Species) > 0 {
			o.Phases = append(o.Phases, p)
		}
	}
	for _, r := range m.Reactions {
		ok := true
		for s := range r.Reactants {
			ok = ok && keep[s]
		}
		for s := range r.Products {
			ok = ok && keep[s]
		}
		if ok {
			o.Reactions = append(o.Reactions, r)
		}
	}
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("gas: filtered mechanism: %w", err)
	}
	return o, nil
}
