package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Trigger events.
const (
	EventTurnElapsed  = "turn_elapsed"
	EventZonesCleared = "zones_cleared"
)

// Scenario defines a relief operation with ordered phases and an overall description.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase describes a stage of the operation. Its incidents are reported when the phase
// begins.
type Phase struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Incidents   []Incident `yaml:"incidents,omitempty"`
	Triggers    []Trigger  `yaml:"triggers,omitempty"`
}

// Incident is a scripted emergency report.
type Incident struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Severity int    `yaml:"severity,omitempty"`
	Note     string `yaml:"note,omitempty"`
}

// Trigger moves the scenario to another phase based on an event.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Phases) == 0 {
		return nil, fmt.Errorf("scenario %q has no phases", s.Name)
	}
	return &s, nil
}

// Resolve returns a built-in scenario by name, or loads nameOrPath from disk.
func Resolve(nameOrPath string) (*Scenario, error) {
	if s, ok := BuiltIn()[nameOrPath]; ok {
		return &s, nil
	}
	return Load(nameOrPath)
}

// Phase returns the named phase.
func (s *Scenario) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}
