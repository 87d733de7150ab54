package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenarioTransition(t *testing.T) {
	s := Scenario{
		Phases: []Phase{{
			Name:     "patrol",
			Triggers: []Trigger{{Event: EventTurnElapsed, Value: 10, Next: "surge"}},
		}, {
			Name: "surge",
		}},
	}

	if _, ok := s.NextPhase("patrol", Event{Type: EventTurnElapsed, Value: 9}); ok {
		t.Fatalf("transition fired early")
	}
	next, ok := s.NextPhase("patrol", Event{Type: EventTurnElapsed, Value: 10})
	if !ok || next != "surge" {
		t.Fatalf("expected transition to surge, got %s", next)
	}
	if _, ok := s.NextPhase("surge", Event{Type: EventTurnElapsed, Value: 100}); ok {
		t.Fatalf("terminal phase should not transition")
	}
}

func TestLoadScenario(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" || sc.Description != "basic test scenario" {
		t.Fatalf("unexpected header %+v", sc)
	}
	if len(sc.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(sc.Phases))
	}
	if inc := sc.Phases[0].Incidents[0]; inc.X != 1 || inc.Y != 2 || inc.Severity != 3 {
		t.Fatalf("unexpected incident %+v", inc)
	}
	p, ok := sc.Phase("second-call")
	if !ok || len(p.Incidents) != 1 {
		t.Fatalf("phase lookup failed: %+v", p)
	}
}

func TestLoadScenarioWithoutPhases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: empty\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for scenario without phases")
	}
}

func TestResolve(t *testing.T) {
	s, err := Resolve("flood")
	if err != nil || s.Name != "Flood" {
		t.Fatalf("expected built-in flood, got %+v, %v", s, err)
	}
	s, err = Resolve("testdata/simple.yaml")
	if err != nil || s.Name != "example" {
		t.Fatalf("expected file scenario, got %+v, %v", s, err)
	}
	if _, err := Resolve("does-not-exist"); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}

func TestBuiltInArcs(t *testing.T) {
	for name, arc := range BuiltIn() {
		if arc.Description == "" {
			t.Fatalf("arc %s missing description", name)
		}
		if len(arc.Phases) < 2 {
			t.Fatalf("arc %s expected at least 2 phases", name)
		}
		if len(arc.Phases[0].Incidents) == 0 {
			t.Fatalf("arc %s opens without incidents", name)
		}
		for _, p := range arc.Phases {
			for _, inc := range p.Incidents {
				if inc.X < 0 || inc.X >= 10 || inc.Y < 0 || inc.Y >= 10 {
					t.Fatalf("arc %s phase %s incident off the default grid: %+v", name, p.Name, inc)
				}
			}
			for _, tr := range p.Triggers {
				if _, ok := arc.Phase(tr.Next); !ok {
					t.Fatalf("arc %s phase %s triggers unknown phase %s", name, p.Name, tr.Next)
				}
			}
		}
	}
}
