package incident

import (
	"math/rand"
	"testing"
)

func TestEngineSpawnsInsideGrid(t *testing.T) {
	eng := NewEngine(10, 1, 0, rand.New(rand.NewSource(1)))
	for i := 0; i < 200; i++ {
		inc, ok := eng.Step(0)
		if !ok {
			t.Fatalf("rate 1 should always spawn")
		}
		if inc.Coords.X < 0 || inc.Coords.X >= 10 || inc.Coords.Y < 0 || inc.Coords.Y >= 10 {
			t.Fatalf("incident outside grid: %+v", inc)
		}
		if inc.Severity < 1 || inc.Severity > 10 {
			t.Fatalf("severity out of range: %d", inc.Severity)
		}
		if inc.ID == "" || inc.Kind == "" {
			t.Fatalf("incident missing id or kind: %+v", inc)
		}
	}
}

func TestEngineRespectsCapAndRate(t *testing.T) {
	eng := NewEngine(10, 1, 3, rand.New(rand.NewSource(1)))
	if _, ok := eng.Step(3); ok {
		t.Fatalf("expected no spawn at cap")
	}
	eng = NewEngine(10, 0, 0, rand.New(rand.NewSource(1)))
	for i := 0; i < 50; i++ {
		if _, ok := eng.Step(0); ok {
			t.Fatalf("rate 0 should never spawn")
		}
	}
}

func TestEngineDeterministic(t *testing.T) {
	e1 := NewEngine(10, 0.5, 0, rand.New(rand.NewSource(7)))
	e2 := NewEngine(10, 0.5, 0, rand.New(rand.NewSource(7)))
	e1.newID = func() string { return "x" }
	e2.newID = func() string { return "x" }
	for i := 0; i < 20; i++ {
		a, okA := e1.Step(0)
		b, okB := e2.Step(0)
		if okA != okB || a != b {
			t.Fatalf("step %d diverged: %+v/%v vs %+v/%v", i, a, okA, b, okB)
		}
	}
}
