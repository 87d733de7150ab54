package incident

import (
	"math/rand"

	"github.com/google/uuid"

	"reliefops-sim/internal/telemetry"
)

const (
	minSeverity = 1
	maxSeverity = 10
)

// Engine spawns random emergencies on the grid.
type Engine struct {
	gridSize  int
	rate      float64
	maxActive int
	rand      *rand.Rand
	newID     func() string
}

// NewEngine creates an engine spawning at most one incident per call with probability
// rate, while fewer than maxActive zones are active.
func NewEngine(gridSize int, rate float64, maxActive int, r *rand.Rand) *Engine {
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Engine{
		gridSize:  gridSize,
		rate:      rate,
		maxActive: maxActive,
		rand:      r,
		newID:     func() string { return uuid.New().String() },
	}
}

// Step rolls for a new incident given the number of active zones.
func (e *Engine) Step(activeZones int) (Incident, bool) {
	if e.rate <= 0 || e.gridSize <= 0 {
		return Incident{}, false
	}
	if e.maxActive > 0 && activeZones >= e.maxActive {
		return Incident{}, false
	}
	if e.rand.Float64() >= e.rate {
		return Incident{}, false
	}
	return Incident{
		ID:       e.newID(),
		Kind:     randomKind(e.rand),
		Coords:   telemetry.Coord{X: e.rand.Intn(e.gridSize), Y: e.rand.Intn(e.gridSize)},
		Severity: minSeverity + e.rand.Intn(maxSeverity-minSeverity+1),
	}, true
}

func randomKind(r *rand.Rand) Kind {
	kinds := []Kind{KindFire, KindFlood, KindCollapse, KindMedical}
	return kinds[r.Intn(len(kinds))]
}
