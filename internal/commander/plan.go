// Plan parsing for commander responses
package commander

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"reliefops-sim/internal/telemetry"
)

var (
	// ErrEmptyPlan is returned when the commander answers with nothing usable.
	ErrEmptyPlan = errors.New("commander returned an empty plan")
	// ErrMalformedPlan wraps decode and schema failures.
	ErrMalformedPlan = errors.New("commander returned a malformed plan")
)

// DefaultReasoning fills in plans that carry moves but no commentary.
const DefaultReasoning = "No commentary provided."

// Move sends one drone one step toward Target.
type Move struct {
	DroneID string          `json:"drone_id"`
	Target  telemetry.Coord `json:"target"`
}

// Plan is a validated commander decision.
type Plan struct {
	Reasoning string `json:"reasoning"`
	Moves     []Move `json:"moves"`
}

// Filter splits the plan into moves whose targets lie on a gridSize grid and those
// that do not.
func (p Plan) Filter(gridSize int) (kept Plan, dropped []Move) {
	kept.Reasoning = p.Reasoning
	for _, m := range p.Moves {
		if m.Target.X < 0 || m.Target.X >= gridSize || m.Target.Y < 0 || m.Target.Y >= gridSize {
			dropped = append(dropped, m)
			continue
		}
		kept.Moves = append(kept.Moves, m)
	}
	return kept, dropped
}

const planSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "reasoning": {"type": "string"},
    "moves": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "integer"},
        "minItems": 2,
        "maxItems": 2
      }
    }
  }
}`

var planSchema = jsonschema.MustCompileString("plan.schema.json", planSchemaJSON)

type wirePlan struct {
	Reasoning *string           `json:"reasoning"`
	Moves     map[string][2]int `json:"moves"`
}

// ParsePlan turns a raw model reply into a Plan. Markdown code fences are stripped,
// the JSON is checked against the plan schema and moves are ordered by drone id.
func ParsePlan(raw string) (Plan, error) {
	text := stripFences(raw)
	if text == "" {
		return Plan{}, ErrEmptyPlan
	}
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if err := planSchema.Validate(doc); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if obj, ok := doc.(map[string]any); ok && len(obj) == 0 {
		return Plan{}, ErrEmptyPlan
	}

	var wp wirePlan
	if err := json.Unmarshal([]byte(text), &wp); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	plan := Plan{Reasoning: DefaultReasoning}
	if wp.Reasoning != nil {
		plan.Reasoning = *wp.Reasoning
	}
	ids := make([]string, 0, len(wp.Moves))
	for id := range wp.Moves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := wp.Moves[id]
		plan.Moves = append(plan.Moves, Move{DroneID: id, Target: telemetry.Coord{X: t[0], Y: t[1]}})
	}
	return plan, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
