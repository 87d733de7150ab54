package scenario

// BuiltIn returns predefined relief operations.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"wildfire": {
			Name:        "Wildfire",
			Description: "A dry-season fire front spreads across the valley toward the settlements.",
			Phases: []Phase{
				{
					Name:        "ignition",
					Description: "First spot fires are reported on the western ridge.",
					Incidents:   []Incident{{X: 2, Y: 2, Severity: 5}, {X: 3, Y: 6, Severity: 4}},
					Triggers:    []Trigger{{Event: EventTurnElapsed, Value: 8, Next: "spread"}},
				},
				{
					Name:        "spread",
					Description: "Wind shifts push the front east.",
					Incidents:   []Incident{{X: 6, Y: 4, Severity: 7}, {X: 7, Y: 7, Severity: 6}},
					Triggers:    []Trigger{{Event: EventZonesCleared, Value: 4, Next: "containment"}},
				},
				{
					Name:        "containment",
					Description: "Crews hold the line; flare-ups remain.",
					Incidents:   []Incident{{X: 8, Y: 2, Severity: 3}},
				},
			},
		},
		"flood": {
			Name:        "Flood",
			Description: "River levels breach the levees after three days of rain.",
			Phases: []Phase{
				{
					Name:        "rising",
					Description: "Low-lying streets report stranded residents.",
					Incidents:   []Incident{{X: 1, Y: 8, Severity: 6}, {X: 4, Y: 8, Severity: 5}},
					Triggers:    []Trigger{{Event: EventTurnElapsed, Value: 10, Next: "crest"}},
				},
				{
					Name:        "crest",
					Description: "The crest arrives and the hospital district floods.",
					Incidents:   []Incident{{X: 5, Y: 5, Severity: 9}, {X: 6, Y: 8, Severity: 7}, {X: 2, Y: 5, Severity: 4}},
					Triggers:    []Trigger{{Event: EventZonesCleared, Value: 5, Next: "recession"}},
				},
				{
					Name:        "recession",
					Description: "Waters recede; isolated calls continue.",
				},
			},
		},
		"earthquake": {
			Name:        "Earthquake",
			Description: "A magnitude 6.8 quake hits the old town at dawn.",
			Phases: []Phase{
				{
					Name:        "mainshock",
					Description: "Collapsed buildings across the centre.",
					Incidents:   []Incident{{X: 4, Y: 4, Severity: 9}, {X: 5, Y: 3, Severity: 8}, {X: 3, Y: 5, Severity: 7}},
					Triggers:    []Trigger{{Event: EventZonesCleared, Value: 2, Next: "aftershock"}},
				},
				{
					Name:        "aftershock",
					Description: "An aftershock brings down weakened structures.",
					Incidents:   []Incident{{X: 7, Y: 1, Severity: 6}, {X: 1, Y: 7, Severity: 6}},
					Triggers:    []Trigger{{Event: EventTurnElapsed, Value: 12, Next: "recovery"}},
				},
				{
					Name:        "recovery",
					Description: "Search teams sweep the remaining blocks.",
				},
			},
		},
	}
}
