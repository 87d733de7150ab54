package sim

import (
	"fmt"
	"strings"
	"time"
)

// maxMissionLog bounds the in-memory history.
const maxMissionLog = 200

// MissionEntry is one commander turn as shown to operators.
type MissionEntry struct {
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"ts"`
	Reasoning string    `json:"reasoning"`
	Actions   []string  `json:"actions"`
	Override  string    `json:"override,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// String renders the entry the way the operator console prints it.
func (e MissionEntry) String() string {
	var b strings.Builder
	if e.Error != "" {
		fmt.Fprintf(&b, "[%s] RADIO SILENCE: %s", e.Timestamp.Format("15:04:05"), e.Error)
		return b.String()
	}
	fmt.Fprintf(&b, "[%s] COMMANDER: %s", e.Timestamp.Format("15:04:05"), e.Reasoning)
	for _, a := range e.Actions {
		b.WriteString("\n- ")
		b.WriteString(a)
	}
	return b.String()
}

// MissionLog returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (s *Simulator) MissionLog(limit int) []MissionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.missionLog)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]MissionEntry, n)
	copy(out, s.missionLog[:n])
	return out
}

// ClearMissionLog drops the history.
func (s *Simulator) ClearMissionLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missionLog = nil
}

func (s *Simulator) logMissionLocked(e MissionEntry) {
	s.missionLog = append([]MissionEntry{e}, s.missionLog...)
	if len(s.missionLog) > maxMissionLog {
		s.missionLog = s.missionLog[:maxMissionLog]
	}
}
