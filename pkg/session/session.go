package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the persistable per-player runtime state the engine itself
// does not own: state-machine current states, blackboard contents and
// conversation memory. The engine evaluates against live systems; the
// host snapshots them into a Session between play sessions.
type Session struct {
	ID              uuid.UUID         `json:"id"`
	Machines        map[string]string `json:"machines,omitempty"` // machine path -> current state
	Blackboard      map[string]any    `json:"blackboard,omitempty"`
	UnlockedDialogs []string          `json:"unlocked_dialogs,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.New(),
		Machines:  make(map[string]string),
		CreatedAt: time.Now(),
	}
}

// SetMachineState records a state machine's current state.
func (s *Session) SetMachineState(machinePath, state string) {
	if s.Machines == nil {
		s.Machines = make(map[string]string)
	}
	s.Machines[machinePath] = state
}

// MachineState returns a recorded state machine state.
func (s *Session) MachineState(machinePath string) (string, bool) {
	state, ok := s.Machines[machinePath]
	return state, ok
}
