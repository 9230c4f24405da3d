package state

import (
	"errors"
	"sync"

	"feedbackbot/internal/domain"
)

// ErrInvalidTransition is returned when an event is not allowed in the current state
var ErrInvalidTransition = errors.New("invalid state transition")

// Tracker keeps per-actor conversation state in memory.
// Nothing is persisted: a process restart returns every actor to idle
// and drops any in-flight flow.
type Tracker struct {
	machine *Machine

	mu     sync.RWMutex
	states map[int64]domain.StateData
}

// NewTracker creates an empty tracker
func NewTracker(machine *Machine) *Tracker {
	if machine == nil {
		machine = NewMachine()
	}
	return &Tracker{
		machine: machine,
		states:  make(map[int64]domain.StateData),
	}
}

// Get returns a copy of the actor's state, idle if unknown
func (t *Tracker) Get(actorID int64) domain.StateData {
	t.mu.RLock()
	defer t.mu.RUnlock()

	data, ok := t.states[actorID]
	if !ok {
		return domain.StateData{State: domain.StateIdle}
	}
	return data
}

// Fire applies event to the actor's state. Scratch is cleared when the
// actor returns to idle; setup, if not nil, fills scratch for the new state.
// On a rejected event the state is left unchanged.
func (t *Tracker) Fire(actorID int64, event Event, setup func(*domain.StateData)) (domain.StateData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.states[actorID]
	if !ok {
		current = domain.StateData{State: domain.StateIdle}
	}

	next, err := t.machine.Next(current.State, event)
	if err != nil {
		return current, err
	}

	data := domain.StateData{State: next}
	if data.Awaiting() {
		// Keep the dialogs cursor while an admin works inside a flow
		data.CurrentPage = current.CurrentPage
	}
	if setup != nil {
		setup(&data)
	}

	if data.State == domain.StateIdle && data == (domain.StateData{State: domain.StateIdle}) {
		delete(t.states, actorID)
	} else {
		t.states[actorID] = data
	}
	return data, nil
}

// Allowed returns the events the actor's current state accepts
func (t *Tracker) Allowed(actorID int64) []Event {
	return t.machine.Allowed(t.Get(actorID).State)
}

// Reset returns the actor to idle and drops scratch
func (t *Tracker) Reset(actorID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, actorID)
}

// Update edits scratch without changing state
func (t *Tracker) Update(actorID int64, fn func(*domain.StateData)) domain.StateData {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, ok := t.states[actorID]
	if !ok {
		data = domain.StateData{State: domain.StateIdle}
	}
	current := data.State
	fn(&data)
	data.State = current
	t.states[actorID] = data
	return data
}
