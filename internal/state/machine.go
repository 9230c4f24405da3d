package state

import (
	"fmt"

	"feedbackbot/internal/domain"
)

// Event is an input that may move an actor to another state
type Event string

const (
	EventStart        Event = "start"
	EventMainMenu     Event = "main_menu"
	EventCancel       Event = "cancel"
	EventWriteMessage Event = "write_message"
	EventReply        Event = "reply"
	EventAddAdmin     Event = "add_admin"
	EventRemoveAdmin  Event = "remove_admin"
	EventSubmit       Event = "submit" // expected input received and stored
)

// AllEvents lists every event the machine knows
var AllEvents = []Event{
	EventStart, EventMainMenu, EventCancel, EventWriteMessage,
	EventReply, EventAddAdmin, EventRemoveAdmin, EventSubmit,
}

// Transition is a (state, event) pair
type Transition struct {
	From  domain.ConversationState
	Event Event
}

// Machine is the explicit transition table
type Machine struct {
	table map[Transition]domain.ConversationState
}

// NewMachine builds the table of allowed transitions
func NewMachine() *Machine {
	m := &Machine{table: make(map[Transition]domain.ConversationState)}

	for _, s := range domain.AllStates {
		// Leaving a flow is always allowed
		m.table[Transition{s, EventStart}] = domain.StateIdle
		m.table[Transition{s, EventMainMenu}] = domain.StateIdle
		m.table[Transition{s, EventCancel}] = domain.StateIdle

		// Admin prompts re-arm from anywhere, the latest prompt wins
		m.table[Transition{s, EventReply}] = domain.StateAwaitingAdminReply
		m.table[Transition{s, EventAddAdmin}] = domain.StateAwaitingNewAdminID
		m.table[Transition{s, EventRemoveAdmin}] = domain.StateAwaitingAdminRemovalID

		if s != domain.StateIdle {
			m.table[Transition{s, EventSubmit}] = domain.StateIdle
		}
	}

	m.table[Transition{domain.StateIdle, EventWriteMessage}] = domain.StateAwaitingUserMessage

	return m
}

// Next returns the state reached from `from` on event
func (m *Machine) Next(from domain.ConversationState, event Event) (domain.ConversationState, error) {
	if from == "" {
		from = domain.StateIdle
	}
	to, ok := m.table[Transition{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, from)
	}
	return to, nil
}

// Allowed returns the events accepted in state s
func (m *Machine) Allowed(s domain.ConversationState) []Event {
	var events []Event
	for _, e := range AllEvents {
		if _, ok := m.table[Transition{s, e}]; ok {
			events = append(events, e)
		}
	}
	return events
}
