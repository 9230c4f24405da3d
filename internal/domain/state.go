package domain

// ConversationState tags what input the bot expects next from an actor
type ConversationState string

const (
	StateIdle                   ConversationState = "idle"
	StateAwaitingUserMessage    ConversationState = "awaiting_user_message"
	StateAwaitingAdminReply     ConversationState = "awaiting_admin_reply"
	StateAwaitingNewAdminID     ConversationState = "awaiting_new_admin_id"
	StateAwaitingAdminRemovalID ConversationState = "awaiting_admin_removal_id"
)

// AllStates lists every conversation state
var AllStates = []ConversationState{
	StateIdle,
	StateAwaitingUserMessage,
	StateAwaitingAdminReply,
	StateAwaitingNewAdminID,
	StateAwaitingAdminRemovalID,
}

// MessageRef points at an outbound message that may be edited later
type MessageRef struct {
	MessageID int
	ChatID    int64
}

// StateData holds temporary data for user's current state
type StateData struct {
	State         ConversationState
	ReplyTargetID int64       // user being replied to
	CurrentPage   int         // dialogs list cursor
	PromptMessage *MessageRef // prompt to edit back to the main menu
}

// Awaiting reports whether a multi-step flow is in progress
func (s StateData) Awaiting() bool {
	return s.State != StateIdle && s.State != ""
}
