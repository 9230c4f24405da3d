package domain

import "time"

// Message is a single relayed text between two users
type Message struct {
	ID     int64
	FromID int64
	ToID   int64
	Body   string
	SentAt time.Time
	IsRead bool
}

// ThreadMessage is a message joined with its sender's display fields
type ThreadMessage struct {
	Message
	SenderUsername string
	SenderFullName string
}

// SentBy reports whether the message was written by viewerID.
// Direction is derived from ids only, never from the sender's role.
func (m ThreadMessage) SentBy(viewerID int64) bool {
	return m.FromID == viewerID
}

// SenderHandle returns "@username" of the sender or a placeholder
func (m ThreadMessage) SenderHandle() string {
	return User{Username: m.SenderUsername}.Handle()
}

// Counterparty is a non-admin user who has exchanged messages with an admin
type Counterparty struct {
	User
	Unread int // messages from this user the admin has not opened yet
}
