package domain

import "time"

// Message is a direct message between two users.
type Message struct {
	ID         ID         `json:"id"`
	SenderID   ID         `json:"senderId"`
	ReceiverID ID         `json:"receiverId" validate:"required"`
	Content    string     `json:"content" validate:"required,max=4000"`
	Read       bool       `json:"read"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
}

// Key implements Entity.
func (m Message) Key() string { return m.ID.String() }

// Notification is a system notice addressed to a user.
type Notification struct {
	ID        ID         `json:"id"`
	UserID    ID         `json:"userId"`
	Title     string     `json:"title" validate:"required"`
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (n Notification) Key() string { return n.ID.String() }

// IsRead implements Readable.
func (n Notification) IsRead() bool { return n.Read }

// MarkedRead implements Readable. An existing ReadAt is kept.
func (n Notification) MarkedRead(at time.Time) Notification {
	n.Read = true
	if n.ReadAt == nil {
		t := at
		n.ReadAt = &t
	}
	return n
}

// Feedback is a rating/comment left by a client.
type Feedback struct {
	ID        ID         `json:"id"`
	ClientID  ID         `json:"clientId"`
	Rating    int        `json:"rating" validate:"gte=1,lte=5"`
	Comment   string     `json:"comment,omitempty" validate:"max=2000"`
	Category  string     `json:"category,omitempty"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (f Feedback) Key() string { return f.ID.String() }
