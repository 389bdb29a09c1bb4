package models

import "time"

// ContactStatus tracks the handling of a contact message.
type ContactStatus string

const (
	ContactStatusUnread  ContactStatus = "unread"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

// Valid reports whether s is a known status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusUnread, ContactStatusRead, ContactStatusReplied:
		return true
	}
	return false
}

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID        int           `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Phone     *string       `db:"phone" json:"phone,omitempty"`
	Subject   string        `db:"subject" json:"subject"`
	Message   string        `db:"message" json:"message"`
	Status    ContactStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// ContactFilter narrows contact message listings.
type ContactFilter struct {
	Status ContactStatus
	Page   int
	Limit  int
}
