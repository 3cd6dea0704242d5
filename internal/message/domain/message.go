package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxContentLength is the longest chat message accepted, in characters.
const MaxContentLength = 5000

// Message is a chat message posted to a family.
type Message struct {
	ID        int64
	FamilyID  string
	UserID    string
	Content   string
	CreatedAt time.Time
}

// Validate checks ownership and content length. Returns the first failure.
func (m *Message) Validate() error {
	if m.FamilyID == "" {
		return errors.New("family id is required")
	}
	if m.UserID == "" {
		return errors.New("user id is required")
	}
	n := utf8.RuneCountInString(m.Content)
	if n == 0 {
		return errors.New("message content is required")
	}
	if n > MaxContentLength {
		return errors.New("message content must be at most 5000 characters")
	}
	return nil
}
