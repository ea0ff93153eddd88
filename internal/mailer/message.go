package mailer

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind selects the email template
type Kind string

const (
	KindApplication Kind = "application"
	KindShortlist   Kind = "shortlist"
)

// ErrInvalidMessage is returned for messages that can never be delivered
var ErrInvalidMessage = errors.New("invalid email message")

// Message is one email request. It is the JSON body published to the mail queue.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	To        string    `json:"to"`
	JobTitle  string    `json:"job_title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh id
func NewMessage(kind Kind, to, jobTitle string) Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		JobTitle:  jobTitle,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the message can be rendered and addressed
func (m Message) Validate() error {
	switch m.Kind {
	case KindApplication, KindShortlist:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}

	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: bad recipient %q", ErrInvalidMessage, m.To)
	}

	if strings.TrimSpace(m.JobTitle) == "" {
		return fmt.Errorf("%w: empty job title", ErrInvalidMessage)
	}

	return nil
}
