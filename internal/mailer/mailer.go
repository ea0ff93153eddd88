// Package mailer builds workflow emails and hands them to a transport: the
// mail queue, an SMTP relay, or the log.
package mailer

import (
	"context"
	"fmt"
)

// Sender delivers one message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher turns workflow email requests into messages for a Sender
type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

func (d *Dispatcher) SendApplicationEmail(ctx context.Context, to, jobTitle string) error {
	return d.send(ctx, NewMessage(KindApplication, to, jobTitle))
}

func (d *Dispatcher) SendShortlistEmail(ctx context.Context, to, jobTitle string) error {
	return d.send(ctx, NewMessage(KindShortlist, to, jobTitle))
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email to %s: %w", msg.Kind, msg.To, err)
	}
	return nil
}
