package domain

import (
	"github.com/cuongbtq/jobboard-be/internal/mailer"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery results recorded per message
const (
	ResultSent     = "sent"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
	ResultRequeued = "requeued"
)

// Task is a decoded email message together with the delivery it came from
type Task struct {
	Message  mailer.Message
	Delivery amqp.Delivery
}
