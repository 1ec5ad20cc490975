package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes reservation events to a named queue.  Errors
// are logged and returned so callers can ignore failures without
// interrupting the main request flow: a failed publish must never
// roll back or fail the reservation, whose durability is defined
// solely by the committed transaction.
type Publisher struct {
	url       string
	queueName string
}

// NewPublisher returns a Publisher bound to the broker at url,
// publishing to queueName.
func NewPublisher(url, queueName string) *Publisher {
	return &Publisher{url: url, queueName: queueName}
}

// PublishReservationCreated publishes a ReservationCreatedEvent to
// the configured queue.  The queue is declared durable (idempotent)
// and messages are marked persistent.  The function attempts to be
// robust and to never panic; any error is logged and returned so the
// caller can choose to ignore it.
func (p *Publisher) PublishReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queueName, // name
		true,        // durable
		false,       // autoDelete
		false,       // exclusive
		false,       // noWait
		nil,         // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
