package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConflictResult is the outcome of an advisory conflict check against
// the shared cart queue.
type ConflictResult struct {
	Conflicting   []uint64 // requested seat ids found in flight on the queue
	CanProceed    bool     // true when Conflicting is empty
	TotalInFlight int      // distinct seat ids observed on the queue
}

// ConflictChecker peeks at a sibling service's queue of in-flight
// seat intents before a reservation commits.  The broker has no
// native peek, so the checker withdraws up to scanLimit pending
// messages with basic.get and immediately republishes each one onto
// the same queue.  Two callers running the cycle concurrently can
// race, and the peek is not atomic with the reservation transaction;
// the check reduces cross-service double allocation but is never a
// lock.
type ConflictChecker struct {
	url       string
	queueName string
	scanLimit int
}

// NewConflictChecker returns a checker reading queueName on the
// broker at url, scanning at most scanLimit messages per check.
func NewConflictChecker(url, queueName string, scanLimit int) *ConflictChecker {
	if scanLimit <= 0 {
		scanLimit = 100
	}
	return &ConflictChecker{url: url, queueName: queueName, scanLimit: scanLimit}
}

// CheckSeats reports which of the given seat ids are currently in
// flight on the queue.  The check fails open: if the broker is
// unreachable or any step errors, it returns CanProceed=true with no
// conflicts, because seat allocation must not be hostage to an
// auxiliary coordination channel's uptime.  Failures are logged only.
func (c *ConflictChecker) CheckSeats(ctx context.Context, seatIDs []uint64) ConflictResult {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		log.Printf("conflict-check: dial failed, proceeding without check: %v", err)
		return failOpen()
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("conflict-check: channel open failed, proceeding without check: %v", err)
		return failOpen()
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		log.Printf("conflict-check: queue declare failed, proceeding without check: %v", err)
		return failOpen()
	}

	inFlight, err := scanInFlight(ctx, ch, c.queueName, c.scanLimit)
	if err != nil {
		log.Printf("conflict-check: scan failed, proceeding without check: %v", err)
		return failOpen()
	}

	conflicting := intersect(seatIDs, inFlight)
	return ConflictResult{
		Conflicting:   conflicting,
		CanProceed:    len(conflicting) == 0,
		TotalInFlight: len(inFlight),
	}
}

func failOpen() ConflictResult {
	return ConflictResult{Conflicting: []uint64{}, CanProceed: true}
}

// brokerChannel is the slice of *amqp.Channel the scan needs; it
// exists so the peek cycle can be tested against a fake.
type brokerChannel interface {
	Get(queue string, autoAck bool) (amqp.Delivery, bool, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// scanInFlight withdraws up to limit messages and republishes each,
// unioning the embedded seat-id lists into the returned set.
// Messages whose bodies fail to decode are republished and skipped;
// they belong to another contract version and must not be lost.
func scanInFlight(ctx context.Context, ch brokerChannel, queueName string, limit int) (map[uint64]struct{}, error) {
	inFlight := make(map[uint64]struct{})
	for i := 0; i < limit; i++ {
		delivery, ok, err := ch.Get(queueName, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		// Put the message straight back with all of its properties
		// intact; the withdraw exists only to read the body, and the
		// sibling service's metadata must survive the round trip.
		pub := amqp.Publishing{
			Headers:         delivery.Headers,
			ContentType:     delivery.ContentType,
			ContentEncoding: delivery.ContentEncoding,
			DeliveryMode:    delivery.DeliveryMode,
			Priority:        delivery.Priority,
			CorrelationId:   delivery.CorrelationId,
			ReplyTo:         delivery.ReplyTo,
			Expiration:      delivery.Expiration,
			MessageId:       delivery.MessageId,
			Timestamp:       delivery.Timestamp,
			Type:            delivery.Type,
			UserId:          delivery.UserId,
			AppId:           delivery.AppId,
			Body:            delivery.Body,
		}
		if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
			return nil, err
		}
		var msg cartMessage
		if err := json.Unmarshal(delivery.Body, &msg); err != nil {
			continue
		}
		for _, id := range msg.SeatIDs {
			inFlight[id] = struct{}{}
		}
	}
	return inFlight, nil
}

// intersect returns the seat ids present in the in-flight set,
// preserving the input order.
func intersect(seatIDs []uint64, inFlight map[uint64]struct{}) []uint64 {
	conflicting := []uint64{}
	for _, id := range seatIDs {
		if _, ok := inFlight[id]; ok {
			conflicting = append(conflicting, id)
		}
	}
	return conflicting
}
