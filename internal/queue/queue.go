// Package queue provides the in-process vectorize queue. Delivery is
// at-least-once: consumers must be idempotent.
package queue

import (
	"context"
	"log/slog"
	"sync"
)

// VectorizeEvent asks the worker to (re)build the vector index entry
// and archived document for an episode.
type VectorizeEvent struct {
	EpisodeID string `json:"episodeId"`
}

// Message is one delivered event. Exactly one of Ack or Retry must be
// called per delivery.
type Message struct {
	Event   VectorizeEvent
	Attempt int

	queue *Queue
	once  sync.Once
}

// Ack marks the message as successfully processed.
func (m *Message) Ack() {
	m.once.Do(func() {})
}

// Retry re-enqueues the message for another attempt. Messages that
// exceed the queue's max attempts are moved to the dead letter list
// instead.
func (m *Message) Retry() {
	m.once.Do(func() {
		m.queue.retry(m)
	})
}

// Queue is a buffered in-process queue with bounded redelivery.
type Queue struct {
	ch          chan *Message
	maxAttempts int

	mu         sync.Mutex
	deadLetter []VectorizeEvent
}

// New creates a queue holding up to buffer undelivered messages.
// Messages are retried up to maxAttempts times before being dead-lettered.
func New(buffer, maxAttempts int) *Queue {
	return &Queue{
		ch:          make(chan *Message, buffer),
		maxAttempts: maxAttempts,
	}
}

// Enqueue adds an event for processing. Blocks while the queue is full
// until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, event VectorizeEvent) error {
	msg := &Message{Event: event, Attempt: 1, queue: q}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns a batch of up to max messages. It blocks for the
// first message, then drains whatever else is immediately available.
// Returns ctx.Err() once the context is cancelled.
func (q *Queue) Receive(ctx context.Context, max int) ([]*Message, error) {
	var batch []*Message

	select {
	case msg := <-q.ch:
		batch = append(batch, msg)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for len(batch) < max {
		select {
		case msg := <-q.ch:
			batch = append(batch, msg)
		default:
			return batch, nil
		}
	}
	return batch, nil
}

// Len returns the number of undelivered messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// DeadLetter returns the events that exhausted their attempts.
func (q *Queue) DeadLetter() []VectorizeEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]VectorizeEvent(nil), q.deadLetter...)
}

func (q *Queue) retry(m *Message) {
	if m.Attempt >= q.maxAttempts {
		slog.Warn("message exhausted attempts, dead-lettering",
			"episode_id", m.Event.EpisodeID, "attempts", m.Attempt)
		q.mu.Lock()
		q.deadLetter = append(q.deadLetter, m.Event)
		q.mu.Unlock()
		return
	}

	next := &Message{Event: m.Event, Attempt: m.Attempt + 1, queue: q}
	select {
	case q.ch <- next:
	default:
		// Queue full: dead-letter rather than block the consumer.
		slog.Warn("queue full on retry, dead-lettering", "episode_id", m.Event.EpisodeID)
		q.mu.Lock()
		q.deadLetter = append(q.deadLetter, m.Event)
		q.mu.Unlock()
	}
}
