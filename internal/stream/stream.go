// Package stream provides the bounded-channel bridge used by every
// asynchronous producer in the pipeline: document sources, repository
// listers, the batching operator and the search facade all expose their
// results as a Stream.
//
// A Stream is single-shot and terminal-on-error: it yields zero or more
// value items in FIFO order, then at most one error item, then closes.
// Backpressure comes from the bounded channel alone; a consumer that stops
// receiving leaves the producer blocked on its next send, so producers
// should treat Sender.Send's context as their cooperative cancellation
// checkpoint.
package stream

import (
	"context"

	errs "github.com/quarry-search/quarry/internal/errors"
)

// Item carries either a value or a terminal error.
type Item[T any] struct {
	Value T
	Err   error
}

// Stream is a single-shot sequence of items produced asynchronously.
type Stream[T any] struct {
	items chan Item[T]
}

// Items returns the receive side of the stream. The channel closes after
// the producer finished and any terminal error has been delivered.
func (s *Stream[T]) Items() <-chan Item[T] {
	return s.items
}

// Sender is the writable end handed to a producer.
type Sender[T any] struct {
	items chan<- Item[T]
}

// Send delivers one value downstream. It blocks while the stream's buffer
// is full; cancelling ctx unblocks it and aborts the producer.
func (s Sender[T]) Send(ctx context.Context, v T) error {
	select {
	case s.items <- Item[T]{Value: v}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generate runs producer in its own goroutine and bridges its sends into a
// Stream buffered to capacity (minimum 1). Every value the producer sends
// is forwarded in emission order. If the producer returns an error or
// panics, exactly one error item is appended after all previously sent
// values and the stream terminates.
func Generate[T any](capacity int, producer func(tx Sender[T]) error) *Stream[T] {
	if capacity < 1 {
		capacity = 1
	}
	items := make(chan Item[T], capacity)
	s := &Stream[T]{items: items}

	go func() {
		defer close(items)
		if err := runProducer(producer, Sender[T]{items: items}); err != nil {
			items <- Item[T]{Err: err}
		}
	}()

	return s
}

// runProducer invokes producer and converts a panic into a returned error
// so that task failures surface in-band like any other error.
func runProducer[T any](producer func(tx Sender[T]) error, tx Sender[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Newf(errs.ErrCodeTaskPanic, nil, "stream producer panicked: %v", r)
		}
	}()
	return producer(tx)
}

// Of returns a stream that replays the given values in order and then
// completes.
func Of[T any](values ...T) *Stream[T] {
	items := make(chan Item[T], 1)
	s := &Stream[T]{items: items}

	go func() {
		defer close(items)
		for _, v := range values {
			items <- Item[T]{Value: v}
		}
	}()

	return s
}

// Collect drains the stream into a slice. On error it returns the values
// collected so far together with the terminal error.
func Collect[T any](s *Stream[T]) ([]T, error) {
	var out []T
	for item := range s.Items() {
		if item.Err != nil {
			return out, item.Err
		}
		out = append(out, item.Value)
	}
	return out, nil
}
