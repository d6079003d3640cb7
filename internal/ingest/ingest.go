// Package ingest wraps the ledger engine in a single-consumer worker that
// drains a channel fed by one or more producer goroutines. The engine
// itself is never shared across goroutines: only the consumer goroutine
// ever touches it, so none of its operations need locking.
package ingest

import (
	"context"
	"sync"

	"ledger-engine/internal/csvfeed"
	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/logging"
)

// Result reports the outcome of applying a single row.
type Result struct {
	Row csvfeed.InputRow
	Err error
}

// Worker owns a ledger.Engine and applies InputRows submitted to it from
// any number of producer goroutines, one at a time, in the order they
// arrive on its internal channel.
type Worker struct {
	engine  *ledger.Engine
	logger  *logging.Logger
	rows    chan csvfeed.InputRow
	results chan Result
	done    chan struct{}
}

// NewWorker starts a Worker's consumer goroutine. queueSize bounds how many
// pending rows producers may buffer before Submit blocks; zero means
// unbuffered (a producer blocks until the consumer is ready for its row).
func NewWorker(e *ledger.Engine, logger *logging.Logger, queueSize int) *Worker {
	w := &Worker{
		engine:  e,
		logger:  logger,
		rows:    make(chan csvfeed.InputRow, queueSize),
		results: make(chan Result, queueSize),
		done:    make(chan struct{}),
	}
	go w.consume()
	return w
}

func (w *Worker) consume() {
	defer close(w.done)
	defer close(w.results)
	for row := range w.rows {
		err := csvfeed.Apply(w.engine, row)
		if err != nil && w.logger != nil {
			w.logger.Warn("transaction rejected", logging.Fields{
				"type":   row.Kind.String(),
				"client": row.Client,
				"tx":     row.Tx,
				"error":  err.Error(),
			})
		}
		w.results <- Result{Row: row, Err: err}
	}
}

// Submit enqueues a row for processing, blocking if the queue is full or
// ctx is honored until it is cancelled, whichever comes first. It must not
// be called after Close.
func (w *Worker) Submit(ctx context.Context, row csvfeed.InputRow) error {
	select {
	case w.rows <- row:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the channel of per-row outcomes, in the order the
// consumer applied them. It must be drained: the consumer blocks once
// queueSize results are pending unread. The channel is closed once Close
// has drained every row.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Close signals that no more rows will be submitted and blocks until the
// consumer has drained everything already queued.
func (w *Worker) Close() {
	close(w.rows)
	<-w.done
}

// RunProducers fans out rows across n producer goroutines feeding a single
// Worker, waits for all producers to finish submitting, then closes the
// Worker and drains its Results channel, invoking onResult for each.
func RunProducers(ctx context.Context, w *Worker, rows <-chan csvfeed.InputRow, n int, onResult func(Result)) {
	var drainWG sync.WaitGroup
	drainWG.Add(1)
	go func() {
		defer drainWG.Done()
		for res := range w.Results() {
			if onResult != nil {
				onResult(res)
			}
		}
	}()

	var producerWG sync.WaitGroup
	if n < 1 {
		n = 1
	}
	producerWG.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer producerWG.Done()
			for row := range rows {
				if w.Submit(ctx, row) != nil {
					return
				}
			}
		}()
	}
	producerWG.Wait()
	w.Close()
	drainWG.Wait()
}
