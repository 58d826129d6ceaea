package userbase

import (
	"context"
	log "log/slog"

	"golang.org/x/sync/errgroup"
)

// JobProcessor function launches a task (thread) spinner & returns a channel (errgroup)
// you can use to enqueue function tasks and for awaiting completion
// of all "spinned off" threads from the tasks enqueued.
//
// The transaction engine uses it as the fire-and-forget rollback queue: the
// write path enqueues and returns, Wait on the errgroup drains on shutdown.
func JobProcessor(ctx context.Context, bufferSize int) (chan func() error, *errgroup.Group) {
	workChannel := make(chan func() error, bufferSize)

	eg, ctx2 := errgroup.WithContext(ctx)

	// Spin off a worker thread that spins off task workers & listens for close the channel signal.
	go (func() {
		for {
			select {
			case <-ctx2.Done():
				log.Debug("ctx2 receieved a done signal")
				// Enqueued tasks still have owners awaiting their side
				// effects; keep dispatching until the channel is closed so
				// none are stranded in the buffer.
				for task := range workChannel {
					eg.Go(task)
				}
				return
			case task, ok := <-workChannel:
				if !ok {
					return
				}
				eg.Go(task)
			}
		}
	})()

	return workChannel, eg
}
