package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/metrics"
	"github.com/chatrelay/chatrelay-server/internal/store"
)

// Bridge hands relayed messages to the message store without blocking the
// relay path. Write failures are logged and counted; the message is then
// permanently lost. There is no retry and no dead-letter, and the sender
// never learns about the outcome.
type Bridge struct {
	store store.MessageStore
	log   *zerolog.Logger

	// persistTimeout bounds each store write. Zero disables the bound.
	persistTimeout time.Duration

	wg sync.WaitGroup
}

// NewBridge builds a persistence bridge over the given message store.
func NewBridge(st store.MessageStore, persistTimeout time.Duration, logger *zerolog.Logger) *Bridge {
	return &Bridge{
		store:          st,
		log:            logger,
		persistTimeout: persistTimeout,
	}
}

// PersistAsync schedules a store write for msg on its own goroutine and
// returns immediately. Ordering between concurrently scheduled writes is
// unspecified; readers order by the relay-assigned CreatedAt.
func (b *Bridge) PersistAsync(msg *store.Message) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx := context.Background()
		if b.persistTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.persistTimeout)
			defer cancel()
		}

		if err := b.store.SaveMessage(ctx, msg); err != nil {
			metrics.PersistFailures.Inc()
			b.log.Error().
				Err(err).
				Int64("room_id", msg.RoomID).
				Int64("sender_id", msg.SenderID).
				Msg("failed to save message")
		}
	}()
}

// Drain blocks until all scheduled writes have finished or ctx expires.
// Used during shutdown so in-flight messages reach the store.
func (b *Bridge) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
