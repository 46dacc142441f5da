package telegram

import (
	"context"
	"log"
	"time"
)

const (
	pollTimeoutSeconds = 60
	pollRetryDelay     = 3 * time.Second
)

// Poller runs the long-polling receive loop, handing each update to the
// dispatcher on its own goroutine. A hung handler therefore stalls only
// that one message, not the loop.
type Poller struct {
	client     *Client
	dispatcher *Dispatcher
}

func NewPoller(client *Client, dispatcher *Dispatcher) *Poller {
	return &Poller{client: client, dispatcher: dispatcher}
}

// Run polls until ctx is cancelled. Transient getUpdates failures are
// logged and retried after a short delay.
func (p *Poller) Run(ctx context.Context) error {
	log.Println("Starting long-polling loop")

	var offset int64
	for {
		updates, err := p.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("getUpdates failed: %v (retrying in %s)", err, pollRetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			go p.dispatcher.Dispatch(ctx, update)
		}
	}
}
