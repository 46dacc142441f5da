package telegram

import (
	"context"
	"log"
	"sync"
)

// Replier sends a reply back to a chat. *Client satisfies it; tests swap in
// a recorder.
type Replier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Handler routes one inbound message to a reply. Implemented by the
// command router in internal/core.
type Handler interface {
	HandleMessage(ctx context.Context, userID int64, text string) string
}

// Dispatcher hands updates to the Handler while serializing handling per
// user: concurrent deliveries for the same user cannot interleave their
// history appends, while different users proceed in parallel.
type Dispatcher struct {
	replier Replier
	handler Handler
	locks   sync.Map // user ID -> *sync.Mutex
}

func NewDispatcher(replier Replier, handler Handler) *Dispatcher {
	return &Dispatcher{replier: replier, handler: handler}
}

func (d *Dispatcher) userLock(userID int64) *sync.Mutex {
	mu, _ := d.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Dispatch handles one update end to end: route the message, then deliver
// the reply to the originating chat. Updates without message text are
// dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	// Sessions are keyed by the sending user; replies go to the chat.
	userID := msg.Chat.ID
	if msg.From != nil {
		userID = msg.From.ID
	}

	mu := d.userLock(userID)
	mu.Lock()
	reply := d.handler.HandleMessage(ctx, userID, msg.Text)
	mu.Unlock()

	if reply == "" {
		return
	}
	if err := d.replier.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		log.Printf("Failed to send reply to chat %d: %v", msg.Chat.ID, err)
	}
}
