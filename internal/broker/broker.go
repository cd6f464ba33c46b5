// Package broker implements the conversation-scoped message broker:
// it accepts a send request, persists it through the message service, and
// fans the persisted message out to every session subscribed to the
// conversation, in per-conversation order.
package broker

import (
	"context"
	"sync"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/hub"
	"github.com/E-LOVE-APP/chat-service/internal/service"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// Broker serializes sends per conversation so that persisted order and
// delivered order agree, then fans out to subscribers. One slow consumer
// never blocks the broker: enqueue is non-blocking and overflow is the
// subscriber queue's problem.
type Broker struct {
	registry *hub.Registry
	messages service.MessageService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a broker over a registry and the persistence collaborator.
func New(registry *hub.Registry, messages service.MessageService) *Broker {
	return &Broker{
		registry: registry,
		messages: messages,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Send validates and persists a message, then fans it out to all sessions
// subscribed to the conversation except origin (the sender's own session,
// nil for REST sends). Persistence failure aborts delivery: an unpersisted
// message is never fanned out. The per-conversation lock is held across
// persist and fan-out, which is the ordering guarantee.
func (b *Broker) Send(ctx context.Context, conversationID, senderID, recipientID, content string, origin *hub.Session) (*domain.Message, error) {
	lock := b.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	msg, err := b.messages.SendMessage(ctx, conversationID, senderID, recipientID, content)
	if err != nil {
		return nil, err
	}

	frame := domain.NewMessageFrame(domain.ActionNewMessage, msg)
	for _, sub := range b.registry.SubscribersOf(conversationID) {
		if sub == origin {
			continue
		}
		if !sub.Deliver(frame) {
			lg := log.Ctx(ctx)
			lg.Warn().
				Str(log.FieldConversationID, conversationID).
				Str(log.FieldMessageID, msg.ID).
				Str(log.FieldSessionID, sub.ID).
				Msg("subscriber missed message on fan-out")
		}
	}

	return msg, nil
}

func (b *Broker) lockFor(conversationID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[conversationID] = lock
	}
	return lock
}
