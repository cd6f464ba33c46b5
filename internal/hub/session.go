package hub

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// SessionState is the lifecycle state of a ConversationSession.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateActive
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Transport abstracts the wire below a session: a WebSocket connection in
// production, an in-memory fake in tests. ReadFrame blocks until a frame,
// a transport error, or a peer disconnect.
type Transport interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	Ping() error
	Close() error
}

// Config carries the per-session timing knobs and queue settings.
type Config struct {
	PingInterval  time.Duration
	WriteWait     time.Duration
	QueueCapacity int
	QueuePolicy   OverflowPolicy
}

// Session binds one live connection to one conversation and one
// participant for its lifetime. It owns a bounded DeliveryQueue and moves
// through connecting -> active -> closing -> closed exactly once.
type Session struct {
	ID             string
	ConversationID string
	ParticipantID  string

	registry  *Registry
	queue     *DeliveryQueue
	transport Transport
	cfg       Config

	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}
}

// NewSession creates a session in the connecting state. It is not yet
// registered; call Activate after the handshake has been validated.
func NewSession(id, conversationID, participantID string, transport Transport, registry *Registry, cfg Config) *Session {
	s := &Session{
		ID:             id,
		ConversationID: conversationID,
		ParticipantID:  participantID,
		registry:       registry,
		queue:          NewDeliveryQueue(cfg.QueueCapacity, cfg.QueuePolicy),
		transport:      transport,
		cfg:            cfg,
		done:           make(chan struct{}),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Queue exposes the session's delivery queue.
func (s *Session) Queue() *DeliveryQueue {
	return s.queue
}

// Done is closed once the session has fully closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Activate registers the session and moves it to the active state.
// Only a connecting session can be activated.
func (s *Session) Activate() bool {
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return false
	}
	s.registry.Register(s.ConversationID, s)
	return true
}

// Deliver enqueues an outbound frame for this session. A full queue
// triggers the overflow policy; under disconnect the session is torn down
// and false is returned. Deliver never blocks the caller.
func (s *Session) Deliver(frame interface{}) bool {
	if s.State() != StateActive {
		return false
	}

	data, err := json.Marshal(frame)
	if err != nil {
		lg := log.L()
		lg.Error().Err(err).Str(log.FieldSessionID, s.ID).Msg("failed to marshal outbound frame")
		return false
	}

	if s.queue.Enqueue(data) {
		return true
	}

	lg := log.L()
	lg.Warn().
		Str(log.FieldSessionID, s.ID).
		Str(log.FieldConversationID, s.ConversationID).
		Str("queue_policy", string(s.queue.Policy())).
		Msg("delivery queue overflow")

	if s.queue.Policy() == PolicyDisconnect {
		go s.Close()
	}
	return false
}

// SendError delivers an error frame back to this session. Errors are
// non-fatal: the session stays active.
func (s *Session) SendError(detail string) {
	s.Deliver(domain.NewErrorFrame(detail))
}

// FrameHandler processes one inbound frame for an active session.
type FrameHandler func(ctx context.Context, s *Session, frame []byte)

// ReadPump consumes inbound frames until the transport fails or the
// session closes, then tears the session down. Run on its own goroutine.
func (s *Session) ReadPump(ctx context.Context, handler FrameHandler) {
	defer s.Close()

	for {
		frame, err := s.transport.ReadFrame()
		if err != nil {
			if s.State() == StateActive {
				lg := log.L()
				lg.Debug().Err(err).Str(log.FieldSessionID, s.ID).Msg("transport read ended")
			}
			return
		}
		if s.State() != StateActive {
			return
		}
		handler(ctx, s, frame)
	}
}

// WritePump drains the delivery queue to the transport and keeps the
// connection alive with pings. Run on its own goroutine.
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case data, ok := <-s.queue.C():
			if !ok {
				return
			}
			if err := s.transport.WriteFrame(data); err != nil {
				lg := log.L()
				lg.Debug().Err(err).Str(log.FieldSessionID, s.ID).Msg("transport write failed")
				return
			}

		case <-ticker.C:
			if err := s.transport.Ping(); err != nil {
				return
			}
		}
	}
}

// Close moves the session through closing to closed: unregister from the
// registry (idempotent), close the queue so no further frames are
// accepted, and close the transport. Safe to call from any state and any
// goroutine; only the first call does work.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))

		s.registry.Unregister(s.ConversationID, s)
		s.queue.Close()
		if err := s.transport.Close(); err != nil {
			lg := log.L()
			lg.Debug().Err(err).Str(log.FieldSessionID, s.ID).Msg("transport close failed")
		}

		s.state.Store(int32(StateClosed))
		close(s.done)

		lg := log.L()
		lg.Info().
			Str(log.FieldSessionID, s.ID).
			Str(log.FieldConversationID, s.ConversationID).
			Str(log.FieldParticipantID, s.ParticipantID).
			Msg("session closed")
	})
}
