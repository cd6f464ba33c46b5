package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/E-LOVE-APP/chat-service/internal/broker"
	"github.com/E-LOVE-APP/chat-service/internal/config"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/hub"
	"github.com/E-LOVE-APP/chat-service/internal/repository"
	"github.com/E-LOVE-APP/chat-service/internal/service"
)

type wsFixture struct {
	server        *httptest.Server
	conversations service.ConversationService
	registry      *hub.Registry
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ConversationModel{}, &domain.MessageModel{}))

	convRepo := repository.NewGormConversationRepository(db)
	msgRepo := repository.NewGormMessageRepository(db)
	conversations := service.NewConversationService(convRepo, nil, time.Minute)
	messages := service.NewMessageService(convRepo, msgRepo)

	registry := hub.NewRegistry()
	b := broker.New(registry, messages)

	router := gin.New()
	NewWSHandler(conversations, b, registry, config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
		QueueCapacity:  16,
		QueuePolicy:    "drop_newest",
	}).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &wsFixture{server: server, conversations: conversations, registry: registry}
}

// waitSubscribers blocks until n sessions are registered for the
// conversation; the server activates a session shortly after the handshake
// response, so dialers have to wait before sending.
func (f *wsFixture) waitSubscribers(t *testing.T, conversationID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.registry.Count(conversationID) == n
	}, 2*time.Second, 5*time.Millisecond)
}

func (f *wsFixture) conversation(t *testing.T, a, b string) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	conv, err := f.conversations.CreateConversation(ctx, a, b)
	require.NoError(t, err)
	return conv.ID
}

func (f *wsFixture) dial(t *testing.T, conversationID, participantID string) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("%s/chat/ws/%s?participant_id=%s",
		strings.Replace(f.server.URL, "http", "ws", 1), conversationID, participantID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, senderID, recipientID, content string) {
	t.Helper()
	frame := gin.H{
		"action": domain.ActionSendMessage,
		"data": gin.H{
			"sender_id":    senderID,
			"recipient_id": recipientID,
			"content":      content,
		},
	}
	require.NoError(t, conn.WriteJSON(frame))
}

func readMessageFrame(t *testing.T, conn *websocket.Conn) domain.MessageFrame {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame domain.MessageFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func readErrorFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame domain.ErrorFrame
	require.NoError(t, json.Unmarshal(data, &frame))
	require.NotEmpty(t, frame.Error)
	return frame.Error
}

func expectPolicyViolationClose(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "expected 1008 close, got %v", err)
}

func TestWSRejectsUnknownConversation(t *testing.T) {
	f := newWSFixture(t)

	url := fmt.Sprintf("%s/chat/ws/no-such-id?participant_id=alice",
		strings.Replace(f.server.URL, "http", "ws", 1))
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	expectPolicyViolationClose(t, conn)
}

func TestWSRejectsNonParticipant(t *testing.T) {
	f := newWSFixture(t)
	convID := f.conversation(t, "alice", "bob")

	url := fmt.Sprintf("%s/chat/ws/%s?participant_id=carol",
		strings.Replace(f.server.URL, "http", "ws", 1), convID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	expectPolicyViolationClose(t, conn)
}

func TestWSRejectsMissingParticipantID(t *testing.T) {
	f := newWSFixture(t)
	convID := f.conversation(t, "alice", "bob")

	url := fmt.Sprintf("%s/chat/ws/%s",
		strings.Replace(f.server.URL, "http", "ws", 1), convID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	expectPolicyViolationClose(t, conn)
}

func TestWSSendDeliversToPeerAndAcksSender(t *testing.T) {
	f := newWSFixture(t)
	convID := f.conversation(t, "alice", "bob")

	alice := f.dial(t, convID, "alice")
	bob := f.dial(t, convID, "bob")
	f.waitSubscribers(t, convID, 2)

	sendFrame(t, alice, "alice", "bob", "hi")

	// The peer sees the message as new_message, the sender as message_saved.
	received := readMessageFrame(t, bob)
	require.Equal(t, domain.ActionNewMessage, received.Action)
	require.Equal(t, "hi", received.Data.Content)
	require.Equal(t, "alice", received.Data.SenderID)
	require.Equal(t, domain.StatusSent, received.Data.Status)

	ack := readMessageFrame(t, alice)
	require.Equal(t, domain.ActionMessageSaved, ack.Action)
	require.Equal(t, received.Data.ID, ack.Data.ID)
}

func TestWSDeliveryOrderMatchesSendOrder(t *testing.T) {
	f := newWSFixture(t)
	convID := f.conversation(t, "alice", "bob")

	alice := f.dial(t, convID, "alice")
	bob := f.dial(t, convID, "bob")
	f.waitSubscribers(t, convID, 2)

	sendFrame(t, alice, "alice", "bob", "hi")
	sendFrame(t, alice, "alice", "bob", "yo")

	first := readMessageFrame(t, bob)
	second := readMessageFrame(t, bob)
	require.Equal(t, "hi", first.Data.Content)
	require.Equal(t, "yo", second.Data.Content)
}

func TestWSBadFramesAreNonFatal(t *testing.T) {
	f := newWSFixture(t)
	convID := f.conversation(t, "alice", "bob")

	alice := f.dial(t, convID, "alice")
	bob := f.dial(t, convID, "bob")
	f.waitSubscribers(t, convID, 2)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	readErrorFrame(t, alice)

	require.NoError(t, alice.WriteJSON(gin.H{"action": "dance"}))
	readErrorFrame(t, alice)

	// Claiming to be a non-participant fails without touching the peer.
	sendFrame(t, alice, "carol", "bob", "let me in")
	readErrorFrame(t, alice)

	// The session survived all three and still works.
	sendFrame(t, alice, "alice", "bob", "still here")
	received := readMessageFrame(t, bob)
	require.Equal(t, "still here", received.Data.Content)
}
