package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/services"
	"chatrelay/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingSink captures everything the services emit so tests can assert on
// delivery without a live transport.
type recordingSink struct {
	mu         sync.Mutex
	sent       map[domain.ConnID][]domain.Event
	broadcasts []domain.Event
	gone       map[domain.ConnID]bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		sent: make(map[domain.ConnID][]domain.Event),
		gone: make(map[domain.ConnID]bool),
	}
}

func (s *recordingSink) SendToConn(conn domain.ConnID, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone[conn] {
		return fmt.Errorf("connection %s not registered", conn)
	}
	s.sent[conn] = append(s.sent[conn], event)
	return nil
}

func (s *recordingSink) Broadcast(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, event)
}

func (s *recordingSink) markGone(conn domain.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gone[conn] = true
}

func (s *recordingSink) eventsFor(conn domain.ConnID) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.sent[conn]))
	copy(out, s.sent[conn])
	return out
}

func (s *recordingSink) typesFor(conn domain.ConnID) []string {
	events := s.eventsFor(conn)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func (s *recordingSink) lastOfType(conn domain.ConnID, eventType string) (domain.Event, bool) {
	events := s.eventsFor(conn)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return events[i], true
		}
	}
	return domain.Event{}, false
}

func (s *recordingSink) countOfType(conn domain.ConnID, eventType string) int {
	count := 0
	for _, e := range s.eventsFor(conn) {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

func (s *recordingSink) broadcastTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.broadcasts))
	for _, e := range s.broadcasts {
		types = append(types, e.Type)
	}
	return types
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = make(map[domain.ConnID][]domain.Event)
	s.broadcasts = nil
}

// fixture wires the four services against the in-memory store and the
// recording sink, the same shape the server assembles at startup.
type fixture struct {
	store    *memory.SessionStore
	sink     *recordingSink
	rooms    *services.RoomService
	sessions *services.SessionService
	chat     *services.ChatService
	relay    *services.RelayService
}

func newFixture() *fixture {
	store := memory.NewSessionStore([]domain.RoomID{"room1", "room2"})
	sink := newRecordingSink()
	logger := zap.NewNop().Sugar()

	rooms := services.NewRoomService(store, store, sink, logger)
	return &fixture{
		store:    store,
		sink:     sink,
		rooms:    rooms,
		sessions: services.NewSessionService(store, store, store, rooms, sink, logger),
		chat:     services.NewChatService(store, store, store, sink, logger),
		relay:    services.NewRelayService(store, store, sink, logger),
	}
}

// registerAndJoin is the common two-step setup of most scenarios.
func (f *fixture) registerAndJoin(t *testing.T, conn domain.ConnID, user, name string, room domain.RoomID) {
	t.Helper()
	ctx := context.Background()
	f.sessions.Register(ctx, conn, services.RegisterInput{ID: user, Name: name})
	if room != "" {
		require.NoError(t, f.rooms.Join(ctx, conn, room))
	}
}
