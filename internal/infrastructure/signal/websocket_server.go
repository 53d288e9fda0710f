package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/services"
	"chatrelay/internal/infrastructure/monitoring"
	"chatrelay/pkg/tracing"
	"chatrelay/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketServer accepts connections, assigns their ids, and dispatches
// inbound events to the coordinator services. Events of one connection are
// handled in arrival order from a single loop; cross-connection ordering is
// not guaranteed.
type WebSocketServer struct {
	manager  *ConnectionManager
	sessions *services.SessionService
	rooms    *services.RoomService
	chat     *services.ChatService
	relay    *services.RelayService

	collector *monitoring.PrometheusCollector

	pingInterval   time.Duration
	pongTimeout    time.Duration
	writeTimeout   time.Duration
	maxMessageSize int64

	logger *zap.SugaredLogger
}

// ClientEvent is one inbound frame.
type ClientEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RegisterPayload struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Icon      string `json:"icon,omitempty"`
	TextColor string `json:"textColor,omitempty"`
	BgColor   string `json:"bgColor,omitempty"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type MessagePayload struct {
	Text string `json:"text"`
}

type BlockPayload struct {
	TargetUserID string `json:"targetUserId"`
}

type SettingsPayload struct {
	TextColor string `json:"textColor,omitempty"`
	BgColor   string `json:"bgColor,omitempty"`
}

type OfferPayload struct {
	Offer            json.RawMessage `json:"offer"`
	TargetConnection string          `json:"targetConnection"`
}

type AnswerPayload struct {
	Answer           json.RawMessage `json:"answer"`
	TargetConnection string          `json:"targetConnection"`
}

type ICECandidatePayload struct {
	Candidate        json.RawMessage `json:"candidate"`
	TargetConnection string          `json:"targetConnection"`
}

type CallEndPayload struct {
	TargetConnection string `json:"targetConnection,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewWebSocketServer(
	manager *ConnectionManager,
	sessions *services.SessionService,
	rooms *services.RoomService,
	chat *services.ChatService,
	relay *services.RelayService,
	collector *monitoring.PrometheusCollector,
	logger *zap.SugaredLogger,
) *WebSocketServer {
	return &WebSocketServer{
		manager:        manager,
		sessions:       sessions,
		rooms:          rooms,
		chat:           chat,
		relay:          relay,
		collector:      collector,
		pingInterval:   30 * time.Second, // Default ping interval
		pongTimeout:    60 * time.Second, // Default pong timeout
		writeTimeout:   10 * time.Second, // Default write timeout
		maxMessageSize: 64 * 1024,        // Default read limit
		logger:         logger,
	}
}

// SetPingInterval sets ping interval for WebSocket connections
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetPongTimeout sets pong timeout for WebSocket connections
func (s *WebSocketServer) SetPongTimeout(timeout time.Duration) {
	s.pongTimeout = timeout
}

// SetWriteTimeout sets write timeout for WebSocket connections
func (s *WebSocketServer) SetWriteTimeout(timeout time.Duration) {
	s.writeTimeout = timeout
}

// SetMaxMessageSize sets the read limit for inbound frames
func (s *WebSocketServer) SetMaxMessageSize(size int64) {
	s.maxMessageSize = size
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	// The connection id is assigned here, not client-supplied; it exists only
	// while the channel is open.
	connID := domain.ConnID(utils.GenerateConnectionID())
	c := s.manager.add(connID, ws)
	s.collector.RecordConnected()

	s.logger.Infow("connection opened", "conn_id", connID, "remote_addr", r.RemoteAddr)

	ws.SetReadLimit(s.maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(s.pongTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	eventChan := make(chan ClientEvent, 10)
	errorChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	// Reader goroutine; the loop below keeps per-connection ordering. The
	// done channel unblocks a parked send when the loop exits first, e.g.
	// through the ping-failure path with a full event channel.
	go func() {
		for {
			var event ClientEvent
			if err := ws.ReadJSON(&event); err != nil {
				select {
				case errorChan <- err:
				case <-done:
				}
				return
			}
			ws.SetReadDeadline(time.Now().Add(s.pongTimeout))
			select {
			case eventChan <- event:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case event := <-eventChan:
			if err := s.dispatch(context.Background(), connID, event); err != nil {
				s.logger.Infow("error handling event", "conn_id", connID, "event", event.Type, "error", err)
				s.sendError(connID, err.Error())
			}

		case <-pingTicker.C:
			if err := c.ping(s.writeTimeout); err != nil {
				s.logger.Infow("error sending ping", "conn_id", connID, "error", err)
				goto cleanup
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading event", "conn_id", connID, "error", err)
			}
			goto cleanup
		}
	}

cleanup:
	s.manager.remove(connID)
	s.collector.RecordDisconnected()
	s.sessions.Disconnect(context.Background(), connID)
	s.logger.Infow("connection closed", "conn_id", connID)
}

// dispatch routes one inbound event. A returned error becomes an error event
// for the sender; silent-drop conditions are handled inside the services and
// never surface here.
func (s *WebSocketServer) dispatch(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}

	ctx, span := tracing.TraceEvent(ctx, event.Type, string(connID))
	defer span.End()

	start := time.Now()
	defer func() {
		s.collector.ObserveEventDuration(time.Since(start))
	}()
	s.collector.RecordEvent(event.Type)

	switch event.Type {
	case "register":
		return s.handleRegister(ctx, connID, event)
	case "joinRoom":
		return s.handleJoinRoom(ctx, connID, event)
	case "message":
		return s.handleMessage(ctx, connID, event)
	case "blockUser":
		return s.handleBlock(ctx, connID, event)
	case "unblockUser":
		return s.handleUnblock(ctx, connID, event)
	case "getBlockedUsers":
		s.sessions.SendBlockedUsers(ctx, connID)
		return nil
	case "updateUserSettings":
		return s.handleUpdateSettings(ctx, connID, event)
	case "call-offer":
		return s.handleCallOffer(ctx, connID, event)
	case "call-answer":
		return s.handleCallAnswer(ctx, connID, event)
	case "call-ice-candidate":
		return s.handleCallICECandidate(ctx, connID, event)
	case "call-end":
		return s.handleCallEnd(ctx, connID, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

func (s *WebSocketServer) handleRegister(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload RegisterPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("invalid register payload: %w", err)
		}
	}

	s.sessions.Register(ctx, connID, services.RegisterInput{
		ID:        payload.ID,
		Name:      payload.Name,
		Icon:      payload.Icon,
		TextColor: payload.TextColor,
		BgColor:   payload.BgColor,
	})
	return nil
}

func (s *WebSocketServer) handleJoinRoom(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload JoinRoomPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid joinRoom payload: %w", err)
	}

	if err := s.rooms.Join(ctx, connID, domain.RoomID(payload.RoomID)); err != nil {
		return fmt.Errorf("cannot join room %s: %w", payload.RoomID, err)
	}

	s.collector.RecordRoomJoin(domain.RoomID(payload.RoomID))
	return nil
}

func (s *WebSocketServer) handleMessage(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload MessagePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid message payload: %w", err)
	}

	s.chat.Send(ctx, connID, payload.Text)
	s.collector.RecordMessage()
	return nil
}

func (s *WebSocketServer) handleBlock(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload BlockPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid blockUser payload: %w", err)
	}

	s.sessions.Block(ctx, connID, domain.UserID(payload.TargetUserID))
	return nil
}

func (s *WebSocketServer) handleUnblock(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload BlockPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid unblockUser payload: %w", err)
	}

	s.sessions.Unblock(ctx, connID, domain.UserID(payload.TargetUserID))
	return nil
}

func (s *WebSocketServer) handleUpdateSettings(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload SettingsPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid updateUserSettings payload: %w", err)
	}

	s.sessions.UpdateSettings(ctx, connID, payload.TextColor, payload.BgColor)
	return nil
}

func (s *WebSocketServer) handleCallOffer(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload OfferPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid call-offer payload: %w", err)
	}

	s.relay.Offer(ctx, connID, payload.Offer, domain.ConnID(payload.TargetConnection))
	s.collector.RecordSignalForwarded(event.Type)
	return nil
}

func (s *WebSocketServer) handleCallAnswer(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload AnswerPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid call-answer payload: %w", err)
	}

	s.relay.Answer(ctx, connID, payload.Answer, domain.ConnID(payload.TargetConnection))
	s.collector.RecordSignalForwarded(event.Type)
	return nil
}

func (s *WebSocketServer) handleCallICECandidate(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload ICECandidatePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("invalid call-ice-candidate payload: %w", err)
	}

	s.relay.Candidate(ctx, connID, payload.Candidate, domain.ConnID(payload.TargetConnection))
	s.collector.RecordSignalForwarded(event.Type)
	return nil
}

func (s *WebSocketServer) handleCallEnd(ctx context.Context, connID domain.ConnID, event ClientEvent) error {
	var payload CallEndPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("invalid call-end payload: %w", err)
		}
	}

	s.relay.End(ctx, connID, domain.ConnID(payload.TargetConnection))
	s.collector.RecordSignalForwarded(event.Type)
	return nil
}

func (s *WebSocketServer) sendError(connID domain.ConnID, message string) {
	event := domain.Event{Type: domain.EventError, Payload: ErrorPayload{Message: message}}
	if err := s.manager.SendToConn(connID, event); err != nil {
		s.logger.Debugw("failed to send error event", "conn_id", connID, "error", err)
	}
}

func (s *WebSocketServer) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"connections": s.manager.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
