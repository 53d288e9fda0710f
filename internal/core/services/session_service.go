package services

import (
	"context"
	"errors"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/ports"

	"go.uber.org/zap"
)

// RegisterInput carries the caller-supplied profile fields of a register
// event. Every field is optional; defaults are applied here.
type RegisterInput struct {
	ID        string
	Name      string
	Icon      string
	TextColor string
	BgColor   string
}

// SessionService owns the connection lifecycle: registration, per-user
// settings, block-list edits and disconnect teardown.
type SessionService struct {
	registry ports.UserRegistry
	blocks   ports.BlockStore
	rooms    ports.RoomTable
	roomSvc  *RoomService
	sink     ports.EventSink
	logger   *zap.SugaredLogger
}

func NewSessionService(registry ports.UserRegistry, blocks ports.BlockStore, rooms ports.RoomTable, roomSvc *RoomService, sink ports.EventSink, logger *zap.SugaredLogger) *SessionService {
	return &SessionService{
		registry: registry,
		blocks:   blocks,
		rooms:    rooms,
		roomSvc:  roomSvc,
		sink:     sink,
		logger:   logger,
	}
}

// Register constructs a profile from the input, applying defaults for absent
// fields (the connection id doubles as the user id when none is supplied).
// Registration always succeeds and overwrites any prior profile for the
// connection. The reply is the profile followed by the configured room list.
func (s *SessionService) Register(ctx context.Context, conn domain.ConnID, input RegisterInput) *domain.UserProfile {
	profile := &domain.UserProfile{
		ID:        domain.UserID(input.ID),
		Name:      input.Name,
		Icon:      input.Icon,
		TextColor: input.TextColor,
		BgColor:   input.BgColor,
		ConnID:    conn,
	}
	if profile.ID == "" {
		profile.ID = domain.UserID(conn)
	}
	if profile.Name == "" {
		profile.Name = domain.DefaultName
	}
	if profile.Icon == "" {
		profile.Icon = domain.DefaultIcon
	}

	if err := s.registry.Register(ctx, profile); err != nil {
		s.logger.Errorw("failed to register profile", "conn_id", conn, "error", err)
		return profile
	}

	s.send(conn, domain.Event{Type: domain.EventRegistered, Payload: profile})
	s.send(conn, domain.Event{Type: domain.EventRoomList, Payload: s.rooms.Rooms(ctx)})

	s.logger.Infow("user registered", "conn_id", conn, "user_id", profile.ID, "name", profile.Name)
	return profile
}

// UpdateSettings overwrites the profile's colors and, when the connection is
// in a room, re-broadcasts presence so other members see the change. A
// connection that never registered is a silent no-op.
func (s *SessionService) UpdateSettings(ctx context.Context, conn domain.ConnID, textColor, bgColor string) {
	if err := s.registry.UpdateColors(ctx, conn, textColor, bgColor); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			s.logger.Debugw("settings update for unregistered connection", "conn_id", conn)
			return
		}
		s.logger.Errorw("failed to update settings", "conn_id", conn, "error", err)
		return
	}

	if room, err := s.rooms.RoomOf(ctx, conn); err == nil && room != "" {
		s.roomSvc.BroadcastPresence(ctx, room)
	}
}

// Block adds target to the connection's block set and confirms to the owner.
// Always succeeds, even for a target that matches no live user.
func (s *SessionService) Block(ctx context.Context, conn domain.ConnID, target domain.UserID) {
	if err := s.blocks.Block(ctx, conn, target); err != nil {
		s.logger.Errorw("failed to block user", "conn_id", conn, "target_user_id", target, "error", err)
		return
	}
	s.send(conn, domain.Event{Type: domain.EventUserBlocked, Payload: target})
	s.logger.Infow("user blocked", "conn_id", conn, "target_user_id", target)
}

// Unblock removes target from the connection's block set. Idempotent.
func (s *SessionService) Unblock(ctx context.Context, conn domain.ConnID, target domain.UserID) {
	if err := s.blocks.Unblock(ctx, conn, target); err != nil {
		s.logger.Errorw("failed to unblock user", "conn_id", conn, "target_user_id", target, "error", err)
		return
	}
	s.send(conn, domain.Event{Type: domain.EventUserUnblocked, Payload: target})
	s.logger.Infow("user unblocked", "conn_id", conn, "target_user_id", target)
}

// SendBlockedUsers replies with the connection's current block list.
func (s *SessionService) SendBlockedUsers(ctx context.Context, conn domain.ConnID) {
	blocked, err := s.blocks.ListBlocked(ctx, conn)
	if err != nil {
		s.logger.Errorw("failed to list blocked users", "conn_id", conn, "error", err)
		return
	}
	s.send(conn, domain.Event{Type: domain.EventBlockedUsers, Payload: blocked})
}

// Disconnect is the transport-level teardown: it removes the profile, block
// set and room membership in one step, refreshes presence for the vacated
// room, and broadcasts a global notice so in-flight call UIs can react. It is
// idempotent; duplicate notifications for the same connection are harmless.
func (s *SessionService) Disconnect(ctx context.Context, conn domain.ConnID) {
	room, err := s.registry.Remove(ctx, conn)
	if err != nil {
		s.logger.Errorw("failed to remove connection state", "conn_id", conn, "error", err)
	}

	if room != "" {
		s.roomSvc.BroadcastPresence(ctx, room)
	}

	s.sink.Broadcast(domain.Event{
		Type:    domain.EventUserDisconnected,
		Payload: domain.DisconnectNotice{ConnID: conn},
	})

	s.logger.Infow("connection torn down", "conn_id", conn, "room_id", room)
}

func (s *SessionService) send(conn domain.ConnID, event domain.Event) {
	if err := s.sink.SendToConn(conn, event); err != nil {
		s.logger.Debugw("dropping event for gone connection", "conn_id", conn, "event", event.Type, "error", err)
	}
}
