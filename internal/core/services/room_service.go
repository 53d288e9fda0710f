package services

import (
	"context"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/ports"

	"go.uber.org/zap"
)

// RoomService owns room transitions and presence. Every membership mutation
// goes through here so that the authoritative member list is re-broadcast in
// the same logical step.
type RoomService struct {
	registry ports.UserRegistry
	rooms    ports.RoomTable
	sink     ports.EventSink
	logger   *zap.SugaredLogger
}

func NewRoomService(registry ports.UserRegistry, rooms ports.RoomTable, sink ports.EventSink, logger *zap.SugaredLogger) *RoomService {
	return &RoomService{
		registry: registry,
		rooms:    rooms,
		sink:     sink,
		logger:   logger,
	}
}

// Join moves the connection into the room. Joining the room it is already in
// is tolerated: membership does not change but the confirmation and a fresh
// presence list are still emitted. Returns domain.ErrRoomNotFound for a room
// id outside the configured set.
func (s *RoomService) Join(ctx context.Context, conn domain.ConnID, room domain.RoomID) error {
	prev, err := s.rooms.Join(ctx, conn, room)
	if err != nil {
		s.logger.Infow("join rejected", "conn_id", conn, "room_id", room, "error", err)
		return err
	}

	s.send(conn, domain.Event{Type: domain.EventJoinedRoom, Payload: room})

	if prev != "" && prev != room {
		s.BroadcastPresence(ctx, prev)
	}
	s.BroadcastPresence(ctx, room)

	s.logger.Infow("connection joined room", "conn_id", conn, "room_id", room, "prev_room_id", prev)
	return nil
}

// Leave removes the connection from its current room, if any, and refreshes
// presence for the vacated room.
func (s *RoomService) Leave(ctx context.Context, conn domain.ConnID) {
	room, err := s.rooms.Leave(ctx, conn)
	if err != nil || room == "" {
		return
	}
	s.BroadcastPresence(ctx, room)
	s.logger.Infow("connection left room", "conn_id", conn, "room_id", room)
}

// BroadcastPresence recomputes the member list of the room, resolving each
// member connection to its profile, and emits it to every connection in the
// room. Members with no resolvable profile (a disconnect racing the lookup)
// are excluded.
func (s *RoomService) BroadcastPresence(ctx context.Context, room domain.RoomID) {
	members, err := s.rooms.MembersOf(ctx, room)
	if err != nil {
		return
	}

	profiles := s.resolve(ctx, members)
	event := domain.Event{Type: domain.EventRoomUsers, Payload: profiles}
	for _, conn := range members {
		s.send(conn, event)
	}
}

// Presence returns the resolved member list of the room for the read-only
// HTTP API. Returns domain.ErrRoomNotFound for an unconfigured room.
func (s *RoomService) Presence(ctx context.Context, room domain.RoomID) ([]domain.UserProfile, error) {
	members, err := s.rooms.MembersOf(ctx, room)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, members), nil
}

// Summaries returns every configured room with its current member count.
func (s *RoomService) Summaries(ctx context.Context) []domain.RoomInfo {
	rooms := s.rooms.Rooms(ctx)
	infos := make([]domain.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		members, err := s.rooms.MembersOf(ctx, room)
		if err != nil {
			continue
		}
		infos = append(infos, domain.RoomInfo{ID: room, Members: len(members)})
	}
	return infos
}

func (s *RoomService) resolve(ctx context.Context, members []domain.ConnID) []domain.UserProfile {
	profiles := make([]domain.UserProfile, 0, len(members))
	for _, conn := range members {
		profile, err := s.registry.Lookup(ctx, conn)
		if err != nil {
			continue
		}
		profiles = append(profiles, *profile)
	}
	return profiles
}

func (s *RoomService) send(conn domain.ConnID, event domain.Event) {
	if err := s.sink.SendToConn(conn, event); err != nil {
		s.logger.Debugw("dropping event for gone connection", "conn_id", conn, "event", event.Type, "error", err)
	}
}
