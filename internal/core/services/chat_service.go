package services

import (
	"context"
	"time"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/ports"
	"chatrelay/pkg/utils"

	"go.uber.org/zap"
)

// ChatService fans a chat message out to every connection in the sender's
// room. Block filtering happens here, per receiver, at delivery time: a
// receiver's block-list edits take effect on the next message.
type ChatService struct {
	registry ports.UserRegistry
	blocks   ports.BlockStore
	rooms    ports.RoomTable
	sink     ports.EventSink
	logger   *zap.SugaredLogger
}

func NewChatService(registry ports.UserRegistry, blocks ports.BlockStore, rooms ports.RoomTable, sink ports.EventSink, logger *zap.SugaredLogger) *ChatService {
	return &ChatService{
		registry: registry,
		blocks:   blocks,
		rooms:    rooms,
		sink:     sink,
		logger:   logger,
	}
}

// Send delivers text to the sender's room, sender included. A sender with no
// profile or no current room is a silent drop, not an error: the client UI
// should prevent the state, and the server must tolerate it.
func (s *ChatService) Send(ctx context.Context, conn domain.ConnID, text string) {
	profile, err := s.registry.Lookup(ctx, conn)
	if err != nil {
		s.logger.Debugw("dropping message from unregistered connection", "conn_id", conn)
		return
	}

	room, err := s.rooms.RoomOf(ctx, conn)
	if err != nil || room == "" {
		s.logger.Debugw("dropping message from connection outside any room", "conn_id", conn)
		return
	}

	message := domain.ChatMessage{
		ID:        utils.GenerateMessageID(),
		UserID:    profile.ID,
		UserName:  profile.Name,
		UserIcon:  profile.Icon,
		TextColor: profile.TextColor,
		BgColor:   profile.BgColor,
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RoomID:    room,
	}

	members, err := s.rooms.MembersOf(ctx, room)
	if err != nil {
		return
	}

	event := domain.Event{Type: domain.EventMessage, Payload: message}
	for _, member := range members {
		blocked, err := s.blocks.IsBlocked(ctx, member, profile.ID)
		if err == nil && blocked {
			continue
		}
		if err := s.sink.SendToConn(member, event); err != nil {
			s.logger.Debugw("dropping message for gone connection", "conn_id", member, "error", err)
		}
	}

	s.logger.Infow("message delivered",
		"conn_id", conn,
		"user_id", profile.ID,
		"room_id", room,
		"message_id", message.ID,
		"recipients", len(members),
	)
}
