package services

import (
	"context"
	"encoding/json"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/ports"

	"go.uber.org/zap"
)

// RelayService is the store-and-forward half of call setup. It keeps no call
// state: each signaling message names its own target connection, payloads are
// forwarded verbatim, and a target that is no longer connected is a silent
// no-op. The relay never checks that the two connections share a room.
type RelayService struct {
	registry ports.UserRegistry
	rooms    ports.RoomTable
	sink     ports.EventSink
	logger   *zap.SugaredLogger
}

func NewRelayService(registry ports.UserRegistry, rooms ports.RoomTable, sink ports.EventSink, logger *zap.SugaredLogger) *RelayService {
	return &RelayService{
		registry: registry,
		rooms:    rooms,
		sink:     sink,
		logger:   logger,
	}
}

// Offer forwards a call offer to the target, annotated with the sender's
// identity and current room. A sender with no profile or no room is a silent
// drop, mirroring the message fan-out policy.
func (s *RelayService) Offer(ctx context.Context, from domain.ConnID, offer json.RawMessage, target domain.ConnID) {
	profile, err := s.registry.Lookup(ctx, from)
	if err != nil {
		s.logger.Debugw("dropping call offer from unregistered connection", "conn_id", from)
		return
	}
	room, err := s.rooms.RoomOf(ctx, from)
	if err != nil || room == "" {
		s.logger.Debugw("dropping call offer from connection outside any room", "conn_id", from)
		return
	}

	s.forward(target, domain.Event{
		Type: domain.EventCallOffer,
		Payload: domain.CallOffer{
			Offer:  offer,
			RoomID: room,
			From: domain.CallerInfo{
				ConnID: from,
				UserID: profile.ID,
				Name:   profile.Name,
				Icon:   profile.Icon,
			},
		},
	})

	s.logger.Infow("routed call offer", "from_conn_id", from, "to_conn_id", target, "room_id", room)
}

// Answer forwards a call answer to the target, annotated with the sender's
// connection id only.
func (s *RelayService) Answer(ctx context.Context, from domain.ConnID, answer json.RawMessage, target domain.ConnID) {
	s.forward(target, domain.Event{
		Type:    domain.EventCallAnswer,
		Payload: domain.CallAnswer{Answer: answer, From: from},
	})
	s.logger.Infow("routed call answer", "from_conn_id", from, "to_conn_id", target)
}

// Candidate forwards an ICE candidate verbatim.
func (s *RelayService) Candidate(ctx context.Context, from domain.ConnID, candidate json.RawMessage, target domain.ConnID) {
	s.forward(target, domain.Event{
		Type:    domain.EventCallICECandidate,
		Payload: domain.CallCandidate{Candidate: candidate, From: from},
	})
	s.logger.Debugw("routed ICE candidate", "from_conn_id", from, "to_conn_id", target)
}

// End announces teardown to the target. An absent target means the teardown
// was local-only and the event is dropped.
func (s *RelayService) End(ctx context.Context, from domain.ConnID, target domain.ConnID) {
	if target == "" {
		s.logger.Debugw("dropping call end with no target", "conn_id", from)
		return
	}
	s.forward(target, domain.Event{
		Type:    domain.EventCallEnd,
		Payload: domain.CallEnd{From: from},
	})
	s.logger.Infow("routed call end", "from_conn_id", from, "to_conn_id", target)
}

func (s *RelayService) forward(target domain.ConnID, event domain.Event) {
	if err := s.sink.SendToConn(target, event); err != nil {
		s.logger.Debugw("signaling target no longer connected", "to_conn_id", target, "event", event.Type, "error", err)
	}
}
