package memory

import (
	"context"
	"sync"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/ports"
)

// SessionStore is the process-wide state container behind the coordinator:
// profiles, block sets and room membership for every live connection. All
// tables live under one mutex so that register/join/remove are serialized
// against each other, which is what keeps teardown and room transitions
// atomic. The room set is fixed at construction and never mutated.
type SessionStore struct {
	mu sync.RWMutex

	profiles    map[domain.ConnID]*domain.UserProfile
	blocked     map[domain.ConnID]map[domain.UserID]struct{}
	roomMembers map[domain.RoomID]map[domain.ConnID]struct{}
	connRoom    map[domain.ConnID]domain.RoomID

	rooms []domain.RoomID // configuration order
}

var (
	_ ports.UserRegistry = (*SessionStore)(nil)
	_ ports.BlockStore   = (*SessionStore)(nil)
	_ ports.RoomTable    = (*SessionStore)(nil)
)

func NewSessionStore(rooms []domain.RoomID) *SessionStore {
	s := &SessionStore{
		profiles:    make(map[domain.ConnID]*domain.UserProfile),
		blocked:     make(map[domain.ConnID]map[domain.UserID]struct{}),
		roomMembers: make(map[domain.RoomID]map[domain.ConnID]struct{}, len(rooms)),
		connRoom:    make(map[domain.ConnID]domain.RoomID),
		rooms:       append([]domain.RoomID(nil), rooms...),
	}
	for _, room := range s.rooms {
		s.roomMembers[room] = make(map[domain.ConnID]struct{})
	}
	return s
}

// --- ports.UserRegistry ---

func (s *SessionStore) Register(ctx context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *profile
	s.profiles[p.ConnID] = &p
	// Every registration starts with a clean block set, including
	// re-registration over an existing profile.
	s.blocked[p.ConnID] = make(map[domain.UserID]struct{})
	return nil
}

func (s *SessionStore) Lookup(ctx context.Context, conn domain.ConnID) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[conn]
	if !exists {
		return nil, domain.ErrProfileNotFound
	}

	p := *profile
	return &p, nil
}

func (s *SessionStore) UpdateColors(ctx context.Context, conn domain.ConnID, textColor, bgColor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, exists := s.profiles[conn]
	if !exists {
		return domain.ErrProfileNotFound
	}

	profile.TextColor = textColor
	profile.BgColor = bgColor
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, conn domain.ConnID) (domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, conn)
	delete(s.blocked, conn)
	return s.leaveLocked(conn), nil
}

// --- ports.BlockStore ---

func (s *SessionStore) Block(ctx context.Context, conn domain.ConnID, target domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, exists := s.blocked[conn]
	if !exists {
		set = make(map[domain.UserID]struct{})
		s.blocked[conn] = set
	}
	set[target] = struct{}{}
	return nil
}

func (s *SessionStore) Unblock(ctx context.Context, conn domain.ConnID, target domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, exists := s.blocked[conn]; exists {
		delete(set, target)
	}
	return nil
}

func (s *SessionStore) ListBlocked(ctx context.Context, conn domain.ConnID) ([]domain.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.blocked[conn]
	blocked := make([]domain.UserID, 0, len(set))
	for target := range set {
		blocked = append(blocked, target)
	}
	return blocked, nil
}

func (s *SessionStore) IsBlocked(ctx context.Context, conn domain.ConnID, sender domain.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, exists := s.blocked[conn]
	if !exists {
		return false, nil
	}
	_, blocked := set[sender]
	return blocked, nil
}

// --- ports.RoomTable ---

func (s *SessionStore) Join(ctx context.Context, conn domain.ConnID, room domain.RoomID) (domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, exists := s.roomMembers[room]
	if !exists {
		return "", domain.ErrRoomNotFound
	}

	prev := s.connRoom[conn]
	if prev == room {
		return prev, nil
	}

	if prev != "" {
		delete(s.roomMembers[prev], conn)
	}
	members[conn] = struct{}{}
	s.connRoom[conn] = room
	return prev, nil
}

func (s *SessionStore) Leave(ctx context.Context, conn domain.ConnID) (domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(conn), nil
}

func (s *SessionStore) MembersOf(ctx context.Context, room domain.RoomID) ([]domain.ConnID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, exists := s.roomMembers[room]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	conns := make([]domain.ConnID, 0, len(members))
	for conn := range members {
		conns = append(conns, conn)
	}
	return conns, nil
}

func (s *SessionStore) RoomOf(ctx context.Context, conn domain.ConnID) (domain.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connRoom[conn], nil
}

func (s *SessionStore) Rooms(ctx context.Context) []domain.RoomID {
	return append([]domain.RoomID(nil), s.rooms...)
}

func (s *SessionStore) leaveLocked(conn domain.ConnID) domain.RoomID {
	room, exists := s.connRoom[conn]
	if !exists {
		return ""
	}
	delete(s.connRoom, conn)
	delete(s.roomMembers[room], conn)
	return room
}
