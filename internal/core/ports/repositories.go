package ports

import (
	"context"

	"chatrelay/internal/core/domain"
)

// UserRegistry maps live connections to their registered profiles.
type UserRegistry interface {
	// Register stores the profile keyed by its connection id, overwriting any
	// prior profile for that connection, and initializes an empty block set.
	Register(ctx context.Context, profile *domain.UserProfile) error

	// Lookup returns a copy of the profile for the connection, or
	// domain.ErrProfileNotFound.
	Lookup(ctx context.Context, conn domain.ConnID) (*domain.UserProfile, error)

	// UpdateColors overwrites the profile's colors. Returns
	// domain.ErrProfileNotFound if the connection never registered.
	UpdateColors(ctx context.Context, conn domain.ConnID, textColor, bgColor string) error

	// Remove deletes the profile, block set and room membership for the
	// connection in one step. It returns the room the connection vacated, or
	// an empty id. Removing an unknown connection is a no-op.
	Remove(ctx context.Context, conn domain.ConnID) (domain.RoomID, error)
}

// BlockStore holds each connection's set of blocked user ids. Blocking is
// directional and receiver-local: it only affects what the owner receives.
type BlockStore interface {
	// Block adds target to the connection's block set. Idempotent; succeeds
	// even if target does not correspond to any live user.
	Block(ctx context.Context, conn domain.ConnID, target domain.UserID) error

	// Unblock removes target from the connection's block set. Idempotent.
	Unblock(ctx context.Context, conn domain.ConnID, target domain.UserID) error

	// ListBlocked returns the connection's blocked user ids in unspecified order.
	ListBlocked(ctx context.Context, conn domain.ConnID) ([]domain.UserID, error)

	// IsBlocked reports whether the connection has blocked the given sender.
	IsBlocked(ctx context.Context, conn domain.ConnID, sender domain.UserID) (bool, error)
}

// RoomTable tracks which room each connection occupies. A connection belongs
// to at most one room at a time.
type RoomTable interface {
	// Join moves the connection into the room as a single transition: it is
	// removed from its previous room (if any) and added to the new one with no
	// intermediate state observable. Returns the previous room, or an empty id.
	// Returns domain.ErrRoomNotFound if the room is not configured.
	Join(ctx context.Context, conn domain.ConnID, room domain.RoomID) (domain.RoomID, error)

	// Leave removes the connection from its current room and returns the room
	// it vacated, or an empty id if it was in none.
	Leave(ctx context.Context, conn domain.ConnID) (domain.RoomID, error)

	// MembersOf returns the connections currently in the room, or
	// domain.ErrRoomNotFound for an unconfigured room.
	MembersOf(ctx context.Context, room domain.RoomID) ([]domain.ConnID, error)

	// RoomOf returns the room the connection occupies, or an empty id.
	RoomOf(ctx context.Context, conn domain.ConnID) (domain.RoomID, error)

	// Rooms returns the configured room set in configuration order.
	Rooms(ctx context.Context) []domain.RoomID
}
