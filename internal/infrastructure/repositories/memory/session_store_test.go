package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *memory.SessionStore {
	return memory.NewSessionStore([]domain.RoomID{"room1", "room2", "room3", "room4"})
}

func profile(conn domain.ConnID, user domain.UserID) *domain.UserProfile {
	return &domain.UserProfile{
		ID:     user,
		Name:   "tester",
		Icon:   "🙂",
		ConnID: conn,
	}
}

func TestSessionStore_RegisterAndLookup(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	t.Run("lookup of unknown connection fails", func(t *testing.T) {
		_, err := store.Lookup(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	t.Run("register stores a copy", func(t *testing.T) {
		p := profile("c1", "u1")
		require.NoError(t, store.Register(ctx, p))

		p.Name = "mutated after register"

		got, err := store.Lookup(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "tester", got.Name)
		assert.Equal(t, domain.UserID("u1"), got.ID)
	})

	t.Run("re-register overwrites the previous profile", func(t *testing.T) {
		p := profile("c1", "u1-changed")
		p.Name = "renamed"
		require.NoError(t, store.Register(ctx, p))

		got, err := store.Lookup(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.UserID("u1-changed"), got.ID)
		assert.Equal(t, "renamed", got.Name)
	})

	t.Run("update colors", func(t *testing.T) {
		require.NoError(t, store.UpdateColors(ctx, "c1", "#111111", "#eeeeee"))

		got, err := store.Lookup(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "#111111", got.TextColor)
		assert.Equal(t, "#eeeeee", got.BgColor)
	})

	t.Run("update colors for unregistered connection", func(t *testing.T) {
		err := store.UpdateColors(ctx, "ghost", "#000000", "#ffffff")
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}

func TestSessionStore_BlockSet(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	require.NoError(t, store.Register(ctx, profile("c1", "u1")))

	t.Run("empty at registration", func(t *testing.T) {
		blocked, err := store.ListBlocked(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, blocked)
	})

	t.Run("block is idempotent and works for unknown targets", func(t *testing.T) {
		require.NoError(t, store.Block(ctx, "c1", "stranger"))
		require.NoError(t, store.Block(ctx, "c1", "stranger"))

		blocked, err := store.ListBlocked(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, []domain.UserID{"stranger"}, blocked)

		isBlocked, err := store.IsBlocked(ctx, "c1", "stranger")
		require.NoError(t, err)
		assert.True(t, isBlocked)
	})

	t.Run("unblock is idempotent", func(t *testing.T) {
		require.NoError(t, store.Unblock(ctx, "c1", "stranger"))
		require.NoError(t, store.Unblock(ctx, "c1", "stranger"))

		isBlocked, err := store.IsBlocked(ctx, "c1", "stranger")
		require.NoError(t, err)
		assert.False(t, isBlocked)
	})

	t.Run("re-registration resets the block set", func(t *testing.T) {
		require.NoError(t, store.Block(ctx, "c1", "u9"))
		require.NoError(t, store.Register(ctx, profile("c1", "u1")))

		blocked, err := store.ListBlocked(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, blocked)
	})

	t.Run("block sets are per connection", func(t *testing.T) {
		require.NoError(t, store.Register(ctx, profile("c2", "u2")))
		require.NoError(t, store.Block(ctx, "c1", "u2"))

		isBlocked, err := store.IsBlocked(ctx, "c2", "u2")
		require.NoError(t, err)
		assert.False(t, isBlocked)
	})
}

func TestSessionStore_RoomMembership(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	t.Run("join unknown room fails", func(t *testing.T) {
		_, err := store.Join(ctx, "c1", "room99")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)

		room, err := store.RoomOf(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID(""), room)
	})

	t.Run("join adds the connection", func(t *testing.T) {
		prev, err := store.Join(ctx, "c1", "room1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID(""), prev)

		members, err := store.MembersOf(ctx, "room1")
		require.NoError(t, err)
		assert.Contains(t, members, domain.ConnID("c1"))

		room, err := store.RoomOf(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID("room1"), room)
	})

	t.Run("switching rooms is a single transition", func(t *testing.T) {
		prev, err := store.Join(ctx, "c1", "room2")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID("room1"), prev)

		oldMembers, err := store.MembersOf(ctx, "room1")
		require.NoError(t, err)
		assert.NotContains(t, oldMembers, domain.ConnID("c1"))

		newMembers, err := store.MembersOf(ctx, "room2")
		require.NoError(t, err)
		assert.Contains(t, newMembers, domain.ConnID("c1"))
	})

	t.Run("re-joining the same room keeps membership unchanged", func(t *testing.T) {
		prev, err := store.Join(ctx, "c1", "room2")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID("room2"), prev)

		members, err := store.MembersOf(ctx, "room2")
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("leave vacates the room", func(t *testing.T) {
		room, err := store.Leave(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID("room2"), room)

		room, err = store.Leave(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomID(""), room)
	})

	t.Run("members of unknown room fails", func(t *testing.T) {
		_, err := store.MembersOf(ctx, "room99")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("configured room set is stable", func(t *testing.T) {
		rooms := store.Rooms(ctx)
		assert.Equal(t, []domain.RoomID{"room1", "room2", "room3", "room4"}, rooms)
	})
}

func TestSessionStore_RemoveIsAtomicAndIdempotent(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	require.NoError(t, store.Register(ctx, profile("c1", "u1")))
	require.NoError(t, store.Block(ctx, "c1", "u2"))
	_, err := store.Join(ctx, "c1", "room1")
	require.NoError(t, err)

	room, err := store.Remove(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID("room1"), room)

	_, err = store.Lookup(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	blocked, err := store.ListBlocked(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, blocked)

	members, err := store.MembersOf(ctx, "room1")
	require.NoError(t, err)
	assert.NotContains(t, members, domain.ConnID("c1"))

	// Duplicate teardown notification is harmless.
	room, err = store.Remove(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID(""), room)
}

func TestSessionStore_ConcurrentJoins(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := domain.ConnID(fmt.Sprintf("conn-%02d", i))
			store.Register(ctx, profile(conn, domain.UserID(conn)))
			store.Join(ctx, conn, "room1")
			store.Join(ctx, conn, "room2")
		}(i)
	}
	wg.Wait()

	room1, err := store.MembersOf(ctx, "room1")
	require.NoError(t, err)
	room2, err := store.MembersOf(ctx, "room2")
	require.NoError(t, err)

	// Every connection ends up in exactly one room.
	assert.Empty(t, room1)
	assert.Len(t, room2, n)
}
