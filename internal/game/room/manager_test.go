package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/palemoky/draw-guess/internal/apperrors"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/testutil"
)

func newTestManager(t *testing.T, maxPlayers int) *RoomManager {
	t.Helper()
	rm := NewRoomManager(context.Background(), ManagerOptions{
		Session:    Options{Settings: testSettings(), Logger: zaptest.NewLogger(t)},
		MaxPlayers: maxPlayers,
	})
	t.Cleanup(rm.Shutdown)
	return rm
}

func TestRoomManager_PrivateRoomGetOrCreate(t *testing.T) {
	t.Parallel()
	rm := newTestManager(t, 4)

	a := testutil.NewSimpleClient("a")
	b := testutil.NewSimpleClient("b")

	s1, id1, err := rm.Join("secret", Profile{Name: "a"}, a)
	require.NoError(t, err)
	s2, id2, err := rm.Join("secret", Profile{Name: "b"}, b)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, "secret", s1.ID())
	assert.Equal(t, 0, id1)
	assert.Equal(t, 1, id2)
	assert.Equal(t, 1, rm.Count())
	assert.Same(t, s1, rm.GetRoom("secret"))
	assert.Empty(t, rm.GetRoomList(), "private rooms are not listed")
}

func TestRoomManager_PublicMatchmaking(t *testing.T) {
	t.Parallel()
	rm := newTestManager(t, 2)

	s1, _, err := rm.Join("", Profile{Name: "a"}, testutil.NewSimpleClient("a"))
	require.NoError(t, err)
	s2, _, err := rm.Join("", Profile{Name: "b"}, testutil.NewSimpleClient("b"))
	require.NoError(t, err)
	s3, _, err := rm.Join("", Profile{Name: "c"}, testutil.NewSimpleClient("c"))
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.NotSame(t, s1, s3, "a full public room is skipped")
	assert.Len(t, s1.ID(), roomIDLength)

	list := rm.GetRoomList()
	require.Len(t, list, 2)
	counts := map[string]int{list[0].RoomID: list[0].PlayerCount, list[1].RoomID: list[1].PlayerCount}
	assert.Equal(t, 2, counts[s1.ID()])
	assert.Equal(t, 1, counts[s3.ID()])
	assert.Equal(t, 2, list[0].MaxPlayers)
	assert.Less(t, list[0].RoomID, list[1].RoomID)
}

func TestRoomManager_RoomFull(t *testing.T) {
	t.Parallel()
	rm := newTestManager(t, 1)

	_, _, err := rm.Join("r1", Profile{Name: "a"}, testutil.NewSimpleClient("a"))
	require.NoError(t, err)
	_, _, err = rm.Join("r1", Profile{Name: "b"}, testutil.NewSimpleClient("b"))
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
}

func TestRoomManager_EmptyRoomIsCollected(t *testing.T) {
	t.Parallel()
	rm := newTestManager(t, 4)

	a := testutil.NewSimpleClient("a")
	b := testutil.NewSimpleClient("b")
	s, _, err := rm.Join("", Profile{Name: "a"}, a)
	require.NoError(t, err)
	_, _, err = rm.Join(s.ID(), Profile{Name: "b"}, b)
	require.NoError(t, err)

	rm.Leave(s, a, protocol.LeaveReasonLeft)
	assert.Equal(t, 1, rm.Count())
	assert.Equal(t, 1, lastPayload[protocol.OwnerChangePayload](t, b, protocol.MsgOwnerChange).PlayerID)

	rm.Leave(s, b, protocol.LeaveReasonLeft)
	assert.Zero(t, rm.Count())
	assert.Nil(t, rm.GetRoom(s.ID()))
	assert.Empty(t, rm.GetRoomList())

	// Leave returns only after the room's loop has exited
	select {
	case <-s.Done():
	default:
		t.Fatal("collected room still has a running loop")
	}

	// the id is free again and gets a fresh room
	again, _, err := rm.Join(s.ID(), Profile{Name: "c"}, testutil.NewSimpleClient("c"))
	require.NoError(t, err)
	assert.NotSame(t, s, again)
}

func TestRoomManager_SlowRoomDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	rm := newTestManager(t, 4)

	slow, _, err := rm.Join("slow", Profile{Name: "a"}, testutil.NewSimpleClient("a"))
	require.NoError(t, err)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	require.True(t, slow.post(func() { <-release }))

	// stuck behind the blocked loop
	go func() { _, _, _ = rm.Join("slow", Profile{Name: "b"}, testutil.NewSimpleClient("b")) }()

	joined := make(chan error, 1)
	go func() {
		_, _, err := rm.Join("fast", Profile{Name: "c"}, testutil.NewSimpleClient("c"))
		joined <- err
	}()

	select {
	case err := <-joined:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("join into another room waited on the blocked room")
	}
	assert.Equal(t, 2, rm.Count())
	assert.Empty(t, rm.GetRoomList())
}

func TestRoomManager_PendingJoinKeepsRoomAlive(t *testing.T) {
	t.Parallel()
	rm := newTestManager(t, 4)

	a := testutil.NewSimpleClient("a")
	s, _, err := rm.Join("room", Profile{Name: "a"}, a)
	require.NoError(t, err)

	release := make(chan struct{})
	require.True(t, s.post(func() { <-release }))

	b := testutil.NewSimpleClient("b")
	joined := make(chan error, 1)
	go func() {
		_, _, err := rm.Join("room", Profile{Name: "b"}, b)
		joined <- err
	}()
	require.Eventually(t, func() bool {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		return rm.rooms["room"].joining == 1
	}, waitTimeout, time.Millisecond)

	left := make(chan struct{})
	go func() {
		defer close(left)
		rm.Leave(s, a, protocol.LeaveReasonLeft)
	}()
	close(release)

	require.NoError(t, <-joined)
	<-left

	assert.Same(t, s, rm.GetRoom("room"))
	players := s.Players()
	require.Len(t, players, 1)
	assert.Equal(t, "b", players[0].Name)
	select {
	case <-s.Done():
		t.Fatal("room collected while a join was in flight")
	default:
	}
}

func TestRoomManager_ActiveGamesAndShutdown(t *testing.T) {
	t.Parallel()
	rm := NewRoomManager(context.Background(), ManagerOptions{
		Session: Options{Settings: testSettings(), Logger: zaptest.NewLogger(t)},
	})

	a := testutil.NewSimpleClient("a")
	b := testutil.NewSimpleClient("b")
	s, _, err := rm.Join("game", Profile{Name: "a"}, a)
	require.NoError(t, err)
	_, _, err = rm.Join("game", Profile{Name: "b"}, b)
	require.NoError(t, err)
	_, _, err = rm.Join("idle", Profile{Name: "c"}, testutil.NewSimpleClient("c"))
	require.NoError(t, err)

	s.HandleMessage(a, &protocol.StartGamePayload{})
	require.Eventually(t, func() bool { return rm.GetActiveGamesCount() == 1 }, waitTimeout, 5*time.Millisecond)

	rm.Shutdown()

	assert.Equal(t, 1, b.Count(protocol.MsgStop))
	select {
	case <-s.Done():
	default:
		t.Fatal("session loop still running after shutdown")
	}
	_, _, err = rm.Join("game", Profile{Name: "late"}, testutil.NewSimpleClient("late"))
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)
}
