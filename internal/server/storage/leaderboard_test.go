package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/types"
)

func newTestLeaderboard(t *testing.T) (*Leaderboard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewLeaderboard(client), mr
}

func game(players ...types.PlayerResult) types.GameResult {
	return types.GameResult{
		RoomID:     "r1",
		Players:    players,
		Rounds:     3,
		FinishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLeaderboard_RecordGame_NewPlayers(t *testing.T) {
	t.Parallel()
	lb, _ := newTestLeaderboard(t)
	ctx := context.Background()

	err := lb.RecordGame(ctx, game(
		types.PlayerResult{PlayerID: 0, Name: "Alice", Points: 405},
		types.PlayerResult{PlayerID: 1, Name: "Bob", Points: 300},
	))
	require.NoError(t, err)

	alice, err := lb.GetPlayerStats(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, PlayerStats{Name: "Alice", TotalPoints: 405, GamesPlayed: 1, Wins: 1, BestScore: 405}, *alice)

	bob, err := lb.GetPlayerStats(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bob.Wins)
	assert.Equal(t, int64(300), bob.TotalPoints)
}

func TestLeaderboard_RecordGame_Accumulates(t *testing.T) {
	t.Parallel()
	lb, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGame(ctx, game(
		types.PlayerResult{PlayerID: 0, Name: "alice", Points: 500},
		types.PlayerResult{PlayerID: 1, Name: "bob", Points: 100},
	)))
	require.NoError(t, lb.RecordGame(ctx, game(
		types.PlayerResult{PlayerID: 4, Name: "ALICE", Points: 200},
		types.PlayerResult{PlayerID: 5, Name: "bob", Points: 250},
	)))

	alice, err := lb.GetPlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(700), alice.TotalPoints)
	assert.Equal(t, int64(2), alice.GamesPlayed)
	assert.Equal(t, int64(1), alice.Wins)
	assert.Equal(t, int64(500), alice.BestScore, "best score keeps the maximum")
	assert.Equal(t, "ALICE", alice.Name, "display name follows the latest game")

	bob, err := lb.GetPlayerStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bob.Wins)
	assert.Equal(t, int64(250), bob.BestScore)
}

func TestLeaderboard_NoWinnerWithoutPoints(t *testing.T) {
	t.Parallel()
	lb, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGame(ctx, game(
		types.PlayerResult{PlayerID: 0, Name: "a", Points: 0},
		types.PlayerResult{PlayerID: 1, Name: "b", Points: 0},
	)))

	a, err := lb.GetPlayerStats(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, a.Wins)
	assert.Equal(t, int64(1), a.GamesPlayed)
}

func TestLeaderboard_Top(t *testing.T) {
	t.Parallel()
	lb, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGame(ctx, game(
		types.PlayerResult{PlayerID: 0, Name: "carol", Points: 100},
		types.PlayerResult{PlayerID: 1, Name: "alice", Points: 300},
		types.PlayerResult{PlayerID: 2, Name: "bob", Points: 200},
	)))

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []protocol.LeaderboardEntry{
		{Rank: 1, Name: "alice", TotalPoints: 300, GamesPlayed: 1, Wins: 1, BestScore: 300},
		{Rank: 2, Name: "bob", TotalPoints: 200, GamesPlayed: 1, Wins: 0, BestScore: 200},
	}, top)

	all, err := lb.Top(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rank, err := lb.GetPlayerRank(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)

	rank, err = lb.GetPlayerRank(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, rank)
}

func TestLeaderboard_UnknownPlayer(t *testing.T) {
	t.Parallel()
	lb, _ := newTestLeaderboard(t)

	stats, err := lb.GetPlayerStats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestLeaderboard_RedisDown(t *testing.T) {
	t.Parallel()
	lb, mr := newTestLeaderboard(t)
	mr.Close()

	err := lb.RecordGame(context.Background(), game(types.PlayerResult{Name: "a", Points: 1}))
	assert.Error(t, err)
}
