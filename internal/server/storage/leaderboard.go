package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/types"
)

const (
	// Redis key
	pointsKey      = "leaderboard:points" // 累计得分
	bestScoreKey   = "leaderboard:best"   // 单局最高分
	playerStatsKey = "player:stats:"

	fieldName        = "name"
	fieldGamesPlayed = "games_played"
	fieldWins        = "wins"

	defaultTopLimit = 10
	maxTopLimit     = 100
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	Name        string `json:"name"`
	TotalPoints int64  `json:"total_points"`
	GamesPlayed int64  `json:"games_played"`
	Wins        int64  `json:"wins"`
	BestScore   int64  `json:"best_score"`
}

// Leaderboard Redis 排行榜。玩家没有持久身份，按昵称（忽略大小写）累计。
type Leaderboard struct {
	redis *redis.Client
}

// NewLeaderboard 创建排行榜
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

func playerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RecordGame 记录一局游戏的最终得分
func (lb *Leaderboard) RecordGame(ctx context.Context, result types.GameResult) error {
	winners := make(map[int]bool)
	for _, w := range result.Winners() {
		if w.Points > 0 {
			winners[w.PlayerID] = true
		}
	}

	_, err := lb.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range result.Players {
			member := playerKey(p.Name)
			if member == "" {
				continue
			}
			statsKey := playerStatsKey + member

			pipe.ZIncrBy(ctx, pointsKey, float64(p.Points), member)
			pipe.ZAddGT(ctx, bestScoreKey, redis.Z{Score: float64(p.Points), Member: member})
			pipe.HSet(ctx, statsKey, fieldName, p.Name)
			pipe.HIncrBy(ctx, statsKey, fieldGamesPlayed, 1)
			if winners[p.PlayerID] {
				pipe.HIncrBy(ctx, statsKey, fieldWins, 1)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("记录排行榜失败: %w", err)
	}
	return nil
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	member := playerKey(name)
	fields, err := lb.redis.HGetAll(ctx, playerStatsKey+member).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	stats := &PlayerStats{
		Name:        fields[fieldName],
		GamesPlayed: parseInt(fields[fieldGamesPlayed]),
		Wins:        parseInt(fields[fieldWins]),
	}
	if stats.TotalPoints, err = lb.score(ctx, pointsKey, member); err != nil {
		return nil, err
	}
	if stats.BestScore, err = lb.score(ctx, bestScoreKey, member); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetPlayerRank 获取玩家排名（从 1 开始），未上榜返回 0
func (lb *Leaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, pointsKey, playerKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rank + 1, nil
}

// Top 按累计得分从高到低返回前 limit 名
func (lb *Leaderboard) Top(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	limit = min(limit, maxTopLimit)

	results, err := lb.redis.ZRevRangeWithScores(ctx, pointsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, result := range results {
		member, ok := result.Member.(string)
		if !ok {
			continue
		}

		stats, err := lb.GetPlayerStats(ctx, member)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			continue
		}

		entries = append(entries, protocol.LeaderboardEntry{
			Rank:        i + 1,
			Name:        stats.Name,
			TotalPoints: int64(result.Score),
			GamesPlayed: stats.GamesPlayed,
			Wins:        stats.Wins,
			BestScore:   stats.BestScore,
		})
	}
	return entries, nil
}

func (lb *Leaderboard) score(ctx context.Context, key, member string) (int64, error) {
	v, err := lb.redis.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
