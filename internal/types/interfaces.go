package types

import (
	"context"
	"time"

	"github.com/palemoky/draw-guess/internal/protocol"
)

// Sink 房间向玩家发送消息的出口。
// SendMessage 不得阻塞：房间事件循环会直接调用它。
type Sink interface {
	GetID() string
	SendMessage(msg *protocol.Message)
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	Sink
	GetRoom() string
	SetRoom(code string)
	Close()
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(clientID string) bool
	RemoveClient(clientID string)
}

// PlayerResult 单个玩家的终局成绩
type PlayerResult struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}

// GameResult 一局游戏的结果
type GameResult struct {
	RoomID     string         `json:"room_id"`
	Players    []PlayerResult `json:"players"`
	Rounds     int            `json:"rounds"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Winners 最高分的玩家（可能并列）
func (r GameResult) Winners() []PlayerResult {
	var out []PlayerResult
	best := -1
	for _, p := range r.Players {
		switch {
		case p.Points > best:
			best = p.Points
			out = []PlayerResult{p}
		case p.Points == best:
			out = append(out, p)
		}
	}
	return out
}

// ResultRecorder 游戏结果记录器（排行榜、事件总线等）
type ResultRecorder interface {
	RecordGame(ctx context.Context, result GameResult) error
}
