package room

import (
	"time"

	"github.com/palemoky/draw-guess/internal/protocol"
)

// GameState 房间状态
type GameState = protocol.GameState

const (
	StateNone         = protocol.GameStateNone
	StateNewRound     = protocol.GameStateNewRound
	StateChoosingWord = protocol.GameStateChoosingWord
	StateInTurn       = protocol.GameStateInTurn
	StateEndTurn      = protocol.GameStateEndTurn
	StateEndGame      = protocol.GameStateEndGame
)

// 各阶段的固定展示时长
const (
	preRollDelay = 2 * time.Second  // 每轮开始前
	endTurnHold  = 5 * time.Second  // 回合结算展示
	endGameHold  = 10 * time.Second // 终局排行展示
)

// minPlayers 开始或继续游戏所需的最少人数
const minPlayers = 2
