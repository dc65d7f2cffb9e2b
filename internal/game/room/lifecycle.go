package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
)

const recordTimeout = 5 * time.Second

var errNoWords = errors.New("word source returned no candidates")

// startGame 房主请求开始游戏
func (s *Session) startGame(requester *Player) {
	if requester.ID != s.owner {
		s.sendError(requester.sink, protocol.ErrCodeNotPermitted, "")
		return
	}
	if s.running {
		return
	}
	if len(s.players) < minPlayers {
		s.sendError(requester.sink, protocol.ErrCodeNotEnoughPlayers, "")
		return
	}
	s.runGame()
}

// runGame 运行一整局游戏，返回时房间回到空闲状态
func (s *Session) runGame() {
	ctx, cancel := context.WithCancel(s.loopCtx)
	s.gameCancel = cancel
	s.running = true

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("💥 游戏流程异常，已重置", zap.Any("panic", r), zap.Stack("stack"))
		}
		cancel()
		s.gameCancel = nil
		s.running = false
		s.state = StateNone
		s.current = -1
		s.timer = protocol.NoTimer
	}()

	s.log.Info("🎮 游戏开始", zap.Int("players", len(s.players)), zap.Int("rounds", s.settings.RoundsPerGame))

	err := s.playGame(ctx)
	switch {
	case err == nil:
		s.log.Info("🏁 游戏结束")
	case errors.Is(err, context.Canceled):
		s.log.Info("⏹️ 游戏已停止")
	default:
		s.log.Error("游戏中断", zap.Error(err))
		s.stopGame()
	}
}

func (s *Session) playGame(ctx context.Context) error {
	for _, p := range s.players {
		p.Score = 0
		p.HasGuessed = false
	}
	s.current = -1

	for s.round = 1; s.round <= s.settings.RoundsPerGame; s.round++ {
		s.state = StateNewRound
		s.timerFor(preRollDelay)
		s.broadcast(codec.MustNewMessage(protocol.MsgNewRound, protocol.NewRoundPayload{
			Round: s.round,
			Timer: s.timer,
		}))
		if err := s.sleep(ctx, preRollDelay); err != nil {
			return err
		}

		if len(s.players) == 0 {
			break
		}
		hi, lo := s.players[len(s.players)-1].ID, s.players[0].ID
		for id := hi; id >= lo; id-- {
			// 本轮中途离开的玩家直接跳过
			if s.player(id) == nil {
				continue
			}
			s.current = id
			if err := s.playTurn(ctx); err != nil {
				return err
			}
		}
	}

	s.state = StateEndGame
	s.current = -1
	s.timerFor(endGameHold)
	s.broadcast(codec.MustNewMessage(protocol.MsgGameEnd, protocol.GameEndPayload{
		Scores: s.finalScores(),
	}))
	s.recordResult()

	if err := s.sleep(ctx, endGameHold); err != nil {
		return err
	}
	s.state = StateNone
	return nil
}

// stopGame 停止游戏并广播 STOP；空闲时只广播
func (s *Session) stopGame() {
	s.state = StateNone
	if s.gameCancel != nil {
		s.gameCancel()
	}
	s.broadcast(codec.MustNewMessage(protocol.MsgStop, protocol.StopPayload{}))
}

// abortGame 异常后的恢复：取消本局但不再发送消息
func (s *Session) abortGame() {
	s.state = StateNone
	if s.gameCancel != nil {
		s.gameCancel()
	}
}

// recordResult 异步记录终局结果
func (s *Session) recordResult() {
	if s.recorder == nil || len(s.players) == 0 {
		return
	}
	result := s.gameResult()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.RecordGame(ctx, result); err != nil {
			s.log.Warn("记录游戏结果失败", zap.Error(err))
		}
	}()
}
