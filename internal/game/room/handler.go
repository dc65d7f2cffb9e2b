package room

import (
	"errors"

	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/apperrors"
	"github.com/palemoky/draw-guess/internal/game/event"
	"github.com/palemoky/draw-guess/internal/game/rule"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
	"github.com/palemoky/draw-guess/internal/types"
)

// dispatch 分发玩家消息，发送者不在房间内时忽略
func (s *Session) dispatch(sink types.Sink, msg protocol.ClientMessage) {
	p := s.playerBySink(sink)
	if p == nil {
		return
	}

	switch m := msg.(type) {
	case *protocol.WordChosenPayload:
		event.Publish(s.bus, topicWordChosen, wordChoice{player: p, index: m.WordIndex})
	case *protocol.SendChatPayload:
		s.handleChat(p, m.Content)
	case *protocol.StartGamePayload:
		s.startGame(p)
	case *protocol.DrawPayload:
		s.handleDraw(p, m.Instructions)
	case *protocol.StopPayload:
		if p.ID != s.owner {
			s.sendError(sink, protocol.ErrCodeNotPermitted, "")
			return
		}
		s.stopGame()
	case *protocol.SetOptionsPayload:
		s.handleSetOptions(p, m.Settings)
	case *protocol.LoginRequestPayload, *protocol.OKPayload:
		// 已登录，无需处理
	default:
		s.log.Warn("⚠️ 未处理的消息类型", zap.String("type", string(msg.MessageType())))
		s.sendError(sink, protocol.ErrCodeInvalidMessage, string(msg.MessageType()))
	}
}

// handleChat 聊天与猜词
func (s *Session) handleChat(p *Player, content string) {
	chat := codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{PlayerID: p.ID, Content: content})

	if s.state != StateInTurn {
		s.broadcast(chat)
		return
	}

	// 已猜中的玩家和画手只能在小圈子里聊天，避免泄题
	if p.HasGuessed || p.ID == s.current {
		s.sendGuessedGroup(chat)
		return
	}

	guess := rule.Normalize(content)
	switch {
	case rule.IsExact(s.word, guess):
		p.HasGuessed = true
		s.sendOthers(p.ID, codec.MustNewMessage(protocol.MsgPlayerGuessed, protocol.PlayerGuessedPayload{
			PlayerID: p.ID,
		}))
		s.sendTo(p, codec.MustNewMessage(protocol.MsgPlayerGuessed, protocol.PlayerGuessedPayload{
			PlayerID: p.ID,
			Word:     s.word,
		}))
		event.Publish(s.bus, topicPlayerGuessed, p)

	case rule.IsClose(rule.Normalize(s.word), guess):
		s.sendExcept(chat, p.ID, s.current)
		s.sendTo(p, codec.MustNewMessage(protocol.MsgAlmost, protocol.AlmostPayload{Word: guess}))

	default:
		s.broadcast(chat)
	}
}

// handleDraw 画手绘画，CLEAR 清空画布历史
func (s *Session) handleDraw(p *Player, instructions []protocol.DrawInstruction) {
	if p.ID != s.current || s.state != StateInTurn {
		return
	}
	for _, in := range instructions {
		if in.IsClear() {
			s.image = s.image[:0]
			continue
		}
		s.image = append(s.image, in)
	}
	s.sendOthers(p.ID, codec.MustNewMessage(protocol.MsgDraw, protocol.DrawPayload{Instructions: instructions}))
}

// handleSetOptions 房主在空闲时整体替换设置
func (s *Session) handleSetOptions(p *Player, settings protocol.GameSettings) {
	if p.ID != s.owner || s.state != StateNone || s.running {
		s.sendError(p.sink, protocol.ErrCodeNotPermitted, "")
		return
	}
	if err := ValidateSettings(settings); err != nil {
		var detail string
		var ge *apperrors.GameError
		if errors.As(err, &ge) {
			detail = ge.Detail
		}
		s.sendError(p.sink, apperrors.CodeOf(err), detail)
		return
	}

	s.settings = settings
	s.sendOthers(p.ID, codec.MustNewMessage(protocol.MsgSetOptions, protocol.SetOptionsPayload{Settings: settings}))
	s.sendTo(p, codec.MustNewMessage(protocol.MsgOK, protocol.OKPayload{ResponseTo: protocol.MsgSetOptions}))
	s.log.Info("⚙️ 房间设置已更新", zap.Any("settings", settings))
}
