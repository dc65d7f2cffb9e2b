package room

import (
	"slices"

	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/game/event"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
	"github.com/palemoky/draw-guess/internal/types"
)

// join 加入房间
func (s *Session) join(profile Profile, sink types.Sink) int {
	id := s.nextID
	s.nextID++

	p := &Player{
		ID:       id,
		Name:     profile.Name,
		Avatar:   profile.Avatar,
		AvatarBG: profile.AvatarBG,
		sink:     sink,
	}
	s.players = append(s.players, p)

	if len(s.players) == 1 {
		s.owner = id
	}

	s.sendTo(p, codec.MustNewMessage(protocol.MsgLoginResponse, s.snapshot(id)))
	s.sendOthers(id, codec.MustNewMessage(protocol.MsgPlayerJoin, protocol.PlayerJoinPayload{
		ID:       id,
		Name:     p.Name,
		AvatarBG: p.AvatarBG,
		Avatar:   p.Avatar,
	}))

	s.log.Info("👤 玩家加入房间", zap.Int("player", id), zap.String("name", p.Name))
	event.Publish(s.bus, topicPlayerJoin, p)
	return id
}

// leave 离开房间
func (s *Session) leave(sink types.Sink, reason protocol.LeaveReason) {
	idx := s.indexOf(sink)
	if idx < 0 {
		return
	}
	p := s.players[idx]
	s.players = slices.Delete(s.players, idx, idx+1)

	s.broadcast(codec.MustNewMessage(protocol.MsgPlayerLeave, protocol.PlayerLeavePayload{
		Reason: reason,
		ID:     p.ID,
	}))
	s.log.Info("👋 玩家离开房间", zap.Int("player", p.ID), zap.String("reason", string(reason)))
	event.Publish(s.bus, topicPlayerLeft, p)

	if s.owner == p.ID {
		s.owner = -1
		if len(s.players) > 0 {
			s.owner = s.players[0].ID
		}
		s.broadcast(codec.MustNewMessage(protocol.MsgOwnerChange, protocol.OwnerChangePayload{
			PlayerID: s.owner,
		}))
	}

	if len(s.players) < minPlayers && s.state != StateNone {
		s.stopGame()
		return
	}

	if s.current == p.ID {
		event.Publish(s.bus, topicCurrentPlayerLeft, p)
	}
}

func (s *Session) indexOf(sink types.Sink) int {
	return slices.IndexFunc(s.players, func(p *Player) bool {
		return p.sink.GetID() == sink.GetID()
	})
}

// playerBySink 根据连接查找玩家
func (s *Session) playerBySink(sink types.Sink) *Player {
	if i := s.indexOf(sink); i >= 0 {
		return s.players[i]
	}
	return nil
}

// player 根据 ID 查找玩家
func (s *Session) player(id int) *Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// stillGuessing 除画手外尚未猜中的人数
func (s *Session) stillGuessing() int {
	n := 0
	for _, p := range s.players {
		if !p.HasGuessed && p.ID != s.current {
			n++
		}
	}
	return n
}

// guessedCount 已猜中的人数
func (s *Session) guessedCount() int {
	n := 0
	for _, p := range s.players {
		if p.HasGuessed && p.ID != s.current {
			n++
		}
	}
	return n
}

func (s *Session) playerInfos() []protocol.PlayerInfo {
	out := make([]protocol.PlayerInfo, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Info())
	}
	return out
}

// --- 消息发送 ---

func (s *Session) sendTo(p *Player, msg *protocol.Message) {
	if p != nil {
		p.sink.SendMessage(msg)
	}
}

func (s *Session) sendToID(id int, msg *protocol.Message) {
	s.sendTo(s.player(id), msg)
}

func (s *Session) broadcast(msg *protocol.Message) {
	for _, p := range s.players {
		p.sink.SendMessage(msg)
	}
}

// sendOthers 发送给除 id 外的所有玩家
func (s *Session) sendOthers(id int, msg *protocol.Message) {
	s.sendExcept(msg, id)
}

func (s *Session) sendExcept(msg *protocol.Message, ids ...int) {
	for _, p := range s.players {
		if !slices.Contains(ids, p.ID) {
			p.sink.SendMessage(msg)
		}
	}
}

// sendGuessedGroup 发送给已猜中的玩家和画手
func (s *Session) sendGuessedGroup(msg *protocol.Message) {
	for _, p := range s.players {
		if p.HasGuessed || p.ID == s.current {
			p.sink.SendMessage(msg)
		}
	}
}

func (s *Session) sendError(sink types.Sink, code int, detail string) {
	if detail == "" {
		sink.SendMessage(codec.NewErrorMessage(code))
		return
	}
	sink.SendMessage(codec.NewErrorMessageWithDetail(code, detail))
}
