package room

import (
	"slices"

	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/types"
)

// snapshot 登录响应中的房间快照
func (s *Session) snapshot(me int) protocol.LoginResponsePayload {
	hint := s.hint
	if s.state == StateNone {
		hint = ""
	}
	return protocol.LoginResponsePayload{
		Settings:         s.settings,
		RoomID:           s.id,
		Players:          s.playerInfos(),
		Me:               me,
		Owner:            s.owner,
		State:            s.state,
		CurrentPlayer:    s.current,
		Round:            s.round,
		Timer:            s.timer,
		WordHint:         hint,
		DrawInstructions: slices.Clone(s.image),
	}
}

// finalScores 终局排行（按加入顺序）
func (s *Session) finalScores() []protocol.ScoreEntry {
	out := make([]protocol.ScoreEntry, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, protocol.ScoreEntry{PlayerID: p.ID, Points: p.Score})
	}
	return out
}

// gameResult 供排行榜等记录器使用
func (s *Session) gameResult() types.GameResult {
	res := types.GameResult{
		RoomID:     s.id,
		Rounds:     s.settings.RoundsPerGame,
		FinishedAt: s.clock.Now(),
		Players:    make([]types.PlayerResult, 0, len(s.players)),
	}
	for _, p := range s.players {
		res.Players = append(res.Players, types.PlayerResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Points:   p.Score,
		})
	}
	return res
}

// scoreBoard 回合得分，保持写入顺序
type scoreBoard struct {
	order  []int
	points map[int]int
}

func newScoreBoard() *scoreBoard {
	return &scoreBoard{points: make(map[int]int)}
}

func (b *scoreBoard) set(id, points int) {
	if _, ok := b.points[id]; !ok {
		b.order = append(b.order, id)
	}
	b.points[id] = points
}

func (b *scoreBoard) remove(id int) {
	if _, ok := b.points[id]; !ok {
		return
	}
	delete(b.points, id)
	b.order = slices.DeleteFunc(b.order, func(v int) bool { return v == id })
}

func (b *scoreBoard) get(id int) (int, bool) {
	v, ok := b.points[id]
	return v, ok
}

func (b *scoreBoard) entries() []protocol.ScoreEntry {
	out := make([]protocol.ScoreEntry, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, protocol.ScoreEntry{PlayerID: id, Points: b.points[id]})
	}
	return out
}
