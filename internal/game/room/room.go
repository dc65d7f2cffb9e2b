package room

import (
	"context"
	"math/rand/v2"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/apperrors"
	"github.com/palemoky/draw-guess/internal/game/event"
	"github.com/palemoky/draw-guess/internal/game/word"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/types"
)

const (
	inboxSize        = 64
	defaultWordCount = 3
)

// Options 房间参数
type Options struct {
	Settings    protocol.GameSettings
	Words       word.Source
	WordChoices int // 每回合候选词数量
	Clock       clockwork.Clock
	Logger      *zap.Logger
	Recorder    types.ResultRecorder
	Rand        *rand.Rand // 为空时使用全局随机源
}

// Profile 玩家登录资料
type Profile struct {
	Name     string
	Avatar   []protocol.DrawInstruction
	AvatarBG int
}

// Player 房间中的玩家
type Player struct {
	ID         int
	Name       string
	Score      int
	HasGuessed bool
	Avatar     []protocol.DrawInstruction
	AvatarBG   int
	sink       types.Sink
}

// Info 转换为协议结构
func (p *Player) Info() protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:         p.ID,
		Name:       p.Name,
		Score:      p.Score,
		HasGuessed: p.HasGuessed,
		AvatarBG:   p.AvatarBG,
		Avatar:     p.Avatar,
	}
}

// Summary 房间概况，可在任意 goroutine 读取
type Summary struct {
	Players int
	State   GameState
	Owner   int
}

// Session 游戏房间。
// 所有状态只在 Run 所在的 goroutine 上修改；公开方法把操作投递到事件循环。
type Session struct {
	id          string
	clock       clockwork.Clock
	log         *zap.Logger
	words       word.Source
	wordChoices int
	recorder    types.ResultRecorder
	rng         *rand.Rand

	inbox chan func()
	fired chan func()
	done  chan struct{}

	summary atomic.Pointer[Summary]

	// 以下字段仅由事件循环访问
	loopCtx    context.Context
	bus        *event.Bus
	settings   protocol.GameSettings
	players    []*Player
	nextID     int
	state      GameState
	current    int
	owner      int
	round      int
	word       string
	hint       string
	timer      protocol.TimerUpdate
	image      []protocol.DrawInstruction
	running    bool
	gameCancel context.CancelFunc
}

// NewSession 创建房间，需调用 Run 启动事件循环
func NewSession(id string, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Words == nil {
		opts.Words = word.Default()
	}
	if opts.WordChoices <= 0 {
		opts.WordChoices = defaultWordCount
	}
	if opts.Settings == (protocol.GameSettings{}) {
		opts.Settings = protocol.DefaultSettings()
	}

	s := &Session{
		id:          id,
		clock:       opts.Clock,
		log:         opts.Logger.With(zap.String("room", id)),
		words:       opts.Words,
		wordChoices: opts.WordChoices,
		recorder:    opts.Recorder,
		rng:         opts.Rand,
		inbox:       make(chan func(), inboxSize),
		fired:       make(chan func(), inboxSize),
		done:        make(chan struct{}),
		bus:         event.NewBus(),
		settings:    opts.Settings,
		state:       StateNone,
		current:     -1,
		owner:       -1,
		round:       -1,
		timer:       protocol.NoTimer,
	}
	s.refreshSummary()
	return s
}

// ID 房间号
func (s *Session) ID() string { return s.id }

// Done 事件循环退出后关闭
func (s *Session) Done() <-chan struct{} { return s.done }

// Summary 房间概况
func (s *Session) Summary() Summary { return *s.summary.Load() }

// Run 运行事件循环，直到 ctx 取消
func (s *Session) Run(ctx context.Context) {
	s.loopCtx = ctx
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.inbox:
			s.exec(fn)
		case fn := <-s.fired:
			s.exec(fn)
		}
	}
}

// pump 在挂起点继续处理消息和定时器，直到 done 关闭或 ctx 取消。
// 每次取消息前先检查 ctx，保证停止后不会再处理本局的任何回调。
func (s *Session) pump(ctx context.Context, done <-chan struct{}) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.refreshSummary()
		select {
		case <-done:
			return nil
		default:
		}

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.inbox:
			s.exec(fn)
		case fn := <-s.fired:
			s.exec(fn)
		}
	}
}

func (s *Session) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("💥 房间事件处理异常，重置为空闲", zap.Any("panic", r), zap.Stack("stack"))
			s.abortGame()
		}
		s.refreshSummary()
	}()
	fn()
}

// post 投递操作，房间已关闭时返回 false
func (s *Session) post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.done:
		return false
	}
}

// call 投递操作并等待执行完成。不可在事件循环内调用。
func (s *Session) call(fn func()) bool {
	reply := make(chan struct{})
	ok := s.post(func() {
		defer close(reply)
		fn()
		s.refreshSummary()
	})
	if !ok {
		return false
	}
	select {
	case <-reply:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) refreshSummary() {
	s.summary.Store(&Summary{
		Players: len(s.players),
		State:   s.state,
		Owner:   s.owner,
	})
}

// NewClient 加入房间，返回分配的玩家 ID
func (s *Session) NewClient(profile Profile, sink types.Sink) (int, error) {
	id := -1
	if !s.call(func() { id = s.join(profile, sink) }) {
		return -1, apperrors.ErrSessionClosed
	}
	return id, nil
}

// RemoveClient 移除玩家；不在房间内时无操作
func (s *Session) RemoveClient(sink types.Sink, reason protocol.LeaveReason) {
	s.call(func() { s.leave(sink, reason) })
}

// HandleMessage 处理玩家消息（异步）
func (s *Session) HandleMessage(sink types.Sink, msg protocol.ClientMessage) {
	s.post(func() { s.dispatch(sink, msg) })
}

// StopGame 停止当前游戏并通知所有玩家
func (s *Session) StopGame() {
	s.post(s.stopGame)
}

func (s *Session) stopAndWait() {
	s.call(s.stopGame)
}

// Players 当前玩家快照
func (s *Session) Players() []protocol.PlayerInfo {
	var out []protocol.PlayerInfo
	s.call(func() { out = s.playerInfos() })
	return out
}

// Settings 当前设置
func (s *Session) Settings() protocol.GameSettings {
	var out protocol.GameSettings
	s.call(func() { out = s.settings })
	return out
}
