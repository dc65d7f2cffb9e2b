package room

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/apperrors"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/types"
)

const (
	roomIDLength      = 8
	defaultMaxPlayers = 12
)

// ManagerOptions 房间管理器参数
type ManagerOptions struct {
	Session    Options // 新房间的默认参数
	MaxPlayers int
}

// RoomManager 房间目录：按房间号查找或创建房间，房间空了即回收。
// mu 只保护目录本身，对房间事件循环的调用都在锁外进行。
type RoomManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   ManagerOptions
	log    *zap.Logger

	mu     sync.Mutex
	rooms  map[string]*roomEntry
	public map[string]bool
	wg     sync.WaitGroup
}

// roomEntry 目录项
type roomEntry struct {
	s       *Session
	cancel  context.CancelFunc
	joining int // 已占位但尚未完成的加入请求
}

// NewRoomManager 创建房间管理器
func NewRoomManager(ctx context.Context, opts ManagerOptions) *RoomManager {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = defaultMaxPlayers
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &RoomManager{
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
		log:    opts.Session.Logger,
		rooms:  make(map[string]*roomEntry),
		public: make(map[string]bool),
	}
}

// Join 加入房间。roomID 为空时匹配一个空闲的公共房间，没有则新建。
func (rm *RoomManager) Join(roomID string, profile Profile, sink types.Sink) (*Session, int, error) {
	e, err := rm.reserve(roomID)
	if err != nil {
		return nil, -1, err
	}

	id, err := e.s.NewClient(profile, sink)

	rm.mu.Lock()
	e.joining--
	collected := rm.collectLocked(e)
	rm.mu.Unlock()
	if collected {
		rm.stop(e)
	}

	if err != nil {
		return nil, -1, err
	}
	return e.s, id, nil
}

// reserve 查找或创建房间并占一个位置，占位期间房间不会被回收
func (rm *RoomManager) reserve(roomID string) (*roomEntry, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var e *roomEntry
	if roomID == "" {
		e = rm.findPublicLocked()
		if e == nil {
			e = rm.createLocked(rm.generateRoomID(), true)
		}
	} else {
		e = rm.rooms[roomID]
		if e == nil {
			e = rm.createLocked(roomID, false)
		}
	}

	if e.s.Summary().Players+e.joining >= rm.opts.MaxPlayers {
		return nil, apperrors.ErrRoomFull
	}
	e.joining++
	return e, nil
}

// Leave 离开房间，房间空了即回收
func (rm *RoomManager) Leave(s *Session, sink types.Sink, reason protocol.LeaveReason) {
	s.RemoveClient(sink, reason)

	rm.mu.Lock()
	e := rm.rooms[s.ID()]
	collected := e != nil && e.s == s && rm.collectLocked(e)
	rm.mu.Unlock()
	if collected {
		rm.stop(e)
	}
}

// collectLocked 房间无人且没有进行中的加入时从目录中移除
func (rm *RoomManager) collectLocked(e *roomEntry) bool {
	if e.joining > 0 || e.s.Summary().Players > 0 || rm.rooms[e.s.ID()] != e {
		return false
	}
	delete(rm.rooms, e.s.ID())
	delete(rm.public, e.s.ID())
	rm.log.Info("🏠 房间已解散", zap.String("room", e.s.ID()))
	return true
}

// stop 关闭房间事件循环并等待其退出
func (rm *RoomManager) stop(e *roomEntry) {
	e.cancel()
	<-e.s.Done()
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(id string) *Session {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if e := rm.rooms[id]; e != nil {
		return e.s
	}
	return nil
}

// Count 房间数量
func (rm *RoomManager) Count() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	count := 0
	for _, e := range rm.rooms {
		if e.s.Summary().State != StateNone {
			count++
		}
	}
	return count
}

// GetRoomList 公共房间列表，按房间号排序
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rooms := make([]protocol.RoomListItem, 0, len(rm.public))
	for id := range rm.public {
		sum := rm.rooms[id].s.Summary()
		rooms = append(rooms, protocol.RoomListItem{
			RoomID:      id,
			PlayerCount: sum.Players,
			MaxPlayers:  rm.opts.MaxPlayers,
			State:       sum.State,
		})
	}
	slices.SortFunc(rooms, func(a, b protocol.RoomListItem) int {
		return strings.Compare(a.RoomID, b.RoomID)
	})
	return rooms
}

// Shutdown 停止所有房间的游戏并关闭事件循环
func (rm *RoomManager) Shutdown() {
	rm.mu.Lock()
	sessions := make([]*Session, 0, len(rm.rooms))
	for _, e := range rm.rooms {
		sessions = append(sessions, e.s)
	}
	rm.mu.Unlock()

	for _, s := range sessions {
		s.stopAndWait()
	}

	rm.cancel()
	rm.wg.Wait()
}

func (rm *RoomManager) findPublicLocked() *roomEntry {
	ids := make([]string, 0, len(rm.public))
	for id := range rm.public {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		e := rm.rooms[id]
		sum := e.s.Summary()
		if sum.State == StateNone && sum.Players+e.joining < rm.opts.MaxPlayers {
			return e
		}
	}
	return nil
}

func (rm *RoomManager) createLocked(id string, public bool) *roomEntry {
	ctx, cancel := context.WithCancel(rm.ctx)
	e := &roomEntry{s: NewSession(id, rm.opts.Session), cancel: cancel}
	rm.rooms[id] = e
	if public {
		rm.public[id] = true
	}

	rm.wg.Add(1)
	go func() {
		defer rm.wg.Done()
		defer cancel()
		e.s.Run(ctx)
	}()

	rm.log.Info("🏠 房间已创建", zap.String("room", id), zap.Bool("public", public))
	return e
}

// generateRoomID 生成房间号
func (rm *RoomManager) generateRoomID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength]
		if _, exists := rm.rooms[id]; !exists {
			return id
		}
	}
}
