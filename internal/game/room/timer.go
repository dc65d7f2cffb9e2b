package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// timerHandle 事件循环上的定时器。
// 回调被投递回事件循环执行；Stop 之后即使回调已经入队也不会执行。
type timerHandle struct {
	t       clockwork.Timer
	stopped bool
}

// Stop 停止定时器，nil 安全且可重复调用
func (h *timerHandle) Stop() {
	if h == nil || h.stopped {
		return
	}
	h.stopped = true
	h.t.Stop()
}

// afterFunc 在 d 之后于事件循环上执行 fn
func (s *Session) afterFunc(d time.Duration, fn func()) *timerHandle {
	h := &timerHandle{}
	h.t = s.clock.AfterFunc(d, func() {
		select {
		case s.fired <- func() {
			if h.stopped {
				return
			}
			h.stopped = true
			fn()
		}:
		case <-s.done:
		}
	})
	return h
}

// sleep 挂起当前流程 d，期间继续处理消息
func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	done := make(chan struct{})
	h := s.afterFunc(d, func() { close(done) })
	defer h.Stop()
	return s.pump(ctx, done)
}

// timerFor 以当前时间为起点生成倒计时
func (s *Session) timerFor(d time.Duration) {
	start := s.clock.Now().UnixMilli()
	s.timer.Start = start
	s.timer.Expires = start + d.Milliseconds()
}

// timeLeft 距离当前倒计时结束的剩余时间
func (s *Session) timeLeft() time.Duration {
	return time.Duration(s.timer.Expires-s.clock.Now().UnixMilli()) * time.Millisecond
}
