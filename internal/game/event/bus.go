// Package event 房间内部的类型化事件总线。
//
// 总线不加锁：同一房间的发布与订阅都发生在房间的事件循环 goroutine 上。
package event

// Topic 带类型的事件主题
type Topic[T any] struct {
	name string
}

// NewTopic 创建主题
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name 主题名称
func (t Topic[T]) Name() string { return t.name }

type entry struct {
	topic  string
	fn     func(any)
	active bool
}

// Bus 事件总线，订阅者按注册顺序收到事件
type Bus struct {
	entries []*entry
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{}
}

// Subscription 可取消的订阅
type Subscription struct {
	bus *Bus
	e   *entry
}

// Cancel 取消订阅，可重复调用
func (s *Subscription) Cancel() {
	if s == nil || s.e == nil || !s.e.active {
		return
	}
	s.e.active = false
	s.bus.remove(s.e)
}

// Subscribe 订阅主题
func Subscribe[T any](b *Bus, t Topic[T], fn func(T)) *Subscription {
	e := &entry{
		topic:  t.name,
		fn:     func(v any) { fn(v.(T)) },
		active: true,
	}
	b.entries = append(b.entries, e)
	return &Subscription{bus: b, e: e}
}

// Publish 发布事件。
// 在分发过程中被取消的订阅者不会再收到本次事件，新增的订阅者也不会收到。
func Publish[T any](b *Bus, t Topic[T], v T) {
	snapshot := make([]*entry, 0, len(b.entries))
	for _, e := range b.entries {
		if e.topic == t.name {
			snapshot = append(snapshot, e)
		}
	}
	for _, e := range snapshot {
		if e.active {
			e.fn(v)
		}
	}
}

// Len 当前活跃订阅数
func (b *Bus) Len() int {
	return len(b.entries)
}

func (b *Bus) remove(target *entry) {
	for i, e := range b.entries {
		if e == target {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// Scope 一组订阅，Close 时全部取消。
// 用于阶段性的监听：阶段返回前 defer scope.Close()。
type Scope struct {
	bus  *Bus
	subs []*Subscription
}

// NewScope 创建订阅作用域
func (b *Bus) NewScope() *Scope {
	return &Scope{bus: b}
}

// On 在作用域内订阅
func On[T any](s *Scope, t Topic[T], fn func(T)) {
	s.subs = append(s.subs, Subscribe(s.bus, t, fn))
}

// Close 取消作用域内全部订阅，可重复调用
func (s *Scope) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}
