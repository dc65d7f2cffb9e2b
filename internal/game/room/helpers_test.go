package room

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/palemoky/draw-guess/internal/game/word"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
	"github.com/palemoky/draw-guess/internal/testutil"
)

const waitTimeout = 2 * time.Second

var testEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// testSettings: 100s turns give a 50s scoring window and a 45s jump
func testSettings() protocol.GameSettings {
	return protocol.GameSettings{
		Timer:           100,
		ChooseWordTimer: 10,
		MaxHints:        2,
		RoundsPerGame:   1,
	}
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	clock *clockwork.FakeClock
	s     *Session
}

func newFixture(t *testing.T, settings protocol.GameSettings, mutate ...func(*Options)) *fixture {
	t.Helper()

	words, err := word.NewList([]string{"banana", "orange", "tomato"})
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(testEpoch)
	opts := Options{
		Settings:    settings,
		Words:       words.WithRand(rand.New(rand.NewPCG(1, 2))),
		WordChoices: 3,
		Clock:       clock,
		Logger:      zaptest.NewLogger(t),
		Rand:        rand.New(rand.NewPCG(3, 4)),
	}
	for _, m := range mutate {
		m(&opts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession("test", opts)
	go s.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})

	return &fixture{t: t, ctx: ctx, clock: clock, s: s}
}

// join 加入一个以 name 为连接 ID 的玩家
func (f *fixture) join(name string) *testutil.SimpleClient {
	f.t.Helper()
	c := testutil.NewSimpleClient(name)
	_, err := f.s.NewClient(Profile{Name: name}, c)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) send(c *testutil.SimpleClient, msg protocol.ClientMessage) {
	f.s.HandleMessage(c, msg)
}

func (f *fixture) chat(c *testutil.SimpleClient, content string) {
	f.send(c, &protocol.SendChatPayload{Content: content})
}

// advance 等待 n 个定时器就绪后推进时钟
func (f *fixture) advance(n int, d time.Duration) {
	f.t.Helper()
	f.awaitTimers(n)
	f.clock.Advance(d)
}

// awaitTimers 等待时钟上恰好挂着 n 个定时器
func (f *fixture) awaitTimers(n int) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(f.ctx, waitTimeout)
	defer cancel()
	require.NoError(f.t, f.clock.BlockUntilContext(ctx, n), "waiting for %d timers", n)
}

// listeners 事件总线上的订阅数
func (f *fixture) listeners() int {
	n := -1
	f.s.call(func() { n = f.s.bus.Len() })
	return n
}

// awaitNoListeners 等待所有阶段订阅被取消
func (f *fixture) awaitNoListeners() {
	f.t.Helper()
	require.Eventually(f.t, func() bool { return f.listeners() == 0 }, waitTimeout, time.Millisecond)
}

// startGame 开始游戏并跳过开局等待
func (f *fixture) startGame(owner *testutil.SimpleClient) {
	f.t.Helper()
	rounds := owner.Count(protocol.MsgNewRound)
	f.send(owner, &protocol.StartGamePayload{})
	waitCount(f.t, owner, protocol.MsgNewRound, rounds+1)
	f.advance(1, preRollDelay)
}

// awaitChoice 等待画手收到第 n 份候选词
func (f *fixture) awaitChoice(drawer *testutil.SimpleClient, n int) []string {
	f.t.Helper()
	var lists [][]string
	require.Eventually(f.t, func() bool {
		lists = choicesOf(f.t, drawer)
		return len(lists) >= n
	}, waitTimeout, 5*time.Millisecond, "%s waiting for word choice %d", drawer.GetID(), n)
	return lists[n-1]
}

func choicesOf(t *testing.T, c *testutil.SimpleClient) [][]string {
	var out [][]string
	for _, msg := range c.OfType(protocol.MsgChooseWord) {
		if words := payloadOf[protocol.ChooseWordPayload](t, msg).Words; len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

// choose 画手选择第一个词并等待回合开始
func (f *fixture) choose(drawer *testutil.SimpleClient, words []string) string {
	f.t.Helper()
	turns := drawer.Count(protocol.MsgTurnStart)
	f.send(drawer, &protocol.WordChosenPayload{WordIndex: 0})
	waitCount(f.t, drawer, protocol.MsgTurnStart, turns+1)
	return words[0]
}

func waitCount(t *testing.T, c *testutil.SimpleClient, typ protocol.MessageType, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Count(typ) >= n
	}, waitTimeout, 5*time.Millisecond, "%s waiting for %d %s", c.GetID(), n, typ)
}

func waitState(t *testing.T, s *Session, state GameState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Summary().State == state
	}, waitTimeout, 5*time.Millisecond, "waiting for state %s", state)
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}

func lastPayload[T any](t *testing.T, c *testutil.SimpleClient, typ protocol.MessageType) *T {
	t.Helper()
	return payloadOf[T](t, c.Last(typ))
}

func instructions(t *testing.T, raw string) []protocol.DrawInstruction {
	t.Helper()
	var out []protocol.DrawInstruction
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

// nearMiss 最后一个字母不同的猜测
func nearMiss(w string) string {
	last := byte('x')
	if w[len(w)-1] == 'x' {
		last = 'y'
	}
	return w[:len(w)-1] + string(last)
}
