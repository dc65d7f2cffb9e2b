package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-guess/internal/testutil"
	"github.com/palemoky/draw-guess/internal/types"
)

type fakeConn struct {
	mu   sync.Mutex
	msgs []*nats.Msg
	err  error
}

func (c *fakeConn) PublishMsg(m *nats.Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func sampleResult() types.GameResult {
	return types.GameResult{
		RoomID: "abc",
		Players: []types.PlayerResult{
			{PlayerID: 1, Name: "ann", Points: 405},
			{PlayerID: 0, Name: "bob", Points: 405},
		},
		Rounds:     1,
		FinishedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_RecordGame(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	p := NewPublisher(conn, "drawguess", nil)

	require.NoError(t, p.RecordGame(context.Background(), sampleResult()))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "drawguess.rooms.abc.game_end", msg.Subject)
	assert.Equal(t, EventGameEnd, msg.Header.Get(headerEventType))
	assert.Equal(t, "abc", msg.Header.Get(headerRoomID))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, EventGameEnd, env.EventType)
	assert.Equal(t, "abc", env.RoomID)
	assert.Equal(t, sampleResult(), env.Result)
}

func TestPublisher_RecordGame_Errors(t *testing.T) {
	t.Parallel()

	t.Run("publish fails", func(t *testing.T) {
		t.Parallel()
		conn := &fakeConn{err: nats.ErrConnectionClosed}
		p := NewPublisher(conn, "x", nil)
		err := p.RecordGame(context.Background(), sampleResult())
		assert.ErrorIs(t, err, nats.ErrConnectionClosed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		conn := &fakeConn{}
		p := NewPublisher(conn, "x", nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, p.RecordGame(ctx, sampleResult()), context.Canceled)
		assert.Empty(t, conn.msgs)
	})
}

func TestRecorders_FanOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	result := sampleResult()

	failing := new(testutil.MockRecorder)
	failing.On("RecordGame", ctx, result).Return(errors.New("redis down"))
	sink := &testutil.ResultSink{}
	conn := &fakeConn{}

	rs := Recorders{failing, nil, sink, NewPublisher(conn, "p", nil)}
	err := rs.RecordGame(ctx, result)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, []types.GameResult{result}, sink.Results())
	assert.Len(t, conn.msgs, 1, "later recorders still run after a failure")
	failing.AssertExpectations(t)
}
