package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/types"
)

const (
	EventGameEnd = "game_end"

	headerEventType = "Event-Type"
	headerRoomID    = "Room-ID"
)

// msgPublisher *nats.Conn 的发布能力
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Envelope 发布到 NATS 的事件信封
type Envelope struct {
	EventType string           `json:"event_type"`
	RoomID    string           `json:"room_id"`
	Timestamp time.Time        `json:"timestamp"`
	Result    types.GameResult `json:"result"`
}

// Config NATS 连接参数
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Publisher 将游戏结果发布到 NATS，供其他服务订阅
type Publisher struct {
	conn   msgPublisher
	prefix string
	log    *zap.Logger
	close  func()
}

// Connect 连接 NATS 并创建发布者
func Connect(cfg Config, log *zap.Logger) (*Publisher, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	opts := []nats.Option{
		nats.Name("draw-guess"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("⚠️ NATS 连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("🔄 NATS 已重连", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("❌ NATS 错误", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("连接 NATS 失败: %w", err)
	}

	p := NewPublisher(nc, cfg.SubjectPrefix, log)
	p.close = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	log.Info("📡 NATS 已连接", zap.String("url", nc.ConnectedUrl()))
	return p, nil
}

// NewPublisher 使用已有连接创建发布者
func NewPublisher(conn msgPublisher, prefix string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{conn: conn, prefix: prefix, log: log}
}

// Subject 房间事件主题：<prefix>.rooms.<room_id>.<event>
func (p *Publisher) Subject(roomID, event string) string {
	return fmt.Sprintf("%s.rooms.%s.%s", p.prefix, roomID, event)
}

// RecordGame 发布游戏结束事件
func (p *Publisher) RecordGame(ctx context.Context, result types.GameResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Envelope{
		EventType: EventGameEnd,
		RoomID:    result.RoomID,
		Timestamp: result.FinishedAt.UTC(),
		Result:    result,
	})
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.Subject(result.RoomID, EventGameEnd),
		Data:    data,
		Header: nats.Header{
			headerEventType: []string{EventGameEnd},
			headerRoomID:    []string{result.RoomID},
		},
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}

	p.log.Debug("📤 已发布游戏结束事件", zap.String("subject", msg.Subject))
	return nil
}

// Close 排空并关闭连接
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}
