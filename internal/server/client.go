package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/logger"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小，绘画指令批量较大
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Client 代表一个 WebSocket 连接
type Client struct {
	ID string // 连接唯一 ID
	IP string // 客户端 IP 地址

	server        *Server
	conn          *websocket.Conn
	send          chan []byte
	requestedRoom string
	log           *zap.Logger

	mu     sync.RWMutex
	roomID string
	closed bool
}

// NewClient 创建新客户端，requestedRoom 来自 /ws/{roomId}
func NewClient(s *Server, conn *websocket.Conn, requestedRoom string) *Client {
	id := uuid.NewString()
	return &Client{
		ID:            id,
		server:        s,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		requestedRoom: requestedRoom,
		log:           s.log.With(zap.String("client", id)),
	}
}

// GetID 连接 ID
func (c *Client) GetID() string { return c.ID }

// RequestedRoom 连接 URL 中的房间号
func (c *Client) RequestedRoom() string { return c.requestedRoom }

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.log, r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("⚠️ 读取错误", zap.Error(err))
			}
			return
		}

		msg, err := codec.Decode(message)
		if err != nil {
			c.log.Debug("消息解析错误", zap.Error(err))
			c.SendMessage(codec.NewErrorMessage(codec.ErrorCodeOf(err)))
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.log, r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，不阻塞：缓冲区满时断开连接
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		c.log.Error("消息编码错误", zap.Error(err))
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.log.Warn("⚠️ 发送缓冲区已满，断开连接")
		go c.Close()
	}
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	c.server.handler.HandleDisconnect(c)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}
