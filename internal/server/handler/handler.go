package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/apperrors"
	"github.com/palemoky/draw-guess/internal/game/room"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
	"github.com/palemoky/draw-guess/internal/types"
)

const maxNameLength = 32

// RoomHinter 连接自带的目标房间（如 /ws/{roomId}）
type RoomHinter interface {
	RequestedRoom() string
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	RoomManager *room.RoomManager
	ChatLimiter types.ChatLimiter
	Logger      *zap.Logger
}

// Handler 消息处理器：解码、登录、限流，再交给房间
type Handler struct {
	roomManager *room.RoomManager
	chatLimiter types.ChatLimiter
	log         *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Handler{
		roomManager: deps.RoomManager,
		chatLimiter: deps.ChatLimiter,
		log:         deps.Logger,
	}
}

// Handle 处理一条消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	decoded, err := codec.DecodeClient(msg)
	if err != nil {
		h.log.Debug("⚠️ 消息解析失败", zap.String("client", client.GetID()), zap.Error(err))
		client.SendMessage(codec.NewErrorMessage(codec.ErrorCodeOf(err)))
		return
	}

	if login, ok := decoded.(*protocol.LoginRequestPayload); ok && client.GetRoom() == "" {
		h.handleLogin(client, login)
		return
	}

	session := h.roomManager.GetRoom(client.GetRoom())
	if session == nil {
		client.SendMessage(codec.NewErrorMessageWithDetail(protocol.ErrCodeNotPermitted, "login required"))
		return
	}

	if _, ok := decoded.(*protocol.SendChatPayload); ok && !h.allowChat(client) {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
		return
	}

	session.HandleMessage(client, decoded)
}

// handleLogin 加入房间
func (h *Handler) handleLogin(client types.ClientInterface, req *protocol.LoginRequestPayload) {
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		if hinter, ok := client.(RoomHinter); ok {
			roomID = hinter.RequestedRoom()
		}
	}

	profile := room.Profile{
		Name:     sanitizeName(req.Name),
		Avatar:   req.Avatar,
		AvatarBG: req.AvatarBG,
	}

	session, playerID, err := h.roomManager.Join(roomID, profile, client)
	if err != nil {
		h.log.Info("🚫 加入房间失败", zap.String("client", client.GetID()), zap.String("room", roomID), zap.Error(err))
		client.SendMessage(codec.NewErrorMessage(apperrors.CodeOf(err)))
		return
	}

	client.SetRoom(session.ID())
	h.log.Info("🎨 玩家加入房间",
		zap.String("client", client.GetID()),
		zap.String("room", session.ID()),
		zap.Int("player", playerID),
		zap.String("name", profile.Name))
}

// HandleDisconnect 连接断开：离开房间并清理限流状态
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	if h.chatLimiter != nil {
		h.chatLimiter.RemoveClient(client.GetID())
	}

	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	client.SetRoom("")

	if session := h.roomManager.GetRoom(roomID); session != nil {
		h.roomManager.Leave(session, client, protocol.LeaveReasonLeft)
	}
}

func (h *Handler) allowChat(client types.ClientInterface) bool {
	if h.chatLimiter == nil {
		return true
	}
	return h.chatLimiter.AllowChat(client.GetID())
}

// sanitizeName 去除首尾空白并截断，为空时生成随机昵称
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return GenerateNickname()
	}
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	return name
}
