package apperrors

import (
	"errors"

	"github.com/palemoky/draw-guess/internal/protocol"
)

// GameError 游戏错误，Code 对应协议错误码
type GameError struct {
	Code    int
	Message string
	Detail  string
}

func (e *GameError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// WithDetail 返回带详情的副本，不修改预定义错误
func (e *GameError) WithDetail(detail string) *GameError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// Is 按错误码比较，便于 errors.Is 匹配带详情的副本
func (e *GameError) Is(target error) bool {
	var ge *GameError
	if !errors.As(target, &ge) {
		return false
	}
	return ge.Code == e.Code
}

// 预定义错误
var (
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Message: "玩家人数不足"}
	ErrNotPermitted     = &GameError{Code: protocol.ErrCodeNotPermitted, Message: "没有权限"}
	ErrInvalidSettings  = &GameError{Code: protocol.ErrCodeInvalidSettings, Message: "无效的房间设置"}
	ErrRateLimited      = &GameError{Code: protocol.ErrCodeRateLimit, Message: "发言过于频繁"}
	ErrRoomFull         = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrSessionClosed    = &GameError{Code: protocol.ErrCodeRoomClosed, Message: "房间已关闭"}
)

// CodeOf 提取错误码，非 GameError 返回 ErrCodeInvalidMessage
func CodeOf(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeInvalidMessage
}
