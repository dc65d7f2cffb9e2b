package protocol

// 错误码
const (
	ErrCodeUnknownMessage   = 1000 // 未知消息类型
	ErrCodeInvalidMessage   = 1001 // 消息格式错误
	ErrCodeRateLimit        = 1002 // 速率限制
	ErrCodeRoomFull         = 2002
	ErrCodeRoomClosed       = 2003
	ErrCodeNotEnoughPlayers = 3001
	ErrCodeNotPermitted     = 3002
	ErrCodeInvalidSettings  = 3003
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknownMessage:   "未知的消息类型",
	ErrCodeInvalidMessage:   "无效的消息格式",
	ErrCodeRateLimit:        "发言过于频繁",
	ErrCodeRoomFull:         "房间已满",
	ErrCodeRoomClosed:       "房间已关闭",
	ErrCodeNotEnoughPlayers: "玩家人数不足",
	ErrCodeNotPermitted:     "没有权限",
	ErrCodeInvalidSettings:  "无效的房间设置",
}
