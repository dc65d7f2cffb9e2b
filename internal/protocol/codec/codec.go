package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/palemoky/draw-guess/internal/protocol"
)

var (
	// ErrUnknownMessage 消息类型不在客户端消息集合中
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrInvalidMessage 消息无法解析
	ErrInvalidMessage = errors.New("invalid message")
)

// NewMessage 创建一个新消息
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return &protocol.Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 字节
func Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	// Encoder 会追加换行符
	out := make([]byte, buf.Len()-1)
	copy(out, buf.Bytes())
	return out, nil
}

// Decode 从 JSON 字节解码消息信封
func Decode(data []byte) (*protocol.Message, error) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return &msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeClient 将信封解析为具体的客户端消息。
// 未知类型返回 ErrUnknownMessage，结构错误返回 ErrInvalidMessage。
func DecodeClient(msg *protocol.Message) (protocol.ClientMessage, error) {
	var out protocol.ClientMessage
	switch msg.Type {
	case protocol.MsgLoginRequest:
		out = &protocol.LoginRequestPayload{}
	case protocol.MsgStartGame:
		out = &protocol.StartGamePayload{}
	case protocol.MsgStop:
		out = &protocol.StopPayload{}
	case protocol.MsgWordChosen:
		out = &protocol.WordChosenPayload{}
	case protocol.MsgSendChat:
		out = &protocol.SendChatPayload{}
	case protocol.MsgDraw:
		out = &protocol.DrawPayload{}
	case protocol.MsgSetOptions:
		out = &protocol.SetOptionsPayload{}
	case protocol.MsgOK:
		out = &protocol.OKPayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	if len(msg.Payload) == 0 {
		if needsPayload(msg.Type) {
			return nil, fmt.Errorf("%w: %s without payload", ErrInvalidMessage, msg.Type)
		}
		return out, nil
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return out, nil
}

// DecodeClientBytes 解析原始帧
func DecodeClientBytes(data []byte) (protocol.ClientMessage, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return DecodeClient(msg)
}

func needsPayload(t protocol.MessageType) bool {
	switch t {
	case protocol.MsgStartGame, protocol.MsgStop, protocol.MsgOK:
		return false
	}
	return true
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: protocol.ErrorMessages[code],
	})
}

// NewErrorMessageWithDetail 创建带详情的错误消息
func NewErrorMessageWithDetail(code int, detail string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: protocol.ErrorMessages[code],
		Detail:  detail,
	})
}

// ErrorCodeOf 将解码错误映射到协议错误码
func ErrorCodeOf(err error) int {
	if errors.Is(err, ErrUnknownMessage) {
		return protocol.ErrCodeUnknownMessage
	}
	return protocol.ErrCodeInvalidMessage
}
