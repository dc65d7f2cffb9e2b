package protocol

import (
	"encoding/json"
	"errors"
)

// DrawType 绘画指令类型
type DrawType int

const (
	DrawToolsChange DrawType = iota
	DrawClear
	DrawMove
	DrawLine
	DrawQuadraticCurve
)

var errMissingDrawType = errors.New("draw instruction without type")

// DrawInstruction 不透明的绘画指令。
// 服务器只关心 Type（用于识别 CLEAR），其余字段原样保存和转发。
type DrawInstruction struct {
	Type DrawType
	raw  json.RawMessage
}

// ClearInstruction 返回一条清空画布指令
func ClearInstruction() DrawInstruction {
	return DrawInstruction{Type: DrawClear}
}

// IsClear 是否为清空画布
func (d DrawInstruction) IsClear() bool {
	return d.Type == DrawClear
}

func (d DrawInstruction) MarshalJSON() ([]byte, error) {
	if d.raw != nil {
		return d.raw, nil
	}
	return json.Marshal(struct {
		Type DrawType `json:"type"`
	}{d.Type})
}

func (d *DrawInstruction) UnmarshalJSON(data []byte) error {
	var head struct {
		Type *DrawType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Type == nil {
		return errMissingDrawType
	}
	d.Type = *head.Type
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}
