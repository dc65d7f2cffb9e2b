package room

import (
	"fmt"

	"github.com/palemoky/draw-guess/internal/apperrors"
	"github.com/palemoky/draw-guess/internal/protocol"
)

// ValidateSettings 按 timer、choose_word_timer、max_hints、rounds_per_game 的顺序校验，
// 返回第一个不合法的字段
func ValidateSettings(s protocol.GameSettings) error {
	fields := []struct {
		name  string
		value int
	}{
		{"timer", s.Timer},
		{"choose_word_timer", s.ChooseWordTimer},
		{"max_hints", s.MaxHints},
		{"rounds_per_game", s.RoundsPerGame},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return apperrors.ErrInvalidSettings.WithDetail(fmt.Sprintf("%s must be a number greater than zero.", f.name))
		}
	}
	return nil
}
