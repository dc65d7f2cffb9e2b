package events

import (
	"context"
	"errors"

	"github.com/palemoky/draw-guess/internal/types"
)

// Recorders 将游戏结果分发给多个记录器，单个失败不影响其他
type Recorders []types.ResultRecorder

// RecordGame 依次调用所有记录器，合并错误
func (rs Recorders) RecordGame(ctx context.Context, result types.GameResult) error {
	var errs []error
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.RecordGame(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
