//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/draw-guess/internal/types"
)

// MockRecorder 结果记录器 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordGame(ctx context.Context, result types.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// ResultSink 收集记录的结果，可在多个 goroutine 间安全使用
type ResultSink struct {
	mu      sync.Mutex
	results []types.GameResult
}

func (r *ResultSink) RecordGame(_ context.Context, result types.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

// Results 已记录的结果
func (r *ResultSink) Results() []types.GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.GameResult(nil), r.results...)
}
