//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockChatLimiter 聊天限制器 mock
type MockChatLimiter struct {
	mock.Mock
}

func (m *MockChatLimiter) AllowChat(clientID string) bool {
	args := m.Called(clientID)
	return args.Bool(0)
}

func (m *MockChatLimiter) RemoveClient(clientID string) {
	m.Called(clientID)
}
