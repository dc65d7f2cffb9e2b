package server

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			s.log.Info("📊 [监控]",
				zap.Int("online", s.GetOnlineCount()),
				zap.Int("rooms", s.roomManager.Count()),
				zap.Int("active_games", s.roomManager.GetActiveGamesCount()),
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Float64("alloc_mb", float64(m.Alloc)/1024/1024))
		}
	}
}

func (s *Server) isShuttingDown() bool {
	return s.shuttingDown.Load()
}

// Shutdown 优雅关闭：停止接收连接，停止所有房间的游戏，关闭连接和外部存储
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.shuttingDown.Store(true)
		close(s.stop)

		if s.httpServer != nil {
			if e := s.httpServer.Shutdown(ctx); e != nil {
				s.log.Warn("⚠️ HTTP 服务关闭超时", zap.Error(e))
				err = e
			}
		}

		if active := s.roomManager.GetActiveGamesCount(); active > 0 {
			s.log.Info("⏳ 停止进行中的游戏", zap.Int("active_games", active))
		}
		s.roomManager.Shutdown()

		s.clientsMu.Lock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.Unlock()

		s.closeStores()
		s.log.Info("👋 服务器已关闭")
	})
	return err
}

// closeStores 关闭 Redis 和 NATS
func (s *Server) closeStores() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
