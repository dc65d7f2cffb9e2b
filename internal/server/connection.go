package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/server/core"
)

const defaultLeaderboardLimit = 10

// HealthResponse 健康检查结果
type HealthResponse struct {
	Status      string `json:"status"`
	Online      int    `json:"online"`
	Rooms       int    `json:"rooms"`
	ActiveGames int    `json:"active_games"`
}

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := core.GetClientIP(r)

	if s.isShuttingDown() {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket 升级失败", zap.String("ip", clientIP), zap.Error(err))
		return
	}

	client := NewClient(s, conn, mux.Vars(r)["roomId"])
	client.IP = clientIP
	s.registerClient(client)

	client.log.Info("✅ 客户端已连接", zap.String("ip", clientIP), zap.String("room", client.requestedRoom))

	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Online:      s.GetOnlineCount(),
		Rooms:       s.roomManager.Count(),
		ActiveGames: s.roomManager.GetActiveGamesCount(),
	})
}

// handlePublicRooms 公共房间列表
func (s *Server) handlePublicRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.roomManager.GetRoomList())
}

// handleLeaderboard 排行榜，?limit=N
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		http.Error(w, "leaderboard disabled", http.StatusNotFound)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.leaderboard.Top(r.Context(), limit)
	if err != nil {
		s.log.Error("❌ 获取排行榜失败", zap.Error(err))
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []protocol.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetOnlineCount 在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		client.log.Info("❌ 客户端已断开")
	}
}
