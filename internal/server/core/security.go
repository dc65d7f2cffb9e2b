package core

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// ChatLimiter 按连接限制聊天频率（令牌桶）
type ChatLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	clock    clockwork.Clock
}

// NewChatLimiter 创建聊天限流器：每秒 perSecond 条，允许 burst 条突发
func NewChatLimiter(perSecond float64, burst int, clock clockwork.Clock) *ChatLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ChatLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		clock:    clock,
	}
}

// AllowChat 是否允许该连接发言
func (l *ChatLimiter) AllowChat(clientID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[clientID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[clientID] = lim
	}
	l.mu.Unlock()

	return lim.AllowN(l.clock.Now(), 1)
}

// RemoveClient 连接断开后释放记录
func (l *ChatLimiter) RemoveClient(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, clientID)
}

// Len 当前跟踪的连接数
func (l *ChatLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// --- 来源验证 ---

// OriginChecker WebSocket 握手的来源验证
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器，"*" 表示允许所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{
		allowedOrigins: make(map[string]bool),
	}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(origin)] = true
	}

	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 没有 Origin 头，通常是非浏览器客户端
		return true
	}

	return oc.allowedOrigins[strings.ToLower(origin)]
}

// GetClientIP 获取真实客户端 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// 取第一个 IP（最原始的客户端）
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
