package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/config"
	"github.com/palemoky/draw-guess/internal/game/room"
	"github.com/palemoky/draw-guess/internal/game/word"
	"github.com/palemoky/draw-guess/internal/server/core"
	"github.com/palemoky/draw-guess/internal/server/events"
	"github.com/palemoky/draw-guess/internal/server/handler"
	"github.com/palemoky/draw-guess/internal/server/storage"
	"github.com/palemoky/draw-guess/internal/types"
)

// Options 服务器的外部依赖
type Options struct {
	Logger *zap.Logger
	Words  word.Source
	Clock  clockwork.Clock
}

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	log         *zap.Logger
	redis       *redis.Client
	leaderboard *storage.Leaderboard
	publisher   *events.Publisher
	roomManager *room.RoomManager
	handler     *handler.Handler
	httpServer  *http.Server
	upgrader    websocket.Upgrader

	// 安全组件
	originChecker *core.OriginChecker
	chatLimiter   *core.ChatLimiter

	clients   map[string]*Client
	clientsMu sync.RWMutex

	shuttingDown atomic.Bool
	stop         chan struct{}
	shutdownOnce sync.Once
}

// NewServer 创建服务器实例。Redis 和 NATS 按配置启用，连接失败时返回错误。
func NewServer(ctx context.Context, cfg *config.Config, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	s := &Server{
		config:        cfg,
		log:           opts.Logger,
		clients:       make(map[string]*Client),
		stop:          make(chan struct{}),
		originChecker: core.NewOriginChecker(cfg.Server.AllowedOrigins),
		chatLimiter:   core.NewChatLimiter(cfg.Game.ChatPerSecond, cfg.Game.ChatBurst, opts.Clock),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	var recorders events.Recorders

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}

		s.redis = rdb
		s.leaderboard = storage.NewLeaderboard(rdb)
		recorders = append(recorders, s.leaderboard)
		s.log.Info("🗄️ 排行榜已启用", zap.String("redis", cfg.Redis.Addr))
	}

	if cfg.NATS.URL != "" {
		pub, err := events.Connect(events.Config{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		}, s.log)
		if err != nil {
			s.closeStores()
			return nil, err
		}
		s.publisher = pub
		recorders = append(recorders, pub)
	}

	var recorder types.ResultRecorder
	if len(recorders) > 0 {
		recorder = recorders
	}

	s.roomManager = room.NewRoomManager(ctx, room.ManagerOptions{
		Session: room.Options{
			Settings:    cfg.Game.Settings(),
			Words:       opts.Words,
			WordChoices: cfg.Game.WordChoices,
			Clock:       opts.Clock,
			Logger:      s.log,
			Recorder:    recorder,
		},
		MaxPlayers: cfg.Server.MaxPlayersPerRoom,
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		RoomManager: s.roomManager,
		ChatLimiter: s.chatLimiter,
		Logger:      s.log,
	})

	s.log.Info("🔒 安全配置",
		zap.Strings("allowed_origins", cfg.Server.AllowedOrigins),
		zap.Float64("chat_per_second", cfg.Game.ChatPerSecond),
		zap.Int("chat_burst", cfg.Game.ChatBurst))

	return s, nil
}

// Router HTTP 路由
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/ws/{roomId}", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rooms/public", s.handlePublicRooms).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Start 启动服务器，Shutdown 后返回 nil
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	go s.monitorStats()

	s.log.Info("🚀 服务器启动", zap.String("addr", "ws://"+addr+"/ws"), zap.Int("cpus", runtime.NumCPU()))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RoomManager 房间管理器
func (s *Server) RoomManager() *room.RoomManager { return s.roomManager }
