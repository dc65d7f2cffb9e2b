package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/config"
	"github.com/palemoky/draw-guess/internal/game/word"
	"github.com/palemoky/draw-guess/internal/logger"
	"github.com/palemoky/draw-guess/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envPath := flag.String("env", ".env", "环境变量文件路径")
	flag.Parse()

	// .env 不存在时忽略
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("加载 %s 失败: %v", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("配置文件 %s 不存在，使用默认配置和环境变量", *configPath)
		if cfg, err = config.Load(""); err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
	case err != nil:
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	words := word.Default()
	if cfg.Game.WordsFile != "" {
		if words, err = word.LoadFile(cfg.Game.WordsFile); err != nil {
			zlog.Fatal("加载词库失败", zap.String("path", cfg.Game.WordsFile), zap.Error(err))
		}
	}
	zlog.Info("📚 词库已加载", zap.Int("words", words.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, server.Options{Logger: zlog, Words: words})
	if err != nil {
		zlog.Fatal("创建服务器失败", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("🎨 你画我猜服务器启动中...")
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zlog.Error("服务器启动失败", zap.Error(err))
		}
	case <-ctx.Done():
		zlog.Info("正在关闭服务器...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("关闭服务器时出错", zap.Error(err))
	}
}
