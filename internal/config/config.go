package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/palemoky/draw-guess/internal/protocol"
)

// EnvPrefix 环境变量前缀，如 DRAW_SERVER_PORT
const EnvPrefix = "DRAW"

// Config 服务端配置
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	NATS   NATSConfig   `mapstructure:"nats"`
	Log    LogConfig    `mapstructure:"log"`
	Game   GameConfig   `mapstructure:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	MaxPlayersPerRoom int           `mapstructure:"max_players_per_room"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig Redis 配置，未启用时不记录排行榜
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NATSConfig 对局事件发布，URL 为空时不发布
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// GameConfig 游戏配置
type GameConfig struct {
	WordsFile       string  `mapstructure:"words_file"` // 为空时使用内置词库
	WordChoices     int     `mapstructure:"word_choices"`
	Timer           int     `mapstructure:"timer"`             // 回合时长（秒）
	ChooseWordTimer int     `mapstructure:"choose_word_timer"` // 选词时长（秒）
	MaxHints        int     `mapstructure:"max_hints"`
	RoundsPerGame   int     `mapstructure:"rounds_per_game"`
	ChatPerSecond   float64 `mapstructure:"chat_per_second"`
	ChatBurst       int     `mapstructure:"chat_burst"`
}

// Settings 新房间的默认设置
func (g GameConfig) Settings() protocol.GameSettings {
	return protocol.GameSettings{
		Timer:           g.Timer,
		ChooseWordTimer: g.ChooseWordTimer,
		MaxHints:        g.MaxHints,
		RoundsPerGame:   g.RoundsPerGame,
	}
}

// Load 加载配置文件并应用环境变量覆盖。path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	def := protocol.DefaultSettings()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 1780)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_players_per_room", 12)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "drawguess")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("game.words_file", "")
	v.SetDefault("game.word_choices", 3)
	v.SetDefault("game.timer", def.Timer)
	v.SetDefault("game.choose_word_timer", def.ChooseWordTimer)
	v.SetDefault("game.max_hints", def.MaxHints)
	v.SetDefault("game.rounds_per_game", def.RoundsPerGame)
	v.SetDefault("game.chat_per_second", 2.0)
	v.SetDefault("game.chat_burst", 5)
}

// Validate 校验配置，返回所有不合法项
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.MaxPlayersPerRoom < 2 {
		errs = append(errs, fmt.Sprintf("server.max_players_per_room must be >= 2, got %d", c.Server.MaxPlayersPerRoom))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr must not be empty when redis is enabled")
	}
	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		errs = append(errs, "nats.subject_prefix must not be empty when nats.url is set")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, console], got %q", c.Log.Format))
	}

	if c.Game.WordChoices < 1 {
		errs = append(errs, fmt.Sprintf("game.word_choices must be >= 1, got %d", c.Game.WordChoices))
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"game.timer", c.Game.Timer},
		{"game.choose_word_timer", c.Game.ChooseWordTimer},
		{"game.max_hints", c.Game.MaxHints},
		{"game.rounds_per_game", c.Game.RoundsPerGame},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %d", f.name, f.value))
		}
	}
	if c.Game.ChatPerSecond <= 0 || c.Game.ChatBurst < 1 {
		errs = append(errs, "game.chat_per_second must be > 0 and game.chat_burst >= 1")
	}

	if len(errs) > 0 {
		return errors.New("配置校验失败: " + strings.Join(errs, "; "))
	}
	return nil
}
