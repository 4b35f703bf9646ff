package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// logFormat 日志输出格式
type logFormat int

const (
	formatText logFormat = iota
	formatJSON
)

// config 日志配置，由环境变量解析而来
type config struct {
	// defaultLevel 默认日志级别
	defaultLevel slog.Level

	// subsystemLevels 各子系统的日志级别
	subsystemLevels map[string]slog.Level

	// format 输出格式
	format logFormat
}

// levelFor 获取指定子系统的日志级别
func (c *config) levelFor(subsystem string) slog.Level {
	if level, ok := c.subsystemLevels[subsystem]; ok {
		return level
	}
	return c.defaultLevel
}

var (
	configCache *config
	configOnce  sync.Once
)

// configFromEnv 从环境变量解析配置
//
// 环境变量:
//   - SIGKIT_LOG_LEVEL: 格式 子系统=级别,子系统=级别,默认级别
//     示例: openpgp=debug,softkey=warn,info
//   - SIGKIT_LOG_FORMAT: text 或 json
//
// 作为库代码，默认级别为 warn，避免干扰宿主程序输出。
func configFromEnv() *config {
	configOnce.Do(func() {
		configCache = parseConfig()
	})
	return configCache
}

func parseConfig() *config {
	cfg := &config{
		defaultLevel:    slog.LevelWarn,
		subsystemLevels: make(map[string]slog.Level),
		format:          formatText,
	}

	if levelStr := os.Getenv("SIGKIT_LOG_LEVEL"); levelStr != "" {
		parseLevelConfig(cfg, levelStr)
	}

	if formatStr := os.Getenv("SIGKIT_LOG_FORMAT"); strings.EqualFold(formatStr, "json") {
		cfg.format = formatJSON
	}

	return cfg
}

// parseLevelConfig 解析级别配置字符串
// 格式: subsystem=level,subsystem=level,defaultLevel
func parseLevelConfig(cfg *config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if kv := strings.SplitN(part, "=", 2); len(kv) == 2 {
			if level, ok := parseLevel(strings.TrimSpace(kv[1])); ok {
				cfg.subsystemLevels[strings.TrimSpace(kv[0])] = level
			}
			continue
		}

		if level, ok := parseLevel(part); ok {
			cfg.defaultLevel = level
		}
	}
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// resetConfig 重置配置缓存（仅用于测试）
func resetConfig() {
	configOnce = sync.Once{}
	configCache = nil
}
