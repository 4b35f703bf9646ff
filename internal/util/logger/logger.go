// Package logger 提供 go-sigkit 的统一日志系统
//
// 基于标准库 log/slog，按子系统划分 Logger：
//
//	var log = logger.Logger("openpgp")
//
//	log.Debug("packet parsed", "tag", tag, "len", n)
//	log.Warn("legacy hash rejected", "algo", algo)
//
// 环境变量配置:
//
//	# 所有子系统 warn，openpgp 子系统 debug
//	SIGKIT_LOG_LEVEL=openpgp=debug,warn
//
//	# JSON 格式输出
//	SIGKIT_LOG_FORMAT=json
//
// 库代码在验签热路径上不输出成功日志，仅在解析、分发和算法
// 拒绝等决策点记录。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler

	// output 全局输出目标，默认 stderr
	output   io.Writer = os.Stderr
	outputMu sync.RWMutex
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同实例。级别由 SIGKIT_LOG_LEVEL 决定。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := configFromEnv()
	h := newSubsystemHandler(subsystem, cfg)
	l := slog.New(h)

	actual, loaded := loggers.LoadOrStore(subsystem, l)
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel 动态调整子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).setLevel(level)
	}
}

// SetOutput 设置全局日志输出目标
//
// 所有已创建的 Logger 经由动态 writer 自动切换到新目标。
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃所有日志的 Logger，用于测试
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// dynamicWriter 每次写入时查找当前的全局输出目标
type dynamicWriter struct{}

func (dynamicWriter) Write(p []byte) (int, error) {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()
	return w.Write(p)
}

// subsystemHandler 支持按子系统动态调级的 slog.Handler
type subsystemHandler struct {
	level slog.Level
	inner slog.Handler
	mu    sync.RWMutex
}

func newSubsystemHandler(subsystem string, cfg *config) *subsystemHandler {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var inner slog.Handler
	if cfg.format == formatJSON {
		inner = slog.NewJSONHandler(dynamicWriter{}, opts)
	} else {
		inner = slog.NewTextHandler(dynamicWriter{}, opts)
	}
	inner = inner.WithAttrs([]slog.Attr{slog.String("subsystem", subsystem)})

	return &subsystemHandler{
		level: cfg.levelFor(subsystem),
		inner: inner,
	}
}

func (h *subsystemHandler) Enabled(_ context.Context, level slog.Level) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return level >= h.level
}

func (h *subsystemHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *subsystemHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &subsystemHandler{level: h.level, inner: h.inner.WithAttrs(attrs)}
}

func (h *subsystemHandler) WithGroup(name string) slog.Handler {
	return &subsystemHandler{level: h.level, inner: h.inner.WithGroup(name)}
}

func (h *subsystemHandler) setLevel(level slog.Level) {
	h.mu.Lock()
	h.level = level
	h.mu.Unlock()
}

// discardHandler 丢弃所有日志
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
