// Package logging defines the leveled logging contract used across
// wp-poster and provides a go-logger backed provider plus a no-op default.
package logging

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract expected by wp-poster services.
// It mirrors the interface exposed by github.com/goliatone/go-logger so the
// library plugs in without adapters.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// Provider exposes named loggers scoped to a module.
type Provider interface {
	GetLogger(name string) Logger
}

// Config captures the options exposed by the go-logger provider.
type Config struct {
	Level  string
	Format string
}

type provider struct {
	root *glog.BaseLogger
}

// NewProvider constructs a logger provider backed by go-logger.
func NewProvider(cfg Config) (Provider, error) {
	options := []glog.Option{}
	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	return &provider{root: glog.NewLogger(options...)}, nil
}

func (p *provider) GetLogger(name string) Logger {
	if p == nil {
		return NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

// ModuleLogger returns a module-scoped logger, defaulting to a no-op when no
// provider is supplied.
func ModuleLogger(provider Provider, module string) Logger {
	if provider == nil {
		return NoOp()
	}
	if logger := provider.GetLogger(module); logger != nil {
		return logger
	}
	return NoOp()
}

func wrap(inner glog.Logger) Logger {
	if inner == nil {
		return NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *adapter) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return ""
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	}
	return glog.Info
}

type noop struct{}

// NoOp returns a logger that drops every entry.
func NoOp() Logger { return noop{} }

func (noop) Trace(string, ...any)                {}
func (noop) Debug(string, ...any)                {}
func (noop) Info(string, ...any)                 {}
func (noop) Warn(string, ...any)                 {}
func (noop) Error(string, ...any)                {}
func (noop) Fatal(string, ...any)                {}
func (noop) WithContext(context.Context) Logger { return noop{} }
