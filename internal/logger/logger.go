package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level уровень важности сообщения
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	SILENT // логирование выключено
)

var (
	levelNames = map[Level]string{
		DEBUG:  "DEBUG",
		INFO:   "INFO",
		WARN:   "WARN",
		ERROR:  "ERROR",
		SILENT: "SILENT",
	}

	levelColors = map[Level]string{
		DEBUG: "\033[36m",
		INFO:  "\033[32m",
		WARN:  "\033[33m",
		ERROR: "\033[31m",
	}

	resetColor = "\033[0m"
)

// Sink наблюдатель, получающий каждое записанное сообщение.
type Sink interface {
	Emit(level Level, module, message string)
}

// Logger логгер с уровнями и именем модуля
type Logger struct {
	mu       sync.Mutex
	level    Level
	useColor bool
	out      *log.Logger
	sinks    []Sink
}

var (
	defaultLogger = New(INFO, os.Stderr, false)
	defaultMu     sync.RWMutex
)

// Init заменяет глобальный логгер (вызывается один раз при старте).
func Init(level Level, output io.Writer, useColor bool, sinks ...Sink) *Logger {
	l := New(level, output, useColor, sinks...)
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return l
}

// Default возвращает глобальный логгер.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// New создаёт логгер.
func New(level Level, output io.Writer, useColor bool, sinks ...Sink) *Logger {
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:    level,
		useColor: useColor,
		out:      log.New(output, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		sinks:    sinks,
	}
}

// AddSink подключает наблюдателя.
func (l *Logger) AddSink(s Sink) {
	l.mu.Lock()
	l.sinks = append(l.sinks, s)
	l.mu.Unlock()
}

// SetLevel меняет уровень.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel возвращает уровень.
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) log(level Level, module, format string, args ...any) {
	l.mu.Lock()
	current := l.level
	sinks := l.sinks
	l.mu.Unlock()

	if level < current || level >= SILENT {
		return
	}

	message := fmt.Sprintf(format, args...)

	prefix := fmt.Sprintf("[%s]", levelNames[level])
	if l.useColor {
		prefix = levelColors[level] + prefix + resetColor
	}
	if module != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, module)
	}
	l.out.Printf("%s %s", prefix, message)

	for _, s := range sinks {
		s.Emit(level, module, message)
	}
}

func (l *Logger) Debug(module, format string, args ...any) { l.log(DEBUG, module, format, args...) }
func (l *Logger) Info(module, format string, args ...any)  { l.log(INFO, module, format, args...) }
func (l *Logger) Warn(module, format string, args ...any)  { l.log(WARN, module, format, args...) }
func (l *Logger) Error(module, format string, args ...any) { l.log(ERROR, module, format, args...) }

// Глобальные функции используют логгер по умолчанию.

func Debug(module, format string, args ...any) { Default().Debug(module, format, args...) }
func Info(module, format string, args ...any)  { Default().Info(module, format, args...) }
func Warn(module, format string, args ...any)  { Default().Warn(module, format, args...) }
func Error(module, format string, args ...any) { Default().Error(module, format, args...) }

// ParseLevel разбирает уровень из строки.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "silent", "none":
		return SILENT, nil
	default:
		return INFO, fmt.Errorf("invalid log level: %s", s)
	}
}

// String возвращает имя уровня.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}
