package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultBufferLines сколько строк журнала хранится для интерфейса.
const DefaultBufferLines = 300

// Buffer ограниченный кольцевой буфер строк журнала для панели логов.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	max   int
	now   func() time.Time
}

// NewBuffer создаёт буфер на max строк.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferLines
	}
	return &Buffer{max: max, now: time.Now}
}

// Emit реализует Sink.
func (b *Buffer) Emit(level Level, module, message string) {
	line := fmt.Sprintf("%s - %s", b.now().Format("15:04:05"), message)
	switch level {
	case WARN:
		line = fmt.Sprintf("%s - WARNING: %s", b.now().Format("15:04:05"), message)
	case ERROR:
		line = fmt.Sprintf("%s - ERROR: %s", b.now().Format("15:04:05"), message)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = append([]string(nil), b.lines[len(b.lines)-b.max:]...)
	}
}

// Lines возвращает копию строк.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// String склеивает строки через перевод строки.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}
