// ABOUTME: Severity-tagged application event log
// ABOUTME: Keeps a capped history, fans entries out to subscribers and mirrors them to the standard logger
package eventlog

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Level is the severity of a log entry
type Level int

const (
	Status Level = iota
	Info
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Status:
		return "status"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Entry is one log line
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Logger is the sink used by the resolver, converter and playback engine
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

type discard struct{}

func (discard) Logf(Level, string, ...interface{}) {}

// Discard drops every entry
var Discard Logger = discard{}

// DefaultCapacity is the number of entries kept in history
const DefaultCapacity = 512

// Log is a concurrency-safe event log
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	subs     map[int]chan Entry
	nextSub  int
	mirror   bool
	now      func() time.Time
}

// New creates a log keeping at most capacity entries
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		subs:     make(map[int]chan Entry),
		mirror:   true,
		now:      time.Now,
	}
}

// SetMirror toggles copying entries to the standard logger
func (l *Log) SetMirror(on bool) {
	l.mu.Lock()
	l.mirror = on
	l.mu.Unlock()
}

// Logf appends a formatted entry
func (l *Log) Logf(level Level, format string, args ...interface{}) {
	e := Entry{Time: l.now(), Level: level, Message: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
	mirror := l.mirror
	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber; drop rather than block the caller
		}
	}
	l.mu.Unlock()

	if mirror {
		log.Printf("[%s] %s", level, e.Message)
	}
}

// Add appends msg verbatim
func (l *Log) Add(level Level, msg string) {
	l.Logf(level, "%s", msg)
}

func (l *Log) Statusf(format string, args ...interface{}) { l.Logf(Status, format, args...) }
func (l *Log) Infof(format string, args ...interface{})   { l.Logf(Info, format, args...) }
func (l *Log) Warnf(format string, args ...interface{})   { l.Logf(Warning, format, args...) }
func (l *Log) Errorf(format string, args ...interface{})  { l.Logf(Error, format, args...) }

// Entries returns a copy of the current history, oldest first
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the history
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = l.entries[:0]
	l.mu.Unlock()
}

// Subscribe returns a channel receiving new entries and a cancel function
func (l *Log) Subscribe(buffer int) (<-chan Entry, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Entry, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}
